package ui

import (
	"net/http"
	"strconv"

	"sheetview/app"
	apperrors "sheetview/internal/errors"

	"github.com/gin-gonic/gin"
)

// JSON endpoints mirror the page for scripted clients

func (s *Server) handleAPIColumns(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": s.viewer.Columns(sess)})
}

func (s *Server) handleAPISummary(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	sum, err := s.viewer.Summary(sess)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) handleAPIPreview(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	n := 0
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.respondError(c, apperrors.InvalidInput("n must be a positive integer"))
			return
		}
		n = parsed
	}
	preview, err := s.viewer.Preview(sess, n)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"columns": preview.Columns(),
		"rows":    jsonRows(preview),
	})
}

func (s *Server) handleAPIFilter(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req app.FilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.respondError(c, apperrors.ValidationError(err.Error()))
		return
	}
	f, err := s.viewer.Filter(sess, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   f.Count(),
		"columns": f.Table.Columns(),
		"rows":    jsonRows(f.Table),
	})
}

// handleAPISeries returns the points a chart would draw, without rendering
func (s *Server) handleAPISeries(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var form plotForm
	if err := c.ShouldBindQuery(&form); err != nil {
		s.respondError(c, errIncompletePlot)
		return
	}
	spec, err := form.spec()
	if err != nil {
		s.respondError(c, err)
		return
	}
	series, err := s.viewer.Series(sess, spec, form.filter())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"x":               series.XName,
		"y":               series.YName,
		"kind":            spec.Kind,
		"x_kind":          series.XKind,
		"duplicate_index": series.DuplicateIndex,
		"plottable":       series.Plottable(),
		"points":          series.Points(),
	})
}
