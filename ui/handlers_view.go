package ui

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"sheetview/app"
	"sheetview/domain/chart"
	apperrors "sheetview/internal/errors"
	"sheetview/internal/session"

	"github.com/gin-gonic/gin"
)

var errIncompletePlot = apperrors.InvalidInput("Choose an X-axis column, a Y-axis column and a chart type.")

// plotForm is the plot request as posted by the page or a JSON client
type plotForm struct {
	X      string `form:"x" json:"x" binding:"required"`
	Y      string `form:"y" json:"y" binding:"required"`
	Kind   string `form:"kind" json:"kind" binding:"required"`
	Column string `form:"column" json:"column"`
	Value  string `form:"value" json:"value"`
}

func (f plotForm) spec() (chart.Spec, error) {
	kind, err := chart.ParseKind(f.Kind)
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.Spec{X: f.X, Y: f.Y, Kind: kind}, nil
}

func (f plotForm) filter() app.FilterRequest {
	return app.FilterRequest{Column: f.Column, Value: f.Value}
}

// query encodes the form for the standalone PNG link
func (f plotForm) query() string {
	v := url.Values{}
	v.Set("x", f.X)
	v.Set("y", f.Y)
	v.Set("kind", f.Kind)
	if f.Column != "" {
		v.Set("column", f.Column)
		v.Set("value", f.Value)
	}
	return v.Encode()
}

// lookup resolves the :id path parameter, answering the request itself on failure
func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	sess, err := s.viewer.Session(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return sess, true
}

// handleSession renders the full view of a loaded file: preview, summary,
// the filter defaulted to the first column's first value, and the plot form
func (s *Server) handleSession(c *gin.Context) {
	sess, err := s.viewer.Session(c.Param("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.renderTemplate(c, http.StatusNotFound, "index.html", s.indexPage(bannerFor(toAppError(err))))
			return
		}
		s.respondError(c, err)
		return
	}

	preview, err := s.viewer.Preview(sess, 0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sum, err := s.viewer.Summary(sess)
	if err != nil {
		s.respondError(c, err)
		return
	}

	cols := s.viewer.Columns(sess)
	page := sessionPage{
		Title:      sess.FileName,
		SessionID:  sess.ID,
		FileName:   sess.FileName,
		LoadedAt:   sess.LoadedAt,
		RowCount:   sess.Table().NumRows(),
		Columns:    cols,
		Preview:    newTableView(preview, 0),
		Summary:    sum,
		ChartKinds: chart.Kinds,
	}

	if len(cols) > 0 {
		values, err := s.viewer.UniqueValues(sess, cols[0].Name)
		if err != nil {
			s.respondError(c, err)
			return
		}
		page.Values = newValueOptions(values)
		if len(values) > 0 {
			req := app.FilterRequest{Column: cols[0].Name, Value: values[0].Key()}
			f, err := s.viewer.Filter(sess, req)
			if err != nil {
				s.respondError(c, err)
				return
			}
			view := newTableView(f.Table, s.config.MaxDisplayRows)
			view.ExportURL = exportURL(sess.ID, req)
			page.Filtered = &view
		}
	}

	s.renderTemplate(c, http.StatusOK, "session.html", page)
}

// handleValues lists the selectable values of ?column
func (s *Server) handleValues(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	values, err := s.viewer.UniqueValues(sess, c.Query("column"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	opts := newValueOptions(values)
	if isHTMX(c) {
		s.renderFragment(c, http.StatusOK, "values.html", opts)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": c.Query("column"), "values": opts})
}

// handleFilter applies ?column=&value= and shows the matching rows
func (s *Server) handleFilter(c *gin.Context) {
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
	if isHTMX(c) {
		view := newTableView(f.Table, s.config.MaxDisplayRows)
		view.ExportURL = exportURL(sess.ID, req)
		s.renderFragment(c, http.StatusOK, "filtered.html", &view)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   f.Count(),
		"columns": f.Table.Columns(),
		"rows":    jsonRows(f.Table),
	})
}

// handlePlot renders the requested chart over the filtered rows
func (s *Server) handlePlot(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var form plotForm
	if err := c.ShouldBind(&form); err != nil {
		s.respondError(c, errIncompletePlot)
		return
	}
	spec, err := form.spec()
	if err != nil {
		s.respondError(c, err)
		return
	}

	out, err := s.viewer.Plot(c.Request.Context(), sess, spec, form.filter())
	if err != nil {
		s.respondError(c, err)
		return
	}

	if isHTMX(c) {
		view := chartView{
			X:      spec.X,
			Y:      spec.Y,
			Label:  spec.Kind.Label(),
			NoData: out.NoData,
			PNGURL: fmt.Sprintf("/s/%s/chart.png?%s", sess.ID, form.query()),
			Width:  s.config.ChartWidth,
			Height: s.config.ChartHeight,
		}
		if form.Column != "" {
			view.Filter = fmt.Sprintf("%s == %s", form.Column, form.Value)
		}
		if !out.NoData {
			view.ImageURL = template.URL("data:" + out.ContentType + ";base64," + base64.StdEncoding.EncodeToString(out.Data))
		}
		s.renderFragment(c, http.StatusOK, "chart.html", view)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"kind":         out.Kind,
		"no_data":      out.NoData,
		"content_type": out.ContentType,
		"image_base64": base64.StdEncoding.EncodeToString(out.Data),
	})
}

// handleChartPNG serves the chart as a plain image; 204 when there is nothing to draw
func (s *Server) handleChartPNG(c *gin.Context) {
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
	out, err := s.viewer.Plot(c.Request.Context(), sess, spec, form.filter())
	if err != nil {
		s.respondError(c, err)
		return
	}
	if out.NoData {
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// handleExport downloads the filtered rows as a workbook
func (s *Server) handleExport(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req app.FilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	var buf bytes.Buffer
	if err := s.viewer.Export(sess, req, &buf); err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(sess.FileName)))
	c.Data(http.StatusOK, s.viewer.ExportContentType(), buf.Bytes())
}

func exportName(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if base == "" || base == "." {
		base = "data"
	}
	return base + "-filtered.xlsx"
}
