package ui

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"sheetview/internal"
	apperrors "sheetview/internal/errors"

	"github.com/gin-gonic/gin"
)

// handleIndex renders the upload page
func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "index.html", s.indexPage(nil))
}

func (s *Server) indexPage(banner *bannerView) indexPage {
	return indexPage{
		Title:       "Upload",
		Banner:      banner,
		MaxUploadMB: s.config.MaxUploadBytes >> 20,
	}
}

// handleUpload loads the posted workbook into a new session
func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(c, s.tooLarge())
			return
		}
		s.respondError(c, apperrors.InvalidInput("Please choose an .xlsx file to upload."))
		return
	}
	if s.config.MaxUploadBytes > 0 && header.Size > s.config.MaxUploadBytes {
		s.respondError(c, s.tooLarge())
		return
	}
	if !s.allowedType(header.Filename) {
		s.respondError(c, apperrors.InvalidInput(fmt.Sprintf("%s is not a supported file type. Please upload an .xlsx workbook.", header.Filename)))
		return
	}

	file, err := header.Open()
	if err != nil {
		s.respondError(c, apperrors.Wrapf(err, "failed to open upload %q", header.Filename))
		return
	}
	defer file.Close()

	sess, err := s.viewer.Upload(c.Request.Context(), file, header.Filename)
	if err != nil {
		s.respondError(c, err)
		return
	}

	url := "/s/" + sess.ID
	internal.DefaultLogger.Info("[Upload] %s (%d bytes) -> %s", header.Filename, header.Size, url)

	switch {
	case isHTMX(c):
		c.Header("HX-Redirect", url)
		c.Status(http.StatusOK)
	case strings.Contains(c.GetHeader("Accept"), "text/html"):
		c.Redirect(http.StatusSeeOther, url)
	default:
		t := sess.Table()
		c.JSON(http.StatusCreated, gin.H{
			"session_id": sess.ID,
			"file_name":  sess.FileName,
			"rows":       t.NumRows(),
			"columns":    s.viewer.Columns(sess),
			"url":        url,
		})
	}
}

func (s *Server) tooLarge() *apperrors.AppError {
	return apperrors.InvalidInput(fmt.Sprintf("The file is larger than the %d MB limit.", s.config.MaxUploadBytes>>20))
}

func (s *Server) allowedType(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range s.config.AllowedTypes {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
