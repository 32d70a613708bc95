package ui

import (
	"bytes"
	"net/http"
	"strings"

	"sheetview/internal"

	"github.com/gin-gonic/gin"
)

// renderTemplate executes a full-page template with the given data
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	// First render to a buffer to catch any errors before writing to response
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		internal.DefaultLogger.Error("Template error for %s: %v (data %T)", templateName, err, data)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	if !strings.Contains(buf.String(), "</html>") {
		internal.DefaultLogger.Warn("Rendered template %s appears truncated - missing </html> tag", templateName)
	}

	s.writeHTML(c, status, &buf)
}

// renderFragment executes an htmx partial
func (s *Server) renderFragment(c *gin.Context, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		internal.DefaultLogger.Error("Fragment error for %s: %v (data %T)", templateName, err, data)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}
	s.writeHTML(c, status, &buf)
}

func (s *Server) writeHTML(c *gin.Context, status int, buf *bytes.Buffer) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		internal.DefaultLogger.Error("Error writing template response: %v", err)
	}
}
