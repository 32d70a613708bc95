package ui

import (
	"io/fs"
	"net/http"

	"sheetview/internal"
	"sheetview/internal/metrics"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery(), metrics.Middleware())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		internal.DefaultLogger.Error("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	internal.DefaultLogger.Debug("[Static] Serving static files from embedded FS at /static")
	s.router.StaticFS("/static", http.FS(staticFS))
}

// isHTMX reports a request issued by htmx, which expects an HTML fragment
func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}
