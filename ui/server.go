package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"time"

	"sheetview/app"
	"sheetview/internal"
	"sheetview/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates static
var embeddedFiles embed.FS

// Config holds the presentation settings
type Config struct {
	GinMode          string
	MaxUploadBytes   int64
	AllowedTypes     []string
	UploadRatePerMin int
	UploadBurst      int
	ChartWidth       int
	ChartHeight      int
	// MaxDisplayRows caps the rows rendered in a filtered table
	MaxDisplayRows int
}

// Server represents the web server for the viewer
type Server struct {
	router    *gin.Engine
	viewer    *app.ViewerService
	templates *template.Template
	config    Config
}

// NewServer creates a new web server instance
func NewServer(viewer *app.ViewerService, config Config) (*Server, error) {
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}
	if config.MaxDisplayRows <= 0 {
		config.MaxDisplayRows = 1000
	}
	if config.UploadRatePerMin <= 0 {
		config.UploadRatePerMin = 30
	}
	if config.UploadBurst <= 0 {
		config.UploadBurst = 5
	}
	if len(config.AllowedTypes) == 0 {
		config.AllowedTypes = []string{".xlsx"}
	}

	s := &Server{
		router: gin.New(),
		viewer: viewer,
		config: config,
	}

	funcMap := template.FuncMap{
		"num": formatNumber,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s.templates = tmpl

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Router exposes the handler for tests and custom listeners
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload",
		middleware.RateLimitMiddleware(s.config.UploadRatePerMin, s.config.UploadBurst),
		middleware.MaxBodySize(s.config.MaxUploadBytes),
		s.handleUpload,
	)

	view := s.router.Group("/s/:id")
	{
		view.GET("", s.handleSession)
		view.GET("/values", s.handleValues)
		view.GET("/filter", s.handleFilter)
		view.POST("/plot", s.handlePlot)
		view.GET("/chart.png", s.handleChartPNG)
		view.GET("/export.xlsx", s.handleExport)
	}

	api := s.router.Group("/api/sessions/:id")
	{
		api.GET("/columns", s.handleAPIColumns)
		api.GET("/summary", s.handleAPISummary)
		api.GET("/preview", s.handleAPIPreview)
		api.GET("/filter", s.handleAPIFilter)
		api.GET("/series", s.handleAPISeries)
	}

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.DefaultLogger.Info("[Server] listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		internal.DefaultLogger.Info("[Server] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// formatNumber prints statistics the way a describe table does
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "NaN"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', 6, 64)
}
