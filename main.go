package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sheetview/adapters/excel"
	"sheetview/adapters/render"
	"sheetview/app"
	"sheetview/internal"
	"sheetview/internal/config"
	"sheetview/internal/session"
	"sheetview/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if level, ok := internal.ParseLogLevel(appConfig.LogLevel); ok {
		internal.DefaultLogger.SetLevel(level)
	}

	sessions := session.NewManager(appConfig.Session.MaxSessions, appConfig.Session.TTL)
	viewer := app.NewViewerService(
		excel.NewLoader(excel.DefaultExcelConfig()),
		excel.NewExporter(),
		render.NewRenderer(appConfig.View.ChartWidth, appConfig.View.ChartHeight),
		sessions,
		app.ViewerConfig{
			PreviewRows: appConfig.View.PreviewRows,
			LoadDelay:   appConfig.View.LoadDelay,
			PlotDelay:   appConfig.View.PlotDelay,
		},
	)

	server, err := ui.NewServer(viewer, ui.Config{
		GinMode:          appConfig.Server.GinMode,
		MaxUploadBytes:   appConfig.Upload.MaxBytes,
		AllowedTypes:     appConfig.Upload.AllowedTypes,
		UploadRatePerMin: appConfig.Upload.RatePerMin,
		UploadBurst:      appConfig.Upload.Burst,
		ChartWidth:       appConfig.View.ChartWidth,
		ChartHeight:      appConfig.View.ChartHeight,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			internal.DefaultLogger.Info("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			pprofServer := &http.Server{Addr: ":" + appConfig.Profiling.Port, ReadHeaderTimeout: 10 * time.Second}
			if err := pprofServer.ListenAndServe(); err != nil {
				internal.DefaultLogger.Warn("pprof server failed: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	internal.DefaultLogger.Info("SheetView ready on http://localhost:%s (log level %s)", appConfig.Server.Port, internal.DefaultLogger.GetLevel())
	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
