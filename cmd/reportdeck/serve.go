package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/consts"
	"github.com/reportdeck/reportdeck/internal/api/handler"
	"github.com/reportdeck/reportdeck/internal/api/router"
	"github.com/reportdeck/reportdeck/internal/export"
	"github.com/reportdeck/reportdeck/internal/notification"
	"github.com/reportdeck/reportdeck/internal/server"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report page and API",
	Long: `Start the HTTP server with the report page at /, a print variant at
/print, and the API under /api/v1.

When export.schedule is set, snapshot exports are written to
export.output_dir on that cron schedule. Failed runs, and completed
ones when export.notify.on_success is set, are announced on the
export.notify channel (webhook, slack or feishu).`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
	}

	initLogger(cfg.Logging)
	defer logger.Sync()

	logger.Info("Starting ReportDeck", zap.String("version", consts.Version))

	shutdownTelemetry := initTelemetry(cfg.Telemetry)
	defer shutdownTelemetry()

	r, err := loadReport(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load report content: %v\n", err)
		os.Exit(1)
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		logger.Fatal("Failed to create page renderer", zap.Error(err))
	}

	source := handler.StaticSource(r)
	exports := export.NewDefaultManager(renderer, chromeOptions(cfg))

	srv := server.New(cfg, router.Deps{
		Renderer: renderer,
		Exports:  exports,
		Source:   source,
	})
	srv.SetupRoutes()

	if cfg.Export.Schedule != "" {
		notifier, err := notification.NewManager(cfg.Export.Notify)
		if err != nil {
			logger.Fatal("Failed to create notifier", zap.Error(err))
		}
		srv.SetScheduler(export.NewScheduler(exports, export.Source(source), export.SchedulerConfig{
			Schedule:  cfg.Export.Schedule,
			Formats:   toFormats(cfg.Export.Formats),
			OutputDir: cfg.Export.OutputDir,
			Timeout:   cfg.Export.TimeoutDuration(),
			OnRun:     notifier.OnRun,
		}))
	}

	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
	logger.Info("ReportDeck server is running",
		zap.String("url", fmt.Sprintf("http://%s/", srv.Addr())),
		zap.Int("sections", len(r.Sections)),
	)

	srv.WaitForShutdown()
	logger.Info("ReportDeck stopped")
}

func toFormats(names []string) []export.Format {
	out := make([]export.Format, 0, len(names))
	for _, n := range names {
		out = append(out, export.Format(n))
	}
	return out
}
