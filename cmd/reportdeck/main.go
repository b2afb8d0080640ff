// Package main is the entry point for reportdeck.
// reportdeck serves, exports and inspects a scroll-tracked business report page.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/consts"
	"github.com/reportdeck/reportdeck/internal/browser"
	"github.com/reportdeck/reportdeck/internal/config"
	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/internal/web"
	"github.com/reportdeck/reportdeck/pkg/errors"
	"github.com/reportdeck/reportdeck/pkg/logger"
	"github.com/reportdeck/reportdeck/pkg/telemetry"
)

// Build information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

// configPath holds the --config flag
var configPath string

var rootCmd = &cobra.Command{
	Use:   "reportdeck",
	Short: "ReportDeck - scroll-tracked business report page",
	Long: `ReportDeck renders a half-year business report as a single page whose
navigation bar follows the section in view. It serves the page over HTTP,
shows it in the terminal, exports it to HTML, Markdown, JSON or PDF, and
inspects the live layout in headless Chrome.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", consts.ProjectName, Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "config file path")

	rootCmd.AddCommand(serveCmd, viewCmd, exportCmd, inspectCmd, initCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, or defaults when it is absent, and exits
// with the configuration exit code when it is invalid
func loadConfig() *config.Config {
	cfg, err := config.LoadOrDefault(configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		printConfigError(err)
		os.Exit(errors.ExitCodeConfigValidation)
	}
	return cfg
}

func printConfigError(err error) {
	fmt.Fprintf(os.Stderr, "\n[ERROR] Configuration is invalid: %s\n", configPath)
	appErr, ok := errors.AsAppError(err)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error Code: %s\n", appErr.Code)
	fmt.Fprintf(os.Stderr, "Error: %v\n", appErr)
	if problems, ok := appErr.Details.([]string); ok {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "  - %s\n", p)
		}
	}
	fmt.Fprintf(os.Stderr, "\nRun 'reportdeck init' to check or recreate the file.\n\n")
}

func initLogger(cfg logger.Config) {
	if err := logger.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
}

// initTelemetry starts telemetry and returns its shutdown function
func initTelemetry(cfg telemetry.Config) func() {
	tel, err := telemetry.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown telemetry", zap.Error(err))
		}
	}
}

// loadReport loads the configured content, falling back to the built-in report
func loadReport(cfg *config.Config) (*report.Report, error) {
	r, err := report.Load(cfg.Report.ContentFile)
	if err != nil {
		return nil, err
	}
	if r.Language == "" {
		r.Language = cfg.Report.Language
	}
	return r, nil
}

func newRenderer(cfg *config.Config) (*web.Renderer, error) {
	return web.New(web.Options{
		FixedOffset: cfg.Report.FixedOffset,
		NavOffset:   cfg.Report.NavOffset,
	})
}

func chromeOptions(cfg *config.Config) browser.Options {
	return browser.Options{
		ChromePath: cfg.Export.ChromePath,
		Timeout:    cfg.Export.TimeoutDuration(),
	}
}
