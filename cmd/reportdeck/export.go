package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/internal/config"
	"github.com/reportdeck/reportdeck/internal/export"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

var exportCmd = &cobra.Command{
	Use:   "export [format...]",
	Short: "Export the report to files",
	Long: `Write the report in one or more formats (html, markdown, json, pdf).
Without arguments the formats from export.formats are used.

PDF export needs Chrome or Chromium; set export.chrome_path or CHROME_PATH
if it is not on PATH.`,
	ValidArgs: config.ExportFormats,
	Args:      cobra.OnlyValidArgs,
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output directory (overrides export.output_dir)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Export.OutputDir = out
	}

	formats := args
	if len(formats) == 0 {
		formats = cfg.Export.Formats
	}
	for _, f := range formats {
		if !config.IsExportFormat(f) {
			return fmt.Errorf("unknown export format %q (want one of %v)", f, config.ExportFormats)
		}
	}

	initLogger(cfg.Logging)
	defer logger.Sync()
	shutdownTelemetry := initTelemetry(cfg.Telemetry)
	defer shutdownTelemetry()

	r, err := loadReport(cfg)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	manager := export.NewDefaultManager(renderer, chromeOptions(cfg))

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	failed := 0
	for _, f := range toFormats(formats) {
		ctx, cancel := contextWithTimeout(cmd, cfg.Export.TimeoutDuration())
		path, err := manager.ExportToFile(ctx, r, f, cfg.Export.OutputDir)
		cancel()
		if err != nil {
			failed++
			logger.Error("Export failed", zap.String(logger.FieldFormat, string(f)), zap.Error(err))
			red.Fprintf(os.Stderr, "  ✗ %s: %v\n", f, err)
			continue
		}
		green.Printf("  ✓ %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d exports failed", failed, len(formats))
	}
	return nil
}
