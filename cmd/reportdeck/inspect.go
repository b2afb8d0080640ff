package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/reportdeck/reportdeck/internal/browser"
	"github.com/reportdeck/reportdeck/internal/tracker"
	"github.com/reportdeck/reportdeck/internal/web"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Measure the page in headless Chrome and resolve scroll offsets",
	Long: `Load the report page in headless Chrome at the given width, measure the
top and height of every section, then scroll a tracker through the offsets
and print the section that is active at each one.

Example:
  reportdeck inspect --offsets 0,450,900 --width 1280`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Float64Slice("offsets", []float64{0, 450, 900}, "scroll offsets in pixels, in scroll order")
	inspectCmd.Flags().Int64("width", 0, "viewport width in pixels (default 1280)")
	inspectCmd.Flags().Bool("json", false, "print the inspection as JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	offsets, _ := cmd.Flags().GetFloat64Slice("offsets")
	width, _ := cmd.Flags().GetInt64("width")
	asJSON, _ := cmd.Flags().GetBool("json")

	initLogger(cfg.Logging)
	defer logger.Sync()

	r, err := loadReport(cfg)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	page, err := renderer.HTML(r, web.VariantInteractive)
	if err != nil {
		return err
	}

	opts := chromeOptions(cfg)
	opts.Width = width
	ctx, cancel := contextWithTimeout(cmd, cfg.Export.TimeoutDuration())
	defer cancel()

	result, err := browser.Inspect(ctx, page, r.Descriptors(), offsets, opts,
		tracker.WithFixedOffset(cfg.Report.FixedOffset),
		tracker.WithNavOffset(cfg.Report.NavOffset),
	)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printInspection(result, r.Descriptors())
	return nil
}

func printInspection(in *browser.Inspection, sections []tracker.Section) {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	fmt.Println(header.Render(fmt.Sprintf("Layout at %dpx", in.Width)))

	layout := table.New().Border(lipgloss.NormalBorder()).Headers("SECTION", "TOP", "HEIGHT")
	for _, s := range sections {
		pos, ok := in.Positions.Position(s.ID)
		if !ok {
			layout.Row(s.ID, "-", "-")
			continue
		}
		layout.Row(s.ID, px(pos.Top), px(pos.Height))
	}
	fmt.Println(layout.Render())

	fmt.Println(header.Render("Active section by offset"))
	steps := table.New().Border(lipgloss.NormalBorder()).Headers("OFFSET", "PROBE", "ACTIVE", "MATCHED")
	for _, st := range in.Steps {
		steps.Row(px(st.Offset), px(st.Probe), st.Active, strconv.FormatBool(st.Matched))
	}
	fmt.Println(steps.Render())
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// contextWithTimeout derives a deadline from the command context
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}
