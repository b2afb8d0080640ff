package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reportdeck/reportdeck/internal/viewer"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the report in the terminal",
	Long: `Open the report in a full-screen terminal viewer. The navigation bar
highlights the section in view while scrolling.

Keys:
  up/down, j/k        scroll
  pgup/pgdown, space  scroll a page
  home/end, g/G       jump to top or bottom
  1-9, tab/shift+tab  go to a section
  q                   quit`,
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	// Console log lines would tear the full-screen UI
	if cfg.Logging.File == "" {
		cfg.Logging.Level = "fatal"
	}
	initLogger(cfg.Logging)
	defer logger.Sync()

	r, err := loadReport(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load report content: %v\n", err)
		os.Exit(1)
	}

	return viewer.Run(cmd.Context(), r, viewer.Options{
		ScrollStep:      cfg.Viewer.ScrollStep,
		AnimationFrames: cfg.Viewer.AnimationFrames,
		FrameInterval:   cfg.Viewer.FrameDuration(),
		ProbeLines:      float64(cfg.Viewer.ProbeLines),
		NavLines:        float64(cfg.Viewer.NavLines),
	})
}
