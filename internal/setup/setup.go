// Package setup creates and checks the local reportdeck configuration.
package setup

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/reportdeck/reportdeck/internal/config"
	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/pkg/errors"
)

// chromeCandidates are looked up on PATH when no Chrome path is configured
var chromeCandidates = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome"}

// Options configures an Initializer
type Options struct {
	// ConfigPath is the file to create or check
	ConfigPath string
	// Yes creates a missing file without asking
	Yes bool
	// Interactive allows a confirmation prompt
	Interactive bool
	// Out receives the printed report; nil means stdout
	Out io.Writer
}

// Result collects what Run found
type Result struct {
	Path        string
	Created     bool
	Errors      []string
	Warnings    []string
	Suggestions []string
	// Config is the loaded configuration, nil when it could not be read
	Config *config.Config
}

// Success reports whether no errors were found
func (r *Result) Success() bool {
	return len(r.Errors) == 0
}

// Initializer handles configuration creation and checking
type Initializer struct {
	opts     Options
	confirm  func(path string) (bool, error)
	lookPath func(file string) (string, error)
}

// New creates an Initializer
func New(opts Options) *Initializer {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultConfigPath
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Initializer{opts: opts, confirm: confirmCreate, lookPath: exec.LookPath}
}

// Run creates the configuration file when missing and validates it
func (i *Initializer) Run() (*Result, error) {
	result := &Result{Path: i.opts.ConfigPath}

	if !config.Exists(i.opts.ConfigPath) {
		create, err := i.shouldCreate()
		if err != nil {
			return nil, err
		}
		if !create {
			result.Errors = append(result.Errors, fmt.Sprintf("%s does not exist", i.opts.ConfigPath))
			result.Suggestions = append(result.Suggestions, "Run 'reportdeck init --yes' to create it with defaults")
			return result, nil
		}
		if err := config.Write(i.opts.ConfigPath, config.Default()); err != nil {
			return nil, err
		}
		result.Created = true
	}

	i.validate(result)
	return result, nil
}

func (i *Initializer) shouldCreate() (bool, error) {
	switch {
	case i.opts.Yes:
		return true, nil
	case i.opts.Interactive:
		return i.confirm(i.opts.ConfigPath)
	default:
		return false, nil
	}
}

func (i *Initializer) validate(result *Result) {
	cfg, err := config.Load(i.opts.ConfigPath)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Config = cfg

	if err := cfg.Validate(); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			if problems, ok := appErr.Details.([]string); ok {
				result.Errors = append(result.Errors, problems...)
			} else {
				result.Errors = append(result.Errors, appErr.Message)
			}
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	if cfg.Report.ContentFile != "" {
		if _, err := report.Load(cfg.Report.ContentFile); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	if wantsPDF(cfg.Export.Formats) && i.findChrome(cfg) == "" {
		result.Warnings = append(result.Warnings, "no Chrome or Chromium binary found; PDF exports and inspect will fail")
		result.Suggestions = append(result.Suggestions, "Set export.chrome_path or CHROME_PATH")
	}
}

func wantsPDF(formats []string) bool {
	for _, f := range formats {
		if f == "pdf" {
			return true
		}
	}
	return false
}

func (i *Initializer) findChrome(cfg *config.Config) string {
	for _, p := range []string{cfg.Export.ChromePath, os.Getenv("CHROME_PATH")} {
		if p != "" {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	for _, name := range chromeCandidates {
		if p, err := i.lookPath(name); err == nil {
			return p
		}
	}
	return ""
}

// confirmCreate asks the user to confirm file creation
func confirmCreate(path string) (bool, error) {
	var confirm bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Create %s with default settings?", path)).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		Run()
	if err != nil {
		return false, err
	}
	return confirm, nil
}

// Print writes a summary of result
func (i *Initializer) Print(result *Result) {
	w := i.opts.Out
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)
	fmt.Fprintln(w, titleStyle.Render("ReportDeck configuration check"))

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	switch {
	case result.Created:
		green.Fprintf(w, "  ✓ %s (created)\n", result.Path)
	case result.Config != nil:
		green.Fprintf(w, "  ✓ %s\n", result.Path)
	}
	for _, e := range result.Errors {
		red.Fprintf(w, "  ✗ %s\n", e)
	}
	for _, warn := range result.Warnings {
		yellow.Fprintf(w, "  ⚠ %s\n", warn)
	}
	for _, s := range result.Suggestions {
		fmt.Fprintf(w, "  → %s\n", s)
	}

	fmt.Fprintln(w)
	if result.Success() {
		green.Fprintln(w, "Configuration is valid")
	} else {
		red.Fprintf(w, "Configuration has %d problem(s)\n", len(result.Errors))
	}
}
