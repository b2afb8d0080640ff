package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"

	"github.com/reportdeck/reportdeck/pkg/errors"
)

// ExportFormats lists the formats the export manager can produce
var ExportFormats = []string{"html", "markdown", "json", "pdf"}

// IsExportFormat reports whether name is a known export format
func IsExportFormat(name string) bool {
	for _, f := range ExportFormats {
		if f == name {
			return true
		}
	}
	return false
}

// Validate checks the configuration and returns an E6002 error listing every
// problem found.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Report.FixedOffset < 0 {
		problems = append(problems, "report.fixed_offset must not be negative")
	}
	if c.Report.NavOffset < 0 {
		problems = append(problems, "report.nav_offset must not be negative")
	}
	if c.Report.Language != "" {
		if _, err := language.Parse(c.Report.Language); err != nil {
			problems = append(problems, fmt.Sprintf("report.language %q is not a valid language tag", c.Report.Language))
		}
	}
	if c.Export.Timeout < 0 {
		problems = append(problems, "export.timeout must not be negative")
	}
	for _, f := range c.Export.Formats {
		if !IsExportFormat(f) {
			problems = append(problems, fmt.Sprintf("export.formats: unknown format %q (supported: %s)",
				f, strings.Join(ExportFormats, ", ")))
		}
	}
	if c.Export.Schedule != "" {
		if _, err := cron.ParseStandard(c.Export.Schedule); err != nil {
			problems = append(problems, fmt.Sprintf("export.schedule %q: %v", c.Export.Schedule, err))
		}
	}
	problems = append(problems, c.Export.Notify.Validate()...)
	if c.Export.Notify.IsEnabled() && c.Export.Schedule == "" {
		problems = append(problems, "export.notify requires export.schedule")
	}
	if c.Viewer.ScrollStep <= 0 {
		problems = append(problems, "viewer.scroll_step must be positive")
	}
	if c.Viewer.AnimationFrames <= 0 {
		problems = append(problems, "viewer.animation_frames must be positive")
	}
	if c.Viewer.ProbeLines < 0 || c.Viewer.NavLines < 0 {
		problems = append(problems, "viewer.probe_lines and viewer.nav_lines must not be negative")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be text or json", c.Logging.Format))
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		problems = append(problems, "telemetry.sample_ratio must be between 0 and 1")
	}
	if c.Telemetry.Enabled && c.Telemetry.Prometheus.Enabled && c.Telemetry.Prometheus.Port == c.Server.Port {
		problems = append(problems, "telemetry.prometheus.port must differ from server.port")
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "invalid configuration").WithDetails(problems)
	}
	return nil
}
