// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reportdeck/reportdeck/consts"
	"github.com/reportdeck/reportdeck/internal/notification"
	"github.com/reportdeck/reportdeck/pkg/errors"
	"github.com/reportdeck/reportdeck/pkg/logger"
	"github.com/reportdeck/reportdeck/pkg/telemetry"
)

// DefaultConfigPath is where serve, view and export look for configuration
const DefaultConfigPath = "config/reportdeck.yaml"

// Default configuration values
const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultLanguage        = "zh-CN"
	defaultOutputDir       = "./exports"
	defaultExportTimeout   = 60
	defaultScrollStep      = 3
	defaultAnimationFrames = 6
	defaultFrameInterval   = 16
	defaultProbeLines      = 2
	defaultNavLines        = 1
	defaultOTLPEndpoint    = "localhost:4317"
	defaultPrometheusPort  = 9090
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Report    ReportConfig     `yaml:"report"`
	Export    ExportConfig     `yaml:"export"`
	Viewer    ViewerConfig     `yaml:"viewer"`
	Logging   logger.Config    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// ReportConfig selects the report content and the section tracking offsets
type ReportConfig struct {
	// ContentFile is a YAML report; empty means the built-in report
	ContentFile string `yaml:"content_file"`
	// Language is a BCP 47 tag used for number formatting
	Language string `yaml:"language"`
	// FixedOffset is added to the scroll offset before probing sections
	FixedOffset float64 `yaml:"fixed_offset"`
	// NavOffset is the gap kept above a section after jumping to it
	NavOffset float64 `yaml:"nav_offset"`
}

// ExportConfig holds settings for file exports
type ExportConfig struct {
	OutputDir  string `yaml:"output_dir"`
	ChromePath string `yaml:"chrome_path"` // empty: CHROME_PATH or auto-detect
	Timeout    int    `yaml:"timeout"`     // seconds per export
	// Schedule is a cron spec for periodic exports while serving; empty disables it
	Schedule string   `yaml:"schedule"`
	Formats  []string `yaml:"formats"`
	// Notify announces scheduled runs
	Notify notification.Config `yaml:"notify"`
}

// ViewerConfig tunes the terminal viewer
type ViewerConfig struct {
	ScrollStep      int `yaml:"scroll_step"`      // lines per arrow key
	AnimationFrames int `yaml:"animation_frames"` // frames per smooth scroll
	FrameInterval   int `yaml:"frame_interval"`   // milliseconds between frames
	// ProbeLines and NavLines are the terminal counterparts of the report
	// offsets, measured in lines instead of pixels
	ProbeLines int `yaml:"probe_lines"`
	NavLines   int `yaml:"nav_lines"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        defaultHost,
			Port:        defaultPort,
			CORSOrigins: []string{"http://localhost:8080"},
		},
		Report: ReportConfig{
			Language:    defaultLanguage,
			FixedOffset: consts.DefaultFixedOffset,
			NavOffset:   consts.DefaultNavOffset,
		},
		Export: ExportConfig{
			OutputDir: defaultOutputDir,
			Timeout:   defaultExportTimeout,
			Formats:   []string{"html", "pdf"},
		},
		Viewer: ViewerConfig{
			ScrollStep:      defaultScrollStep,
			AnimationFrames: defaultAnimationFrames,
			FrameInterval:   defaultFrameInterval,
			ProbeLines:      defaultProbeLines,
			NavLines:        defaultNavLines,
		},
		Logging: logger.Config{
			Level:  "info",
			Format: "text",
		},
		Telemetry: telemetry.Config{
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Port: defaultPrometheusPort,
			},
		},
	}
}

// Load loads configuration from a YAML file layered on Default.
// ${VAR} and ${VAR:-default} references are expanded before parsing and
// RD_* environment variables are applied afterwards.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeConfigNotFound, fmt.Sprintf("config file not found: %s", path))
		}
		return nil, errors.Wrap(errors.ErrCodeConfigParse, "failed to read config file", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParse, "failed to parse config file", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise
func LoadOrDefault(path string) (*Config, error) {
	if !Exists(path) {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return Load(path)
}

// Exists reports whether a configuration file exists at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Write stores cfg at path with a comment header, creating parent directories
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configHeader+string(data)), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

const configHeader = `# ReportDeck configuration
#
# Environment variable support:
#   - ${VAR_NAME} or ${VAR_NAME:-default} anywhere in a value
#   - RD_* overrides applied after parsing:
#     RD_SERVER_HOST, RD_SERVER_PORT, RD_SERVER_DEBUG
#     RD_REPORT_CONTENT_FILE, RD_EXPORT_OUTPUT_DIR, RD_CHROME_PATH
#     RD_NOTIFY_WEBHOOK_URL, RD_NOTIFY_SLACK_WEBHOOK_URL, RD_NOTIFY_FEISHU_WEBHOOK_URL
#     RD_LOG_LEVEL, RD_LOG_FORMAT, RD_LOG_FILE
#     RD_TELEMETRY_ENABLED, RD_OTLP_ENDPOINT, RD_PROMETHEUS_PORT
#

`

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns
func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := strings.SplitN(match[2:len(match)-1], ":-", 2)
		if value := os.Getenv(parts[0]); value != "" {
			return value
		}
		if len(parts) > 1 {
			return parts[1]
		}
		return ""
	})
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RD_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RD_SERVER_DEBUG"); v != "" {
		cfg.Server.Debug = parseBool(v)
	}

	if v := os.Getenv("RD_REPORT_CONTENT_FILE"); v != "" {
		cfg.Report.ContentFile = v
	}
	if v := os.Getenv("RD_EXPORT_OUTPUT_DIR"); v != "" {
		cfg.Export.OutputDir = v
	}
	if v := os.Getenv("RD_CHROME_PATH"); v != "" {
		cfg.Export.ChromePath = v
	}

	if v := os.Getenv("RD_NOTIFY_WEBHOOK_URL"); v != "" {
		cfg.Export.Notify.Webhook.URL = v
	}
	if v := os.Getenv("RD_NOTIFY_SLACK_WEBHOOK_URL"); v != "" {
		cfg.Export.Notify.Slack.WebhookURL = v
	}
	if v := os.Getenv("RD_NOTIFY_FEISHU_WEBHOOK_URL"); v != "" {
		cfg.Export.Notify.Feishu.WebhookURL = v
	}

	if v := os.Getenv("RD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RD_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("RD_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}

	if v := os.Getenv("RD_TELEMETRY_ENABLED"); v != "" {
		cfg.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("RD_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLP.Enabled = true
		cfg.Telemetry.OTLP.Endpoint = v
	}
	if v := os.Getenv("RD_PROMETHEUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Telemetry.Prometheus.Port = port
		}
	}
}

func parseBool(v string) bool {
	v = strings.ToLower(v)
	return v == "true" || v == "1" || v == "yes"
}

// Address returns the server listen address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TimeoutDuration returns the per-export timeout
func (c *ExportConfig) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return defaultExportTimeout * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// FrameDuration returns the delay between animation frames
func (c *ViewerConfig) FrameDuration() time.Duration {
	if c.FrameInterval <= 0 {
		return defaultFrameInterval * time.Millisecond
	}
	return time.Duration(c.FrameInterval) * time.Millisecond
}
