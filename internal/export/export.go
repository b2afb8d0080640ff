// Package export writes the report to files in several formats.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/pkg/errors"
	"github.com/reportdeck/reportdeck/pkg/idgen"
	"github.com/reportdeck/reportdeck/pkg/logger"
	"github.com/reportdeck/reportdeck/pkg/telemetry"
)

// Format names an export format
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatPDF      Format = "pdf"
)

const maxFilenameBytes = 100

// Exporter renders a report in one format
type Exporter interface {
	// Export renders the report
	Export(ctx context.Context, r *report.Report) ([]byte, error)
	// Name returns a human-readable name (e.g. "Markdown")
	Name() string
	// FileExtension returns the extension including the dot (e.g. ".md")
	FileExtension() string
}

// ContentTyper is implemented by exporters that know their MIME type
type ContentTyper interface {
	ContentType() string
}

// Manager holds the registered exporters
type Manager struct {
	exporters map[Format]Exporter
	mu        sync.RWMutex
	now       func() time.Time
}

// NewManager creates an empty manager
func NewManager() *Manager {
	return &Manager{
		exporters: make(map[Format]Exporter),
		now:       time.Now,
	}
}

// Register adds or replaces the exporter for format
func (m *Manager) Register(format Format, exporter Exporter) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exporters[format] = exporter
	logger.Debug("Registered exporter",
		zap.String(logger.FieldFormat, string(format)),
		zap.String("name", exporter.Name()),
	)
}

// Get returns the exporter for format
func (m *Manager) Get(format Format) (Exporter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exporter, ok := m.exporters[format]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported export format: %s", format))
	}
	return exporter, nil
}

// SupportedFormats returns the registered formats in name order
func (m *Manager) SupportedFormats() []Format {
	m.mu.RLock()
	defer m.mu.RUnlock()

	formats := make([]Format, 0, len(m.exporters))
	for f := range m.exporters {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Export renders r in format, tracing and timing the run
func (m *Manager) Export(ctx context.Context, r *report.Report, format Format) ([]byte, error) {
	exporter, err := m.Get(format)
	if err != nil {
		return nil, err
	}

	exportID := idgen.NewExportID()
	log := logger.WithExport(exportID, string(format))
	ctx, span := telemetry.StartSpan(ctx, "export."+string(format),
		telemetry.WithExportAttributes(exportID, string(format)))
	defer span.End()

	start := time.Now()
	log.Debug("Exporting report", zap.String("exporter", exporter.Name()))

	content, err := exporter.Export(ctx, r)
	elapsed := time.Since(start)
	telemetry.GetMetrics().RecordExport(ctx, string(format), err == nil, elapsed.Seconds())

	if err != nil {
		telemetry.SetSpanError(span, err)
		log.Error("Export failed", zap.Error(err), zap.Duration("duration", elapsed))
		if _, ok := errors.AsAppError(err); ok {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeRenderFailed,
			fmt.Sprintf("failed to export report with %s exporter", exporter.Name()), err)
	}

	telemetry.SetSpanOK(span)
	log.Info("Report exported",
		zap.Int("size_bytes", len(content)),
		zap.Duration("duration", elapsed),
	)
	return content, nil
}

// ExportToFile renders r and writes it into dir under a generated name.
// It returns the written path.
func (m *Manager) ExportToFile(ctx context.Context, r *report.Report, format Format, dir string) (string, error) {
	content, err := m.Export(ctx, r, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, m.GenerateFilename(r, format))
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logger.Info("Report written",
		zap.String(logger.FieldFormat, string(format)),
		zap.String("path", path),
	)
	return path, nil
}

// GenerateFilename builds "<title>-<timestamp><ext>" for an export of r
func (m *Manager) GenerateFilename(r *report.Report, format Format) string {
	base := sanitizeFilename(r.FullTitle())
	if base == "" {
		base = "report"
	}
	stamp := m.now().Format("20060102-150405")
	return base + "-" + stamp + m.extension(format)
}

func (m *Manager) extension(format Format) string {
	m.mu.RLock()
	exporter, ok := m.exporters[format]
	m.mu.RUnlock()
	if ok {
		return exporter.FileExtension()
	}

	switch format {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	case FormatHTML:
		return ".html"
	case FormatPDF:
		return ".pdf"
	default:
		return ".txt"
	}
}

// ContentType returns the MIME type served for format
func (m *Manager) ContentType(format Format) string {
	if exporter, err := m.Get(format); err == nil {
		if ct, ok := exporter.(ContentTyper); ok {
			return ct.ContentType()
		}
	}
	return "application/octet-stream"
}

// sanitizeFilename replaces path and shell-unsafe characters and trims the
// result to maxFilenameBytes without splitting a UTF-8 sequence.
func sanitizeFilename(name string) string {
	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}
	result := name
	for _, char := range unsafe {
		result = strings.ReplaceAll(result, char, "_")
	}
	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	result = strings.Trim(result, "_")

	if len(result) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut]
	}
	return result
}
