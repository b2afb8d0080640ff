package export

import (
	"context"
	"encoding/json"
	"time"

	"github.com/reportdeck/reportdeck/consts"
	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/internal/tracker"
)

// JSONExporter writes the report model with its navigation list
type JSONExporter struct {
	now func() time.Time
}

// NewJSONExporter creates a JSON exporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{now: time.Now}
}

// Document is the JSON export envelope
type Document struct {
	Generator   string            `json:"generator"`
	GeneratedAt time.Time         `json:"generated_at"`
	Navigation  []tracker.Section `json:"navigation"`
	Report      *report.Report    `json:"report"`
}

// Export encodes the report
func (e *JSONExporter) Export(_ context.Context, r *report.Report) ([]byte, error) {
	doc := Document{
		Generator:   consts.ProjectName + " " + consts.Version,
		GeneratedAt: e.now().UTC(),
		Navigation:  r.Descriptors(),
		Report:      r,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Name returns the exporter name
func (e *JSONExporter) Name() string { return "JSON" }

// FileExtension returns the file extension
func (e *JSONExporter) FileExtension() string { return ".json" }

// ContentType returns the MIME type
func (e *JSONExporter) ContentType() string { return "application/json" }
