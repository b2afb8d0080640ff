package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/pkg/logger"
)

// MeterName is the default meter name for the application
const MeterName = "github.com/reportdeck/reportdeck"

// Metrics holds all application instruments. Every Record method is nil-safe
// so a partially initialized set never panics.
type Metrics struct {
	PageRenders         metric.Int64Counter
	SectionResolutions  metric.Int64Counter
	ExportsTotal        metric.Int64Counter
	ExportDuration      metric.Float64Histogram
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, initializing it on first use
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		var err error
		globalMetrics, err = initMetrics()
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			globalMetrics = &Metrics{}
		}
	})
	return globalMetrics
}

func initMetrics() (*Metrics, error) {
	meter := otel.Meter(MeterName)
	m := &Metrics{}
	var err error

	if m.PageRenders, err = meter.Int64Counter(
		"reportdeck_page_renders_total",
		metric.WithDescription("Report pages rendered"),
		metric.WithUnit("{page}"),
	); err != nil {
		return nil, err
	}

	if m.SectionResolutions, err = meter.Int64Counter(
		"reportdeck_section_resolutions_total",
		metric.WithDescription("Active-section resolutions served by the API"),
		metric.WithUnit("{resolution}"),
	); err != nil {
		return nil, err
	}

	if m.ExportsTotal, err = meter.Int64Counter(
		"reportdeck_exports_total",
		metric.WithDescription("Report exports by format and outcome"),
		metric.WithUnit("{export}"),
	); err != nil {
		return nil, err
	}

	if m.ExportDuration, err = meter.Float64Histogram(
		"reportdeck_export_duration_seconds",
		metric.WithDescription("Duration of report exports in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"reportdeck_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"reportdeck_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, err
	}

	logger.Debug("Metrics initialized")
	return m, nil
}

// RecordPageRender counts a rendered page variant (interactive or print)
func (m *Metrics) RecordPageRender(ctx context.Context, variant string) {
	if m.PageRenders == nil {
		return
	}
	m.PageRenders.Add(ctx, 1, metric.WithAttributes(attribute.String("variant", variant)))
}

// RecordSectionResolution counts a resolve call and whether a band matched
func (m *Metrics) RecordSectionResolution(ctx context.Context, matched bool) {
	if m.SectionResolutions == nil {
		return
	}
	m.SectionResolutions.Add(ctx, 1, metric.WithAttributes(attribute.Bool("matched", matched)))
}

// RecordExport records an export outcome and its duration
func (m *Metrics) RecordExport(ctx context.Context, format string, success bool, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("success", success),
	)
	if m.ExportsTotal != nil {
		m.ExportsTotal.Add(ctx, 1, attrs)
	}
	if m.ExportDuration != nil {
		m.ExportDuration.Record(ctx, durationSeconds, attrs)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", statusCode),
	)
	if m.HTTPRequestsTotal != nil {
		m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	}
	if m.HTTPRequestDuration != nil {
		m.HTTPRequestDuration.Record(ctx, durationSeconds, attrs)
	}
}
