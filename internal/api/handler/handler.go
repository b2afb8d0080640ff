// Package handler provides HTTP handlers for the API.
package handler

import (
	"github.com/reportdeck/reportdeck/internal/report"
)

// Source returns the report to serve. It is called once per request so a
// server can swap content without restarting.
type Source func() (*report.Report, error)

// StaticSource serves the same report for every request
func StaticSource(r *report.Report) Source {
	return func() (*report.Report, error) { return r, nil }
}
