// Package idgen provides ID generation utilities for the application.
// It hides the xid dependency so callers depend only on string IDs.
package idgen

import (
	"time"

	"github.com/rs/xid"
)

// NewID generates a new globally unique, time-sortable, URL-safe
// 20-character identifier.
func NewID() string {
	return xid.New().String()
}

// NewRequestID generates a unique ID for HTTP request tracking.
func NewRequestID() string {
	return NewID()
}

// NewExportID generates a unique ID for an export run. Scheduled and on-demand
// exports share the same ID space so their log lines can be correlated.
func NewExportID() string {
	return NewID()
}

// CreatedAt extracts the creation time embedded in an ID produced by this
// package. ok is false for strings that are not valid IDs.
func CreatedAt(id string) (t time.Time, ok bool) {
	parsed, err := xid.FromString(id)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.Time(), true
}
