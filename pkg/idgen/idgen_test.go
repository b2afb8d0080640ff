package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 20)
	assert.NotEqual(t, id, NewID())
}

func TestNewRequestAndExportID(t *testing.T) {
	assert.Len(t, NewRequestID(), 20)
	assert.Len(t, NewExportID(), 20)
}

func TestIDsAreSortable(t *testing.T) {
	first := NewID()
	second := NewID()
	assert.True(t, first < second, "expected %s < %s", first, second)
}

func TestCreatedAt(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, ok := CreatedAt(NewExportID())

	assert.True(t, ok)
	assert.True(t, ts.After(before))

	_, ok = CreatedAt("not-an-id")
	assert.False(t, ok)
}
