package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reportdeck/reportdeck/internal/export"
)

func TestToFormats(t *testing.T) {
	assert.Equal(t, []export.Format{export.FormatHTML, export.FormatPDF}, toFormats([]string{"html", "pdf"}))
	assert.Empty(t, toFormats(nil))
}

func TestPx(t *testing.T) {
	assert.Equal(t, "450", px(450))
	assert.Equal(t, "12.5", px(12.5))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "view", "export", "inspect", "init", "version"} {
		assert.True(t, names[want], want)
	}
}

func TestExportArgsValidation(t *testing.T) {
	assert.NoError(t, exportCmd.ValidateArgs([]string{"html", "markdown"}))
	assert.Error(t, exportCmd.ValidateArgs([]string{"docx"}))
}
