package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/internal/export"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

// ExportHandler serves report downloads
type ExportHandler struct {
	manager *export.Manager
	source  Source
}

// NewExportHandler creates a new export handler
func NewExportHandler(manager *export.Manager, source Source) *ExportHandler {
	return &ExportHandler{manager: manager, source: source}
}

// ListFormats handles GET /api/v1/export
func (h *ExportHandler) ListFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"formats": h.manager.SupportedFormats()})
}

// Export handles GET /api/v1/export/:format
func (h *ExportHandler) Export(c *gin.Context) {
	format := export.Format(c.Param("format"))
	if _, err := h.manager.Get(format); err != nil {
		_ = c.Error(err)
		return
	}

	r, err := h.source()
	if err != nil {
		_ = c.Error(err)
		return
	}

	data, err := h.manager.Export(c.Request.Context(), r, format)
	if err != nil {
		logger.Error("Failed to export report", zap.String(logger.FieldFormat, string(format)), zap.Error(err))
		_ = c.Error(err)
		return
	}

	filename := h.manager.GenerateFilename(r, format)
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, h.manager.ContentType(format), data)
}
