// Package router sets up the HTTP routes for the report server.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/reportdeck/reportdeck/consts"
	"github.com/reportdeck/reportdeck/internal/api/handler"
	"github.com/reportdeck/reportdeck/internal/api/middleware"
	"github.com/reportdeck/reportdeck/internal/config"
	"github.com/reportdeck/reportdeck/internal/export"
	"github.com/reportdeck/reportdeck/internal/web"
)

// Deps bundles what the routes need
type Deps struct {
	Config   *config.Config
	Renderer *web.Renderer
	Exports  *export.Manager
	Source   handler.Source
}

// Setup configures all routes on r
func Setup(r *gin.Engine, d Deps) {
	cfg := d.Config

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))
	r.Use(otelgin.Middleware(consts.ServiceName))

	r.GET("/health", handler.Health)

	pages := handler.NewPageHandler(d.Renderer, d.Source)
	r.GET("/", pages.Index)
	r.GET("/print", pages.Print)

	v1 := r.Group("/api/v1")

	reports := handler.NewReportHandler(d.Source, cfg.Report.FixedOffset, cfg.Report.NavOffset)
	v1.GET("/report", reports.GetReport)
	sections := v1.Group("/sections")
	{
		sections.GET("", reports.ListSections)
		sections.POST("/resolve", reports.ResolveSection)
	}

	exports := handler.NewExportHandler(d.Exports, d.Source)
	v1.GET("/export", exports.ListFormats)
	v1.GET("/export/:format", exports.Export)
}
