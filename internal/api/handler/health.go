package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reportdeck/reportdeck/consts"
)

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": consts.Version,
		"uptime":  consts.GetUptime().Round(time.Second).String(),
	})
}
