// Package api exposes the status HTTP surface served while the
// monitor runs on a schedule.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/fpdswatch/config"
	"github.com/use-agent/fpdswatch/monitor"
)

// NewRouter creates a configured Gin engine. Both endpoints are
// unauthenticated: they expose run metadata only, for schedulers and
// liveness probes.
func NewRouter(mon *monitor.Monitor, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(startTime).Round(time.Second).String(),
		})
	})

	r.GET("/api/v1/status", func(c *gin.Context) {
		snap := mon.Snapshot()
		status := "idle"
		if snap.Runs > 0 {
			status = snap.LastOutcome
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   status,
			"uptime":   time.Since(startTime).Round(time.Second).String(),
			"schedule": cfg.Monitor.Schedule,
			"last":     snap,
		})
	})

	return r
}
