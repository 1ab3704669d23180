// Package api exposes the daemon's local admin surface.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/alarm"
	"github.com/yanosDev/awqat/internal/metrics"
	"github.com/yanosDev/awqat/internal/models"
)

// Config holds configuration for the admin router.
type Config struct {
	// Version information for the version endpoint.
	Version string
	Commit  string
}

// Store is the subset of the local store the handlers read and write.
type Store interface {
	Schedules(ctx context.Context) ([]models.Schedule, error)
	GetSchedule(ctx context.Context, id string) (models.Schedule, error)
	UpdateSchedule(ctx context.Context, id string, enabled bool, relativeMinutes int) error
	LastLocation(ctx context.Context) (string, error)
	ResolveCityID(ctx context.Context, locationName string) (int, error)
	LoadTodayRow(ctx context.Context, cityID int) (models.PrayerTime, error)
	DailyContent(ctx context.Context, dayOfYear int) (models.DailyContent, error)
}

// Alarms exposes the currently armed registrations.
type Alarms interface {
	Snapshot() map[int]alarm.Registration
}

// SyncRunner runs one scheduling pass on demand.
type SyncRunner func(ctx context.Context) error

// Router wraps a Gin engine with the admin routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
}

// NewRouter creates the admin router.
func NewRouter(cfg Config, store Store, alarms Alarms, syncNow SyncRunner, m *metrics.Metrics, logger zerolog.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "api_router").Logger(),
	}

	r.Engine.Use(gin.Recovery())
	r.Engine.Use(requestLogger(logger))

	r.Engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.Engine.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.Version, "commit": cfg.Commit})
	})
	if m != nil {
		r.Engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	h := &handler{store: store, alarms: alarms, syncNow: syncNow, logger: logger, now: time.Now}
	v1 := r.Engine.Group("/api/v1")
	v1.GET("/schedules", h.listSchedules)
	v1.GET("/schedules/:id", h.getSchedule)
	v1.PATCH("/schedules/:id", h.updateSchedule)
	v1.GET("/times/today", h.todayTimes)
	v1.GET("/content/today", h.todayContent)
	v1.GET("/alarms", h.listAlarms)
	v1.POST("/sync", h.triggerSync)

	r.logger.Info().Msg("admin router initialized")
	return r
}

// requestLogger is middleware that logs HTTP requests.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}
