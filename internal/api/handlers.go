package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/db"
	"github.com/yanosDev/awqat/internal/models"
)

type handler struct {
	store   Store
	alarms  Alarms
	syncNow SyncRunner
	logger  zerolog.Logger
	now     func() time.Time
}

func (h *handler) listSchedules(c *gin.Context) {
	schedules, err := h.store.Schedules(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": schedules})
}

func (h *handler) getSchedule(c *gin.Context) {
	schedule, err := h.store.GetSchedule(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown schedule"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

type updateScheduleRequest struct {
	Enabled         *bool `json:"enabled"`
	RelativeMinutes *int  `json:"relative_minutes"`
}

func (h *handler) updateSchedule(c *gin.Context) {
	id := c.Param("id")
	if !models.PrayerEvent(id).Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown schedule"})
		return
	}

	var req updateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	current, err := h.store.GetSchedule(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown schedule"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	enabled := current.Enabled
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	relative := current.RelativeMinutes
	if req.RelativeMinutes != nil {
		relative = *req.RelativeMinutes
	}

	if err := h.store.UpdateSchedule(ctx, id, enabled, relative); err != nil {
		h.fail(c, err)
		return
	}

	updated, err := h.store.GetSchedule(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *handler) todayTimes(c *gin.Context) {
	ctx := c.Request.Context()

	location, err := h.store.LastLocation(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	if location == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no known location"})
		return
	}

	cityID, err := h.store.ResolveCityID(ctx, location)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "location not in directory"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	row, err := h.store.LoadTodayRow(ctx, cityID)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no prayer times cached for today"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": location, "city_id": cityID, "times": row})
}

func (h *handler) todayContent(c *gin.Context) {
	content, err := h.store.DailyContent(c.Request.Context(), h.now().YearDay())
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no daily content cached"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h *handler) listAlarms(c *gin.Context) {
	snapshot := h.alarms.Snapshot()
	out := make(map[string]any, len(snapshot))
	for code, reg := range snapshot {
		out[strconv.Itoa(code)] = reg
	}
	c.JSON(http.StatusOK, gin.H{"alarms": out})
}

func (h *handler) triggerSync(c *gin.Context) {
	if err := h.syncNow(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sync complete"})
}

func (h *handler) fail(c *gin.Context, err error) {
	h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
