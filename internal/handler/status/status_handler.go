// internal/handler/status_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/dinerozz/focus-guard-backend/internal/model/response/wrapper"
	"github.com/dinerozz/focus-guard-backend/internal/service/dispatcher"
	"github.com/dinerozz/focus-guard-backend/internal/service/guard"
	"github.com/dinerozz/focus-guard-backend/internal/service/tracker"
	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	dispatcher dispatcher.Dispatcher
	tracker    tracker.SessionTracker
	guard      guard.CooldownGuard
}

func NewStatusHandler(d dispatcher.Dispatcher, tr tracker.SessionTracker, g guard.CooldownGuard) *StatusHandler {
	return &StatusHandler{dispatcher: d, tracker: tr, guard: g}
}

type TrackerStatus struct {
	ActiveDomain string              `json:"activeDomain,omitempty"`
	Paused       bool                `json:"paused"`
	SnoozeUntil  *time.Time          `json:"snoozeUntil,omitempty"`
	Today        []entity.DomainTime `json:"today"`
}

type SnoozeRequest struct {
	Minutes int `json:"minutes" binding:"required,min=1,max=1440"`
}

// GetStatus godoc
// @Summary      Tracker status
// @Description  Active domain, pause/snooze state and today's per-domain time
// @Tags         /api/v1/extension
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=TrackerStatus}
// @Router       /status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	now := time.Now()
	today := entity.DayKey(now)

	status := TrackerStatus{
		ActiveDomain: h.tracker.ActiveDomain(),
		Paused:       h.dispatcher.Paused(),
		Today:        []entity.DomainTime{},
	}

	if until := h.guard.State().SnoozeUntil; now.Before(until) {
		status.SnoozeUntil = &until
	}

	for domain := range h.tracker.Snapshot()[today] {
		status.Today = append(status.Today, entity.DomainTime{
			Domain:    domain,
			ElapsedMs: h.tracker.GetElapsedToday(domain),
		})
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: status, Success: true})
}

// Pause godoc
// @Summary      Pause tracking
// @Description  Cooperatively stop tracking; the open session is flushed first
// @Tags         /api/v1/extension
// @Produce      json
// @Success      200  {object}  wrapper.SuccessWrapper
// @Failure      500  {object}  wrapper.ErrorWrapper
// @Router       /tracking/pause [post]
func (h *StatusHandler) Pause(c *gin.Context) {
	if err := h.dispatcher.Pause(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{
			Message: err.Error(),
			Success: false,
		})
		return
	}
	c.JSON(http.StatusOK, wrapper.SuccessWrapper{Message: "tracking paused", Success: true})
}

// Resume godoc
// @Summary      Resume tracking
// @Tags         /api/v1/extension
// @Produce      json
// @Success      200  {object}  wrapper.SuccessWrapper
// @Router       /tracking/resume [post]
func (h *StatusHandler) Resume(c *gin.Context) {
	if err := h.dispatcher.Resume(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{
			Message: err.Error(),
			Success: false,
		})
		return
	}
	c.JSON(http.StatusOK, wrapper.SuccessWrapper{Message: "tracking resumed", Success: true})
}

// Snooze godoc
// @Summary      Snooze interventions
// @Description  Suppress all interventions globally until the window expires
// @Tags         /api/v1/extension
// @Accept       json
// @Produce      json
// @Param        snooze  body      SnoozeRequest  true  "Snooze window"
// @Success      200     {object}  wrapper.SuccessWrapper
// @Failure      400     {object}  wrapper.ErrorWrapper
// @Failure      500     {object}  wrapper.ErrorWrapper
// @Router       /snooze [post]
func (h *StatusHandler) Snooze(c *gin.Context) {
	var req SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
			Success: false,
		})
		return
	}

	until := time.Now().Add(time.Duration(req.Minutes) * time.Minute)
	if err := h.guard.Snooze(c.Request.Context(), until); err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{
			Message: err.Error(),
			Success: false,
		})
		return
	}

	c.JSON(http.StatusOK, wrapper.SuccessWrapper{Message: "interventions snoozed", Success: true})
}

// CancelSnooze godoc
// @Summary      Cancel an active snooze
// @Tags         /api/v1/extension
// @Produce      json
// @Success      200  {object}  wrapper.SuccessWrapper
// @Router       /snooze [delete]
func (h *StatusHandler) CancelSnooze(c *gin.Context) {
	if err := h.guard.CancelSnooze(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{
			Message: err.Error(),
			Success: false,
		})
		return
	}
	c.JSON(http.StatusOK, wrapper.SuccessWrapper{Message: "snooze canceled", Success: true})
}
