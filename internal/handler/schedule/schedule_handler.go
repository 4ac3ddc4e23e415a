// internal/handler/schedule_handler.go
package handler

import (
	"net/http"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/dinerozz/focus-guard-backend/internal/model/response/wrapper"
	"github.com/dinerozz/focus-guard-backend/internal/service/schedule"
	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	service schedule.ScheduleService
}

func NewScheduleHandler(service schedule.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// GetSchedule godoc
// @Summary      Get schedule configuration
// @Description  Quick settings plus the ordered custom rule list
// @Tags         /api/v1/admin/schedule
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=entity.ScheduleConfig}
// @Router       /schedule [get]
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.service.Config(),
		Success: true,
	})
}

// UpdateQuickSettings godoc
// @Summary      Update quick settings
// @Description  Replace quiet-hours / work-hours / weekend-mode toggles
// @Tags         /api/v1/admin/schedule
// @Accept       json
// @Produce      json
// @Param        settings  body      entity.QuickSettings  true  "Quick settings"
// @Success      200       {object}  wrapper.ResponseWrapper{data=entity.QuickSettings}
// @Failure      400       {object}  wrapper.ErrorWrapper
// @Failure      500       {object}  wrapper.ErrorWrapper
// @Router       /schedule/quick-settings [put]
func (h *ScheduleHandler) UpdateQuickSettings(c *gin.Context) {
	var qs entity.QuickSettings
	if err := c.ShouldBindJSON(&qs); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
			Success: false,
		})
		return
	}

	if err := h.service.UpdateQuickSettings(c.Request.Context(), qs); err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{
			Message: err.Error(),
			Success: false,
		})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: qs, Success: true})
}

// CreateRule godoc
// @Summary      Create a schedule rule
// @Tags         /api/v1/admin/schedule
// @Accept       json
// @Produce      json
// @Param        rule  body      entity.ScheduleRule  true  "Schedule rule"
// @Success      201   {object}  wrapper.ResponseWrapper{data=entity.ScheduleRule}
// @Failure      400   {object}  wrapper.ErrorWrapper
// @Failure      500   {object}  wrapper.ErrorWrapper
// @Router       /schedule/rules [post]
func (h *ScheduleHandler) CreateRule(c *gin.Context) {
	var rule entity.ScheduleRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
			Success: false,
		})
		return
	}

	created, err := h.service.AddRule(c.Request.Context(), rule)
	if err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "invalid rule action: "+string(rule.Action) {
			status = http.StatusBadRequest
		}
		c.JSON(status, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{Data: created, Success: true})
}

// UpdateRule godoc
// @Summary      Update a schedule rule
// @Tags         /api/v1/admin/schedule
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Rule ID"
// @Param        rule  body      entity.ScheduleRule  true  "Schedule rule"
// @Success      200   {object}  wrapper.ResponseWrapper{data=entity.ScheduleRule}
// @Failure      400   {object}  wrapper.ErrorWrapper
// @Failure      404   {object}  wrapper.ErrorWrapper
// @Router       /schedule/rules/{id} [put]
func (h *ScheduleHandler) UpdateRule(c *gin.Context) {
	var rule entity.ScheduleRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
			Success: false,
		})
		return
	}
	rule.ID = c.Param("id")

	updated, err := h.service.UpdateRule(c.Request.Context(), rule)
	if err != nil {
		if err.Error() == "rule not found" {
			c.JSON(http.StatusNotFound, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
			return
		}
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: updated, Success: true})
}

// DeleteRule godoc
// @Summary      Delete a schedule rule
// @Tags         /api/v1/admin/schedule
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  wrapper.SuccessWrapper
// @Failure      404  {object}  wrapper.ErrorWrapper
// @Router       /schedule/rules/{id} [delete]
func (h *ScheduleHandler) DeleteRule(c *gin.Context) {
	if err := h.service.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		if err.Error() == "rule not found" {
			c.JSON(http.StatusNotFound, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
			return
		}
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusOK, wrapper.SuccessWrapper{Message: "rule deleted", Success: true})
}
