// internal/handler/goals_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/dinerozz/focus-guard-backend/internal/model/response/wrapper"
	"github.com/dinerozz/focus-guard-backend/internal/service/goal"
	"github.com/gin-gonic/gin"
)

type GoalsHandler struct {
	service goal.GoalService
}

func NewGoalsHandler(service goal.GoalService) *GoalsHandler {
	return &GoalsHandler{service: service}
}

// GetGoals godoc
// @Summary      List goals
// @Tags         /api/v1/admin/goals
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=[]entity.Goal}
// @Router       /goals [get]
func (h *GoalsHandler) GetGoals(c *gin.Context) {
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.service.Goals(),
		Success: true,
	})
}

// GetProgress godoc
// @Summary      Goal progress
// @Description  Current progress of every enabled goal; percentages are unclamped
// @Tags         /api/v1/admin/goals
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=[]entity.GoalProgress}
// @Router       /goals/progress [get]
func (h *GoalsHandler) GetProgress(c *gin.Context) {
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.service.Progress(time.Now()),
		Success: true,
	})
}

// CreateGoal godoc
// @Summary      Create a goal
// @Tags         /api/v1/admin/goals
// @Accept       json
// @Produce      json
// @Param        goal  body      entity.Goal  true  "Goal"
// @Success      201   {object}  wrapper.ResponseWrapper{data=entity.Goal}
// @Failure      400   {object}  wrapper.ErrorWrapper
// @Failure      500   {object}  wrapper.ErrorWrapper
// @Router       /goals [post]
func (h *GoalsHandler) CreateGoal(c *gin.Context) {
	var g entity.Goal
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
			Success: false,
		})
		return
	}

	created, err := h.service.CreateGoal(c.Request.Context(), g)
	if err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{Data: created, Success: true})
}

// UpdateGoal godoc
// @Summary      Update a goal
// @Tags         /api/v1/admin/goals
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Goal ID"
// @Param        goal  body      entity.Goal  true  "Goal"
// @Success      200   {object}  wrapper.ResponseWrapper{data=entity.Goal}
// @Failure      400   {object}  wrapper.ErrorWrapper
// @Failure      404   {object}  wrapper.ErrorWrapper
// @Router       /goals/{id} [put]
func (h *GoalsHandler) UpdateGoal(c *gin.Context) {
	var g entity.Goal
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
			Success: false,
		})
		return
	}
	g.ID = c.Param("id")

	updated, err := h.service.UpdateGoal(c.Request.Context(), g)
	if err != nil {
		if err.Error() == "goal not found" {
			c.JSON(http.StatusNotFound, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
			return
		}
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{Data: updated, Success: true})
}

// DeleteGoal godoc
// @Summary      Delete a goal
// @Tags         /api/v1/admin/goals
// @Produce      json
// @Param        id   path      string  true  "Goal ID"
// @Success      200  {object}  wrapper.SuccessWrapper
// @Failure      404  {object}  wrapper.ErrorWrapper
// @Router       /goals/{id} [delete]
func (h *GoalsHandler) DeleteGoal(c *gin.Context) {
	if err := h.service.DeleteGoal(c.Request.Context(), c.Param("id")); err != nil {
		if err.Error() == "goal not found" {
			c.JSON(http.StatusNotFound, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
			return
		}
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{Message: err.Error(), Success: false})
		return
	}

	c.JSON(http.StatusOK, wrapper.SuccessWrapper{Message: "goal deleted", Success: true})
}
