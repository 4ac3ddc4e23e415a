// internal/handler/events_handler.go
package handler

import (
	"fmt"
	"net/http"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/dinerozz/focus-guard-backend/internal/model/response/wrapper"
	"github.com/dinerozz/focus-guard-backend/internal/service/dispatcher"
	"github.com/gin-gonic/gin"
)

const maxBatchEvents = 500

type EventsHandler struct {
	dispatcher dispatcher.Dispatcher
}

func NewEventsHandler(d dispatcher.Dispatcher) *EventsHandler {
	return &EventsHandler{dispatcher: d}
}

// ReportEvent godoc
// @Summary      Report a browser event
// @Description  Apply one tab/window event to the scheduler's browser state
// @Tags         /api/v1/extension
// @Accept       json
// @Produce      json
// @Param        event  body      entity.TabEvent  true  "Tab event"
// @Success      200    {object}  wrapper.SuccessWrapper
// @Failure      400    {object}  wrapper.ErrorWrapper
// @Router       /events [post]
func (h *EventsHandler) ReportEvent(c *gin.Context) {
	var event entity.TabEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
			Success: false,
		})
		return
	}

	if err := h.dispatcher.HandleEvent(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: err.Error(),
			Success: false,
		})
		return
	}

	c.JSON(http.StatusOK, wrapper.SuccessWrapper{
		Message: "event applied",
		Success: true,
	})
}

// ReportEventBatch godoc
// @Summary      Report browser events in batch
// @Description  Apply a batch of tab/window events in reported order
// @Tags         /api/v1/extension
// @Accept       json
// @Produce      json
// @Param        events  body      entity.BatchTabEventsRequest  true  "Tab events"
// @Success      200     {object}  wrapper.SuccessWrapper
// @Failure      400     {object}  wrapper.ErrorWrapper
// @Router       /events/batch [post]
func (h *EventsHandler) ReportEventBatch(c *gin.Context) {
	var req entity.BatchTabEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
			Success: false,
		})
		return
	}

	if len(req.Events) == 0 {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "no events provided",
			Success: false,
		})
		return
	}
	if len(req.Events) > maxBatchEvents {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: fmt.Sprintf("too many events, maximum is %d", maxBatchEvents),
			Success: false,
		})
		return
	}

	for i, event := range req.Events {
		if err := h.dispatcher.HandleEvent(c.Request.Context(), event); err != nil {
			c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
				Message: fmt.Sprintf("event at index %d rejected: %s", i, err.Error()),
				Success: false,
			})
			return
		}
	}

	c.JSON(http.StatusOK, wrapper.SuccessWrapper{
		Message: fmt.Sprintf("%d events applied", len(req.Events)),
		Success: true,
	})
}
