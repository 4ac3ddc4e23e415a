// internal/handler/notifications_handler.go
package handler

import (
	"net/http"

	"github.com/dinerozz/focus-guard-backend/internal/model/response/wrapper"
	"github.com/dinerozz/focus-guard-backend/internal/service/delivery"
	"github.com/gin-gonic/gin"
)

type NotificationsHandler struct {
	outbox delivery.Outbox
}

func NewNotificationsHandler(outbox delivery.Outbox) *NotificationsHandler {
	return &NotificationsHandler{outbox: outbox}
}

// DrainNotifications godoc
// @Summary      Drain pending notifications
// @Description  Returns and clears queued overlay/system notifications; each
// @Description  poll also refreshes the overlay listener heartbeat
// @Tags         /api/v1/extension
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=[]entity.Notification}
// @Router       /notifications [get]
func (h *NotificationsHandler) DrainNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    h.outbox.Drain(),
		Success: true,
	})
}
