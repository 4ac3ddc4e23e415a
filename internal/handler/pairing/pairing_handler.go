// internal/handler/pairing_handler.go
package handler

import (
	"net/http"

	"github.com/dinerozz/focus-guard-backend/internal/model/response/wrapper"
	"github.com/dinerozz/focus-guard-backend/internal/service/pairing"
	"github.com/gin-gonic/gin"
)

type PairingHandler struct {
	service pairing.PairingService
}

func NewPairingHandler(service pairing.PairingService) *PairingHandler {
	return &PairingHandler{service: service}
}

type AdminAuthRequest struct {
	Password string `json:"password" binding:"required"`
}

type RegenerateKeyResponse struct {
	APIKey string `json:"apiKey"`
}

// AuthenticateAdmin godoc
// @Summary      Admin login
// @Description  Exchange the admin password for a session token cookie
// @Tags         /api/v1/admin
// @Accept       json
// @Produce      json
// @Param        credentials  body      AdminAuthRequest  true  "Admin password"
// @Success      200          {object}  wrapper.SuccessWrapper
// @Failure      400          {object}  wrapper.ErrorWrapper
// @Failure      401          {object}  wrapper.ErrorWrapper
// @Router       /auth [post]
func (h *PairingHandler) AuthenticateAdmin(c *gin.Context) {
	var req AdminAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
			Success: false,
		})
		return
	}

	token, err := h.service.AuthenticateAdmin(req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{
			Message: err.Error(),
			Success: false,
		})
		return
	}

	c.SetCookie("token", token, 72*3600, "/", "", false, true)
	c.JSON(http.StatusOK, wrapper.SuccessWrapper{Message: "authenticated", Success: true})
}

// RegenerateAPIKey godoc
// @Summary      Regenerate the extension API key
// @Description  Invalidates the current pairing and returns a fresh key
// @Tags         /api/v1/admin
// @Produce      json
// @Success      200  {object}  wrapper.ResponseWrapper{data=RegenerateKeyResponse}
// @Failure      500  {object}  wrapper.ErrorWrapper
// @Router       /pairing/regenerate-key [post]
func (h *PairingHandler) RegenerateAPIKey(c *gin.Context) {
	key, err := h.service.RegenerateAPIKey(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{
			Message: err.Error(),
			Success: false,
		})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    RegenerateKeyResponse{APIKey: key},
		Success: true,
	})
}
