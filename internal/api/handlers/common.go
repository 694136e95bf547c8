package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lanbix/interview-backend/internal/utils"
)

// Envelope is the platform response shape: {success, message|error, data?}.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func writeError(c *gin.Context, err error) {
	c.JSON(utils.HTTPStatus(err), Envelope{
		Success: false,
		Error:   utils.UserMessage(err),
	})
}

func requireUserID(c *gin.Context) (string, bool) {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "Unauthorized", nil))
	return "", false
}

// Health is the per-service liveness endpoint.
func Health(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeSuccess(c, http.StatusOK, "", gin.H{
			"service": service,
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}
