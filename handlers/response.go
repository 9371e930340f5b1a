package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkdesk/billing"
	"parkdesk/services"
)

// APIResponse is the envelope of every API response.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SuccessResponse writes a successful response.
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes a failed response.
func ErrorResponse(c *gin.Context, statusCode int, message string, err string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Message: message,
		Error:   err,
	})
}

// StatusCode maps an error to the HTTP status it is reported with.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, billing.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, billing.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, billing.ErrState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError reports err with the status of its kind. Causes of server errors are logged,
// not returned.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		ErrorResponse(c, status, billing.Message(err), "internal server error")
		return
	}
	ErrorResponse(c, status, billing.Message(err), err.Error())
}

func (h *Handler) badInput(c *gin.Context, err error) {
	ErrorResponse(c, http.StatusBadRequest, "invalid input", err.Error())
}
