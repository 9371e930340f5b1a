package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkdesk/services"
)

// StartTimer starts an hourly timer for a vehicle.
func (h *Handler) StartTimer(c *gin.Context) {
	var input struct {
		VehicleNumber string  `json:"vehicleNumber" binding:"required,vehicle_number"`
		HourlyRate    *Amount `json:"hourlyRate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badInput(c, err)
		return
	}

	timer, err := h.svc.StartTimer(c.Request.Context(), services.StartTimerInput{
		VehicleNumber: input.VehicleNumber,
		HourlyRate:    input.HourlyRate.ptr(),
	}, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "timer started", timer)
}

// ListTimers lists running timers with their fee so far.
func (h *Handler) ListTimers(c *gin.Context) {
	timers, err := h.svc.ListTimers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", timers)
}

// StopTimer settles a timer into an hourly session.
func (h *Handler) StopTimer(c *gin.Context) {
	var input struct {
		Paid bool `json:"paid"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			h.badInput(c, err)
			return
		}
	}

	session, err := h.svc.StopTimer(c.Request.Context(), c.Param("id"), input.Paid, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "timer stopped", session)
}

// CancelTimer discards a timer without billing it.
func (h *Handler) CancelTimer(c *gin.Context) {
	if err := h.svc.CancelTimer(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "timer cancelled", nil)
}
