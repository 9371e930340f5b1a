package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkdesk/billing"
)

type amountInput struct {
	Amount *Amount `json:"amount" binding:"required"`
}

// RecordPayment returns a handler that adds the posted amount to a record's paid amount.
func (h *Handler) RecordPayment(kind billing.RecordKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input amountInput
		if err := c.ShouldBindJSON(&input); err != nil {
			h.badInput(c, err)
			return
		}
		res, err := h.svc.RecordPayment(c.Request.Context(), kind, c.Param("id"), float64(*input.Amount))
		if err != nil {
			h.respondError(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "payment recorded", res)
	}
}

// SetPayment returns a handler that overwrites a record's paid amount.
func (h *Handler) SetPayment(kind billing.RecordKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input amountInput
		if err := c.ShouldBindJSON(&input); err != nil {
			h.badInput(c, err)
			return
		}
		res, err := h.svc.SetPayment(c.Request.Context(), kind, c.Param("id"), float64(*input.Amount))
		if err != nil {
			h.respondError(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "payment updated", res)
	}
}

// RenewVehicle renews an expired subscription.
func (h *Handler) RenewVehicle(c *gin.Context) {
	res, err := h.svc.RenewVehicle(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "vehicle renewed", res)
}

// RenewVehicleWithPayment renews a subscription and records the payment for the new period.
func (h *Handler) RenewVehicleWithPayment(c *gin.Context) {
	var input amountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badInput(c, err)
		return
	}
	res, err := h.svc.RenewVehicleWithPayment(c.Request.Context(), c.Param("id"), float64(*input.Amount), actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "vehicle renewed", res)
}

// Dashboard returns this month's subscription summary and session revenue.
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", d)
}
