package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkdesk/billing"
	"parkdesk/services"
)

// RegisterVehicle registers a subscription vehicle.
func (h *Handler) RegisterVehicle(c *gin.Context) {
	var input struct {
		Name          string  `json:"name" binding:"required,max=100"`
		VehicleNumber string  `json:"vehicleNumber" binding:"required,vehicle_number"`
		Phone         string  `json:"phone" binding:"required,max=32"`
		RegisterDate  string  `json:"registerDate" binding:"required"`
		PlanType      string  `json:"planType" binding:"max=20"`
		Price         *Amount `json:"price" binding:"required"`
		Notes         string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badInput(c, err)
		return
	}

	registerDate, err := billing.ParseDate(input.RegisterDate, h.svc.Location())
	if err != nil {
		h.respondError(c, err)
		return
	}

	vehicle, err := h.svc.RegisterVehicle(c.Request.Context(), services.VehicleInput{
		Name:          input.Name,
		VehicleNumber: input.VehicleNumber,
		Phone:         input.Phone,
		RegisterDate:  registerDate,
		PlanType:      input.PlanType,
		Price:         float64(*input.Price),
		Notes:         input.Notes,
	}, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "vehicle registered", vehicle)
}

// ListVehicles pages through subscription vehicles.
func (h *Handler) ListVehicles(c *gin.Context) {
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.badInput(c, err)
		return
	}
	page, err := h.svc.ListVehicles(c.Request.Context(), params.query())
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", page)
}

// GetVehicle returns a vehicle with its renewal history.
func (h *Handler) GetVehicle(c *gin.Context) {
	vehicle, err := h.svc.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", vehicle)
}

// UpdateVehicle edits a subscription vehicle.
func (h *Handler) UpdateVehicle(c *gin.Context) {
	var input struct {
		Name          *string `json:"name" binding:"omitempty,max=100"`
		VehicleNumber *string `json:"vehicleNumber" binding:"omitempty,vehicle_number"`
		Phone         *string `json:"phone" binding:"omitempty,max=32"`
		PlanType      *string `json:"planType" binding:"omitempty,max=20"`
		RegisterDate  *string `json:"registerDate"`
		Price         *Amount `json:"price"`
		Notes         *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badInput(c, err)
		return
	}

	registerDate, err := h.parseTime(input.RegisterDate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	vehicle, err := h.svc.UpdateVehicle(c.Request.Context(), c.Param("id"), services.VehiclePatch{
		Name:          input.Name,
		VehicleNumber: input.VehicleNumber,
		Phone:         input.Phone,
		PlanType:      input.PlanType,
		RegisterDate:  registerDate,
		Price:         input.Price.ptr(),
		Notes:         input.Notes,
	}, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "vehicle updated", vehicle)
}

// DeleteVehicle removes a vehicle and its renewal history.
func (h *Handler) DeleteVehicle(c *gin.Context) {
	if err := h.svc.DeleteVehicle(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "vehicle deleted", nil)
}
