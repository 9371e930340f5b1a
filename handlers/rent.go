package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkdesk/billing"
	"parkdesk/services"
)

// CreateHourlySession records a finished hourly session entered by hand.
func (h *Handler) CreateHourlySession(c *gin.Context) {
	var input struct {
		VehicleNumber string  `json:"vehicleNumber" binding:"required,vehicle_number"`
		HourlyRate    *Amount `json:"hourlyRate"`
		StartTime     string  `json:"startTime" binding:"required"`
		EndTime       *string `json:"endTime"`
		Paid          bool    `json:"paid"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badInput(c, err)
		return
	}

	start, err := billing.ParseDate(input.StartTime, h.svc.Location())
	if err != nil {
		h.respondError(c, err)
		return
	}
	end, err := h.parseTime(input.EndTime)
	if err != nil {
		h.respondError(c, err)
		return
	}

	session, err := h.svc.CreateHourlySession(c.Request.Context(), services.HourlyInput{
		VehicleNumber: input.VehicleNumber,
		HourlyRate:    input.HourlyRate.ptr(),
		StartTime:     start,
		EndTime:       end,
		Paid:          input.Paid,
	}, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "hourly session recorded", session)
}

// ListHourlySessions pages through hourly sessions, or returns the paid total with ?total=true.
func (h *Handler) ListHourlySessions(c *gin.Context) {
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.badInput(c, err)
		return
	}

	if params.Total {
		total, err := h.svc.HourlyPaidTotal(c.Request.Context())
		if err != nil {
			h.respondError(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "ok", gin.H{"total": total})
		return
	}

	page, err := h.svc.ListHourlySessions(c.Request.Context(), params.query())
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", page)
}

// GetHourlySession returns one hourly session.
func (h *Handler) GetHourlySession(c *gin.Context) {
	session, err := h.svc.GetHourlySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", session)
}

// UpdateHourlySession edits the billed total or hours of a session.
func (h *Handler) UpdateHourlySession(c *gin.Context) {
	var input struct {
		TotalPrice    *Amount `json:"totalPrice"`
		BillableHours *int    `json:"billableHours"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badInput(c, err)
		return
	}

	session, err := h.svc.UpdateHourlySession(c.Request.Context(), c.Param("id"), services.HourlyPatch{
		TotalPrice:    input.TotalPrice.ptr(),
		BillableHours: input.BillableHours,
	}, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "hourly session updated", session)
}

// DeleteHourlySession removes an hourly session.
func (h *Handler) DeleteHourlySession(c *gin.Context) {
	if err := h.svc.DeleteHourlySession(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "hourly session deleted", nil)
}

// CreateNightSession records an overnight stay.
func (h *Handler) CreateNightSession(c *gin.Context) {
	var input struct {
		VehicleNumber string  `json:"vehicleNumber" binding:"required,vehicle_number"`
		Timestamp     *string `json:"timestamp"`
		Price         *Amount `json:"price"`
		Paid          bool    `json:"paid"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badInput(c, err)
		return
	}

	ts, err := h.parseTime(input.Timestamp)
	if err != nil {
		h.respondError(c, err)
		return
	}

	night, err := h.svc.CreateNightSession(c.Request.Context(), services.NightInput{
		VehicleNumber: input.VehicleNumber,
		Timestamp:     ts,
		Price:         input.Price.ptr(),
		Paid:          input.Paid,
	}, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "night session recorded", night)
}

// ListNightSessions pages through night sessions, or returns the paid total with ?total=true.
func (h *Handler) ListNightSessions(c *gin.Context) {
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.badInput(c, err)
		return
	}

	if params.Total {
		total, err := h.svc.NightPaidTotal(c.Request.Context())
		if err != nil {
			h.respondError(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "ok", gin.H{"total": total})
		return
	}

	page, err := h.svc.ListNightSessions(c.Request.Context(), params.query())
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", page)
}

// GetNightSession returns one night session.
func (h *Handler) GetNightSession(c *gin.Context) {
	night, err := h.svc.GetNightSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", night)
}

// UpdateNightSession edits the price or time of a night session.
func (h *Handler) UpdateNightSession(c *gin.Context) {
	var input struct {
		Price     *Amount `json:"price"`
		Timestamp *string `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badInput(c, err)
		return
	}

	ts, err := h.parseTime(input.Timestamp)
	if err != nil {
		h.respondError(c, err)
		return
	}

	night, err := h.svc.UpdateNightSession(c.Request.Context(), c.Param("id"), services.NightPatch{
		Price:     input.Price.ptr(),
		Timestamp: ts,
	}, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "night session updated", night)
}

// DeleteNightSession removes a night session.
func (h *Handler) DeleteNightSession(c *gin.Context) {
	if err := h.svc.DeleteNightSession(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		h.respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "night session deleted", nil)
}
