package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"parkdesk/billing"
	"parkdesk/database"
	"parkdesk/services"
	"parkdesk/utils"
)

// Context keys set by the auth middleware.
const (
	ContextEmail = "email"
	ContextRole  = "role"
)

// Handler serves the parking API on top of a Service.
type Handler struct {
	svc    *services.Service
	signer *utils.SessionSigner
	log    *logrus.Logger
}

func New(svc *services.Service, signer *utils.SessionSigner, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{svc: svc, signer: signer, log: log}
}

// actor is the email of the admin making the request.
func actor(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

type listParams struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Filter string `form:"filter" binding:"omitempty,oneof=paid unpaid all"`
	Search string `form:"search" binding:"omitempty,max=64"`
	Status string `form:"status" binding:"omitempty,oneof=active expired all"`
	Total  bool   `form:"total"`
}

func (p listParams) query() database.ListQuery {
	q := database.ListQuery{Page: p.Page, Search: p.Search}
	if p.Filter != "all" {
		q.Filter = p.Filter
	}
	if p.Status != "all" {
		q.Status = p.Status
	}
	return q
}

// parseTime reads an optional date or timestamp in the deployment calendar.
func (h *Handler) parseTime(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := billing.ParseDate(*s, h.svc.Location())
	if err != nil {
		return nil, err
	}
	return &t, nil
}
