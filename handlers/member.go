package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkdesk/utils"
)

type sessionResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login checks an admin's credentials and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badInput(c, err)
		return
	}

	user, err := h.svc.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	role := user.SessionRole()
	token, err := h.signer.Sign(user.Email, role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.setSessionCookie(c, token, int(h.signer.TTL().Seconds()))
	SuccessResponse(c, http.StatusOK, "logged in", sessionResponse{Email: user.Email, Role: role})
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	SuccessResponse(c, http.StatusOK, "logged out", nil)
}

// CurrentSession returns the admin behind the request.
func (h *Handler) CurrentSession(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "ok", sessionResponse{
		Email: c.GetString(ContextEmail),
		Role:  c.GetString(ContextRole),
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookie, value, maxAge, "/", "", c.Request.TLS != nil, true)
}
