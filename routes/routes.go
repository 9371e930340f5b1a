package routes

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"parkdesk/billing"
	"parkdesk/handlers"
	"parkdesk/metrics"
	"parkdesk/models"
	"parkdesk/utils"
)

// AuthMiddleware verifies the session cookie and puts the admin's email and role in the context.
func AuthMiddleware(signer *utils.SessionSigner, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(utils.SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.APIResponse{
				Message: "not logged in",
				Error:   "session cookie is required",
			})
			return
		}

		claims, err := signer.Parse(token)
		if err != nil {
			log.WithError(err).Debug("rejected session token")
			msg := "invalid session"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "session has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.APIResponse{
				Message: msg,
				Error:   err.Error(),
			})
			return
		}

		role := claims.Role
		if role != models.RoleSuperAdmin {
			role = models.RoleAdmin
		}
		c.Set(handlers.ContextEmail, claims.Email)
		c.Set(handlers.ContextRole, role)
		c.Next()
	}
}

// RoleMiddleware lets through the given roles. super-admin passes every gate.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(handlers.ContextRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.APIResponse{
				Message: "not logged in",
				Error:   "role not found in context",
			})
			return
		}
		if role == models.RoleSuperAdmin || slices.Contains(allowedRoles, role) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, handlers.APIResponse{
			Message: "insufficient permissions",
			Error:   "role " + role + " may not access this endpoint",
		})
	}
}

// Path registers the API under router.
func Path(router *gin.RouterGroup, h *handlers.Handler, signer *utils.SessionSigner, log *logrus.Logger) {
	handlers.RegisterValidators()

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Public
	router.POST("/session", h.Login)
	router.DELETE("/session", h.Logout)

	auth := router.Group("")
	auth.Use(AuthMiddleware(signer, log))
	admin := RoleMiddleware(models.RoleAdmin)
	superAdmin := RoleMiddleware(models.RoleSuperAdmin)

	auth.GET("/session", h.CurrentSession)

	timers := auth.Group("/active-hourly", admin)
	{
		timers.POST("", h.StartTimer)
		timers.GET("", h.ListTimers)
		timers.POST("/:id/stop", h.StopTimer)
		timers.DELETE("/:id", h.CancelTimer)
	}

	hourly := auth.Group("/hourly", admin)
	{
		hourly.POST("", h.CreateHourlySession)
		hourly.GET("", h.ListHourlySessions)
		hourly.GET("/:id", h.GetHourlySession)
		hourly.PATCH("/:id", superAdmin, h.UpdateHourlySession)
		hourly.DELETE("/:id", superAdmin, h.DeleteHourlySession)
		hourly.POST("/:id/payment", h.RecordPayment(billing.KindHourly))
		hourly.PUT("/:id/payment", h.SetPayment(billing.KindHourly))
	}

	night := auth.Group("/night", admin)
	{
		night.POST("", h.CreateNightSession)
		night.GET("", h.ListNightSessions)
		night.GET("/:id", h.GetNightSession)
		night.PATCH("/:id", superAdmin, h.UpdateNightSession)
		night.DELETE("/:id", superAdmin, h.DeleteNightSession)
		night.POST("/:id/payment", h.RecordPayment(billing.KindNight))
		night.PUT("/:id/payment", h.SetPayment(billing.KindNight))
	}

	vehicles := auth.Group("/vehicles", admin)
	{
		vehicles.POST("", h.RegisterVehicle)
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.PATCH("/:id", superAdmin, h.UpdateVehicle)
		vehicles.DELETE("/:id", superAdmin, h.DeleteVehicle)
		vehicles.POST("/:id/payment", h.RecordPayment(billing.KindVehicle))
		vehicles.PUT("/:id/payment", h.SetPayment(billing.KindVehicle))
		vehicles.POST("/:id/renew", h.RenewVehicle)
		vehicles.POST("/:id/renew-payment", h.RenewVehicleWithPayment)
	}

	auth.GET("/dashboard", superAdmin, h.Dashboard)
}

// NewRouter builds the gin engine: access log, recovery, request metrics, /metrics and /api.
func NewRouter(h *handlers.Handler, signer *utils.SessionSigner, m *metrics.Metrics, gatherer prometheus.Gatherer, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(log.Writer()), gin.Recovery())
	if m != nil {
		r.Use(m.Middleware())
	}
	if gatherer != nil {
		r.GET("/metrics", metrics.Handler(gatherer))
	}

	api := r.Group("/api")
	Path(api, h, signer, log)
	return r
}
