package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkdesk/billing"
)

func TestPaymentRecorded(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.PaymentRecorded(billing.KindHourly, "delta", 10)
	m.PaymentRecorded(billing.KindHourly, "delta", -4)
	m.PaymentRecorded(billing.KindVehicle, "absolute", 100)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PaymentsTotal.WithLabelValues("hourly", "delta")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.PaymentAmountTotal.WithLabelValues("hourly")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.PaymentAmountTotal.WithLabelValues("vehicle")))
}

func TestRenewalCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Renewed(false)
	m.Renewed(true)
	m.Renewed(true)
	m.PlanFallback("quarterly")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenewalsTotal.WithLabelValues("false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RenewalsTotal.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlanFallbacksTotal.WithLabelValues("quarterly")))
}

func TestTimerCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.TimerStarted()
	m.SessionSettled("timer")
	m.OrphansSwept(3)
	m.SetActiveTimers(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TimersStartedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsSettled.WithLabelValues("timer")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OrphansSweptTotal))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ActiveTimers))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/hourly/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler(registry))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hourly/abc", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/hourly/:id", "204")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "parkdesk_http_requests_total"))
}
