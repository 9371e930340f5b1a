package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parkdesk/billing"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Billing metrics
	PaymentsTotal      *prometheus.CounterVec
	PaymentAmountTotal *prometheus.CounterVec
	RenewalsTotal      *prometheus.CounterVec
	PlanFallbacksTotal *prometheus.CounterVec

	// Timer metrics
	TimersStartedTotal prometheus.Counter
	SessionsSettled    *prometheus.CounterVec
	OrphansSweptTotal  prometheus.Counter
	ActiveTimers       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parkdesk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parkdesk_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		PaymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parkdesk_payments_total",
				Help: "Payments written, by record kind and mode (delta or absolute)",
			},
			[]string{"kind", "mode"},
		),
		PaymentAmountTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parkdesk_payment_amount_total",
				Help: "Sum of positive payment deltas and absolute amounts written",
			},
			[]string{"kind"},
		),
		RenewalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parkdesk_renewals_total",
				Help: "Subscription renewals, by whether a payment was taken",
			},
			[]string{"with_payment"},
		),
		PlanFallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parkdesk_plan_fallbacks_total",
				Help: "Renewals of unrecognised plan types computed as monthly",
			},
			[]string{"plan_type"},
		),
		TimersStartedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parkdesk_timers_started_total",
				Help: "Hourly timers started",
			},
		),
		SessionsSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parkdesk_sessions_settled_total",
				Help: "Hourly sessions created, by source (timer or manual)",
			},
			[]string{"source"},
		),
		OrphansSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parkdesk_orphan_timers_swept_total",
				Help: "Active timers removed by the sweep after their session had been written",
			},
		),
		ActiveTimers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "parkdesk_active_timers",
				Help: "Active timers seen by the last listing or sweep",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PaymentsTotal,
		m.PaymentAmountTotal,
		m.RenewalsTotal,
		m.PlanFallbacksTotal,
		m.TimersStartedTotal,
		m.SessionsSettled,
		m.OrphansSweptTotal,
		m.ActiveTimers,
	)
	return m
}

// PaymentRecorded implements billing.Observer.
func (m *Metrics) PaymentRecorded(kind billing.RecordKind, mode string, amount float64) {
	m.PaymentsTotal.WithLabelValues(string(kind), mode).Inc()
	if amount > 0 {
		m.PaymentAmountTotal.WithLabelValues(string(kind)).Add(amount)
	}
}

// Renewed implements billing.RenewalObserver.
func (m *Metrics) Renewed(withPayment bool) {
	m.RenewalsTotal.WithLabelValues(strconv.FormatBool(withPayment)).Inc()
}

// PlanFallback implements billing.RenewalObserver.
func (m *Metrics) PlanFallback(plan billing.PlanType) {
	m.PlanFallbacksTotal.WithLabelValues(string(plan)).Inc()
}

func (m *Metrics) TimerStarted() {
	m.TimersStartedTotal.Inc()
}

func (m *Metrics) SessionSettled(source string) {
	m.SessionsSettled.WithLabelValues(source).Inc()
}

func (m *Metrics) OrphansSwept(n int) {
	m.OrphansSweptTotal.Add(float64(n))
}

func (m *Metrics) SetActiveTimers(n int) {
	m.ActiveTimers.Set(float64(n))
}

// Middleware records request counts and latency. Paths are gin route templates, not raw URLs.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

var (
	_ billing.Observer        = (*Metrics)(nil)
	_ billing.RenewalObserver = (*Metrics)(nil)
)
