// Package metrics exposes authentication and HTTP counters to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const namespace = "tasktracker"

// Collector implements usecase.AuthEvents and counts HTTP responses.
type Collector struct {
	registrations  *prometheus.CounterVec
	logins         *prometheus.CounterVec
	logouts        *prometheus.CounterVec
	authorizations *prometheus.CounterVec
	responses      *prometheus.CounterVec
	latency        prometheus.Histogram
	sweptSessions  prometheus.Counter
}

// NewCollector registers the counters on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		logouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Logout attempts by outcome.",
		}, []string{"outcome"}),
		authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_checks_total",
			Help:      "Token and ownership checks by check and outcome.",
		}, []string{"check", "outcome"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_responses_total",
			Help:      "HTTP responses by status code.",
		}, []string{"status_code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		sweptSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_swept_total",
			Help:      "Expired sessions removed by the sweeper.",
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.logouts,
		c.authorizations,
		c.responses,
		c.latency,
		c.sweptSessions,
	)
	return c
}

// RegisterSessionGauge exports the live session count.
func RegisterSessionGauge(reg prometheus.Registerer, count func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Sessions currently held by the registry.",
	}, func() float64 {
		return float64(count())
	}))
}

func (c *Collector) Registration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

func (c *Collector) Login(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) Logout(outcome string) {
	c.logouts.WithLabelValues(outcome).Inc()
}

func (c *Collector) Authorization(check, outcome string) {
	c.authorizations.WithLabelValues(check, outcome).Inc()
}

func (c *Collector) SessionsSwept(n int) {
	c.sweptSessions.Add(float64(n))
}

// Middleware records status and latency of every request.
func (c *Collector) Middleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		c.latency.Observe(time.Since(start).Seconds())
		c.responses.WithLabelValues(strconv.Itoa(ctx.Response.StatusCode())).Inc()
	}
}

// Handler serves the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
