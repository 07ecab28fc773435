package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Config configures metric const labels.
type Config struct {
	ServiceName string
	Environment string
}

// HTTPMetrics exposes request-level instruments.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers HTTP instruments on the default registry.
func NewHTTPMetrics(cfg Config) *HTTPMetrics {
	constLabels := constLabels(cfg)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "alerts_http_requests_total",
		Help:        "HTTP requests by route, method and status.",
		ConstLabels: constLabels,
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "alerts_http_request_duration_seconds",
		Help:        "HTTP request latency by route.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"route", "method"})

	requests = mustRegisterCounterVec(prometheus.DefaultRegisterer, requests)
	duration = mustRegisterHistogramVec(prometheus.DefaultRegisterer, duration)

	return &HTTPMetrics{
		requests: requests,
		duration: duration,
	}
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.requests.WithLabelValues(route, method, status).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "kickwatch-alerts"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

func mustRegisterCounterVec(registerer prometheus.Registerer, vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := registerer.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if asAlreadyRegistered(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		panic(err)
	}
	return vec
}

func mustRegisterHistogramVec(registerer prometheus.Registerer, vec *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := registerer.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if asAlreadyRegistered(err, &are) {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		panic(err)
	}
	return vec
}

func asAlreadyRegistered(err error, target *prometheus.AlreadyRegisteredError) bool {
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		*target = are
		return true
	}
	return false
}
