package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelguard",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "travelguard",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "travelguard",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Safety-domain metrics
	PanicsTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travelguard",
		Subsystem: "safety",
		Name:      "panics_triggered_total",
		Help:      "Total manual SOS panic triggers",
	})

	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelguard",
		Subsystem: "safety",
		Name:      "alerts_raised_total",
		Help:      "Total safety alerts appended to the alert log",
	}, []string{"type"})

	MissedCheckins = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travelguard",
		Subsystem: "safety",
		Name:      "missed_checkins_total",
		Help:      "Total missed check-ins recorded",
	})

	LocationSamplesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travelguard",
		Subsystem: "safety",
		Name:      "location_samples_ingested_total",
		Help:      "Total traveler location samples ingested",
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelguard",
		Subsystem: "notify",
		Name:      "sent_total",
		Help:      "Total emergency notifications delivered",
	}, []string{"channel"})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelguard",
		Subsystem: "notify",
		Name:      "failed_total",
		Help:      "Total emergency notification send failures",
	}, []string{"channel"})

	EscalationsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "travelguard",
		Subsystem: "safety",
		Name:      "escalations_started_total",
		Help:      "Total panic escalation workflows started",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "travelguard",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelguard",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travelguard",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "travelguard",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "travelguard",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "travelguard",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
// Accepts an interface to keep this package free of a pgxpool import.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
