package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricLocationLatency = "safety.location_latency"
	MetricStatusStaleness = "safety.status_age_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricPanicsTriggered  = "business.panics_triggered"
	MetricAlertsResolved   = "business.alerts_resolved"
	MetricNotificationsOut = "business.notifications_sent"
)
