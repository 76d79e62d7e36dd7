package prometheus

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"inventory-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultPrefix = "inventory"

// Counter metrics
var (
	LoginCounter            prometheus.Counter
	MovementCounter         *prometheus.CounterVec
	MovementRejectedCounter *prometheus.CounterVec
	TenantOperationCounter  *prometheus.CounterVec
	HTTPRequestCounter      *prometheus.CounterVec
	AuthErrorCounter        *prometheus.CounterVec
	AuditFallbackCounter    prometheus.Counter
)

// Histogram metrics
var (
	RequestDuration     *prometheus.HistogramVec
	DBOperationDuration *prometheus.HistogramVec
)

// Gauge metrics
var (
	ActiveTokensGauge  prometheus.Gauge
	InfoGauge          *prometheus.GaugeVec
	ActiveTenantsGauge prometheus.Gauge
)

var registerOnce sync.Once

// InitMetrics builds and registers all metrics under the configured name
// prefix. Only the first call registers; later calls are no-ops.
func InitMetrics(cfg *config.Config) {
	registerOnce.Do(func() { register(cfg.Metrics.Prefix) })
}

// ensure registers with the default prefix when InitMetrics has not run, so
// the package stays usable outside the server process (tests).
func ensure() {
	registerOnce.Do(func() { register(defaultPrefix) })
}

func register(prefix string) {
	if prefix == "" {
		prefix = defaultPrefix
	}
	name := func(suffix string) string { return prefix + "_" + suffix }

	// Counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: name("login_total"),
			Help: "Total number of login attempts",
		},
	)
	MovementCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name("stock_movements_total"),
			Help: "Total number of applied stock movements",
		},
		[]string{"direction"}, // "IN" or "OUT"
	)
	MovementRejectedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name("stock_movements_rejected_total"),
			Help: "Total number of rejected stock movements",
		},
		[]string{"reason"},
	)
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name("tenant_operations_total"),
			Help: "Total number of tenant directory operations",
		},
		[]string{"operation"}, // "create", "delete", "reset", "list"
	)
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name("http_requests_total"),
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name("auth_errors_total"),
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "login_failure", "invalid_token", "store_unavailable" etc.
	)
	// Audit entries that could not be written to the tenant store. The
	// operation itself still succeeds; this is the fallback trace.
	AuditFallbackCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: name("audit_write_failures_total"),
			Help: "Total number of audit log entries that failed to persist",
		},
	)

	// Histograms
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name("request_duration_seconds"),
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name("db_operation_duration_seconds"),
			Help:    "Duration of record store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)

	// Gauges
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: name("active_tokens"),
			Help: "Number of currently active session tokens",
		},
	)
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name("info"),
			Help: "Information about the inventory service",
		},
		[]string{"version"},
	)
	ActiveTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: name("active_tenants"),
			Help: "Number of tenants registered in the directory",
		},
	)

	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(MovementCounter)
	prometheus.MustRegister(MovementRejectedCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(AuditFallbackCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)
	prometheus.MustRegister(ActiveTenantsGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	ensure()
	return promhttp.Handler()
}

// TrackDBOperation measures record store operation durations
func TrackDBOperation(operation string) func(time.Time) {
	ensure()
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	ensure()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordLogin counts a login attempt
func RecordLogin() {
	ensure()
	LoginCounter.Inc()
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ensure()
	ActiveTokensGauge.Inc()
}

// DecreaseActiveTokens decrements the active tokens gauge
func DecreaseActiveTokens() {
	ensure()
	ActiveTokensGauge.Dec()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	ensure()
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordMovement records an applied stock movement by direction
func RecordMovement(direction string) {
	ensure()
	MovementCounter.With(prometheus.Labels{"direction": direction}).Inc()
}

// RecordMovementRejected records a rejected stock movement by reason
func RecordMovementRejected(reason string) {
	ensure()
	MovementRejectedCounter.With(prometheus.Labels{"reason": reason}).Inc()
}

// RecordTenantOperation records a tenant directory operation
func RecordTenantOperation(operation string) {
	ensure()
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordAuditFallback records an audit entry that could not be persisted
func RecordAuditFallback() {
	ensure()
	AuditFallbackCounter.Inc()
}

// UpdateActiveTenants updates the registered tenants gauge
func UpdateActiveTenants(count int) {
	ensure()
	ActiveTenantsGauge.Set(float64(count))
}
