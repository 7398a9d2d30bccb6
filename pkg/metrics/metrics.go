package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics содержит все Prometheus-коллекторы сервиса
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueriesTotal   *prometheus.CounterVec
	dbQueryDuration  *prometheus.HistogramVec
	dbConnectionsIn  prometheus.Gauge
	dbConnectionsMax prometheus.Gauge

	bookingsTotal      *prometheus.CounterVec
	bookingConflicts   prometheus.Counter
	notificationsTotal *prometheus.CounterVec
	quotaDecisions     *prometheus.CounterVec
}

// New создает и регистрирует коллекторы в default registry
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),

		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		dbQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: labels,
		}, []string{"operation", "result"}),

		dbQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: labels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		dbConnectionsIn: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_in_use",
			Help:        "Number of database connections currently in use",
			ConstLabels: labels,
		}),

		dbConnectionsMax: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_max_open",
			Help:        "Maximum number of open database connections",
			ConstLabels: labels,
		}),

		bookingsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_total",
			Help:        "Booking write outcomes by operation and result",
			ConstLabels: labels,
		}, []string{"operation", "result"}),

		bookingConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "booking_conflicts_total",
			Help:        "Number of booking attempts rejected by the overlap exclusion",
			ConstLabels: labels,
		}),

		notificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "notification_attempts_total",
			Help:        "Notification delivery attempts by channel and result",
			ConstLabels: labels,
		}, []string{"channel", "result"}),

		quotaDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "quota_decisions_total",
			Help:        "Quota enforcement decisions by code",
			ConstLabels: labels,
		}, []string{"code", "decision"}),
	}
}

// ObserveHTTPRequest фиксирует завершенный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует выполненный запрос к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.dbQueriesTotal.WithLabelValues(operation, result).Inc()
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет gauges пула соединений
func (m *Metrics) SetDBPoolStats(inUse, maxOpen int) {
	m.dbConnectionsIn.Set(float64(inUse))
	m.dbConnectionsMax.Set(float64(maxOpen))
}

// IncBooking фиксирует результат операции над бронированием
func (m *Metrics) IncBooking(operation, result string) {
	m.bookingsTotal.WithLabelValues(operation, result).Inc()
}

// IncBookingConflict фиксирует отказ по exclusion-инварианту
func (m *Metrics) IncBookingConflict() {
	m.bookingConflicts.Inc()
}

// IncNotificationAttempt фиксирует попытку доставки уведомления
func (m *Metrics) IncNotificationAttempt(channel, result string) {
	m.notificationsTotal.WithLabelValues(channel, result).Inc()
}

// IncQuotaDecision фиксирует решение enforcement point
func (m *Metrics) IncQuotaDecision(code, decision string) {
	m.quotaDecisions.WithLabelValues(code, decision).Inc()
}
