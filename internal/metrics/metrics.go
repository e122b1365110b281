package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics: коллекторы Prometheus трекера.
type Metrics struct {
	SearchesCreated   prometheus.Counter
	PriceRecords      *prometheus.CounterVec
	AlertsCreated     *prometheus.CounterVec
	AlertsRead        prometheus.Counter
	Errors            *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// NewMetrics регистрирует коллекторы на reg. В тестах передаём свежий
// prometheus.NewRegistry().
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_created_total",
			Help:      "The total number of created flight searches",
		}),
		PriceRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_records_total",
			Help:      "The total number of recorded price observations",
		}, []string{"provider"}),
		AlertsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_created_total",
			Help:      "The total number of created alerts",
		}, []string{"type"}),
		AlertsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_read_total",
			Help:      "The total number of alerts marked as read",
		}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "The total number of failed operations",
		}, []string{"operation"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time taken by tracker operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// ObserveOperation пишет длительность операции; err != nil считается ошибкой.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.Errors.WithLabelValues(operation).Inc()
	}
}
