package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	BookingsCreated      prometheus.Counter
	NotificationsEmitted prometheus.Counter
	DelayEvents          *prometheus.CounterVec
	TransfersPlanned     *prometheus.CounterVec
	DelayProcessingTime  prometheus.Histogram
	ErrorsCount          *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on the given registerer
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of assistance bookings created",
		}),
		NotificationsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_emitted_total",
			Help:      "The total number of notifications handed to the push service",
		}),
		DelayEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delay_events_total",
			Help:      "The total number of delay events processed, by connection impact",
		}, []string{"impact"}),
		TransfersPlanned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_planned_total",
			Help:      "The total number of transfer coordinations planned, by outcome",
		}, []string{"outcome"}),
		DelayProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delay_processing_time_seconds",
			Help:      "Time taken to assess a delay event",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
