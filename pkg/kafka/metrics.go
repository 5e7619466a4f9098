package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the consumer and producer collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	received   *prometheus.CounterVec
	processed  *prometheus.CounterVec
	failed     *prometheus.CounterVec
	duplicates *prometheus.CounterVec
	dlq        *prometheus.CounterVec
	handleTime *prometheus.HistogramVec
	published  *prometheus.CounterVec
	pubErrors  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	consumerLabels := []string{"topic", "consumer_group"}
	m := &Metrics{
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_received_total",
			Help: "Kafka messages fetched from the broker",
		}, consumerLabels),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_processed_total",
			Help: "Kafka messages handled successfully",
		}, consumerLabels),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_failed_total",
			Help: "Kafka messages that exhausted handler retries",
		}, consumerLabels),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_duplicate_total",
			Help: "Kafka messages skipped as already processed",
		}, consumerLabels),
		dlq: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_dlq_published_total",
			Help: "Kafka messages forwarded to a dead-letter topic",
		}, consumerLabels),
		handleTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_consumer_processing_duration_seconds",
			Help:    "Time spent handling one Kafka message, retries included",
			Buckets: prometheus.DefBuckets,
		}, consumerLabels),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_messages_published_total",
			Help: "Kafka messages published",
		}, []string{"topic"}),
		pubErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_publish_errors_total",
			Help: "Kafka publish failures",
		}, []string{"topic"}),
	}
	reg.MustRegister(m.received, m.processed, m.failed, m.duplicates, m.dlq, m.handleTime, m.published, m.pubErrors)
	return m
}

func (m *Metrics) count(pick func(*Metrics) *prometheus.CounterVec, labels ...string) {
	if m == nil {
		return
	}
	pick(m).WithLabelValues(labels...).Inc()
}

func (m *Metrics) observe(seconds float64, labels ...string) {
	if m == nil {
		return
	}
	m.handleTime.WithLabelValues(labels...).Observe(seconds)
}

func received(m *Metrics) *prometheus.CounterVec      { return m.received }
func processed(m *Metrics) *prometheus.CounterVec     { return m.processed }
func failed(m *Metrics) *prometheus.CounterVec        { return m.failed }
func duplicates(m *Metrics) *prometheus.CounterVec    { return m.duplicates }
func deadLettered(m *Metrics) *prometheus.CounterVec  { return m.dlq }
func published(m *Metrics) *prometheus.CounterVec     { return m.published }
func publishErrors(m *Metrics) *prometheus.CounterVec { return m.pubErrors }
