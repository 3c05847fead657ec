package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_messages_published_total",
			Help:      "Events successfully written to Kafka",
		},
		[]string{"topic"},
	)

	publishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_publish_errors_total",
			Help:      "Events that failed to be written to Kafka",
		},
		[]string{"topic"},
	)

	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "kafka_publish_duration_seconds",
			Help:      "Time spent writing one event",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
)
