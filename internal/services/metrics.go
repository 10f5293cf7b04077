package services

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "adoption_requests_created_total",
		Help: "Adoption requests created.",
	})

	decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adoption_decisions_total",
		Help: "Adoption request decisions by outcome.",
	}, []string{"decision"})

	lifecycleErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adoption_lifecycle_errors_total",
		Help: "Failed adoption lifecycle operations by operation and error kind.",
	}, []string{"op", "kind"})

	searchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "animal_search_duration_seconds",
		Help:    "Duration of animal searches in seconds.",
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})
)

func init() {
	prometheus.MustRegister(requestsCreated, decisions, lifecycleErrors, searchDuration)
}
