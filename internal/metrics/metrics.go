// Package metrics holds the Prometheus collectors of the booking core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConflictChecks counts conflict detections by outcome: clear, conflict or check_failed
	ConflictChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cabinbuddy_conflict_checks_total",
		Help: "Conflict detections by outcome",
	}, []string{"result"})

	// AlternativeSearches tracks how many store round trips an alternative-date search used
	AlternativeSearches = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cabinbuddy_alternative_search_checks",
		Help:    "Availability checks performed per alternative-date search",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60},
	})

	// PaymentRowUpdates counts payment rows touched by occupancy updates, by outcome
	PaymentRowUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cabinbuddy_payment_row_updates_total",
		Help: "Payment rows written by occupancy updates by outcome",
	}, []string{"result"})

	// Notifications counts dispatched notifications by type and result
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cabinbuddy_notifications_total",
		Help: "Notifications dispatched by type and result",
	}, []string{"type", "result"})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
