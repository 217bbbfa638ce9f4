package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mydienst",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status class.",
		},
		[]string{"endpoint", "status"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mydienst",
			Name:      "bookings_total",
			Help:      "Booking lifecycle transitions by outcome.",
		},
		[]string{"action"}, // created, completed, canceled
	)

	emails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mydienst",
			Name:      "notification_emails_total",
			Help:      "Notification emails by result.",
		},
		[]string{"result"}, // sent, failed, dropped
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, emails)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncBooking increments the lifecycle counter for an action.
func IncBooking(action string) {
	bookings.WithLabelValues(action).Inc()
}

// IncEmail increments the notification counter for a result.
func IncEmail(result string) {
	emails.WithLabelValues(result).Inc()
}
