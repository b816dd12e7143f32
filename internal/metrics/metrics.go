// Package metrics holds the Prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_notifications_created_total",
		Help: "Notifications stored, by kind (admin or user).",
	}, []string{"kind"})

	NotificationReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_notification_reads_total",
		Help: "Mark-as-read operations, by scope (one or all) and kind.",
	}, []string{"kind", "scope"})

	NotifyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_notify_failures_total",
		Help: "Best-effort notification side effects that failed.",
	}, []string{"event"})

	DBRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_db_retries_total",
		Help: "Database operations retried after a transient error.",
	}, []string{"op"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_emails_sent_total",
		Help: "Out-of-band notification emails, by result.",
	}, []string{"result"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
