// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

// Package metrics defines the Prometheus instruments for the webhook
// pipeline, the notification dispatcher and the backend clients. All
// collectors register on the default registry via promauto and are
// exposed by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "media_bot"

var (
	// EventsReceived counts webhook deliveries by source and kind.
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "events_received_total",
			Help:      "Webhook events received, by source and kind.",
		},
		[]string{"source", "kind"},
	)

	// EventsDropped counts events dropped before dispatch. Reasons:
	// unauthorized, malformed, unknown_kind, suppressed, not_recent,
	// queue_full.
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "events_dropped_total",
			Help:      "Webhook events dropped before notification, by reason.",
		},
		[]string{"reason"},
	)

	// DedupDecisions counts dedup cache admit outcomes.
	DedupDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "decisions_total",
			Help:      "Dedup cache admit decisions.",
		},
		[]string{"decision"},
	)

	// DedupEntries tracks the live entry count in the dedup cache.
	DedupEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "entries",
			Help:      "Current number of entries in the dedup cache.",
		},
	)

	// NotificationsSent counts notifications delivered to the chat
	// channel, by event kind.
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Notifications posted to the chat channel, by kind.",
		},
		[]string{"kind"},
	)

	// NotificationRetries counts post attempts that failed and were
	// retried.
	NotificationRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "retries_total",
			Help:      "Failed notification posts that were retried.",
		},
	)

	// NotificationsDropped counts notifications abandoned after the
	// retry budget was exhausted.
	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "dropped_total",
			Help:      "Notifications dropped after exhausting retries.",
		},
	)

	// BackendRequestDuration observes Sonarr/Radarr API call latency.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Sonarr/Radarr API request duration.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "operation", "status"},
	)

	// HTTPRequestDuration observes webhook endpoint latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration, by method, path and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPActiveRequests tracks in-flight HTTP requests.
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "HTTP requests currently being served.",
		},
	)

	// CommandsHandled counts chat commands by name and outcome.
	CommandsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discord",
			Name:      "commands_total",
			Help:      "Chat commands handled, by command and outcome.",
		},
		[]string{"command", "outcome"},
	)
)
