// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

// Package api implements the webhook intake endpoint.
//
// Sonarr and Radarr POST event payloads here. The handler runs the
// whole decision pipeline synchronously (authenticate, normalize,
// recency policy, dedup admit) and hands admitted events to the
// dispatcher queue, so the backend gets its 200 without waiting on any
// chat round-trip.
package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/dedup"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/events"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/logging"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/metrics"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/middleware"
)

// maxBodySize caps webhook payloads at 1 MiB; real payloads are a few KiB.
const maxBodySize = 1 << 20

// Enqueuer hands an admitted event to the notification worker.
// Satisfied by notify.Dispatcher.
type Enqueuer interface {
	Enqueue(ev events.Event) bool
}

// Handler serves the webhook endpoints.
type Handler struct {
	secret     string
	cache      *dedup.Cache
	recents    *dedup.Recents
	dispatcher Enqueuer
	now        func() time.Time
}

// NewHandler wires the pipeline. An empty secret disables the shared
// secret check. A nil clock defaults to time.Now.
func NewHandler(secret string, cache *dedup.Cache, recents *dedup.Recents, dispatcher Enqueuer, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		secret:     secret,
		cache:      cache,
		recents:    recents,
		dispatcher: dispatcher,
		now:        clock,
	}
}

// handleWebhook is the single intake endpoint for both backends.
//
// Responses: 401 for a missing or wrong secret, 400 for an undecodable
// payload, and 200 for everything else. Suppressed, filtered and
// unknown-kind events still acknowledge with 200 so the backend does
// not retry deliveries we chose to drop.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.With().Str("request_id", middleware.GetRequestID(r.Context())).Logger()

	if !h.authorized(r) {
		metrics.EventsDropped.WithLabelValues("unauthorized").Inc()
		log.Warn().Str("remote", r.RemoteAddr).Msg("webhook rejected: bad secret")
		respondError(w, http.StatusUnauthorized, "invalid webhook secret")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	ev, err := events.Normalize(body, h.now())
	switch {
	case errors.Is(err, events.ErrUnknownEventKind):
		// Test, Rename, HealthIssue and friends. Acknowledged so the
		// backend's "test webhook" button succeeds.
		metrics.EventsDropped.WithLabelValues("unknown_kind").Inc()
		log.Debug().Msg("ignoring event of unhandled kind")
		respondJSON(w, http.StatusOK, statusResponse{Status: "ignored", Detail: "unhandled event type"})
		return
	case err != nil:
		metrics.EventsDropped.WithLabelValues("malformed").Inc()
		log.Warn().Err(err).Msg("rejecting malformed webhook payload")
		respondError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	metrics.EventsReceived.WithLabelValues(string(ev.Source), string(ev.Kind)).Inc()

	if !h.recents.ShouldAnnounce(ev) {
		metrics.EventsDropped.WithLabelValues("not_recent").Inc()
		log.Debug().Str("event", ev.String()).Msg("grab for title not recently requested, ignoring")
		respondJSON(w, http.StatusOK, statusResponse{Status: "ignored", Detail: "not recently requested"})
		return
	}

	decision := h.cache.Admit(ev)
	metrics.DedupDecisions.WithLabelValues(decision.String()).Inc()
	metrics.DedupEntries.Set(float64(h.cache.Len()))

	if decision == dedup.Suppressed {
		metrics.EventsDropped.WithLabelValues("suppressed").Inc()
		log.Debug().Str("event", ev.String()).Msg("duplicate event suppressed")
		respondJSON(w, http.StatusOK, statusResponse{Status: "suppressed"})
		return
	}

	h.dispatcher.Enqueue(ev)
	log.Info().Str("event", ev.String()).Msg("event admitted")
	respondJSON(w, http.StatusOK, statusResponse{Status: "accepted"})
}

// authorized checks the shared secret, accepting either the
// X-Webhook-Secret header or a ?secret= query parameter. Sonarr's
// webhook form has no custom header support, hence the query fallback.
func (h *Handler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return true
	}
	if r.Header.Get("X-Webhook-Secret") == h.secret {
		return true
	}
	return r.URL.Query().Get("secret") == h.secret
}

// handleHealth is the liveness endpoint.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
