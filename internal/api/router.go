// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/middleware"
)

// NewRouter assembles the webhook server routes.
//
// POST /webhook is the intake endpoint; /webhook/sonarr and
// /webhook/radarr are aliases so each backend can be pointed at its
// own path, useful when debugging which side is sending.
func NewRouter(h *Handler, rateLimitPerMinute int) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Prometheus)
	if rateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(rateLimitPerMinute, time.Minute))
	}

	r.Post("/webhook", h.handleWebhook)
	r.Post("/webhook/sonarr", h.handleWebhook)
	r.Post("/webhook/radarr", h.handleWebhook)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
