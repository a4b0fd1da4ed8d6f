// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/logging"
)

// statusResponse is the envelope for webhook acknowledgements.
type statusResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// errorResponse is the envelope for error replies.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
