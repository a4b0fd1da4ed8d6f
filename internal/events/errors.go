// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package events

import "errors"

// Normalization errors. Both cause the event to be logged and dropped;
// neither reaches the dedup cache or the dispatcher.
var (
	// ErrUnknownEventKind indicates the payload's eventType does not
	// map onto grabbed/downloaded/failed (e.g. Test, Rename,
	// HealthIssue deliveries).
	ErrUnknownEventKind = errors.New("unknown event kind")

	// ErrMalformedPayload indicates the payload is not decodable JSON
	// or is missing the identity fields (title id, title) required to
	// build a canonical event.
	ErrMalformedPayload = errors.New("malformed payload")
)
