// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

// Package events defines the canonical webhook event record and the
// normalizer that builds it from raw Sonarr/Radarr payloads.
//
// Sonarr and Radarr post structurally different JSON for each event
// type. Everything downstream of the webhook endpoint (deduplication,
// notification formatting) works on the single Event type produced
// here, so payload quirks stay contained in this package.
package events

import (
	"fmt"
	"time"
)

// Source identifies which backend produced an event.
type Source string

const (
	// SourceSeries is a Sonarr (TV series) event.
	SourceSeries Source = "series"
	// SourceMovie is a Radarr (movie) event.
	SourceMovie Source = "movie"
)

// Kind is the canonical event kind. Backend eventType strings that do
// not map onto one of these are dropped by the normalizer.
type Kind string

const (
	KindGrabbed    Kind = "grabbed"
	KindDownloaded Kind = "downloaded"
	KindFailed     Kind = "failed"
)

// Event is the canonical record for one webhook delivery. It is
// immutable once built: the normalizer constructs it and the dedup
// cache and dispatcher only read it.
type Event struct {
	Source Source
	Kind   Kind

	// TitleID is the backend-agnostic identity of the media item:
	// the TVDB id for series, the TMDB id for movies.
	TitleID int64

	// Title is free text and excluded from the fingerprint.
	Title string

	// Label narrows the identity below title level: "S03E01" for
	// series episodes, the release year for movies. May be empty.
	Label string

	// ReceivedAt is the arrival time; excluded from the fingerprint.
	ReceivedAt time.Time
}

// Fingerprint is the dedup identity of an event: same fingerprint
// within the TTL window means same logical event.
type Fingerprint string

// Fingerprint derives the dedup key from (source, kind, title id,
// label), deliberately ignoring the timestamp and the free-text title.
func (e Event) Fingerprint() Fingerprint {
	return Fingerprint(fmt.Sprintf("%s:%s:%d:%s", e.Source, e.Kind, e.TitleID, e.Label))
}

// String renders the event for logs.
func (e Event) String() string {
	if e.Label == "" {
		return fmt.Sprintf("%s %s %q (%d)", e.Source, e.Kind, e.Title, e.TitleID)
	}
	return fmt.Sprintf("%s %s %q %s (%d)", e.Source, e.Kind, e.Title, e.Label, e.TitleID)
}
