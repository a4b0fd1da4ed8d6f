// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package events

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// payload covers the subset of the Sonarr and Radarr webhook schemas
// the normalizer needs. The two backends share the eventType field;
// the presence of series vs movie discriminates the source.
type payload struct {
	EventType string `json:"eventType"`

	Series *struct {
		TVDBID int64  `json:"tvdbId"`
		Title  string `json:"title"`
	} `json:"series"`

	Episodes []struct {
		SeasonNumber  int `json:"seasonNumber"`
		EpisodeNumber int `json:"episodeNumber"`
	} `json:"episodes"`

	Movie *struct {
		TMDBID int64  `json:"tmdbId"`
		Title  string `json:"title"`
		Year   int    `json:"year"`
	} `json:"movie"`
}

// Normalize parses one raw webhook body into a canonical Event. The
// backend is determined by payload shape: a series block means Sonarr,
// a movie block means Radarr.
//
// Returns ErrMalformedPayload when the body is not decodable or the
// identity fields (title id, title) are absent, and ErrUnknownEventKind
// when eventType does not map onto a canonical kind. Both error paths
// leave no state behind.
func Normalize(body []byte, at time.Time) (Event, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	ev := Event{ReceivedAt: at}

	switch {
	case p.Series != nil && p.Series.TVDBID > 0:
		if p.Series.Title == "" {
			return Event{}, fmt.Errorf("%w: series title missing", ErrMalformedPayload)
		}
		ev.Source = SourceSeries
		ev.TitleID = p.Series.TVDBID
		ev.Title = p.Series.Title
		if len(p.Episodes) > 0 {
			ep := p.Episodes[0]
			ev.Label = fmt.Sprintf("S%02dE%02d", ep.SeasonNumber, ep.EpisodeNumber)
		}

	case p.Movie != nil && p.Movie.TMDBID > 0:
		if p.Movie.Title == "" {
			return Event{}, fmt.Errorf("%w: movie title missing", ErrMalformedPayload)
		}
		ev.Source = SourceMovie
		ev.TitleID = p.Movie.TMDBID
		ev.Title = p.Movie.Title
		if p.Movie.Year > 0 {
			ev.Label = strconv.Itoa(p.Movie.Year)
		}

	default:
		return Event{}, fmt.Errorf("%w: no series tvdbId or movie tmdbId", ErrMalformedPayload)
	}

	kind, ok := mapKind(p.EventType)
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEventKind, p.EventType)
	}
	ev.Kind = kind

	return ev, nil
}

// mapKind folds backend eventType strings onto the canonical kinds.
// Sonarr and Radarr use "Grab" and "Download" for the happy path;
// failure spellings differ between versions so all known ones map to
// KindFailed. Everything else (Test, Rename, HealthIssue, ...) is
// unknown and dropped.
func mapKind(eventType string) (Kind, bool) {
	switch eventType {
	case "Grab":
		return KindGrabbed, true
	case "Download", "DownloadFolderImported", "MovieFileImported":
		return KindDownloaded, true
	case "DownloadFailed", "GrabFailed", "ImportFailed", "ManualInteractionRequired":
		return KindFailed, true
	}
	return "", false
}
