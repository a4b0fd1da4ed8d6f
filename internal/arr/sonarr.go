// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package arr

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/config"
)

// SonarrClient talks to the Sonarr v3 API.
type SonarrClient struct {
	c                *client
	qualityProfileID int
}

// NewSonarr builds a client from config. The quality profile falls
// back to the configured default when unset.
func NewSonarr(cfg config.ArrConfig) *SonarrClient {
	return &SonarrClient{
		c:                newClient("sonarr", cfg.URL, cfg.APIKey),
		qualityProfileID: cfg.Profile(),
	}
}

// Lookup searches TVDB through Sonarr for series matching the term.
func (s *SonarrClient) Lookup(ctx context.Context, term string) ([]Series, error) {
	var results []Series
	q := url.Values{"term": []string{term}}
	if err := s.c.get(ctx, "/api/v3/series/lookup", q, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Add puts a looked-up series into the library under the given root
// folder and kicks off a search for missing episodes. Returns
// ErrAlreadyAdded when the series already exists.
func (s *SonarrClient) Add(ctx context.Context, series Series, rootFolder string) (Series, error) {
	series.ID = 0
	series.QualityProfileID = s.qualityProfileID
	series.RootFolderPath = rootFolder
	series.SeasonFolder = true
	series.Monitored = true
	series.AddOptions = &SeriesAddOptions{SearchForMissingEpisodes: true}

	var added Series
	err := s.c.post(ctx, "/api/v3/series", series, &added)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusBadRequest {
			return Series{}, ErrAlreadyAdded
		}
		return Series{}, err
	}
	return added, nil
}

// SeriesByTVDBID fetches the library entry for a TVDB id, or nil when
// the series is not in the library.
func (s *SonarrClient) SeriesByTVDBID(ctx context.Context, tvdbID int64) (*Series, error) {
	var results []Series
	q := url.Values{"tvdbId": []string{strconv.FormatInt(tvdbID, 10)}}
	if err := s.c.get(ctx, "/api/v3/series", q, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Episodes lists all episodes of a library series.
func (s *SonarrClient) Episodes(ctx context.Context, seriesID int64) ([]Episode, error) {
	var results []Episode
	q := url.Values{"seriesId": []string{strconv.FormatInt(seriesID, 10)}}
	if err := s.c.get(ctx, "/api/v3/episode", q, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Episode fetches one episode by id.
func (s *SonarrClient) Episode(ctx context.Context, episodeID int64) (*Episode, error) {
	var ep Episode
	path := "/api/v3/episode/" + strconv.FormatInt(episodeID, 10)
	if err := s.c.get(ctx, path, nil, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

// Queue returns the current download queue.
func (s *SonarrClient) Queue(ctx context.Context) ([]QueueItem, error) {
	var page queuePage
	q := url.Values{"pageSize": []string{"500"}}
	if err := s.c.get(ctx, "/api/v3/queue", q, &page); err != nil {
		return nil, err
	}
	return page.Records, nil
}
