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

// RadarrClient talks to the Radarr v3 API.
type RadarrClient struct {
	c                *client
	qualityProfileID int
}

// NewRadarr builds a client from config. The quality profile falls
// back to the configured default when unset.
func NewRadarr(cfg config.ArrConfig) *RadarrClient {
	return &RadarrClient{
		c:                newClient("radarr", cfg.URL, cfg.APIKey),
		qualityProfileID: cfg.Profile(),
	}
}

// Lookup searches TMDB through Radarr for movies matching the term.
func (r *RadarrClient) Lookup(ctx context.Context, term string) ([]Movie, error) {
	var results []Movie
	q := url.Values{"term": []string{term}}
	if err := r.c.get(ctx, "/api/v3/movie/lookup", q, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Add puts a looked-up movie into the library under the given root
// folder and kicks off a search. Returns ErrAlreadyAdded when the
// movie already exists.
func (r *RadarrClient) Add(ctx context.Context, movie Movie, rootFolder string) (Movie, error) {
	movie.ID = 0
	movie.QualityProfileID = r.qualityProfileID
	movie.RootFolderPath = rootFolder
	movie.Monitored = true
	movie.AddOptions = &MovieAddOptions{SearchForMovie: true}

	var added Movie
	err := r.c.post(ctx, "/api/v3/movie", movie, &added)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusBadRequest {
			return Movie{}, ErrAlreadyAdded
		}
		return Movie{}, err
	}
	return added, nil
}

// MovieByTMDBID fetches the library entry for a TMDB id, or nil when
// the movie is not in the library.
func (r *RadarrClient) MovieByTMDBID(ctx context.Context, tmdbID int64) (*Movie, error) {
	var results []Movie
	q := url.Values{"tmdbId": []string{strconv.FormatInt(tmdbID, 10)}}
	if err := r.c.get(ctx, "/api/v3/movie", q, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Movie fetches one library movie by id.
func (r *RadarrClient) Movie(ctx context.Context, movieID int64) (*Movie, error) {
	var m Movie
	path := "/api/v3/movie/" + strconv.FormatInt(movieID, 10)
	if err := r.c.get(ctx, path, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Queue returns the current download queue.
func (r *RadarrClient) Queue(ctx context.Context) ([]QueueItem, error) {
	var page queuePage
	q := url.Values{"pageSize": []string{"500"}}
	if err := r.c.get(ctx, "/api/v3/queue", q, &page); err != nil {
		return nil, err
	}
	return page.Records, nil
}
