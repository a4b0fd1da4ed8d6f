// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package arr

// Image is a poster or banner reference on a series or movie.
type Image struct {
	CoverType string `json:"coverType"`
	URL       string `json:"url,omitempty"`
	RemoteURL string `json:"remoteUrl,omitempty"`
}

// Series is the Sonarr v3 series resource. Lookup results and library
// entries share the shape; Add sends a lookup result back with the
// library fields (root folder, profile, add options) filled in.
type Series struct {
	ID               int64    `json:"id,omitempty"`
	Title            string   `json:"title"`
	TitleSlug        string   `json:"titleSlug"`
	TVDBID           int64    `json:"tvdbId"`
	Year             int      `json:"year,omitempty"`
	Overview         string   `json:"overview,omitempty"`
	Status           string   `json:"status,omitempty"`
	Genres           []string `json:"genres,omitempty"`
	Images           []Image  `json:"images,omitempty"`
	Seasons          []Season `json:"seasons,omitempty"`
	SeasonCount      int      `json:"seasonCount,omitempty"`
	QualityProfileID int      `json:"qualityProfileId,omitempty"`
	RootFolderPath   string   `json:"rootFolderPath,omitempty"`
	SeasonFolder     bool     `json:"seasonFolder,omitempty"`
	Monitored        bool     `json:"monitored,omitempty"`

	AddOptions *SeriesAddOptions `json:"addOptions,omitempty"`
}

// Season is one season entry on a series.
type Season struct {
	SeasonNumber int  `json:"seasonNumber"`
	Monitored    bool `json:"monitored"`
}

// SeriesAddOptions controls what Sonarr does right after an add.
type SeriesAddOptions struct {
	SearchForMissingEpisodes bool `json:"searchForMissingEpisodes"`
}

// Episode is the Sonarr v3 episode resource.
type Episode struct {
	ID            int64  `json:"id"`
	SeriesID      int64  `json:"seriesId"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	AirDateUTC    string `json:"airDateUtc,omitempty"`
	HasFile       bool   `json:"hasFile"`
	Monitored     bool   `json:"monitored"`
}

// Movie is the Radarr v3 movie resource.
type Movie struct {
	ID               int64    `json:"id,omitempty"`
	Title            string   `json:"title"`
	TitleSlug        string   `json:"titleSlug"`
	TMDBID           int64    `json:"tmdbId"`
	Year             int      `json:"year,omitempty"`
	Overview         string   `json:"overview,omitempty"`
	Status           string   `json:"status,omitempty"`
	Genres           []string `json:"genres,omitempty"`
	Images           []Image  `json:"images,omitempty"`
	QualityProfileID int      `json:"qualityProfileId,omitempty"`
	RootFolderPath   string   `json:"rootFolderPath,omitempty"`
	Monitored        bool     `json:"monitored,omitempty"`
	HasFile          bool     `json:"hasFile,omitempty"`

	AddOptions *MovieAddOptions `json:"addOptions,omitempty"`
}

// MovieAddOptions controls what Radarr does right after an add.
type MovieAddOptions struct {
	SearchForMovie bool `json:"searchForMovie"`
}

// QueueItem is one entry in a backend download queue.
type QueueItem struct {
	ID                    int64   `json:"id"`
	SeriesID              int64   `json:"seriesId,omitempty"`
	EpisodeID             int64   `json:"episodeId,omitempty"`
	MovieID               int64   `json:"movieId,omitempty"`
	Title                 string  `json:"title"`
	Status                string  `json:"status"`
	Size                  float64 `json:"size"`
	Sizeleft              float64 `json:"sizeleft"`
	TimeLeft              string  `json:"timeleft,omitempty"`
	EstimatedCompletionTime string `json:"estimatedCompletionTime,omitempty"`
}

// queuePage is the paged envelope the v3 queue endpoint returns.
type queuePage struct {
	Page         int         `json:"page"`
	PageSize     int         `json:"pageSize"`
	TotalRecords int         `json:"totalRecords"`
	Records      []QueueItem `json:"records"`
}
