// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/arr"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/events"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/logging"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/metrics"
)

const (
	commandPrefix = "!"

	// maxResults bounds lookup replies; Discord allows at most 10
	// embeds per message.
	maxResults = 10
)

// reply is one outbound message.
type reply struct {
	content string
	embeds  []*discordgo.MessageEmbed
}

// searchStore keeps the last lookup results per channel so a follow-up
// add command can reference them by number.
type searchStore struct {
	mu     sync.Mutex
	series map[string][]arr.Series
	movies map[string][]arr.Movie
}

func newSearchStore() *searchStore {
	return &searchStore{
		series: make(map[string][]arr.Series),
		movies: make(map[string][]arr.Movie),
	}
}

func (s *searchStore) putSeries(channelID string, results []arr.Series) {
	s.mu.Lock()
	s.series[channelID] = results
	s.mu.Unlock()
}

func (s *searchStore) putMovies(channelID string, results []arr.Movie) {
	s.mu.Lock()
	s.movies[channelID] = results
	s.mu.Unlock()
}

func (s *searchStore) getSeries(channelID string, n int) (arr.Series, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := s.series[channelID]
	if n < 1 || n > len(results) {
		return arr.Series{}, false
	}
	return results[n-1], true
}

func (s *searchStore) getMovie(channelID string, n int) (arr.Movie, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := s.movies[channelID]
	if n < 1 || n > len(results) {
		return arr.Movie{}, false
	}
	return results[n-1], true
}

// dispatch parses one message and runs the matching command. Messages
// that are not commands, or commands the bot does not know, produce no
// reply at all.
func (b *Bot) dispatch(ctx context.Context, channelID, content string) []reply {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, commandPrefix) {
		return nil
	}

	fields := strings.Fields(content)
	command := strings.ToLower(strings.TrimPrefix(fields[0], commandPrefix))
	args := strings.TrimSpace(strings.TrimPrefix(content, fields[0]))

	var (
		out     []reply
		outcome = "ok"
	)

	switch command {
	case "help", "commands":
		out = []reply{{content: helpText}}
	case "lookup", "find", "search":
		out, outcome = b.cmdLookupSeries(ctx, channelID, args)
	case "lookupmovie", "findmovie", "searchmovie":
		out, outcome = b.cmdLookupMovie(ctx, channelID, args)
	case "addtv":
		out, outcome = b.cmdAddSeries(ctx, channelID, args)
	case "addmovie":
		out, outcome = b.cmdAddMovie(ctx, channelID, args)
	case "progress", "status", "downloads":
		out, outcome = b.cmdProgress(ctx)
	case "tv":
		out, outcome = b.cmdSeriesStatus(ctx, args)
	case "movie":
		out, outcome = b.cmdMovieStatus(ctx, args)
	default:
		return nil
	}

	metrics.CommandsHandled.WithLabelValues(command, outcome).Inc()
	return out
}

const helpText = "**Commands**\n" +
	"`!lookup <title>` search for a TV series\n" +
	"`!lookupmovie <title>` search for a movie\n" +
	"`!addtv <number>` add a series from the last lookup\n" +
	"`!addmovie <number>` add a movie from the last lookup\n" +
	"`!tv <title>` show download status for a series\n" +
	"`!movie <title>` show download status for a movie\n" +
	"`!progress` show the current download queues"

func (b *Bot) cmdLookupSeries(ctx context.Context, channelID, term string) ([]reply, string) {
	if term == "" {
		return []reply{{content: "Usage: `!lookup <title>`"}}, "usage"
	}

	results, err := b.sonarr.Lookup(ctx, term)
	if err != nil {
		logging.Error().Err(err).Str("term", term).Msg("series lookup failed")
		return []reply{{content: "Sonarr lookup failed, try again later."}}, "error"
	}
	if len(results) == 0 {
		return []reply{{content: fmt.Sprintf("No series found for %q.", term)}}, "empty"
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	b.searches.putSeries(channelID, results)

	embeds := make([]*discordgo.MessageEmbed, len(results))
	for i, s := range results {
		embeds[i] = seriesEmbed(i+1, s)
	}
	return []reply{{
		content: "Reply with `!addtv <number>` to add one:",
		embeds:  embeds,
	}}, "ok"
}

func (b *Bot) cmdLookupMovie(ctx context.Context, channelID, term string) ([]reply, string) {
	if term == "" {
		return []reply{{content: "Usage: `!lookupmovie <title>`"}}, "usage"
	}

	results, err := b.radarr.Lookup(ctx, term)
	if err != nil {
		logging.Error().Err(err).Str("term", term).Msg("movie lookup failed")
		return []reply{{content: "Radarr lookup failed, try again later."}}, "error"
	}
	if len(results) == 0 {
		return []reply{{content: fmt.Sprintf("No movies found for %q.", term)}}, "empty"
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	b.searches.putMovies(channelID, results)

	embeds := make([]*discordgo.MessageEmbed, len(results))
	for i, m := range results {
		embeds[i] = movieEmbed(i+1, m)
	}
	return []reply{{
		content: "Reply with `!addmovie <number>` to add one:",
		embeds:  embeds,
	}}, "ok"
}

func (b *Bot) cmdAddSeries(ctx context.Context, channelID, arg string) ([]reply, string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return []reply{{content: "Usage: `!addtv <number>` after a `!lookup`."}}, "usage"
	}
	series, ok := b.searches.getSeries(channelID, n)
	if !ok {
		return []reply{{content: "No such result. Run `!lookup <title>` first."}}, "usage"
	}

	folder := b.tvRouter.Route(append([]string{series.Title}, series.Genres...)...)
	added, err := b.sonarr.Add(ctx, series, folder)
	switch {
	case errors.Is(err, arr.ErrAlreadyAdded):
		// Mark anyway so grab notifications for it come through.
		b.recents.Mark(events.SourceSeries, series.TVDBID)
		return []reply{{content: fmt.Sprintf("%s is already in the library.", series.Title)}}, "exists"
	case err != nil:
		logging.Error().Err(err).Str("title", series.Title).Msg("series add failed")
		return []reply{{content: "Adding the series failed, try again later."}}, "error"
	}

	b.recents.Mark(events.SourceSeries, added.TVDBID)
	logging.Info().Str("title", added.Title).Str("folder", folder).Msg("series added")
	return []reply{{content: fmt.Sprintf("Added **%s** to %s and started searching.", added.Title, folder)}}, "ok"
}

func (b *Bot) cmdAddMovie(ctx context.Context, channelID, arg string) ([]reply, string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return []reply{{content: "Usage: `!addmovie <number>` after a `!lookupmovie`."}}, "usage"
	}
	movie, ok := b.searches.getMovie(channelID, n)
	if !ok {
		return []reply{{content: "No such result. Run `!lookupmovie <title>` first."}}, "usage"
	}

	folder := b.movieRouter.Route(append([]string{movie.Title}, movie.Genres...)...)
	added, err := b.radarr.Add(ctx, movie, folder)
	switch {
	case errors.Is(err, arr.ErrAlreadyAdded):
		b.recents.Mark(events.SourceMovie, movie.TMDBID)
		return []reply{{content: fmt.Sprintf("%s is already in the library.", movie.Title)}}, "exists"
	case err != nil:
		logging.Error().Err(err).Str("title", movie.Title).Msg("movie add failed")
		return []reply{{content: "Adding the movie failed, try again later."}}, "error"
	}

	b.recents.Mark(events.SourceMovie, added.TMDBID)
	logging.Info().Str("title", added.Title).Str("folder", folder).Msg("movie added")
	return []reply{{content: fmt.Sprintf("Added **%s** to %s and started searching.", added.Title, folder)}}, "ok"
}

func (b *Bot) cmdProgress(ctx context.Context) ([]reply, string) {
	var lines []string

	seriesQueue, err := b.sonarr.Queue(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("sonarr queue fetch failed")
		lines = append(lines, "Sonarr queue unavailable.")
	} else {
		lines = append(lines, formatQueue("TV", seriesQueue)...)
	}

	movieQueue, err := b.radarr.Queue(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("radarr queue fetch failed")
		lines = append(lines, "Radarr queue unavailable.")
	} else {
		lines = append(lines, formatQueue("Movies", movieQueue)...)
	}

	return []reply{{content: strings.Join(lines, "\n")}}, "ok"
}

func (b *Bot) cmdSeriesStatus(ctx context.Context, term string) ([]reply, string) {
	if term == "" {
		return []reply{{content: "Usage: `!tv <title>`"}}, "usage"
	}

	results, err := b.sonarr.Lookup(ctx, term)
	if err != nil || len(results) == 0 {
		return []reply{{content: fmt.Sprintf("No series found for %q.", term)}}, "empty"
	}

	library, err := b.sonarr.SeriesByTVDBID(ctx, results[0].TVDBID)
	if err != nil {
		logging.Error().Err(err).Msg("series status fetch failed")
		return []reply{{content: "Sonarr is unavailable, try again later."}}, "error"
	}
	if library == nil {
		return []reply{{content: fmt.Sprintf("%s is not in the library. Use `!lookup` then `!addtv` to request it.", results[0].Title)}}, "ok"
	}

	episodes, err := b.sonarr.Episodes(ctx, library.ID)
	if err != nil {
		logging.Error().Err(err).Msg("episode list fetch failed")
		return []reply{{content: "Sonarr is unavailable, try again later."}}, "error"
	}

	have, total := 0, 0
	for _, ep := range episodes {
		if !ep.Monitored {
			continue
		}
		total++
		if ep.HasFile {
			have++
		}
	}
	return []reply{{content: fmt.Sprintf("**%s**: %d of %d monitored episodes downloaded.", library.Title, have, total)}}, "ok"
}

func (b *Bot) cmdMovieStatus(ctx context.Context, term string) ([]reply, string) {
	if term == "" {
		return []reply{{content: "Usage: `!movie <title>`"}}, "usage"
	}

	results, err := b.radarr.Lookup(ctx, term)
	if err != nil || len(results) == 0 {
		return []reply{{content: fmt.Sprintf("No movies found for %q.", term)}}, "empty"
	}

	library, err := b.radarr.MovieByTMDBID(ctx, results[0].TMDBID)
	if err != nil {
		logging.Error().Err(err).Msg("movie status fetch failed")
		return []reply{{content: "Radarr is unavailable, try again later."}}, "error"
	}
	if library == nil {
		return []reply{{content: fmt.Sprintf("%s is not in the library. Use `!lookupmovie` then `!addmovie` to request it.", results[0].Title)}}, "ok"
	}

	status := "queued for download"
	if library.HasFile {
		status = "downloaded"
	}
	return []reply{{content: fmt.Sprintf("**%s** (%d): %s.", library.Title, library.Year, status)}}, "ok"
}

// formatQueue renders one backend's queue as indented lines under a
// heading.
func formatQueue(heading string, items []arr.QueueItem) []string {
	if len(items) == 0 {
		return []string{fmt.Sprintf("**%s**: queue empty", heading)}
	}

	lines := []string{fmt.Sprintf("**%s**:", heading)}
	for _, item := range items {
		pct := 0.0
		if item.Size > 0 {
			pct = (item.Size - item.Sizeleft) / item.Size * 100
		}
		line := fmt.Sprintf("  %s: %.0f%% (%s)", item.Title, pct, item.Status)
		if item.TimeLeft != "" {
			line += fmt.Sprintf(", %s left", item.TimeLeft)
		}
		lines = append(lines, line)
	}
	return lines
}

func seriesEmbed(n int, s arr.Series) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%d. %s (%d)", n, s.Title, s.Year),
		Description: truncateOverview(s.Overview),
	}
	if url := posterURL(s.Images); url != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	}
	return embed
}

func movieEmbed(n int, m arr.Movie) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%d. %s (%d)", n, m.Title, m.Year),
		Description: truncateOverview(m.Overview),
	}
	if url := posterURL(m.Images); url != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	}
	return embed
}

func posterURL(images []arr.Image) string {
	for _, img := range images {
		if img.CoverType == "poster" {
			if img.RemoteURL != "" {
				return img.RemoteURL
			}
			return img.URL
		}
	}
	return ""
}

func truncateOverview(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
