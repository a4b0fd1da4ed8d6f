// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/arr"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/config"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/dedup"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/events"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/routing"
)

type fakeSonarr struct {
	lookupResults []arr.Series
	lookupErr     error
	added         []arr.Series
	addedFolders  []string
	addErr        error
	library       *arr.Series
	episodes      []arr.Episode
	queue         []arr.QueueItem
}

func (f *fakeSonarr) Lookup(_ context.Context, _ string) ([]arr.Series, error) {
	return f.lookupResults, f.lookupErr
}

func (f *fakeSonarr) Add(_ context.Context, s arr.Series, folder string) (arr.Series, error) {
	if f.addErr != nil {
		return arr.Series{}, f.addErr
	}
	f.added = append(f.added, s)
	f.addedFolders = append(f.addedFolders, folder)
	return s, nil
}

func (f *fakeSonarr) SeriesByTVDBID(_ context.Context, _ int64) (*arr.Series, error) {
	return f.library, nil
}

func (f *fakeSonarr) Episodes(_ context.Context, _ int64) ([]arr.Episode, error) {
	return f.episodes, nil
}

func (f *fakeSonarr) Queue(_ context.Context) ([]arr.QueueItem, error) {
	return f.queue, nil
}

type fakeRadarr struct {
	lookupResults []arr.Movie
	added         []arr.Movie
	addErr        error
	library       *arr.Movie
	queue         []arr.QueueItem
}

func (f *fakeRadarr) Lookup(_ context.Context, _ string) ([]arr.Movie, error) {
	return f.lookupResults, nil
}

func (f *fakeRadarr) Add(_ context.Context, m arr.Movie, _ string) (arr.Movie, error) {
	if f.addErr != nil {
		return arr.Movie{}, f.addErr
	}
	f.added = append(f.added, m)
	return m, nil
}

func (f *fakeRadarr) MovieByTMDBID(_ context.Context, _ int64) (*arr.Movie, error) {
	return f.library, nil
}

func (f *fakeRadarr) Queue(_ context.Context) ([]arr.QueueItem, error) {
	return f.queue, nil
}

func testBot(sonarr *fakeSonarr, radarr *fakeRadarr) *Bot {
	router := routing.NewRouter([]config.FolderRule{
		{Keywords: []string{"kids", "cartoon"}, Folder: "/media/kids_tv"},
	}, "/media/tv")
	return &Bot{
		sonarr:      sonarr,
		radarr:      radarr,
		tvRouter:    router,
		movieRouter: routing.NewRouter(nil, "/media/movies"),
		recents:     dedup.NewRecents(10*time.Minute, nil),
		searches:    newSearchStore(),
	}
}

func TestDispatchIgnoresNonCommands(t *testing.T) {
	b := testBot(&fakeSonarr{}, &fakeRadarr{})

	if got := b.dispatch(context.Background(), "c1", "just chatting"); got != nil {
		t.Fatalf("plain message produced replies: %v", got)
	}
	if got := b.dispatch(context.Background(), "c1", "!unknowncommand"); got != nil {
		t.Fatalf("unknown command produced replies: %v", got)
	}
}

func TestLookupThenAddSeries(t *testing.T) {
	sonarr := &fakeSonarr{lookupResults: []arr.Series{
		{Title: "Kids Cartoon Hour", TVDBID: 111, Year: 2021},
		{Title: "Grown Up Drama", TVDBID: 222, Year: 2019},
	}}
	b := testBot(sonarr, &fakeRadarr{})
	ctx := context.Background()

	replies := b.dispatch(ctx, "c1", "!lookup cartoon")
	if len(replies) != 1 || len(replies[0].embeds) != 2 {
		t.Fatalf("lookup replies = %+v, want 1 reply with 2 embeds", replies)
	}

	replies = b.dispatch(ctx, "c1", "!addtv 2")
	if len(replies) != 1 || !strings.Contains(replies[0].content, "Grown Up Drama") {
		t.Fatalf("add reply = %+v", replies)
	}
	if len(sonarr.added) != 1 || sonarr.added[0].TVDBID != 222 {
		t.Fatalf("added = %+v, want result number 2", sonarr.added)
	}

	// Grown Up Drama matches no keyword rule, so it lands in the
	// default folder.
	if sonarr.addedFolders[0] != "/media/tv" {
		t.Fatalf("folder = %q, want default /media/tv", sonarr.addedFolders[0])
	}

	// The add marks the title so its grab events get announced.
	grab := events.Event{Source: events.SourceSeries, Kind: events.KindGrabbed, TitleID: 222}
	if !b.recents.ShouldAnnounce(grab) {
		t.Fatal("added title should be marked as recently requested")
	}
}

func TestAddSeriesRoutesKeywordFolder(t *testing.T) {
	sonarr := &fakeSonarr{lookupResults: []arr.Series{
		{Title: "Kids Cartoon Hour", TVDBID: 111},
	}}
	b := testBot(sonarr, &fakeRadarr{})
	ctx := context.Background()

	b.dispatch(ctx, "c1", "!lookup kids cartoon hour")
	b.dispatch(ctx, "c1", "!addtv 1")

	if len(sonarr.addedFolders) != 1 || sonarr.addedFolders[0] != "/media/kids_tv" {
		t.Fatalf("folders = %v, want routed /media/kids_tv", sonarr.addedFolders)
	}
}

func TestAddSeriesAlreadyInLibrary(t *testing.T) {
	sonarr := &fakeSonarr{
		lookupResults: []arr.Series{{Title: "Test Show", TVDBID: 111}},
		addErr:        arr.ErrAlreadyAdded,
	}
	b := testBot(sonarr, &fakeRadarr{})
	ctx := context.Background()

	b.dispatch(ctx, "c1", "!lookup test show")
	replies := b.dispatch(ctx, "c1", "!addtv 1")
	if !strings.Contains(replies[0].content, "already in the library") {
		t.Fatalf("reply = %q", replies[0].content)
	}

	// Existing titles still get marked so their events show up.
	grab := events.Event{Source: events.SourceSeries, Kind: events.KindGrabbed, TitleID: 111}
	if !b.recents.ShouldAnnounce(grab) {
		t.Fatal("existing title should still be marked")
	}
}

func TestAddWithoutLookup(t *testing.T) {
	b := testBot(&fakeSonarr{}, &fakeRadarr{})

	replies := b.dispatch(context.Background(), "c1", "!addtv 1")
	if !strings.Contains(replies[0].content, "!lookup") {
		t.Fatalf("reply = %q, want pointer to lookup", replies[0].content)
	}
}

func TestSearchResultsArePerChannel(t *testing.T) {
	sonarr := &fakeSonarr{lookupResults: []arr.Series{{Title: "Test Show", TVDBID: 111}}}
	b := testBot(sonarr, &fakeRadarr{})
	ctx := context.Background()

	b.dispatch(ctx, "c1", "!lookup test show")
	replies := b.dispatch(ctx, "c2", "!addtv 1")
	if !strings.Contains(replies[0].content, "No such result") {
		t.Fatalf("reply = %q, want results scoped to the lookup channel", replies[0].content)
	}
}

func TestAddMovie(t *testing.T) {
	radarr := &fakeRadarr{lookupResults: []arr.Movie{{Title: "Test Movie", TMDBID: 555, Year: 2024}}}
	b := testBot(&fakeSonarr{}, radarr)
	ctx := context.Background()

	b.dispatch(ctx, "c1", "!lookupmovie test movie")
	replies := b.dispatch(ctx, "c1", "!addmovie 1")
	if !strings.Contains(replies[0].content, "Test Movie") {
		t.Fatalf("reply = %q", replies[0].content)
	}
	if len(radarr.added) != 1 || radarr.added[0].TMDBID != 555 {
		t.Fatalf("added = %+v", radarr.added)
	}
}

func TestProgressFormatsQueues(t *testing.T) {
	sonarr := &fakeSonarr{queue: []arr.QueueItem{
		{Title: "Test Show S01E01", Status: "downloading", Size: 1000, Sizeleft: 250, TimeLeft: "00:12:00"},
	}}
	radarr := &fakeRadarr{}
	b := testBot(sonarr, radarr)

	replies := b.dispatch(context.Background(), "c1", "!progress")
	content := replies[0].content
	if !strings.Contains(content, "Test Show S01E01: 75% (downloading), 00:12:00 left") {
		t.Fatalf("progress output missing queue line:\n%s", content)
	}
	if !strings.Contains(content, "**Movies**: queue empty") {
		t.Fatalf("progress output missing empty movie queue:\n%s", content)
	}
}

func TestSeriesStatus(t *testing.T) {
	sonarr := &fakeSonarr{
		lookupResults: []arr.Series{{Title: "Test Show", TVDBID: 111}},
		library:       &arr.Series{ID: 9, Title: "Test Show", TVDBID: 111},
		episodes: []arr.Episode{
			{Monitored: true, HasFile: true},
			{Monitored: true, HasFile: false},
			{Monitored: false, HasFile: false},
		},
	}
	b := testBot(sonarr, &fakeRadarr{})

	replies := b.dispatch(context.Background(), "c1", "!tv test show")
	if !strings.Contains(replies[0].content, "1 of 2 monitored episodes") {
		t.Fatalf("reply = %q", replies[0].content)
	}
}

func TestChannelAllowed(t *testing.T) {
	b := testBot(&fakeSonarr{}, &fakeRadarr{})

	b.cfg = config.DiscordConfig{}
	if !b.channelAllowed("anything") {
		t.Fatal("empty restriction list should allow all channels")
	}

	b.cfg = config.DiscordConfig{RestrictedChannels: []string{"100", "200"}}
	if !b.channelAllowed("200") {
		t.Fatal("listed channel should be allowed")
	}
	if b.channelAllowed("300") {
		t.Fatal("unlisted channel should be blocked")
	}
}
