// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/dedup"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/events"
)

// recordingDispatcher captures enqueued events instead of posting.
type recordingDispatcher struct {
	mu     sync.Mutex
	queued []events.Event
}

func (d *recordingDispatcher) Enqueue(ev events.Event) bool {
	d.mu.Lock()
	d.queued = append(d.queued, ev)
	d.mu.Unlock()
	return true
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queued)
}

const sonarrGrab = `{
	"eventType": "Grab",
	"series": {"tvdbId": 12345, "title": "Test Show"},
	"episodes": [{"seasonNumber": 3, "episodeNumber": 1}]
}`

const radarrDownload = `{
	"eventType": "Download",
	"movie": {"tmdbId": 67890, "title": "Test Movie", "year": 2024}
}`

type fixture struct {
	server     http.Handler
	dispatcher *recordingDispatcher
	recents    *dedup.Recents
}

func newFixture(secret string) *fixture {
	clock := time.Now
	cache := dedup.NewCache(dedup.Options{TTL: time.Minute, Clock: clock})
	recents := dedup.NewRecents(10*time.Minute, clock)
	dispatcher := &recordingDispatcher{}
	h := NewHandler(secret, cache, recents, dispatcher, clock)
	return &fixture{
		server:     NewRouter(h, 0),
		dispatcher: dispatcher,
		recents:    recents,
	}
}

func (f *fixture) post(path, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	f := newFixture("hunter2")

	if w := f.post("/webhook", "", sonarrGrab); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing secret: status %d, want 401", w.Code)
	}
	if w := f.post("/webhook", "wrong", sonarrGrab); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: status %d, want 401", w.Code)
	}
	if got := f.dispatcher.count(); got != 0 {
		t.Fatalf("dispatcher received %d events from unauthorized requests", got)
	}
}

func TestWebhookAcceptsQuerySecret(t *testing.T) {
	f := newFixture("hunter2")

	w := f.post("/webhook?secret=hunter2", "", radarrDownload)
	if w.Code != http.StatusOK {
		t.Fatalf("query secret: status %d, want 200, body %s", w.Code, w.Body)
	}
	if got := f.dispatcher.count(); got != 1 {
		t.Fatalf("dispatcher received %d events, want 1", got)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	f := newFixture("")

	cases := map[string]string{
		"not json":   `{"eventType": "Grab"`,
		"no title id": `{"eventType": "Grab", "series": {"title": "No ID"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if w := f.post("/webhook", "", body); w.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", w.Code)
			}
		})
	}
	if got := f.dispatcher.count(); got != 0 {
		t.Fatalf("dispatcher received %d events from malformed requests", got)
	}
}

func TestWebhookIgnoresUnknownEventKind(t *testing.T) {
	f := newFixture("")

	body := `{"eventType": "Test", "series": {"tvdbId": 1, "title": "Test Show"}}`
	w := f.post("/webhook", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("test event: status %d, want 200 so the backend test button passes", w.Code)
	}
	if got := f.dispatcher.count(); got != 0 {
		t.Fatalf("dispatcher received %d events for an unhandled kind", got)
	}
}

func TestWebhookSuppressesDuplicates(t *testing.T) {
	f := newFixture("")

	for i := 0; i < 3; i++ {
		if w := f.post("/webhook/radarr", "", radarrDownload); w.Code != http.StatusOK {
			t.Fatalf("delivery %d: status %d, want 200", i, w.Code)
		}
	}
	if got := f.dispatcher.count(); got != 1 {
		t.Fatalf("dispatcher received %d events for 3 identical deliveries, want 1", got)
	}
}

func TestWebhookFiltersUnrequestedGrabs(t *testing.T) {
	f := newFixture("")

	// Nobody asked for this series, so library-maintenance grabs stay
	// quiet.
	if w := f.post("/webhook/sonarr", "", sonarrGrab); w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if got := f.dispatcher.count(); got != 0 {
		t.Fatalf("dispatcher received %d grab events without a recent request", got)
	}

	f.recents.Mark(events.SourceSeries, 12345)
	f.post("/webhook/sonarr", "", sonarrGrab)
	if got := f.dispatcher.count(); got != 1 {
		t.Fatalf("dispatcher received %d events after marking, want 1", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture("any")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d, want 200", w.Code)
	}
}
