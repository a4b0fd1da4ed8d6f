// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package dedup

import (
	"fmt"
	"sync"
	"time"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/events"
)

// Recents remembers which titles were added through the bot within a
// TTL window. Grab events for titles nobody recently requested are
// library-maintenance noise (quality upgrades, backfills) and are not
// announced; Downloaded and Failed events always pass.
type Recents struct {
	mu      sync.Mutex
	entries map[string]time.Time

	ttl   time.Duration
	clock func() time.Time
}

// NewRecents creates a tracker with the given window. A zero clock
// defaults to time.Now.
func NewRecents(ttl time.Duration, clock func() time.Time) *Recents {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if clock == nil {
		clock = time.Now
	}
	return &Recents{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		clock:   clock,
	}
}

// Mark records that a title was just added through the bot. Called by
// the chat command handlers after a successful add; the title's Grab
// events are announced for the next TTL.
func (r *Recents) Mark(source events.Source, titleID int64) {
	key := recentsKey(source, titleID)
	r.mu.Lock()
	r.entries[key] = r.clock().Add(r.ttl)
	r.mu.Unlock()
}

// ShouldAnnounce reports whether the event passes the recency policy.
// Only Grab events are filtered; expired marks are pruned on the way.
func (r *Recents) ShouldAnnounce(ev events.Event) bool {
	if ev.Kind != events.KindGrabbed {
		return true
	}

	key := recentsKey(ev.Source, ev.TitleID)
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	deadline, ok := r.entries[key]
	if !ok {
		return false
	}
	if !now.Before(deadline) {
		delete(r.entries, key)
		return false
	}
	return true
}

// Len returns the number of marks, including expired ones not yet
// pruned. Used by tests.
func (r *Recents) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func recentsKey(source events.Source, titleID int64) string {
	return fmt.Sprintf("%s:%d", source, titleID)
}
