// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

// Package dedup owns the in-memory state that decides whether a
// normalized webhook event is announced or suppressed.
//
// Two structures live here: Cache, the fingerprint-keyed TTL set that
// guarantees at most one notification per logical event per window,
// and Recents, the tracker for titles added through the bot that
// filters Grab noise. Both take an injected clock so tests control
// time. Neither persists anything: a restart clears all state and may
// re-notify a duplicate once.
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/events"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/logging"
)

// Decision is the outcome of Cache.Admit.
type Decision int

const (
	// Suppressed means an identical event was already admitted within
	// the TTL window; the caller must not notify.
	Suppressed Decision = iota
	// Admitted means this is the first occurrence within the window.
	Admitted
)

// String renders the decision for logs.
func (d Decision) String() string {
	if d == Admitted {
		return "admitted"
	}
	return "suppressed"
}

// entry tracks one admitted fingerprint. Owned exclusively by the
// cache; removed by lazy expiry, the periodic sweep, or capacity
// eviction.
type entry struct {
	firstSeen time.Time
	expiresAt time.Time
}

// Options configures a Cache. Zero values get defaults.
type Options struct {
	// TTL is the suppression window. Default: 1 minute.
	TTL time.Duration

	// SweepInterval is how often the background sweep removes expired
	// entries. Default: equal to TTL.
	SweepInterval time.Duration

	// MaxEntries caps memory; the soonest-to-expire entries are
	// evicted when inserting beyond the cap. Default: 4096.
	MaxEntries int

	// Clock supplies the current time. Default: time.Now.
	Clock func() time.Time
}

// Cache is the time-windowed deduplication set. All admit operations
// are linearized under one mutex so the check-and-set for a key is
// atomic: of N concurrent admits for the same fresh fingerprint,
// exactly one returns Admitted.
type Cache struct {
	mu      sync.Mutex
	entries map[events.Fingerprint]entry

	ttl        time.Duration
	sweepEvery time.Duration
	maxEntries int
	clock      func() time.Time
}

// NewCache creates a deduplication cache. Start the periodic sweep by
// running Serve under a supervisor, or call Sweep manually in tests.
func NewCache(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = opts.TTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 4096
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Cache{
		entries:    make(map[events.Fingerprint]entry),
		ttl:        opts.TTL,
		sweepEvery: opts.SweepInterval,
		maxEntries: opts.MaxEntries,
		clock:      opts.Clock,
	}
}

// Admit decides whether the event is the first of its kind within the
// TTL window. A fresh or expired fingerprint is (re)inserted with
// expiresAt = now + TTL and Admitted is returned. A live fingerprint
// returns Suppressed WITHOUT updating expiresAt: a flood of backend
// retransmits must not extend the window indefinitely, so ties break
// in favor of the first arrival.
func (c *Cache) Admit(ev events.Event) Decision {
	key := ev.Fingerprint()
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		if now.Before(e.expiresAt) {
			return Suppressed
		}
		// Expired entry: lazy removal, then fall through to re-admit.
		delete(c.entries, key)
	}

	if len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}

	c.entries[key] = entry{firstSeen: now, expiresAt: now.Add(c.ttl)}
	return Admitted
}

// Len returns the number of live and not-yet-swept entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes all expired entries and returns how many were removed.
// Called periodically by Serve; safe to call directly.
func (c *Cache) Sweep() int {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// evictLocked frees room for one insertion. Expired entries go first;
// if none were expired the soonest-to-expire entry is sacrificed.
// Must be called with the mutex held.
func (c *Cache) evictLocked(now time.Time) {
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			return
		}
	}

	var victim events.Fingerprint
	var soonest time.Time
	for key, e := range c.entries {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim = key
			soonest = e.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

// Serve implements suture.Service: it runs the periodic expiry sweep
// until the context is canceled. The cache itself works without the
// sweep (expiry is also checked lazily on Admit); the sweep only
// bounds memory for fingerprints that never recur.
func (c *Cache) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 {
				logging.Debug().Int("removed", removed).Msg("dedup sweep")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer; suture uses it to identify the
// service in log messages.
func (c *Cache) String() string {
	return "dedup-sweeper"
}
