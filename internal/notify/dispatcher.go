// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

// Package notify delivers admitted events to the chat channel.
//
// The webhook handler must answer the backend quickly, so it only
// enqueues; a single worker drains the queue, batches bursts behind a
// short debounce window, rate-limits outbound posts and retries
// transient failures with exponential backoff. Events are dropped,
// never blocked on: a full queue or an exhausted retry budget loses
// the notification and counts it, but the intake path never stalls.
package notify

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/events"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/logging"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/metrics"
)

// Poster sends one batch of notification lines to the chat channel.
// Implemented by the Discord session wrapper; tests substitute fakes.
type Poster interface {
	Post(ctx context.Context, lines []string) error
}

// Options configures a Dispatcher. Zero values get defaults.
type Options struct {
	// QueueSize bounds the intake queue. Default: 256.
	QueueSize int

	// Debounce is how long the worker waits after the first event of a
	// burst before flushing, so one download batch becomes one message.
	// Default: 5s.
	Debounce time.Duration

	// MaxBatch flushes early when a burst reaches this many events.
	// Default: 10.
	MaxBatch int

	// PostsPerMinute rate-limits outbound posts. Default: 20.
	PostsPerMinute int

	// MaxRetries is how many times a failed post is retried before the
	// batch is dropped. Default: 3.
	MaxRetries int

	// RetryBase is the first backoff delay; it doubles per attempt.
	// Default: 1s.
	RetryBase time.Duration
}

// Dispatcher owns the notification queue and its single worker.
type Dispatcher struct {
	queue  chan events.Event
	poster Poster

	debounce   time.Duration
	maxBatch   int
	limiter    *rate.Limiter
	maxRetries int
	retryBase  time.Duration
}

// NewDispatcher creates a dispatcher. Run Serve under a supervisor to
// start the worker.
func NewDispatcher(poster Poster, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 5 * time.Second
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 10
	}
	if opts.PostsPerMinute <= 0 {
		opts.PostsPerMinute = 20
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = time.Second
	}
	return &Dispatcher{
		queue:      make(chan events.Event, opts.QueueSize),
		poster:     poster,
		debounce:   opts.Debounce,
		maxBatch:   opts.MaxBatch,
		limiter:    rate.NewLimiter(rate.Limit(float64(opts.PostsPerMinute)/60.0), 1),
		maxRetries: opts.MaxRetries,
		retryBase:  opts.RetryBase,
	}
}

// Enqueue hands an event to the worker without blocking. Returns false
// when the queue is full; the caller counts the drop and moves on.
func (d *Dispatcher) Enqueue(ev events.Event) bool {
	select {
	case d.queue <- ev:
		return true
	default:
		metrics.EventsDropped.WithLabelValues("queue_full").Inc()
		logging.Warn().Str("event", ev.String()).Msg("notification queue full, dropping event")
		return false
	}
}

// Serve implements suture.Service: it drains the queue until the
// context is canceled. Each burst is collected behind the debounce
// window and flushed as one post.
func (d *Dispatcher) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case first := <-d.queue:
			batch := d.collect(ctx, first)
			d.flush(ctx, batch)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (d *Dispatcher) String() string {
	return "notify-dispatcher"
}

// collect gathers events that arrive within the debounce window after
// the first one, up to maxBatch.
func (d *Dispatcher) collect(ctx context.Context, first events.Event) []events.Event {
	batch := []events.Event{first}
	timer := time.NewTimer(d.debounce)
	defer timer.Stop()

	for len(batch) < d.maxBatch {
		select {
		case ev := <-d.queue:
			batch = append(batch, ev)
		case <-timer.C:
			return batch
		case <-ctx.Done():
			return batch
		}
	}
	return batch
}

// flush posts one batch, honoring the rate limiter and retrying with
// exponential backoff. An exhausted budget drops the batch.
func (d *Dispatcher) flush(ctx context.Context, batch []events.Event) {
	lines := make([]string, len(batch))
	for i, ev := range batch {
		lines[i] = Format(ev)
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return
	}

	var lastErr error
	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.NotificationRetries.Inc()
			backoff := d.retryBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
		}

		if lastErr = d.poster.Post(ctx, lines); lastErr == nil {
			for _, ev := range batch {
				metrics.NotificationsSent.WithLabelValues(string(ev.Kind)).Inc()
			}
			return
		}
		logging.Warn().Err(lastErr).Int("attempt", attempt+1).Int("batch", len(batch)).
			Msg("notification post failed")
	}

	metrics.NotificationsDropped.Inc()
	logging.Error().Err(lastErr).Int("batch", len(batch)).
		Msg("dropping notification batch after retries")
}
