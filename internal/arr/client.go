// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

// Package arr holds the Sonarr and Radarr v3 API clients.
//
// Both backends expose near-identical REST surfaces, so one shared
// transport handles authentication, retries and the circuit breaker;
// the typed clients only know their endpoints and payload shapes.
package arr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/logging"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/metrics"
)

const (
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	retryBaseDelay = time.Second
)

// ErrAlreadyAdded indicates the title already exists in the backend
// library. Sonarr and Radarr both answer an add for an existing title
// with 400.
var ErrAlreadyAdded = errors.New("title already added")

// StatusError is a non-2xx backend response.
type StatusError struct {
	Code int
	Body string

	// retryAfter carries a parsed Retry-After header for the retry
	// loop; zero when the backend did not send one.
	retryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// client is the shared HTTP transport for both backends. Every call
// carries the X-Api-Key header; 429 and 5xx responses are retried with
// exponential backoff, honoring Retry-After when present; repeated
// failures trip the circuit breaker so a dead backend fails fast.
type client struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func newClient(name, baseURL, apiKey string) *client {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("backend", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}
	return &client{
		name:       name,
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		breaker:    gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// get performs a GET and decodes the JSON response into out.
func (c *client) get(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decoding %s response: %w", c.name, path, err)
	}
	return nil
}

// post encodes in as JSON, performs a POST and decodes into out.
func (c *client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encoding %s request: %w", c.name, path, err)
	}
	body, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decoding %s response: %w", c.name, path, err)
	}
	return nil
}

// do runs one logical request through the breaker and the retry loop,
// returning the response body.
func (c *client) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doWithRetry(ctx, method, path, query, payload)
	})

	status := "ok"
	if err != nil {
		status = "error"
		var se *StatusError
		if errors.As(err, &se) {
			status = strconv.Itoa(se.Code)
		}
	}
	metrics.BackendRequestDuration.WithLabelValues(c.name, method+" "+path, status).
		Observe(time.Since(start).Seconds())

	return body, err
}

// doWithRetry retries 429 and 5xx responses with doubling backoff. A
// 429 with Retry-After waits the advertised duration instead.
func (c *client) doWithRetry(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			var se *StatusError
			if errors.As(lastErr, &se) && se.Code == http.StatusTooManyRequests && se.retryAfter > 0 {
				delay = se.retryAfter
			}
			logging.Debug().Str("backend", c.name).Str("path", path).
				Int("attempt", attempt).Dur("delay", delay).Msg("retrying backend request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := c.doOnce(ctx, method, path, query, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) {
			if se.Code == http.StatusTooManyRequests || se.Code >= 500 {
				continue
			}
			return nil, err // 4xx other than 429 is not retryable
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		continue // transport error, retry
	}
	return nil, fmt.Errorf("%s: %s %s failed after %d attempts: %w", c.name, method, path, maxRetries+1, lastErr)
}

func (c *client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", c.name, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", c.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 256)}
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, perr := strconv.Atoi(ra); perr == nil && secs > 0 {
				se.retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, se
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
