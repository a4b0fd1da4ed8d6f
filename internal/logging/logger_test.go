// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"garbage", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKnownLevel(t *testing.T) {
	if !KnownLevel("WARN") {
		t.Error("warn should be a known level")
	}
	if KnownLevel("verbose") {
		t.Error("verbose is not a level we accept")
	}
}

func TestGlobalLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	old := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(old)

	Info().Str("title", "Test Show").Msg("event admitted")

	out := buf.String()
	if !strings.Contains(out, `"title":"Test Show"`) || !strings.Contains(out, "event admitted") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestSlogAdapterRoutesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	old := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(old)

	slogger := NewSlogLogger()
	slogger.Warn("service failed", "service", "discord-bot", "attempt", int64(2))

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Fatalf("level missing from output: %s", out)
	}
	if !strings.Contains(out, `"service":"discord-bot"`) || !strings.Contains(out, `"attempt":2`) {
		t.Fatalf("attrs missing from output: %s", out)
	}
}
