// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv provides the minimum valid configuration.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("SONARR_URL", "http://sonarr:8989")
	t.Setenv("SONARR_API_KEY", "sonarr-key")
	t.Setenv("SONARR_DEFAULT_FOLDER", "/media/tv")
	t.Setenv("RADARR_URL", "http://radarr:7878")
	t.Setenv("RADARR_API_KEY", "radarr-key")
	t.Setenv("RADARR_DEFAULT_FOLDER", "/media/movies")
	// Keep the loader away from any config.yaml in the working dir.
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Webhook.Port != 5000 {
		t.Errorf("port = %d, want default 5000", cfg.Webhook.Port)
	}
	if cfg.Webhook.DedupTTL != time.Minute {
		t.Errorf("dedup ttl = %v, want 1m", cfg.Webhook.DedupTTL)
	}
	if cfg.Webhook.RecentTTL != 10*time.Minute {
		t.Errorf("recent ttl = %v, want 10m", cfg.Webhook.RecentTTL)
	}
	if cfg.Sonarr.Profile() != DefaultQualityProfileID {
		t.Errorf("profile = %d, want default %d", cfg.Sonarr.Profile(), DefaultQualityProfileID)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WEBHOOK_PORT", "9000")
	t.Setenv("WEBHOOK_DEDUP_TTL", "10m")
	t.Setenv("WEBHOOK_SECRET", "hunter2")
	t.Setenv("DISCORD_RESTRICTED_CHANNELS", "100, 200,300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Webhook.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Webhook.Port)
	}
	if cfg.Webhook.DedupTTL != 10*time.Minute {
		t.Errorf("dedup ttl = %v, want 10m", cfg.Webhook.DedupTTL)
	}
	if cfg.Webhook.Secret != "hunter2" {
		t.Errorf("secret = %q", cfg.Webhook.Secret)
	}
	want := []string{"100", "200", "300"}
	if len(cfg.Discord.RestrictedChannels) != len(want) {
		t.Fatalf("channels = %v, want %v", cfg.Discord.RestrictedChannels, want)
	}
	for i, id := range want {
		if cfg.Discord.RestrictedChannels[i] != id {
			t.Errorf("channel[%d] = %q, want %q", i, cfg.Discord.RestrictedChannels[i], id)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
sonarr:
  quality_profile_id: 4
  folders:
    - keywords: ["kids", "cartoon"]
      folder: /media/kids_tv
webhook:
  port: 8080
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Webhook.Port != 8080 {
		t.Errorf("port = %d, want file value 8080", cfg.Webhook.Port)
	}
	if cfg.Sonarr.Profile() != 4 {
		t.Errorf("profile = %d, want 4", cfg.Sonarr.Profile())
	}
	if len(cfg.Sonarr.Folders) != 1 || cfg.Sonarr.Folders[0].Folder != "/media/kids_tv" {
		t.Fatalf("folders = %+v", cfg.Sonarr.Folders)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("webhook:\n  port: 8080\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("WEBHOOK_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Webhook.Port != 9000 {
		t.Errorf("port = %d, env should beat file", cfg.Webhook.Port)
	}
}

func TestLoadRejectsMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISCORD_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without a discord token")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad url":    {"SONARR_URL", "not a url"},
		"bad port":   {"WEBHOOK_PORT", "70000"},
		"bad format": {"LOG_FORMAT", "xml"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("Load should reject %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestValidateCrossFieldChecks(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg.Sonarr.Folders = []FolderRule{{Keywords: []string{""}, Folder: "/media/x"}}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "keyword") {
		t.Fatalf("Validate = %v, want empty-keyword error", err)
	}
}
