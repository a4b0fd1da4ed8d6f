// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration loaded from the YAML config
// file and environment variables.
//
// Loading order (Koanf v2, highest priority last):
//  1. Built-in defaults
//  2. Config file (config.yaml)
//  3. Environment variables (DISCORD_TOKEN, SONARR_URL, ...)
//
// Config is immutable after Load() and safe for concurrent reads. The
// folder rules in particular are never mutated at runtime; the Folder
// Router only reads them.
type Config struct {
	Discord DiscordConfig `koanf:"discord"`
	Sonarr  ArrConfig     `koanf:"sonarr"`
	Radarr  ArrConfig     `koanf:"radarr"`
	Webhook WebhookConfig `koanf:"webhook"`
	Logging LoggingConfig `koanf:"logging"`
}

// DiscordConfig holds the bot token and the channels commands and
// notifications are restricted to. The first restricted channel is the
// notification channel for webhook events.
type DiscordConfig struct {
	Token string `koanf:"token" validate:"required"`

	// RestrictedChannels limits bot commands to these channel IDs.
	// Empty means commands are accepted anywhere but webhook
	// notifications have nowhere to go and are dropped with a warning.
	RestrictedChannels []string `koanf:"restricted_channels"`
}

// NotifyChannel returns the channel webhook notifications are posted to,
// or "" when no restricted channels are configured.
func (d DiscordConfig) NotifyChannel() string {
	if len(d.RestrictedChannels) == 0 {
		return ""
	}
	return d.RestrictedChannels[0]
}

// ArrConfig holds connection and add-media settings for one backend
// (Sonarr or Radarr).
type ArrConfig struct {
	URL    string `koanf:"url" validate:"required,url"`
	APIKey string `koanf:"api_key" validate:"required"`

	// QualityProfileID selects the quality profile used when adding
	// media. Values <= 0 fall back to DefaultQualityProfileID.
	QualityProfileID int `koanf:"quality_profile_id"`

	// Folders are evaluated in order against a title's genres; the
	// first rule whose keyword matches wins. DefaultFolder is used
	// when no rule matches.
	Folders       []FolderRule `koanf:"folders" validate:"dive"`
	DefaultFolder string       `koanf:"default_folder" validate:"required"`
}

// FolderRule maps a set of genre keywords to a root folder path.
type FolderRule struct {
	Keywords []string `koanf:"keywords" validate:"required,min=1"`
	Folder   string   `koanf:"folder" validate:"required"`
}

// DefaultQualityProfileID is used when no valid profile id is
// configured (6 = the stock 720p/1080p profile on fresh installs).
const DefaultQualityProfileID = 6

// Profile returns the configured quality profile id, falling back to
// the default when the configured value is not a positive integer.
func (a ArrConfig) Profile() int {
	if a.QualityProfileID > 0 {
		return a.QualityProfileID
	}
	return DefaultQualityProfileID
}

// WebhookConfig holds the inbound webhook endpoint and event pipeline
// settings.
type WebhookConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`

	// Secret, when set, must be presented by the backend in the
	// X-Webhook-Secret header (or "secret" query parameter) on every
	// delivery. Empty disables authentication.
	Secret string `koanf:"secret"`

	// DedupTTL is the window during which an event fingerprint
	// suppresses repeat notifications.
	DedupTTL time.Duration `koanf:"dedup_ttl" validate:"min=1s"`

	// SweepInterval bounds dedup cache memory by removing expired
	// entries periodically. Zero means sweep every DedupTTL.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// RecentTTL is the window during which a title added via the bot
	// counts as "recently added": Grab events for titles outside this
	// set are not announced.
	RecentTTL time.Duration `koanf:"recent_ttl" validate:"min=1s"`

	// MaxEntries caps the dedup cache size; the soonest-to-expire
	// entries are evicted beyond this.
	MaxEntries int `koanf:"max_entries" validate:"min=1"`

	// Debounce is how long the dispatcher waits to batch events that
	// arrive close together into one message.
	Debounce time.Duration `koanf:"debounce"`

	// RateLimitPerMinute caps inbound webhook deliveries per client IP.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute" validate:"min=1"`
}

// LoggingConfig holds log level and output format.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks cross-field constraints that the struct tags cannot
// express. Tag-level validation runs in Load() via go-playground/validator.
func (c *Config) Validate() error {
	for _, ch := range c.Discord.RestrictedChannels {
		if strings.TrimSpace(ch) == "" {
			return fmt.Errorf("discord.restricted_channels contains an empty channel id")
		}
	}

	if c.Webhook.SweepInterval < 0 {
		return fmt.Errorf("webhook.sweep_interval must not be negative")
	}
	if c.Webhook.Debounce < 0 {
		return fmt.Errorf("webhook.debounce must not be negative")
	}

	for name, arr := range map[string]ArrConfig{"sonarr": c.Sonarr, "radarr": c.Radarr} {
		for i, rule := range arr.Folders {
			for _, kw := range rule.Keywords {
				if strings.TrimSpace(kw) == "" {
					return fmt.Errorf("%s.folders[%d] contains an empty keyword", name, i)
				}
			}
		}
	}

	return nil
}
