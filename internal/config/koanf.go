// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/logging"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/discord-media-bot/config.yaml",
	"/etc/discord-media-bot/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. These are
// applied first and then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Sonarr: ArrConfig{
			QualityProfileID: DefaultQualityProfileID,
		},
		Radarr: ArrConfig{
			QualityProfileID: DefaultQualityProfileID,
		},
		Webhook: WebhookConfig{
			Host:               "0.0.0.0",
			Port:               5000,
			DedupTTL:           time.Minute,
			SweepInterval:      0, // 0 = sweep every DedupTTL
			RecentTTL:          10 * time.Minute,
			MaxEntries:         4096,
			Debounce:           5 * time.Second,
			RateLimitPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources
// (defaults, optional YAML file, environment variables) and validates
// the result. Precedence: ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Restricted channels may arrive as a comma-separated env string.
	if err := splitSliceField(k, "discord.restricted_channels"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// A typo'd level would silently fall back to info; surface it.
	if !logging.KnownLevel(cfg.Logging.Level) {
		logging.Warn().Str("level", cfg.Logging.Level).Msg("unknown log level, using info")
	}

	return cfg, nil
}

// validate runs struct-tag validation followed by cross-field checks.
func validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return cfg.Validate()
}

// findConfigFile searches CONFIG_PATH then the default paths, returning
// the first file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// splitSliceField converts a comma-separated string value to a slice.
// Env vars come in as strings but the config expects a slice; values
// already parsed as slices (from YAML) are left alone.
func splitSliceField(k *koanf.Koanf, path string) error {
	val := k.Get(path)
	strVal, ok := val.(string)
	if !ok || strVal == "" {
		return nil
	}

	parts := strings.Split(strVal, ",")
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			trimmed = append(trimmed, p)
		}
	}
	if err := k.Set(path, trimmed); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config
// paths. Unmapped variables return "" and are skipped, so stray
// environment variables cannot pollute the config.
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		"discord_token":               "discord.token",
		"discord_restricted_channels": "discord.restricted_channels",

		"sonarr_url":                "sonarr.url",
		"sonarr_api_key":            "sonarr.api_key",
		"sonarr_quality_profile_id": "sonarr.quality_profile_id",
		"sonarr_default_folder":     "sonarr.default_folder",

		"radarr_url":                "radarr.url",
		"radarr_api_key":            "radarr.api_key",
		"radarr_quality_profile_id": "radarr.quality_profile_id",
		"radarr_default_folder":     "radarr.default_folder",

		"webhook_host":           "webhook.host",
		"webhook_port":           "webhook.port",
		"webhook_secret":         "webhook.secret",
		"webhook_dedup_ttl":      "webhook.dedup_ttl",
		"webhook_sweep_interval": "webhook.sweep_interval",
		"webhook_recent_ttl":     "webhook.recent_ttl",
		"webhook_max_entries":    "webhook.max_entries",
		"webhook_debounce":       "webhook.debounce",
		"webhook_rate_limit":     "webhook.rate_limit_per_minute",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
