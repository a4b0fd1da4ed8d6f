// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

// Package main is the entry point for the bot.
//
// The process runs two halves under one supervisor tree:
//
//   - Intake: an HTTP server receiving Sonarr and Radarr webhook
//     events, which are normalized, filtered against recent requests,
//     deduplicated within a TTL window and queued for notification.
//   - Delivery: the Discord session serving lookup/add/status
//     commands, the dispatcher that batches queued events into channel
//     messages, and the dedup cache sweeper.
//
// Configuration is loaded via Koanf v2 with layered sources, highest
// priority first: environment variables, config.yaml, built-in
// defaults. See config.example.yaml for the full surface.
//
// SIGINT and SIGTERM trigger a graceful shutdown: the webhook server
// stops accepting connections, in-flight requests get 10 seconds to
// finish and the Discord session closes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/api"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/arr"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/config"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/dedup"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/discord"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/logging"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/notify"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/routing"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet, so this logs with defaults.
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("sonarr_url", cfg.Sonarr.URL).
		Str("radarr_url", cfg.Radarr.URL).
		Int("webhook_port", cfg.Webhook.Port).
		Bool("secret_set", cfg.Webhook.Secret != "").
		Msg("configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shared pipeline state.
	cache := dedup.NewCache(dedup.Options{
		TTL:           cfg.Webhook.DedupTTL,
		SweepInterval: cfg.Webhook.SweepInterval,
		MaxEntries:    cfg.Webhook.MaxEntries,
	})
	recents := dedup.NewRecents(cfg.Webhook.RecentTTL, nil)

	// Backend clients and folder routers.
	sonarr := arr.NewSonarr(cfg.Sonarr)
	radarr := arr.NewRadarr(cfg.Radarr)
	tvRouter := routing.NewRouter(cfg.Sonarr.Folders, cfg.Sonarr.DefaultFolder)
	movieRouter := routing.NewRouter(cfg.Radarr.Folders, cfg.Radarr.DefaultFolder)

	// Chat side.
	bot, err := discord.NewBot(cfg.Discord, sonarr, radarr, tvRouter, movieRouter, recents)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create discord bot")
	}
	poster := discord.NewPoster(bot, cfg.Discord.NotifyChannel())
	dispatcher := notify.NewDispatcher(poster, notify.Options{
		Debounce: cfg.Webhook.Debounce,
	})

	// Intake side.
	handler := api.NewHandler(cfg.Webhook.Secret, cache, recents, dispatcher, nil)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Webhook.Host, cfg.Webhook.Port),
		Handler:           api.NewRouter(handler, cfg.Webhook.RateLimitPerMinute),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddIntakeService(supervisor.NewHTTPService(server, 10*time.Second))
	tree.AddDeliveryService(bot)
	tree.AddDeliveryService(dispatcher)
	tree.AddDeliveryService(cache)
	logging.Info().Str("addr", server.Addr).Msg("services registered")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	// Drain until the supervisor finishes shutting down.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
		}
	}

	logging.Info().Msg("bot stopped")
}
