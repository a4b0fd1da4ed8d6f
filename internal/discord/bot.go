// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

// Package discord runs the chat side of the bot: the command handlers
// users talk to and the poster the notification dispatcher delivers
// through.
//
// Command logic is kept off the discordgo types where possible; the
// session handler is a thin shim over dispatch, which works on plain
// strings and backend interfaces so tests run without a gateway
// connection.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/arr"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/config"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/dedup"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/logging"
	"github.com/lhovo/discord-sonarr-radarr-bot/internal/routing"
)

// seriesBackend is the slice of the Sonarr client the commands need.
type seriesBackend interface {
	Lookup(ctx context.Context, term string) ([]arr.Series, error)
	Add(ctx context.Context, series arr.Series, rootFolder string) (arr.Series, error)
	SeriesByTVDBID(ctx context.Context, tvdbID int64) (*arr.Series, error)
	Episodes(ctx context.Context, seriesID int64) ([]arr.Episode, error)
	Queue(ctx context.Context) ([]arr.QueueItem, error)
}

// movieBackend is the slice of the Radarr client the commands need.
type movieBackend interface {
	Lookup(ctx context.Context, term string) ([]arr.Movie, error)
	Add(ctx context.Context, movie arr.Movie, rootFolder string) (arr.Movie, error)
	MovieByTMDBID(ctx context.Context, tmdbID int64) (*arr.Movie, error)
	Queue(ctx context.Context) ([]arr.QueueItem, error)
}

// Bot owns the Discord session and the command state.
type Bot struct {
	session *discordgo.Session
	cfg     config.DiscordConfig

	sonarr      seriesBackend
	radarr      movieBackend
	tvRouter    *routing.Router
	movieRouter *routing.Router
	recents     *dedup.Recents

	searches *searchStore
}

// NewBot builds the bot and registers its message handler. The session
// is not opened until Serve runs.
func NewBot(cfg config.DiscordConfig, sonarr *arr.SonarrClient, radarr *arr.RadarrClient,
	tvRouter, movieRouter *routing.Router, recents *dedup.Recents) (*Bot, error) {

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b := &Bot{
		session:     session,
		cfg:         cfg,
		sonarr:      sonarr,
		radarr:      radarr,
		tvRouter:    tvRouter,
		movieRouter: movieRouter,
		recents:     recents,
		searches:    newSearchStore(),
	}
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logging.Info().Str("user", r.User.Username).Msg("discord session ready")
	})
	return b, nil
}

// Serve implements suture.Service: it opens the gateway connection and
// holds it until the context is canceled.
func (b *Bot) Serve(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	logging.Info().Msg("discord bot connected")

	<-ctx.Done()
	if err := b.session.Close(); err != nil {
		logging.Warn().Err(err).Msg("closing discord session")
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (b *Bot) String() string {
	return "discord-bot"
}

// onMessageCreate is the gateway shim: filter, dispatch, send replies.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !b.channelAllowed(m.ChannelID) {
		return
	}

	replies := b.dispatch(context.Background(), m.ChannelID, m.Content)
	for _, rep := range replies {
		if err := b.sendReply(s, m.ChannelID, rep); err != nil {
			logging.Error().Err(err).Str("channel", m.ChannelID).Msg("failed to send reply")
		}
	}
}

func (b *Bot) sendReply(s *discordgo.Session, channelID string, rep reply) error {
	if len(rep.embeds) > 0 {
		_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Content: rep.content,
			Embeds:  rep.embeds,
		})
		return err
	}
	_, err := s.ChannelMessageSend(channelID, rep.content)
	return err
}

// channelAllowed applies the restricted-channel list; an empty list
// means the bot answers everywhere.
func (b *Bot) channelAllowed(channelID string) bool {
	if len(b.cfg.RestrictedChannels) == 0 {
		return true
	}
	for _, id := range b.cfg.RestrictedChannels {
		if id == channelID {
			return true
		}
	}
	return false
}
