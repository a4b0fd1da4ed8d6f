// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// maxMessageLength is Discord's content limit per message.
const maxMessageLength = 2000

// messageSender is the single session method the poster needs;
// satisfied by *discordgo.Session.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Poster delivers notification batches to one channel. It implements
// the dispatcher's Poster interface.
type Poster struct {
	sender    messageSender
	channelID string
}

// NewPoster builds a poster over the bot's session.
func NewPoster(b *Bot, channelID string) *Poster {
	return &Poster{sender: b.session, channelID: channelID}
}

// Post joins the batch into as few messages as the length limit
// allows and sends them in order.
func (p *Poster) Post(ctx context.Context, lines []string) error {
	if p.channelID == "" {
		return fmt.Errorf("no notification channel configured")
	}

	for _, content := range chunkLines(lines, maxMessageLength) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := p.sender.ChannelMessageSend(p.channelID, content); err != nil {
			return fmt.Errorf("posting to channel %s: %w", p.channelID, err)
		}
	}
	return nil
}

// chunkLines packs lines into newline-joined chunks no longer than
// limit. A single oversized line is truncated rather than split.
func chunkLines(lines []string, limit int) []string {
	var chunks []string
	var current strings.Builder

	for _, line := range lines {
		if len(line) > limit {
			line = line[:limit-3] + "..."
		}
		if current.Len() > 0 && current.Len()+1+len(line) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
