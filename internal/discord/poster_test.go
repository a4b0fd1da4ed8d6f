// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package discord

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type fakeSender struct {
	sent []string
}

func (f *fakeSender) ChannelMessageSend(_ string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, content)
	return &discordgo.Message{}, nil
}

func TestPosterJoinsBatchIntoOneMessage(t *testing.T) {
	sender := &fakeSender{}
	p := &Poster{sender: sender, channelID: "42"}

	err := p.Post(context.Background(), []string{
		"Downloaded: Test Show S01E01",
		"Downloaded: Test Show S01E02",
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if want := "Downloaded: Test Show S01E01\nDownloaded: Test Show S01E02"; sender.sent[0] != want {
		t.Fatalf("message = %q, want %q", sender.sent[0], want)
	}
}

func TestPosterSplitsAtLengthLimit(t *testing.T) {
	sender := &fakeSender{}
	p := &Poster{sender: sender, channelID: "42"}

	long := strings.Repeat("x", 1500)
	if err := p.Post(context.Background(), []string{long, long}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d messages, want split into 2", len(sender.sent))
	}
}

func TestPosterRequiresChannel(t *testing.T) {
	p := &Poster{sender: &fakeSender{}}
	if err := p.Post(context.Background(), []string{"hi"}); err == nil {
		t.Fatal("Post without channel should fail")
	}
}
