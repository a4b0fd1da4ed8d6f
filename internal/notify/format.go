// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

package notify

import (
	"fmt"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/events"
)

// Format renders one admitted event as a notification line.
//
// Series events read "Grabbed: Show Name S03E01"; movie events read
// "Grabbed: Movie Name (2024)". The label is omitted when the backend
// did not supply one.
func Format(ev events.Event) string {
	prefix := kindPrefix(ev.Kind)

	switch {
	case ev.Label == "":
		return fmt.Sprintf("%s: %s", prefix, ev.Title)
	case ev.Source == events.SourceMovie:
		return fmt.Sprintf("%s: %s (%s)", prefix, ev.Title, ev.Label)
	default:
		return fmt.Sprintf("%s: %s %s", prefix, ev.Title, ev.Label)
	}
}

func kindPrefix(kind events.Kind) string {
	switch kind {
	case events.KindGrabbed:
		return "Grabbed"
	case events.KindDownloaded:
		return "Downloaded"
	case events.KindFailed:
		return "Failed"
	}
	return "Event"
}
