// Discord Sonarr/Radarr Bot - Media Requests and Event Notifications
// Copyright 2025 Luke H. (lhovo)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/lhovo/discord-sonarr-radarr-bot

// Package routing selects the library folder for a new media add.
// Rules come from configuration: an ordered list of keyword sets, each
// mapped to a folder path, with a default folder when nothing matches.
package routing

import (
	"strings"

	"github.com/lhovo/discord-sonarr-radarr-bot/internal/config"
)

// Router matches title text against ordered keyword rules. Matching is
// a case-insensitive substring check; the first rule with any matching
// keyword wins, so more specific rules belong earlier in the config.
type Router struct {
	rules         []rule
	defaultFolder string
}

type rule struct {
	keywords []string
	folder   string
}

// NewRouter builds a router from config rules. Keywords are lowered
// once at construction.
func NewRouter(rules []config.FolderRule, defaultFolder string) *Router {
	r := &Router{defaultFolder: defaultFolder}
	for _, fr := range rules {
		keywords := make([]string, 0, len(fr.Keywords))
		for _, kw := range fr.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, strings.ToLower(kw))
			}
		}
		if len(keywords) == 0 {
			continue
		}
		r.rules = append(r.rules, rule{keywords: keywords, folder: fr.Folder})
	}
	return r
}

// Route returns the folder for the given text hints, typically the
// title and any genre tags. The first rule whose keyword appears in
// any hint wins; otherwise the default folder is returned.
func (r *Router) Route(hints ...string) string {
	lowered := make([]string, 0, len(hints))
	for _, h := range hints {
		if h != "" {
			lowered = append(lowered, strings.ToLower(h))
		}
	}

	for _, rl := range r.rules {
		for _, kw := range rl.keywords {
			for _, h := range lowered {
				if strings.Contains(h, kw) {
					return rl.folder
				}
			}
		}
	}
	return r.defaultFolder
}

// DefaultFolder returns the fallback folder.
func (r *Router) DefaultFolder() string {
	return r.defaultFolder
}
