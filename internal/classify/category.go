// Package classify turns aggregated activity into behavioral signals: window
// summaries with focus sessions and distraction episodes, and the
// cross-timeframe comparison that yields the user's current state. Everything
// here is a pure function of its inputs.
package classify

import (
	"sort"
	"strings"
)

// Category classifies an entity as productive, distracting, or neutral.
// Values look like "productive_coding" or "distraction_social".
type Category string

// Neutral is the category of entities matching no keyword list.
const Neutral Category = "neutral"

// IsDistraction reports whether the category is a distraction subcategory.
func (c Category) IsDistraction() bool {
	return strings.HasPrefix(string(c), "distraction_")
}

// IsProductive reports whether the category is a productive subcategory.
func (c Category) IsProductive() bool {
	return strings.HasPrefix(string(c), "productive_")
}

// Taxonomy holds the keyword tables used for categorization. Matching is
// case-insensitive substring; productive tables are consulted before
// distraction tables, so productive wins on ambiguous overlap.
type Taxonomy struct {
	ProductiveApps     map[string][]string
	DistractionApps    map[string][]string
	DistractionDomains map[string][]string
}

// DefaultTaxonomy returns the built-in keyword tables. These are hand-tuned
// product choices, overridable from configuration.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		ProductiveApps: map[string][]string{
			"coding":   {"code", "visual studio", "vim", "emacs", "sublime", "atom", "pycharm", "intellij", "terminal"},
			"writing":  {"word", "docs", "notion", "obsidian", "notepad", "typora", "scrivener"},
			"design":   {"photoshop", "illustrator", "figma", "sketch", "canva"},
			"research": {"chrome", "firefox", "safari", "edge", "brave"},
		},
		DistractionApps: map[string][]string{
			"social": {"facebook", "twitter", "instagram", "tiktok", "snapchat", "discord", "slack"},
			"video":  {"youtube", "netflix", "twitch", "hulu", "prime video"},
			"news":   {"reddit", "news", "cnn", "bbc", "hackernews"},
			"games":  {"steam", "game", "minecraft", "fortnite", "league of legends"},
		},
		DistractionDomains: map[string][]string{
			"social": {"facebook.com", "twitter.com", "instagram.com", "tiktok.com", "discord.com"},
			"video":  {"youtube.com", "netflix.com", "twitch.tv", "hulu.com"},
			"news":   {"reddit.com", "news.ycombinator.com", "cnn.com", "bbc.com"},
			"games":  {"store.steampowered.com", "twitch.tv/directory/gaming"},
		},
	}
}

// match returns the first subcategory whose keyword list matches name.
// Subcategories are checked in sorted order so results are deterministic
// regardless of map iteration.
func match(tables map[string][]string, name string) (string, bool) {
	subcategories := make([]string, 0, len(tables))
	for sub := range tables {
		subcategories = append(subcategories, sub)
	}
	sort.Strings(subcategories)

	for _, sub := range subcategories {
		for _, keyword := range tables[sub] {
			if strings.Contains(name, keyword) {
				return sub, true
			}
		}
	}
	return "", false
}

// App categorizes an application name.
func (t Taxonomy) App(name string) Category {
	name = strings.ToLower(name)
	if sub, ok := match(t.ProductiveApps, name); ok {
		return Category("productive_" + sub)
	}
	if sub, ok := match(t.DistractionApps, name); ok {
		return Category("distraction_" + sub)
	}
	return Neutral
}

// Domain categorizes a web domain.
func (t Taxonomy) Domain(domain string) Category {
	domain = strings.ToLower(domain)
	if sub, ok := match(t.DistractionDomains, domain); ok {
		return Category("distraction_" + sub)
	}
	return Neutral
}
