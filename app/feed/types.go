package feed

import (
	"cmp"
)

// Channel holds the channel-level metadata of a feed. Empty fields fall back
// to the package defaults when the feed is rendered.
type Channel struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"` // base URL without trailing slash
	Language    string `yaml:"language"`
}

func (c Channel) withDefaults() Channel {
	return Channel{
		Title:       cmp.Or(c.Title, DefaultTitle),
		Description: cmp.Or(c.Description, DefaultDescription),
		Link:        cmp.Or(c.Link, DefaultLink),
		Language:    cmp.Or(c.Language, DefaultLanguage),
	}
}

// Merge returns c with its empty fields filled from fallback.
func (c Channel) Merge(fallback Channel) Channel {
	return Channel{
		Title:       cmp.Or(c.Title, fallback.Title),
		Description: cmp.Or(c.Description, fallback.Description),
		Link:        cmp.Or(c.Link, fallback.Link),
		Language:    cmp.Or(c.Language, fallback.Language),
	}
}

// Profile names served by the HTTP API.
const (
	ProfileRSS       = "rss"
	ProfilePinterest = "pinterest"
)

type profilesFile struct {
	Profiles map[string]Channel `yaml:"profiles"`
}
