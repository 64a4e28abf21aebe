package utils

import (
	"net/url"

	"github.com/gosimple/slug"
)

// NormalizeSlug creates a URL-friendly slug. Handles all Unicode characters,
// so submitter names in any language produce stable identifiers.
func NormalizeSlug(text string) string {
	if text == "" {
		return ""
	}
	return slug.Make(text)
}

// ProcessSlug builds a display identifier for a submission from the
// submitter name and the host of the submitted URL. Used in logs and audit
// rows, never as a lookup key.
func ProcessSlug(username, rawURL string) string {
	if username == "" {
		username = "anonymous"
	}

	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	text := username
	if host != "" {
		text += " " + host
	}
	return NormalizeSlug(text)
}
