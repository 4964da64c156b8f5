package pages

import (
	"net/url"
	"strings"
)

// NormalizeURL strips the per-deployment hash label from a preview URL to
// produce the stable, shareable project URL:
//
//	https://c678f41b.myproj.pages.dev -> https://myproj.pages.dev
//
// Only the first dot-delimited host label is removed, and only when the host
// carries four or more labels. A bare project URL (myproj.pages.dev, three
// labels) is returned unchanged; so is anything that does not parse as a URL.
// Hosts with deeper nesting for other reasons would be over-stripped by this
// rule, which is acceptable for the provider's fixed preview-URL shape.
func NormalizeURL(raw string) string {
	if raw == "" {
		return raw
	}

	withScheme := raw
	if !strings.Contains(withScheme, "://") {
		withScheme = "https://" + withScheme
	}
	parsed, err := url.Parse(withScheme)
	if err != nil || parsed.Host == "" {
		return raw
	}

	labels := strings.Split(parsed.Hostname(), ".")
	if len(labels) < 4 {
		return raw
	}

	parsed.Host = strings.Join(labels[1:], ".")
	if !strings.Contains(raw, "://") {
		return parsed.Host
	}
	return parsed.String()
}

// ProjectURL returns the canonical production URL for a project name.
func ProjectURL(projectName string) string {
	return "https://" + projectName + ".pages.dev"
}
