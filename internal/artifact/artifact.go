// Package artifact turns generated HTML/CSS/JS into the named file set of a
// deployment attempt, plus a zip archive and an optional on-disk backup for
// post-hoc verification.
package artifact

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultInlineThreshold is the character count above which CSS or JS is
	// externalized into its own file instead of being inlined in index.html.
	DefaultInlineThreshold = 500

	// IndexFileName is the entry point file present in every deployment set.
	IndexFileName = "index.html"

	// StylesFileName holds externalized CSS.
	StylesFileName = "styles.css"

	// ScriptFileName holds externalized JS.
	ScriptFileName = "script.js"
)

// File is a single named artifact of one deployment attempt. Immutable once
// created; owned exclusively by that attempt.
type File struct {
	Name     string
	Content  []byte
	MimeType string
}

// Packager assembles the deployable file set from raw page content.
type Packager struct {
	inlineThreshold int
}

// PackagerConfig holds packager policy knobs.
type PackagerConfig struct {
	// InlineThreshold overrides DefaultInlineThreshold when positive.
	InlineThreshold int
}

// NewPackager creates a packager with the given configuration.
func NewPackager(cfg PackagerConfig) *Packager {
	threshold := cfg.InlineThreshold
	if threshold <= 0 {
		threshold = DefaultInlineThreshold
	}
	return &Packager{inlineThreshold: threshold}
}

// Package builds the file set for one deployment attempt. index.html is
// always present; styles.css and script.js appear only when the
// corresponding trimmed input is non-empty and over the inline threshold.
// Input validation (non-empty html) is the orchestrator's concern.
func (p *Packager) Package(title, html, css, js string) []File {
	css = strings.TrimSpace(css)
	js = strings.TrimSpace(js)

	var head strings.Builder
	var tail strings.Builder
	files := make([]File, 0, 3)

	if css != "" {
		if len(css) > p.inlineThreshold {
			head.WriteString(`  <link rel="stylesheet" href="styles.css">` + "\n")
			files = append(files, File{
				Name:     StylesFileName,
				Content:  []byte(css),
				MimeType: "text/css",
			})
		} else {
			head.WriteString("  <style>\n" + css + "\n  </style>\n")
		}
	}

	if js != "" {
		if len(js) > p.inlineThreshold {
			tail.WriteString(`  <script src="script.js"></script>` + "\n")
			files = append(files, File{
				Name:     ScriptFileName,
				Content:  []byte(js),
				MimeType: "text/javascript",
			})
		} else {
			tail.WriteString("  <script>\n" + js + "\n  </script>\n")
		}
	}

	index := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
%s</head>
<body>
%s
%s</body>
</html>
`, PageTitle(title), head.String(), html, tail.String())

	return append([]File{{
		Name:     IndexFileName,
		Content:  []byte(index),
		MimeType: "text/html",
	}}, files...)
}

// PageTitle derives a human-readable document title from a project name:
// hyphens become spaces and words are title-cased.
func PageTitle(name string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(name, "-", " "))
	if cleaned == "" {
		return "Webmint Site"
	}
	return cases.Title(language.English).String(cleaned)
}
