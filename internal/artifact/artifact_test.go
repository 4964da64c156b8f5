package artifact

import (
	"strings"
	"testing"
)

func fileNames(files []File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func findFile(t *testing.T, files []File, name string) File {
	t.Helper()
	for _, f := range files {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("file %s not found in %v", name, fileNames(files))
	return File{}
}

func TestPackageAlwaysEmitsIndex(t *testing.T) {
	p := NewPackager(PackagerConfig{})
	files := p.Package("demo", "<h1>Hi</h1>", "", "")

	if len(files) != 1 {
		t.Fatalf("expected only index.html, got %v", fileNames(files))
	}
	index := findFile(t, files, IndexFileName)
	content := string(index.Content)
	if !strings.Contains(content, "<!DOCTYPE html>") {
		t.Error("index.html should be a full document")
	}
	if !strings.Contains(content, "<h1>Hi</h1>") {
		t.Error("index.html should contain the page body")
	}
	if strings.Contains(content, "<style>") || strings.Contains(content, "<script") {
		t.Error("empty css/js should produce no style or script blocks")
	}
	if index.MimeType != "text/html" {
		t.Errorf("expected text/html, got %s", index.MimeType)
	}
}

func TestPackageInlineAndExternalize(t *testing.T) {
	smallCSS := "body { margin: 0; }"
	largeCSS := strings.Repeat("a", 600)
	smallJS := "console.log('hi');"
	largeJS := strings.Repeat("b", 600)

	tests := []struct {
		name       string
		css, js    string
		wantFiles  []string
		wantInHead string
		wantInBody string
	}{
		{
			name:       "small css inlined",
			css:        smallCSS,
			wantFiles:  []string{IndexFileName},
			wantInHead: "<style>",
		},
		{
			name:       "large css externalized",
			css:        largeCSS,
			wantFiles:  []string{IndexFileName, StylesFileName},
			wantInHead: `<link rel="stylesheet" href="styles.css">`,
		},
		{
			name:       "small js inlined",
			js:         smallJS,
			wantFiles:  []string{IndexFileName},
			wantInBody: "<script>",
		},
		{
			name:       "large js externalized",
			js:         largeJS,
			wantFiles:  []string{IndexFileName, ScriptFileName},
			wantInBody: `<script src="script.js"></script>`,
		},
		{
			name:      "both externalized",
			css:       largeCSS,
			js:        largeJS,
			wantFiles: []string{IndexFileName, StylesFileName, ScriptFileName},
		},
		{
			name:      "whitespace-only treated as empty",
			css:       "   \n\t  ",
			js:        "  ",
			wantFiles: []string{IndexFileName},
		},
	}

	p := NewPackager(PackagerConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := p.Package("demo", "<p>body</p>", tt.css, tt.js)

			got := fileNames(files)
			if len(got) != len(tt.wantFiles) {
				t.Fatalf("expected files %v, got %v", tt.wantFiles, got)
			}
			for _, want := range tt.wantFiles {
				findFile(t, files, want)
			}

			index := string(findFile(t, files, IndexFileName).Content)
			if tt.wantInHead != "" && !strings.Contains(index, tt.wantInHead) {
				t.Errorf("index.html missing %q", tt.wantInHead)
			}
			if tt.wantInBody != "" && !strings.Contains(index, tt.wantInBody) {
				t.Errorf("index.html missing %q", tt.wantInBody)
			}
		})
	}
}

func TestPackageThresholdBoundary(t *testing.T) {
	p := NewPackager(PackagerConfig{})

	// Exactly at the threshold stays inline; one over is externalized.
	atThreshold := strings.Repeat("c", DefaultInlineThreshold)
	files := p.Package("demo", "<p>x</p>", atThreshold, "")
	if len(files) != 1 {
		t.Errorf("css at threshold should be inlined, got %v", fileNames(files))
	}

	overThreshold := strings.Repeat("c", DefaultInlineThreshold+1)
	files = p.Package("demo", "<p>x</p>", overThreshold, "")
	if len(files) != 2 {
		t.Errorf("css over threshold should be externalized, got %v", fileNames(files))
	}
}

func TestPackageCustomThreshold(t *testing.T) {
	p := NewPackager(PackagerConfig{InlineThreshold: 10})
	files := p.Package("demo", "<p>x</p>", "body { color: red; }", "")
	if len(files) != 2 {
		t.Errorf("custom threshold should externalize 20-char css, got %v", fileNames(files))
	}
	styles := findFile(t, files, StylesFileName)
	if styles.MimeType != "text/css" {
		t.Errorf("expected text/css, got %s", styles.MimeType)
	}
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"pricing-demo", "Pricing Demo"},
		{"my-cool-site", "My Cool Site"},
		{"", "Webmint Site"},
		{"single", "Single"},
	}
	for _, tt := range tests {
		if got := PageTitle(tt.input); got != tt.want {
			t.Errorf("PageTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
