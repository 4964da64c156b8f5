package deploy

import (
	"encoding/json"
	"testing"

	"github.com/webmint-project/webmint/internal/artifact"
	"github.com/webmint-project/webmint/internal/hashing"
)

func TestBuildUploadSet(t *testing.T) {
	files := []artifact.File{
		{Name: "index.html", Content: []byte("<html></html>"), MimeType: "text/html"},
		{Name: "styles.css", Content: []byte("body{}"), MimeType: "text/css"},
	}
	archive := []byte("zip-bytes")

	n := NewNegotiator(nil, nil)
	uploadSet, manifest, err := n.BuildUploadSet("pricing-demo", files, archive)
	if err != nil {
		t.Fatalf("BuildUploadSet returned error: %v", err)
	}

	// Upload set: the page files plus manifest.json plus the archive.
	if len(uploadSet) != 4 {
		t.Fatalf("expected 4 upload files, got %d", len(uploadSet))
	}

	// Manifest keys are exactly the uploaded paths, with leading slash.
	wantKeys := []string{
		"/index.html",
		"/styles.css",
		"/manifest.json",
		"/pricing-demo-deployment.zip",
	}
	if len(manifest) != len(wantKeys) {
		t.Fatalf("expected %d manifest entries, got %d: %v", len(wantKeys), len(manifest), manifest)
	}
	for _, key := range wantKeys {
		if _, ok := manifest[key]; !ok {
			t.Errorf("manifest missing key %s", key)
		}
	}

	// Every manifest value is the digest of the corresponding uploaded bytes.
	for _, f := range uploadSet {
		want := hashing.Digest(f.Content)
		if got := manifest["/"+f.Name]; got != want {
			t.Errorf("manifest digest for %s = %s, want %s", f.Name, got, want)
		}
	}

	// manifest.json itself lists the digests of the logical files.
	var audit struct {
		Project string            `json:"project"`
		Files   map[string]string `json:"files"`
	}
	var manifestFile *artifact.File
	for i := range uploadSet {
		if uploadSet[i].Name == ManifestFileName {
			manifestFile = &uploadSet[i]
		}
	}
	if manifestFile == nil {
		t.Fatal("manifest.json missing from upload set")
	}
	if err := json.Unmarshal(manifestFile.Content, &audit); err != nil {
		t.Fatalf("manifest.json is not valid JSON: %v", err)
	}
	if audit.Project != "pricing-demo" {
		t.Errorf("audit manifest project = %s", audit.Project)
	}
	if audit.Files["index.html"] != hashing.Digest([]byte("<html></html>")) {
		t.Errorf("audit manifest digest mismatch for index.html")
	}
	if audit.Files["pricing-demo-deployment.zip"] != hashing.Digest(archive) {
		t.Errorf("audit manifest should cover the archive")
	}
}

func TestBuildUploadSetWithoutArchive(t *testing.T) {
	files := []artifact.File{
		{Name: "index.html", Content: []byte("<html></html>"), MimeType: "text/html"},
	}

	n := NewNegotiator(nil, nil)
	uploadSet, manifest, err := n.BuildUploadSet("demo", files, nil)
	if err != nil {
		t.Fatalf("BuildUploadSet returned error: %v", err)
	}
	if len(uploadSet) != 2 {
		t.Fatalf("expected index.html + manifest.json, got %d files", len(uploadSet))
	}
	if _, ok := manifest["/demo-deployment.zip"]; ok {
		t.Error("manifest must not reference an archive that was not built")
	}
}

func TestBuildUploadSetFreshPerAttempt(t *testing.T) {
	n := NewNegotiator(nil, nil)
	files := []artifact.File{{Name: "index.html", Content: []byte("v1")}}

	_, first, err := n.BuildUploadSet("demo", files, nil)
	if err != nil {
		t.Fatal(err)
	}
	files[0].Content = []byte("v2")
	_, second, err := n.BuildUploadSet("demo", files, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first["/index.html"] == second["/index.html"] {
		t.Error("manifest must be rebuilt from current content, not reused")
	}
}
