package project

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/webmint-project/webmint/internal/pages"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already valid", "pricing-demo", "pricing-demo"},
		{"uppercase", "My Pricing Page", "my-pricing-page"},
		{"punctuation runs", "hello!!!world???2024", "hello-world-2024"},
		{"repeated hyphens", "a--b---c", "a-b-c"},
		{"leading and trailing junk", "--hello--", "hello"},
		{"empty", "", "webmint-app"},
		{"too short", "ab", "webmint-ab-app"},
		{"single char", "x", "webmint-x-app"},
		{"unicode", "café page", "caf-page"},
		{"only junk", "!!!", "webmint-app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeTruncation(t *testing.T) {
	long := strings.Repeat("abcde-", 20) // 120 chars
	got := Sanitize(long)
	if len(got) > MaxNameLength {
		t.Errorf("length %d exceeds %d: %q", len(got), MaxNameLength, got)
	}
	if !strings.HasSuffix(got, "-app") {
		t.Errorf("truncated name should keep the -app suffix: %q", got)
	}
}

var validName = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

func TestSanitizeProperties(t *testing.T) {
	inputs := []string{
		"", "a", "ab", "abc", "-", "---", "A B C", "!!!", "123",
		"Project Name With Spaces And CAPS",
		strings.Repeat("x", 200),
		strings.Repeat("x-", 100),
		"éèê", "emoji \U0001f680 name", "trailing-", "-leading",
		"webmint-site", "a.b.c", "under_score_name",
	}

	for _, input := range inputs {
		got := Sanitize(input)
		if len(got) < MinNameLength || len(got) > MaxNameLength {
			t.Errorf("Sanitize(%q) length %d outside [%d,%d]: %q",
				input, len(got), MinNameLength, MaxNameLength, got)
		}
		if !validName.MatchString(got) {
			t.Errorf("Sanitize(%q) = %q does not match naming constraints", input, got)
		}
		// Idempotency: sanitizing a sanitized name is a no-op.
		if again := Sanitize(got); again != got {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", input, got, again)
		}
	}
}

func TestGeneratedName(t *testing.T) {
	name := GeneratedName()
	if Sanitize(name) != name {
		t.Errorf("generated name %q should already be valid", name)
	}
	if !strings.HasPrefix(name, "webmint-") {
		t.Errorf("generated name %q missing webmint- prefix", name)
	}
	if name == GeneratedName() {
		t.Error("two generated names should not collide")
	}
}

// fakeClient implements pages.Client for resolver tests.
type fakeClient struct {
	pages.Client

	projects   map[string]*pages.Project
	getErr     error
	createErr  error
	getCalls   []string
	createdFor []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{projects: make(map[string]*pages.Project)}
}

func (f *fakeClient) GetProject(_ context.Context, name string) (*pages.Project, error) {
	f.getCalls = append(f.getCalls, name)
	if f.getErr != nil {
		return nil, f.getErr
	}
	if p, ok := f.projects[name]; ok {
		return p, nil
	}
	return nil, pages.APIError{StatusCode: http.StatusNotFound, Message: "not found", Operation: "get project"}
}

func (f *fakeClient) CreateProject(_ context.Context, name, branch string) (*pages.Project, error) {
	f.createdFor = append(f.createdFor, name)
	if f.createErr != nil {
		return nil, f.createErr
	}
	p := &pages.Project{Name: name, ProductionBranch: branch}
	f.projects[name] = p
	return p, nil
}

func TestResolverCreatesMissingProject(t *testing.T) {
	client := newFakeClient()
	resolver := NewResolver(client, "main", nil)

	proj, err := resolver.Resolve(context.Background(), "Pricing Demo")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if proj.Name != "pricing-demo" {
		t.Errorf("expected sanitized name pricing-demo, got %s", proj.Name)
	}
	if proj.ProductionBranch != "main" {
		t.Errorf("expected production branch main, got %s", proj.ProductionBranch)
	}
	if len(client.createdFor) != 1 {
		t.Fatalf("expected one create call, got %d", len(client.createdFor))
	}
}

func TestResolverReusesExistingProject(t *testing.T) {
	client := newFakeClient()
	client.projects["pricing-demo"] = &pages.Project{Name: "pricing-demo", ProductionBranch: "main"}
	resolver := NewResolver(client, "main", nil)

	if _, err := resolver.Resolve(context.Background(), "pricing-demo"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(client.createdFor) != 0 {
		t.Errorf("existing project should not be recreated, got %d creates", len(client.createdFor))
	}
}

func TestResolverPropagatesRemoteErrors(t *testing.T) {
	client := newFakeClient()
	client.getErr = pages.APIError{StatusCode: http.StatusInternalServerError, Message: "server error", Operation: "get project"}
	resolver := NewResolver(client, "main", nil)

	_, err := resolver.Resolve(context.Background(), "pricing-demo")
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	var apiErr pages.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected wrapped 500 APIError, got %v", err)
	}
	if len(client.createdFor) != 0 {
		t.Error("project must not be created on a non-404 lookup error")
	}
}

func TestResolverGeneratesNameWhenEmpty(t *testing.T) {
	client := newFakeClient()
	resolver := NewResolver(client, "main", nil)

	proj, err := resolver.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !strings.HasPrefix(proj.Name, "webmint-") {
		t.Errorf("anonymous deploy should use a generated name, got %s", proj.Name)
	}
}
