// Package project resolves user-supplied deployment target names into
// existing provider projects, creating them when absent.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/webmint-project/webmint/internal/pages"
)

const (
	// MinNameLength and MaxNameLength are the provider's project name bounds.
	MinNameLength = 3
	MaxNameLength = 58

	// DefaultName is the stable, reusable target used when the caller wants
	// repeated deploys to land on the same project.
	DefaultName = "webmint-site"

	namePrefix = "webmint-"
	nameSuffix = "-app"
)

// Sanitize maps any string onto a valid provider project name: lowercase
// alphanumerics and single hyphens, starting and ending alphanumeric, length
// within [MinNameLength, MaxNameLength]. The function is total and
// idempotent: sanitizing an already-valid name returns it unchanged.
func Sanitize(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingHyphen = false
		default:
			// Any run of characters outside [a-z0-9-] collapses into one
			// hyphen, dropped again if it would lead or trail.
			pendingHyphen = true
		}
	}
	s := b.String()

	if len(s) < MinNameLength {
		s = strings.Trim(namePrefix+s+nameSuffix, "-")
		s = strings.ReplaceAll(s, "--", "-")
	}

	if len(s) > MaxNameLength {
		s = s[:MaxNameLength-len(nameSuffix)]
		s = strings.TrimRight(s, "-") + nameSuffix
	}

	return s
}

// GeneratedName returns a fresh anonymous project name combining a base36
// timestamp with a random suffix.
func GeneratedName() string {
	stamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("webmint-%s-%s", stamp, suffix)
}

// Resolver ensures a named deployment target exists on the provider.
type Resolver struct {
	client           pages.Client
	productionBranch string
	logger           *slog.Logger
}

// NewResolver creates a resolver that creates missing projects with the
// given production branch.
func NewResolver(client pages.Client, productionBranch string, logger *slog.Logger) *Resolver {
	if productionBranch == "" {
		productionBranch = "main"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client:           client,
		productionBranch: productionBranch,
		logger:           logger,
	}
}

// Resolve sanitizes the candidate name, fetches the project, and creates it
// on a not-found response. Any other provider error propagates unchanged.
// An empty candidate falls back to a generated anonymous name. The provider's
// own existence check is authoritative; nothing is cached across calls.
func (r *Resolver) Resolve(ctx context.Context, candidate string) (*pages.Project, error) {
	if candidate == "" {
		candidate = GeneratedName()
	}
	name := Sanitize(candidate)

	existing, err := r.client.GetProject(ctx, name)
	if err == nil {
		r.logger.Debug("project exists", "project", name)
		return existing, nil
	}
	if !errors.Is(err, pages.ErrProjectNotFound) {
		return nil, fmt.Errorf("failed to look up project %s: %w", name, err)
	}

	r.logger.Info("creating project", "project", name, "branch", r.productionBranch)
	created, err := r.client.CreateProject(ctx, name, r.productionBranch)
	if err != nil {
		return nil, fmt.Errorf("failed to create project %s: %w", name, err)
	}
	return created, nil
}
