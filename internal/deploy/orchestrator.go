// Package deploy implements the deployment pipeline: it packages generated
// page content, negotiates the provider's upload protocol, and narrates each
// attempt as an ordered progress stream.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/webmint-project/webmint/internal/artifact"
	"github.com/webmint-project/webmint/internal/pages"
	"github.com/webmint-project/webmint/internal/progress"
	"github.com/webmint-project/webmint/internal/project"
)

// Options holds orchestration policy knobs.
type Options struct {
	// RequireAlias rejects deploys without a caller-supplied project name,
	// preventing a proliferation of anonymous generated projects.
	RequireAlias bool
}

// Orchestrator sequences one deployment attempt: validate, resolve the
// project, package artifacts, fetch the upload credential, upload, create
// the deployment. Steps run strictly in order; each remote call gates the
// next. The single deliberate exception to fail-fast: a deployment-creation
// failure after a committed upload completes as a partial success.
type Orchestrator struct {
	client     pages.Client
	resolver   *project.Resolver
	packager   *artifact.Packager
	sink       artifact.Sink
	negotiator *Negotiator
	logger     *slog.Logger
	opts       Options
}

// NewOrchestrator wires the pipeline components together.
func NewOrchestrator(client pages.Client, resolver *project.Resolver, packager *artifact.Packager, sink artifact.Sink, logger *slog.Logger, opts Options) *Orchestrator {
	if sink == nil {
		sink = artifact.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		client:     client,
		resolver:   resolver,
		packager:   packager,
		sink:       sink,
		negotiator: NewNegotiator(client, logger),
		logger:     logger,
		opts:       opts,
	}
}

// Deploy runs one deployment attempt in the background and returns its event
// stream. The stream delivers status events with non-decreasing progress and
// exactly one terminal event: complete carrying a *Result, or error.
// Cancelling ctx is advisory: it stops the attempt at the next remote call
// but retracts nothing already committed at the provider.
func (o *Orchestrator) Deploy(ctx context.Context, nameHint, html, css, js string) <-chan progress.Event {
	emitter := progress.NewEmitter(16)
	go o.run(ctx, emitter, nameHint, html, css, js)
	return emitter.Events()
}

func (o *Orchestrator) run(ctx context.Context, emitter *progress.Emitter, nameHint, html, css, js string) {
	emitter.Status("validating input", 5)
	if err := o.validate(nameHint, html); err != nil {
		emitter.Error(err.Error())
		return
	}

	emitter.Status("resolving project", 10)
	proj, err := o.resolver.Resolve(ctx, nameHint)
	if err != nil {
		emitter.Error(err.Error())
		return
	}

	emitter.Status("packaging artifacts", 30)
	files := o.packager.Package(proj.Name, html, css, js)

	// Archive and backup are diagnostic. Failures are logged and the attempt
	// carries on without them.
	archive, err := artifact.BuildArchive(files)
	if err != nil {
		o.logger.Warn("archive creation failed", "project", proj.Name, "error", err)
		archive = nil
	}
	if dir, err := o.sink.Store(proj.Name, files, archive); err != nil {
		o.logger.Warn("artifact backup failed", "project", proj.Name, "error", err)
	} else if dir != "" {
		o.logger.Debug("artifacts backed up", "dir", dir)
	}

	uploadSet, manifest, err := o.negotiator.BuildUploadSet(proj.Name, files, archive)
	if err != nil {
		emitter.Error(err.Error())
		return
	}

	emitter.Status("fetching upload credential", 50)
	token, err := o.negotiator.FetchUploadToken(ctx, proj.Name)
	if err != nil {
		emitter.Error(err.Error())
		return
	}

	emitter.Status(fmt.Sprintf("uploading %d files", len(uploadSet)), 70)
	if err := o.negotiator.Upload(ctx, token, uploadSet); err != nil {
		emitter.Error(err.Error())
		return
	}

	emitter.Status("creating deployment", 90)
	result := o.negotiator.CreateDeployment(ctx, proj, manifest)

	message := "deployment complete"
	if result.Warning != "" {
		message = "deployment complete with warning"
	}
	o.logger.Info(message,
		"project", result.ProjectName,
		"url", result.URL,
		"method", result.Method)
	emitter.Complete(message, result)
}

// validate rejects bad caller input before any remote call is made.
func (o *Orchestrator) validate(nameHint, html string) error {
	if strings.TrimSpace(html) == "" {
		return ValidationError{Field: "html", Reason: "content must be a non-empty string"}
	}
	if o.opts.RequireAlias && strings.TrimSpace(nameHint) == "" {
		return ValidationError{Field: "project name", Reason: "a project alias is required"}
	}
	return nil
}

// ListProjects returns all projects with their most recent deployments,
// URL-normalized. A listing failure for one project's deployments does not
// fail the whole listing.
func (o *Orchestrator) ListProjects(ctx context.Context) ([]ProjectInfo, error) {
	projects, err := o.client.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	infos := make([]ProjectInfo, 0, len(projects))
	for _, p := range projects {
		info := ProjectInfo{
			ID:        p.ID,
			Name:      p.Name,
			Domain:    pages.NormalizeURL(pages.ProjectURL(p.Name)),
			CreatedAt: p.CreatedOn,
		}
		deployments, err := o.client.ListDeployments(ctx, p.Name)
		if err != nil {
			o.logger.Warn("failed to list deployments", "project", p.Name, "error", err)
		}
		for i, d := range deployments {
			if i >= 5 {
				break
			}
			info.RecentDeployments = append(info.RecentDeployments, DeploymentInfo{
				ID:          d.ID,
				URL:         pages.NormalizeURL(d.URL),
				Environment: d.Environment,
				CreatedAt:   d.CreatedOn,
			})
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// DeleteProject removes a project at the provider. Plain passthrough, no
// orchestration state machine involved.
func (o *Orchestrator) DeleteProject(ctx context.Context, name string) error {
	if err := o.client.DeleteProject(ctx, project.Sanitize(name)); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// DeleteDeployment removes a single deployment. Plain passthrough.
func (o *Orchestrator) DeleteDeployment(ctx context.Context, projectName, deploymentID string) error {
	if err := o.client.DeleteDeployment(ctx, project.Sanitize(projectName), deploymentID); err != nil {
		return fmt.Errorf("failed to delete deployment: %w", err)
	}
	return nil
}
