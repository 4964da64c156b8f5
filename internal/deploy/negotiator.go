package deploy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/webmint-project/webmint/internal/artifact"
	"github.com/webmint-project/webmint/internal/hashing"
	"github.com/webmint-project/webmint/internal/pages"
)

// ManifestFileName is the audit manifest included in every upload set.
const ManifestFileName = "manifest.json"

// auditManifest is the content of manifest.json: the digest of each logical
// file in the deployment set. It shares the digest algorithm with the upload
// keys, so one hashing scheme covers both purposes.
type auditManifest struct {
	Project     string            `json:"project"`
	GeneratedAt time.Time         `json:"generated_at"`
	Files       map[string]string `json:"files"`
}

// Negotiator drives the provider's upload protocol for one attempt: upload
// credential, digest-keyed bulk upload, manifest construction, and the final
// deployment-creation call.
type Negotiator struct {
	client pages.Client
	logger *slog.Logger
}

// NewNegotiator creates a negotiator on top of the provider client.
func NewNegotiator(client pages.Client, logger *slog.Logger) *Negotiator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Negotiator{client: client, logger: logger}
}

// BuildUploadSet extends the packaged files with manifest.json and the zip
// archive (when present), and returns the path-to-digest manifest covering
// exactly the files that will be uploaded. The manifest is rebuilt fresh per
// attempt, never mutated in place.
func (n *Negotiator) BuildUploadSet(projectName string, files []artifact.File, archive []byte) ([]artifact.File, map[string]string, error) {
	audit := auditManifest{
		Project:     projectName,
		GeneratedAt: time.Now().UTC(),
		Files:       make(map[string]string, len(files)+1),
	}
	for _, f := range files {
		audit.Files[f.Name] = hashing.Digest(f.Content)
	}
	if len(archive) > 0 {
		audit.Files[artifact.ArchiveName(projectName)] = hashing.Digest(archive)
	}

	auditJSON, err := json.MarshalIndent(audit, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal audit manifest: %w", err)
	}

	uploadSet := make([]artifact.File, 0, len(files)+2)
	uploadSet = append(uploadSet, files...)
	uploadSet = append(uploadSet, artifact.File{
		Name:     ManifestFileName,
		Content:  auditJSON,
		MimeType: "application/json",
	})
	if len(archive) > 0 {
		uploadSet = append(uploadSet, artifact.File{
			Name:     artifact.ArchiveName(projectName),
			Content:  archive,
			MimeType: "application/zip",
		})
	}

	manifest := make(map[string]string, len(uploadSet))
	for _, f := range uploadSet {
		manifest["/"+f.Name] = hashing.Digest(f.Content)
	}
	return uploadSet, manifest, nil
}

// FetchUploadToken obtains the short-lived upload credential. Failure here
// is fatal to the attempt.
func (n *Negotiator) FetchUploadToken(ctx context.Context, projectName string) (string, error) {
	token, err := n.client.GetUploadToken(ctx, projectName)
	if err != nil {
		return "", fmt.Errorf("failed to obtain upload credential: %w", err)
	}
	return token, nil
}

// Upload submits the upload set, each file keyed by its content digest and
// base64-encoded for transport. Failure here is fatal: no deployment is
// created without a committed upload.
func (n *Negotiator) Upload(ctx context.Context, token string, uploadSet []artifact.File) error {
	entries := make([]pages.UploadEntry, 0, len(uploadSet))
	for _, f := range uploadSet {
		entries = append(entries, pages.UploadEntry{
			Key:      hashing.Digest(f.Content),
			Value:    base64.StdEncoding.EncodeToString(f.Content),
			Metadata: pages.UploadMetadata{ContentType: f.MimeType},
			Base64:   true,
		})
	}
	if err := n.client.UploadFiles(ctx, token, entries); err != nil {
		return fmt.Errorf("file upload failed: %w", err)
	}
	n.logger.Debug("uploaded files", "count", len(entries))
	return nil
}

// CreateDeployment submits the manifest and branch metadata. Once the upload
// has committed, the files are already live at the provider, so a failure
// here is downgraded to a partial success: the result carries the canonical
// project URL and a warning instead of surfacing an error.
func (n *Negotiator) CreateDeployment(ctx context.Context, proj *pages.Project, manifest map[string]string) *Result {
	now := time.Now().UTC()

	deployment, err := n.client.CreateDeployment(ctx, proj.Name, manifest, proj.ProductionBranch)
	if err != nil {
		n.logger.Warn("deployment record creation failed after upload",
			"project", proj.Name, "error", err)
		return &Result{
			Success:     true,
			URL:         pages.NormalizeURL(pages.ProjectURL(proj.Name)),
			ProjectName: proj.Name,
			CreatedAt:   now,
			Method:      MethodUploadWithFallback,
			Warning:     fmt.Sprintf("files uploaded but deployment record creation failed: %v", err),
		}
	}

	url := deployment.URL
	if url == "" {
		url = pages.ProjectURL(proj.Name)
	}
	return &Result{
		Success:      true,
		DeploymentID: deployment.ID,
		URL:          pages.NormalizeURL(url),
		ProjectName:  proj.Name,
		CreatedAt:    now,
		Method:       MethodDirectUpload,
	}
}
