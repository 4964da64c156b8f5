package deploy

import "time"

// Method tags describing which code path produced a result.
const (
	// MethodDirectUpload is the fully successful path: upload plus a created
	// deployment record.
	MethodDirectUpload = "direct-upload"

	// MethodUploadWithFallback marks a partial success: files uploaded but
	// deployment-record creation failed, so the URL is derived from the
	// project name instead of the provider response.
	MethodUploadWithFallback = "upload-with-fallback"
)

// Result is the outcome of one deployment attempt. It is a plain
// serializable record so callers can persist it alongside the originating
// prompt; the pipeline itself never stores it.
type Result struct {
	Success      bool      `json:"success"`
	DeploymentID string    `json:"deployment_id,omitempty"`
	URL          string    `json:"url"`
	ProjectName  string    `json:"project_name"`
	CreatedAt    time.Time `json:"created_at"`
	Method       string    `json:"method"`
	Warning      string    `json:"warning,omitempty"`
}

// ProjectInfo is the read-only project listing entry returned by
// ListProjects, with URL normalization already applied.
type ProjectInfo struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Domain            string           `json:"domain"`
	CreatedAt         time.Time        `json:"created_at"`
	RecentDeployments []DeploymentInfo `json:"recent_deployments"`
}

// DeploymentInfo is a single deployment in a project listing.
type DeploymentInfo struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Environment string    `json:"environment"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidationError reports bad caller input, raised before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}
