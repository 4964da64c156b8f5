package pages

import "time"

// Project represents a named deployment target on the hosting provider.
type Project struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Subdomain        string    `json:"subdomain"`
	ProductionBranch string    `json:"production_branch"`
	CreatedOn        time.Time `json:"created_on"`
}

// Deployment represents one published version of a project's files.
type Deployment struct {
	ID          string    `json:"id"`
	ProjectName string    `json:"project_name"`
	URL         string    `json:"url"`
	Environment string    `json:"environment"`
	CreatedOn   time.Time `json:"created_on"`
}

// UploadEntry is a single file in a bulk upload request, keyed by its
// content digest. Value carries the base64-encoded file bytes.
type UploadEntry struct {
	Key      string         `json:"key"`
	Value    string         `json:"value"`
	Metadata UploadMetadata `json:"metadata"`
	Base64   bool           `json:"base64"`
}

// UploadMetadata describes an uploaded file.
type UploadMetadata struct {
	ContentType string `json:"contentType"`
}

// createProjectRequest is the minimal build configuration for a project
// created by the resolver: no build command, root as the output destination.
type createProjectRequest struct {
	Name             string      `json:"name"`
	ProductionBranch string      `json:"production_branch"`
	BuildConfig      buildConfig `json:"build_config"`
}

type buildConfig struct {
	BuildCommand   string `json:"build_command"`
	DestinationDir string `json:"destination_dir"`
	RootDir        string `json:"root_dir"`
}

// uploadTokenResult is the payload of a successful upload-token request.
type uploadTokenResult struct {
	JWT string `json:"jwt"`
}

// envelope is the provider's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Errors  []envelopeError `json:"errors"`
}

type envelopeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
