// Package pages provides a client for the static-hosting provider API used
// to publish generated sites: project lifecycle, content-addressed file
// upload, and deployment creation.
package pages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the default provider API base URL.
	DefaultBaseURL = "https://api.cloudflare.com/client/v4"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is the default User-Agent header.
	DefaultUserAgent = "webmint/1.0"
)

// Sentinel errors for provider operations.
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrDeploymentNotFound = errors.New("deployment not found")
	ErrMissingAccountID   = errors.New("account ID cannot be empty")
	ErrMissingAPIToken    = errors.New("API token cannot be empty")
)

// APIError represents a non-success response from the provider.
type APIError struct {
	StatusCode int
	Message    string
	Operation  string
}

func (e APIError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("pages API error during %s: %d %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("pages API error: %d %s", e.StatusCode, e.Message)
}

func (e APIError) Is(target error) bool {
	if target == ErrProjectNotFound && e.StatusCode == http.StatusNotFound && e.Operation == "get project" {
		return true
	}
	if target == ErrDeploymentNotFound && e.StatusCode == http.StatusNotFound && e.Operation == "get deployment" {
		return true
	}
	return false
}

// HTTPClient defines the interface for HTTP operations.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client defines the provider operations the deployment pipeline depends on.
type Client interface {
	// GetProject fetches a project by name. Returns an error matching
	// ErrProjectNotFound when the project does not exist.
	GetProject(ctx context.Context, name string) (*Project, error)

	// CreateProject creates a project with minimal build configuration.
	CreateProject(ctx context.Context, name, productionBranch string) (*Project, error)

	// ListProjects returns all projects on the account.
	ListProjects(ctx context.Context) ([]Project, error)

	// DeleteProject removes a project and all its deployments.
	DeleteProject(ctx context.Context, name string) error

	// GetUploadToken fetches the short-lived credential for file uploads.
	GetUploadToken(ctx context.Context, projectName string) (string, error)

	// UploadFiles submits digest-keyed files to the bulk-upload endpoint.
	UploadFiles(ctx context.Context, token string, entries []UploadEntry) error

	// CreateDeployment submits the path-to-digest manifest and branch
	// metadata, creating a new deployment.
	CreateDeployment(ctx context.Context, projectName string, manifest map[string]string, branch string) (*Deployment, error)

	// GetDeployment fetches a single deployment by ID.
	GetDeployment(ctx context.Context, projectName, deploymentID string) (*Deployment, error)

	// ListDeployments returns the deployments of a project, newest first.
	ListDeployments(ctx context.Context, projectName string) ([]Deployment, error)

	// DeleteDeployment removes a single deployment.
	DeleteDeployment(ctx context.Context, projectName, deploymentID string) error
}

// Config holds configuration for the provider client.
type Config struct {
	BaseURL    string
	AccountID  string
	APIToken   string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient HTTPClient
}

// DefaultConfig returns a default configuration. AccountID and APIToken must
// still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// client implements the Client interface against the provider's REST API.
type client struct {
	config Config
}

// NewClient creates a new provider API client.
func NewClient(config Config) (Client, error) {
	if config.AccountID == "" {
		return nil, ErrMissingAccountID
	}
	if config.APIToken == "" {
		return nil, ErrMissingAPIToken
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{
			Timeout: config.Timeout,
		}
	}
	return &client{config: config}, nil
}

// projectsPath returns the account-scoped projects path, optionally extended
// with additional segments.
func (c *client) projectsPath(segments ...string) (string, error) {
	parts := append([]string{c.config.BaseURL, "accounts", c.config.AccountID, "pages", "projects"}, segments...)
	return url.JoinPath(parts[0], parts[1:]...)
}

// doJSON performs a request and decodes the envelope result into out when
// out is non-nil. The bearer token defaults to the account API token.
func (c *client) doJSON(ctx context.Context, method, apiURL, operation, bearer string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", operation, err)
	}
	if bearer == "" {
		bearer = c.config.APIToken
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return APIError{StatusCode: 0, Message: err.Error(), Operation: operation}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp),
			Operation:  operation,
		}
	}

	if out == nil {
		return nil
	}

	var wrapped struct {
		envelope
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapped); err != nil {
		return APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to decode response: %v", err),
			Operation:  operation,
		}
	}
	if !wrapped.Success {
		return APIError{
			StatusCode: resp.StatusCode,
			Message:    firstErrorMessage(wrapped.envelope),
			Operation:  operation,
		}
	}
	if err := json.Unmarshal(wrapped.Result, out); err != nil {
		return APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to decode result: %v", err),
			Operation:  operation,
		}
	}
	return nil
}

// readErrorMessage extracts the first provider error message from a
// non-success response body, falling back to the HTTP status line.
func readErrorMessage(resp *http.Response) string {
	var wrapped envelope
	if err := json.NewDecoder(resp.Body).Decode(&wrapped); err == nil {
		if msg := firstErrorMessage(wrapped); msg != "" {
			return msg
		}
	}
	return resp.Status
}

func firstErrorMessage(env envelope) string {
	if len(env.Errors) > 0 {
		return env.Errors[0].Message
	}
	return ""
}

func (c *client) GetProject(ctx context.Context, name string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	apiURL, err := c.projectsPath(name)
	if err != nil {
		return nil, fmt.Errorf("failed to construct API URL: %w", err)
	}
	var project Project
	if err := c.doJSON(ctx, http.MethodGet, apiURL, "get project", "", nil, "", &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *client) CreateProject(ctx context.Context, name, productionBranch string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	if productionBranch == "" {
		productionBranch = "main"
	}
	apiURL, err := c.projectsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to construct API URL: %w", err)
	}
	payload, err := json.Marshal(createProjectRequest{
		Name:             name,
		ProductionBranch: productionBranch,
		BuildConfig: buildConfig{
			BuildCommand:   "",
			DestinationDir: "",
			RootDir:        "/",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project request: %w", err)
	}
	var project Project
	if err := c.doJSON(ctx, http.MethodPost, apiURL, "create project", "", bytes.NewReader(payload), "application/json", &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *client) ListProjects(ctx context.Context) ([]Project, error) {
	apiURL, err := c.projectsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to construct API URL: %w", err)
	}
	var projects []Project
	if err := c.doJSON(ctx, http.MethodGet, apiURL, "list projects", "", nil, "", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *client) DeleteProject(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	apiURL, err := c.projectsPath(name)
	if err != nil {
		return fmt.Errorf("failed to construct API URL: %w", err)
	}
	return c.doJSON(ctx, http.MethodDelete, apiURL, "delete project", "", nil, "", nil)
}

func (c *client) GetUploadToken(ctx context.Context, projectName string) (string, error) {
	if projectName == "" {
		return "", fmt.Errorf("project name cannot be empty")
	}
	apiURL, err := c.projectsPath(projectName, "upload-token")
	if err != nil {
		return "", fmt.Errorf("failed to construct API URL: %w", err)
	}
	var result uploadTokenResult
	if err := c.doJSON(ctx, http.MethodGet, apiURL, "get upload token", "", nil, "", &result); err != nil {
		return "", err
	}
	if result.JWT == "" {
		return "", APIError{
			StatusCode: http.StatusOK,
			Message:    "upload token response contained no credential",
			Operation:  "get upload token",
		}
	}
	return result.JWT, nil
}

func (c *client) UploadFiles(ctx context.Context, token string, entries []UploadEntry) error {
	if token == "" {
		return fmt.Errorf("upload token cannot be empty")
	}
	if len(entries) == 0 {
		return fmt.Errorf("upload requires at least one file")
	}
	apiURL, err := url.JoinPath(c.config.BaseURL, "pages", "assets", "upload")
	if err != nil {
		return fmt.Errorf("failed to construct API URL: %w", err)
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal upload entries: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, apiURL, "upload files", token, bytes.NewReader(payload), "application/json", nil)
}

func (c *client) CreateDeployment(ctx context.Context, projectName string, manifest map[string]string, branch string) (*Deployment, error) {
	if projectName == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	if len(manifest) == 0 {
		return nil, fmt.Errorf("manifest cannot be empty")
	}
	apiURL, err := c.projectsPath(projectName, "deployments")
	if err != nil {
		return nil, fmt.Errorf("failed to construct API URL: %w", err)
	}

	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}

	// The deployment endpoint takes multipart form data: the manifest as a
	// JSON field plus the branch the deployment belongs to.
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("manifest", string(manifestJSON)); err != nil {
		return nil, fmt.Errorf("failed to write manifest field: %w", err)
	}
	if branch != "" {
		if err := form.WriteField("branch", branch); err != nil {
			return nil, fmt.Errorf("failed to write branch field: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	var deployment Deployment
	if err := c.doJSON(ctx, http.MethodPost, apiURL, "create deployment", "", &body, form.FormDataContentType(), &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

func (c *client) GetDeployment(ctx context.Context, projectName, deploymentID string) (*Deployment, error) {
	if projectName == "" || deploymentID == "" {
		return nil, fmt.Errorf("project name and deployment ID cannot be empty")
	}
	apiURL, err := c.projectsPath(projectName, "deployments", deploymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to construct API URL: %w", err)
	}
	var deployment Deployment
	if err := c.doJSON(ctx, http.MethodGet, apiURL, "get deployment", "", nil, "", &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

func (c *client) ListDeployments(ctx context.Context, projectName string) ([]Deployment, error) {
	if projectName == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	apiURL, err := c.projectsPath(projectName, "deployments")
	if err != nil {
		return nil, fmt.Errorf("failed to construct API URL: %w", err)
	}
	var deployments []Deployment
	if err := c.doJSON(ctx, http.MethodGet, apiURL, "list deployments", "", nil, "", &deployments); err != nil {
		return nil, err
	}
	return deployments, nil
}

func (c *client) DeleteDeployment(ctx context.Context, projectName, deploymentID string) error {
	if projectName == "" || deploymentID == "" {
		return fmt.Errorf("project name and deployment ID cannot be empty")
	}
	apiURL, err := c.projectsPath(projectName, "deployments", deploymentID)
	if err != nil {
		return fmt.Errorf("failed to construct API URL: %w", err)
	}
	return c.doJSON(ctx, http.MethodDelete, apiURL, "delete deployment", "", nil, "", nil)
}
