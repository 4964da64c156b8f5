// Package generate provides a client for the hosted language-model service
// that turns a natural-language prompt into page content. The deployment
// pipeline consumes only the three strings this client returns.
package generate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/webmint-project/webmint/internal/progress"
)

const (
	// DefaultTimeout is the default HTTP client timeout. Generation calls
	// are slow; the transport layer owns the deadline.
	DefaultTimeout = 120 * time.Second

	// DefaultUserAgent is the default User-Agent header.
	DefaultUserAgent = "webmint/1.0"

	// DefaultModel is used when the configuration names no model.
	DefaultModel = "webmint-page-v1"
)

// Sentinel errors for generation operations.
var (
	ErrEmptyPrompt   = errors.New("prompt cannot be empty")
	ErrMissingURL    = errors.New("generation base URL cannot be empty")
	ErrEmptyResponse = errors.New("generation service returned no content")
)

// APIError represents a non-success response from the generation service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e APIError) Error() string {
	return fmt.Sprintf("generation API error: %d %s", e.StatusCode, e.Message)
}

// PageContent is the generated page split into its three parts.
type PageContent struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// HTTPClient defines the interface for HTTP operations.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client defines the generation operations.
type Client interface {
	// Generate returns the complete page content for a prompt.
	Generate(ctx context.Context, prompt string) (*PageContent, error)

	// GenerateStream frames the generation as progress events on the given
	// emitter: status events while tokens arrive, then a terminal complete
	// event carrying the assembled *PageContent (or an error event).
	GenerateStream(ctx context.Context, prompt string, emitter *progress.Emitter)
}

// Config holds configuration for the generation client.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient HTTPClient
}

// client implements the Client interface.
type client struct {
	config Config
}

// NewClient creates a new generation service client.
func NewClient(config Config) (Client, error) {
	if config.BaseURL == "" {
		return nil, ErrMissingURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
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

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream,omitempty"`
}

// streamChunk is one line of a streaming response. Delta chunks append text
// to one of the three content fields; the done chunk closes the stream.
type streamChunk struct {
	Type  string `json:"type"` // "delta" or "done"
	Field string `json:"field,omitempty"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

func (c *client) newRequest(ctx context.Context, prompt string, stream bool) (*http.Request, error) {
	apiURL, err := url.JoinPath(c.config.BaseURL, "v1", "generate")
	if err != nil {
		return nil, fmt.Errorf("failed to construct API URL: %w", err)
	}
	payload, err := json.Marshal(generateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Stream: stream,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	return req, nil
}

// Generate returns the complete page content for a prompt.
func (c *client) Generate(ctx context.Context, prompt string) (*PageContent, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	req, err := c.newRequest(ctx, prompt, false)
	if err != nil {
		return nil, err
	}
	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, APIError{StatusCode: 0, Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var content PageContent
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to decode response: %v", err),
		}
	}
	if content.HTML == "" {
		return nil, ErrEmptyResponse
	}
	return &content, nil
}

// GenerateStream frames a streaming generation as progress events. The
// service sends newline-delimited JSON chunks; each delta appends to one of
// the three content fields. Progress is an estimate that approaches but
// never reaches 100 until the terminal event.
func (c *client) GenerateStream(ctx context.Context, prompt string, emitter *progress.Emitter) {
	if prompt == "" {
		emitter.Error(ErrEmptyPrompt.Error())
		return
	}
	req, err := c.newRequest(ctx, prompt, true)
	if err != nil {
		emitter.Error(err.Error())
		return
	}

	emitter.Status("contacting generation service", 5)
	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		emitter.Error(APIError{StatusCode: 0, Message: err.Error()}.Error())
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		emitter.Error(APIError{StatusCode: resp.StatusCode, Message: resp.Status}.Error())
		return
	}

	var content PageContent
	chunks := 0
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk streamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			emitter.Error(fmt.Sprintf("failed to decode stream chunk: %v", err))
			return
		}
		switch chunk.Type {
		case "delta":
			switch chunk.Field {
			case "html":
				content.HTML += chunk.Text
			case "css":
				content.CSS += chunk.Text
			case "js":
				content.JS += chunk.Text
			}
			chunks++
			p := 10 + chunks
			if p > 95 {
				p = 95
			}
			emitter.Status("generating page content", p)
		case "done":
			if chunk.Error != "" {
				emitter.Error(chunk.Error)
				return
			}
			if content.HTML == "" {
				emitter.Error(ErrEmptyResponse.Error())
				return
			}
			emitter.Complete("generation complete", &content)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		emitter.Error(fmt.Sprintf("stream read failed: %v", err))
		return
	}
	emitter.Error("generation stream ended without a terminal chunk")
}
