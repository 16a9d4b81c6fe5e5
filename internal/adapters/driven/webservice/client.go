package webservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
	"github.com/custodia-labs/coursesearch/internal/logger"
)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	restPath = "/webservice/rest/server.php"
)

// Config holds configuration for the web service client.
type Config struct {
	// BaseURL is the LMS root, e.g. https://lms.example.com (required).
	BaseURL string

	// Token is the web service token (required).
	Token string

	// RequestsPerSecond caps outgoing calls. Zero disables the limiter.
	RequestsPerSecond float64

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// HTTPClient overrides the HTTP client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client performs web service function calls.
type Client struct {
	http     *http.Client
	endpoint string
	token    string
	limiter  *RateLimiter
}

// NewClient creates a client for cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: web service URL is required", domain.ErrInvalidInput)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: web service token is required", domain.ErrInvalidInput)
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: web service URL: %v", domain.ErrInvalidInput, err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		http:     client,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + restPath,
		token:    cfg.Token,
		limiter:  NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// Call invokes function with params and decodes the JSON result into out.
// out may be nil for functions whose result is ignored. Every failure is a
// *domain.BackendError naming function.
func (c *Client) Call(ctx context.Context, function string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.NewBackendError(function, err)
	}

	query := url.Values{
		"wstoken":            {c.token},
		"wsfunction":         {function},
		"moodlewsrestformat": {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"?"+query.Encode(), strings.NewReader(params.Encode()))
	if err != nil {
		return domain.NewBackendError(function, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewBackendError(function, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewBackendError(function, fmt.Errorf("read response: %w", err))
	}
	logger.Debug("webservice %s: status %d, %d bytes in %s", function, resp.StatusCode, len(body), time.Since(start))

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRateLimit(resp)
		return domain.NewBackendError(function, domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.NewBackendError(function, fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body)))
	}

	if remote := decodeException(body); remote != nil {
		return domain.NewBackendError(function, remote)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewBackendError(function, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// decodeException returns the exception carried by body, if any.
func decodeException(body []byte) *RemoteError {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var remote RemoteError
	if err := json.Unmarshal(trimmed, &remote); err != nil || remote.Exception == "" {
		return nil
	}
	return &remote
}

func truncateBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
