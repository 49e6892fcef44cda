package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perrors "pulse-node/pkg/errors"
	"pulse-node/pkg/models"
	"pulse-node/pkg/types"

	"github.com/cenkalti/backoff/v4"
)

// Config holds the client settings.
type Config struct {
	// BaseURL is the address of the simulator HTTP API.
	BaseURL string
	// Timeout bounds one call including its retries.
	Timeout time.Duration
	// InitialInterval and MaxInterval shape the retry backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client talks to the simulator HTTP API. Transport errors and 5xx responses are retried
// with exponential backoff until the call's timeout elapses.
type Client struct {
	cfg  *Config
	http *http.Client
}

func New(cfg *Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
	}
}

// APIError is a response with a non 2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well known statuses back to the service's sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return perrors.ErrNodeNotFound
	case http.StatusForbidden:
		return perrors.ErrFaultInjectionDisabled
	default:
		return nil
	}
}

func (c *Client) Health(ctx context.Context) (types.HealthResponse, error) {
	var out types.HealthResponse

	return out, c.do(ctx, http.MethodGet, "/health", &out)
}

func (c *Client) ListNodes(ctx context.Context) (types.NodeList, error) {
	var out types.NodeList

	return out, c.do(ctx, http.MethodGet, "/api/nodes", &out)
}

func (c *Client) GetNode(ctx context.Context, id string) (types.NodeDetail, error) {
	var out types.NodeDetail

	if id == "" {
		return out, perrors.ErrNodeIDRequired
	}

	return out, c.do(ctx, http.MethodGet, "/api/nodes/"+url.PathEscape(id), &out)
}

func (c *Client) Apply(ctx context.Context, id string, action models.LifecycleAction) (types.TransitionResponse, error) {
	var out types.TransitionResponse

	if id == "" {
		return out, perrors.ErrNodeIDRequired
	}

	return out, c.do(ctx, http.MethodPost, fmt.Sprintf("/api/nodes/%s/%s", url.PathEscape(id), action), &out)
}

func (c *Client) ClusterStatus(ctx context.Context) (types.ClusterStatus, error) {
	var out types.ClusterStatus

	return out, c.do(ctx, http.MethodGet, "/api/cluster/status", &out)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	b := backoff.NewExponentialBackOff()
	if c.cfg.InitialInterval > 0 {
		b.InitialInterval = c.cfg.InitialInterval
	}

	if c.cfg.MaxInterval > 0 {
		b.MaxInterval = c.cfg.MaxInterval
	}

	if c.cfg.Timeout > 0 {
		b.MaxElapsedTime = c.cfg.Timeout
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path

	operation := func() error {
		return c.once(ctx, method, endpoint, out)
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	return nil
}

func (c *Client) once(ctx context.Context, method, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}

		if resp.StatusCode >= http.StatusInternalServerError {
			return apiErr
		}

		return backoff.Permanent(apiErr)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
	}

	return nil
}

func errorMessage(body []byte) string {
	var resp types.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return resp.Error
	}

	return strings.TrimSpace(string(body))
}
