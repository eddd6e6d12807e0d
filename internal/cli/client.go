package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/me/schedsim/pkg/model"
)

// Client talks to a schedsim server over its JSON API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a schedsim API client.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     logger,
	}
}

// envelope is the server's standard response wrapper.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

// CreateSimulation runs req on the server. With dryRun the run is returned but
// not stored.
func (c *Client) CreateSimulation(ctx context.Context, req model.SimulationRequest, dryRun bool) (*model.Run, error) {
	path := "/api/v1/simulations"
	if dryRun {
		path += "?dry_run=true"
	}
	var run model.Run
	if _, err := c.do(ctx, http.MethodPost, path, req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetSimulation fetches one stored run including its result.
func (c *Client) GetSimulation(ctx context.Context, id string) (*model.Run, error) {
	var run model.Run
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/simulations/"+url.PathEscape(id), nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListSimulations returns one page of stored runs, newest first.
func (c *Client) ListSimulations(ctx context.Context, opts model.ListOptions) ([]*model.Run, *model.Pagination, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(opts.Limit))
	q.Set("offset", strconv.Itoa(opts.Offset))
	if opts.Algorithm != "" {
		q.Set("algorithm", opts.Algorithm)
	}
	var runs []*model.Run
	env, err := c.do(ctx, http.MethodGet, "/api/v1/simulations?"+q.Encode(), nil, &runs)
	if err != nil {
		return nil, nil, err
	}
	return runs, env.Pagination, nil
}

// do sends body as JSON and decodes the envelope's data into out. An error
// envelope is returned as its *model.APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (*envelope, error) {
	target := c.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.Logger.Debug("HTTP request", "method", method, "url", target)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.Logger.Debug("HTTP response", "status", resp.StatusCode, "bytes", len(respBody), "request_id", resp.Header.Get("X-Request-ID"))

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if env.Status == "error" && env.Error != nil {
		return &env, env.Error
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &env, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return &env, nil
}
