// Package remote talks to the service that actually runs database processes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Process is one entry of the remote running-process list.
type Process struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

// Service is the remote process lifecycle API.
type Service interface {
	Start(ctx context.Context, processID, launchRef string) error
	Stop(ctx context.Context, processID string) error
	List(ctx context.Context) ([]Process, error)
}

// StatusError is returned when the remote service answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote %s returned HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("remote %s returned HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// Config for the remote HTTP client.
type Config struct {
	// BaseURL is the API prefix, e.g. "http://localhost:8080/api/ao".
	BaseURL string
	// Timeout bounds each request. Zero means 10s.
	Timeout time.Duration
}

// Client calls the remote service over HTTP+JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the given base URL.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type startRequest struct {
	ProcessID string `json:"processId"`
	LaunchRef string `json:"launchRef"`
}

type stopRequest struct {
	ProcessID string `json:"processId"`
}

// Start asks the remote service to launch processID using launchRef.
func (c *Client) Start(ctx context.Context, processID, launchRef string) error {
	return c.post(ctx, "start", startRequest{ProcessID: processID, LaunchRef: launchRef})
}

// Stop asks the remote service to stop processID.
func (c *Client) Stop(ctx context.Context, processID string) error {
	return c.post(ctx, "stop", stopRequest{ProcessID: processID})
}

// List fetches the authoritative list of running processes.
func (c *Client) List(ctx context.Context) ([]Process, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/processes", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("list", resp); err != nil {
		return nil, err
	}

	var procs []Process
	if err := json.NewDecoder(resp.Body).Decode(&procs); err != nil {
		return nil, fmt.Errorf("decoding process list: %w", err)
	}
	if procs == nil {
		procs = []Process{}
	}
	return procs, nil
}

func (c *Client) post(ctx context.Context, op string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+op, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote %s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(data)),
	}
}
