// Package client provides the HTTP client for the alerting daemon's API. It
// is used by the operator CLI and is importable by other Estoque Mestre
// services that manage alert rules programmatically.
package client

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

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// Client is the alerting API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Options configures a Client.
type Options struct {
	// BaseURL is the daemon's address, e.g. http://localhost:8080.
	BaseURL string
	Timeout time.Duration
}

// New creates an API client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// RequestOptions describes one API call.
type RequestOptions struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// APIError represents an error response from the API.
type APIError struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ErrorType  string `json:"error_type,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("%s: %s", e.ErrorType, e.Message)
	}
	return e.Message
}

// Do performs an HTTP request against the daemon.
func (c *Client) Do(ctx context.Context, opts RequestOptions) (*http.Response, error) {
	reqURL, err := url.Parse(c.baseURL + opts.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if opts.Query != nil {
		reqURL.RawQuery = opts.Query.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "estoque-alertd-cli/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// DoJSON performs a request and decodes the JSON response envelope.
func (c *Client) DoJSON(ctx context.Context, opts RequestOptions, result any) error {
	resp, err := c.Do(ctx, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr APIError
		if err := json.Unmarshal(respBody, &apiErr); err != nil {
			return &APIError{
				Status:     "error",
				Message:    string(respBody),
				StatusCode: resp.StatusCode,
			}
		}
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// --- API Methods ---

type rulesResponse struct {
	Status string             `json:"status"`
	Data   []models.AlertRule `json:"data"`
}

type ruleResponse struct {
	Status string           `json:"status"`
	Data   models.AlertRule `json:"data"`
}

// ListRules returns all alert rules.
func (c *Client) ListRules(ctx context.Context) ([]models.AlertRule, error) {
	var resp rulesResponse
	err := c.DoJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/api/v1/rules",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetRule returns a single rule by id.
func (c *Client) GetRule(ctx context.Context, id string) (*models.AlertRule, error) {
	var resp ruleResponse
	err := c.DoJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/api/v1/rules/" + url.PathEscape(id),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// CreateRule registers a new alert rule.
func (c *Client) CreateRule(ctx context.Context, req models.CreateRuleRequest) (*models.AlertRule, error) {
	var resp ruleResponse
	err := c.DoJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/api/v1/rules",
		Body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateRule merges the supplied fields into an existing rule.
func (c *Client) UpdateRule(ctx context.Context, id string, req models.UpdateRuleRequest) error {
	return c.DoJSON(ctx, RequestOptions{
		Method: http.MethodPut,
		Path:   "/api/v1/rules/" + url.PathEscape(id),
		Body:   req,
	}, nil)
}

// DeleteRule removes a rule.
func (c *Client) DeleteRule(ctx context.Context, id string) error {
	return c.DoJSON(ctx, RequestOptions{
		Method: http.MethodDelete,
		Path:   "/api/v1/rules/" + url.PathEscape(id),
	}, nil)
}

type alertsResponse struct {
	Status string         `json:"status"`
	Data   []models.Alert `json:"data"`
}

// ListAlerts returns every stored alert in trigger order.
func (c *Client) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	var resp alertsResponse
	err := c.DoJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/api/v1/alerts",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// AcknowledgeAlert marks an alert as acknowledged by the given user.
func (c *Client) AcknowledgeAlert(ctx context.Context, alertID, userID string) error {
	return c.DoJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/api/v1/alerts/" + url.PathEscape(alertID) + "/acknowledge",
		Body:   models.AcknowledgeAlertRequest{UserID: userID},
	}, nil)
}

// ResolveAlert marks an alert as resolved.
func (c *Client) ResolveAlert(ctx context.Context, alertID string) error {
	return c.DoJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/api/v1/alerts/" + url.PathEscape(alertID) + "/resolve",
	}, nil)
}

// RecordMetric pushes one measurement into the daemon's metric registry.
func (c *Client) RecordMetric(ctx context.Context, req models.RecordMetricRequest) error {
	return c.DoJSON(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/api/v1/metrics/record",
		Body:   req,
	}, nil)
}

type snapshotResponse struct {
	Status string               `json:"status"`
	Data   []models.MetricPoint `json:"data"`
}

// MetricSnapshot returns the registry's current contents.
func (c *Client) MetricSnapshot(ctx context.Context) ([]models.MetricPoint, error) {
	var resp snapshotResponse
	err := c.DoJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/api/v1/metrics/snapshot",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Health checks whether the daemon is up.
func (c *Client) Health(ctx context.Context) error {
	return c.DoJSON(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/api/v1/health",
	}, nil)
}
