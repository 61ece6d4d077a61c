package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/viewengine/viewctl/internal/models"
)

// Client wraps the ViewEngine MCP endpoints.
type Client struct {
	transport *Transport
}

// NewClient creates a Client on top of the given Transport.
func NewClient(t *Transport) *Client {
	return &Client{transport: t}
}

// ListTools fetches the set of operations the service currently exposes.
// It is a pre-flight contract check; submission does not depend on it.
func (c *Client) ListTools(ctx context.Context) ([]models.ToolDescriptor, error) {
	status, body, err := c.transport.Send(ctx, http.MethodGet, "/v1/mcp/tools", nil)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, ClassifyStatus(status, body)
	}

	var resp struct {
		Tools []models.ToolDescriptor `json:"tools"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Kind: TransportMalformedResponse, Err: err}
	}
	return resp.Tools, nil
}

// Submit issues a new retrieval job. Every call is treated as a new
// logical job; the service may still serve a cached result unless
// ForceRefresh is set.
func (c *Client) Submit(ctx context.Context, req models.SubmissionRequest) (*models.JobHandle, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("url must not be empty")
	}

	status, body, err := c.transport.Send(ctx, http.MethodPost, "/v1/mcp/retrieve", req)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, ClassifyStatus(status, body)
	}

	var ack models.SubmissionAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, &TransportError{Kind: TransportMalformedResponse, Err: err}
	}
	if ack.RequestID == "" {
		return nil, &TransportError{
			Kind: TransportMalformedResponse,
			Err:  fmt.Errorf("acknowledgment missing requestId"),
		}
	}

	return &models.JobHandle{
		RequestID:            ack.RequestID,
		InitialStatus:        ack.Status,
		EstimatedWaitSeconds: ack.EstimatedWaitSeconds,
	}, nil
}

// JobStatus queries the job's status endpoint once and returns a fresh
// snapshot.
func (c *Client) JobStatus(ctx context.Context, requestID string) (*models.JobStatusSnapshot, error) {
	status, body, err := c.transport.Send(ctx, http.MethodGet, "/v1/mcp/retrieve/"+requestID, nil)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, ClassifyStatus(status, body)
	}

	var snap models.JobStatusSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, &TransportError{Kind: TransportMalformedResponse, Err: err}
	}
	if snap.RequestID == "" {
		snap.RequestID = requestID
	}
	return &snap, nil
}

// FetchContent retrieves the artifact payload referenced by a completed
// job's content reference. Callers must only pass a ContentRef taken
// from a snapshot with status complete.
func (c *Client) FetchContent(ctx context.Context, ref *models.ContentRef) ([]byte, error) {
	if ref == nil || ref.PageDataURL == "" {
		return nil, fmt.Errorf("content reference has no page data URL")
	}
	return c.fetch(ctx, ref.PageDataURL)
}

// FetchContentByID retrieves the artifact payload through the content
// endpoint for jobs whose ContentRef is not at hand.
func (c *Client) FetchContentByID(ctx context.Context, requestID string) ([]byte, error) {
	return c.fetch(ctx, "/v1/mcp/content/"+requestID)
}

// fetch performs a single full download. Content may be evicted
// server-side, in which case the service answers 404.
func (c *Client) fetch(ctx context.Context, location string) ([]byte, error) {
	status, body, err := c.transport.Send(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, &ServiceError{
			Kind:       ServiceContentUnavailable,
			StatusCode: status,
			Message:    serviceMessage(body),
		}
	}
	if !is2xx(status) {
		return nil, ClassifyStatus(status, body)
	}
	return body, nil
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
