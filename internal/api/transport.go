// Package api implements the HTTP client for the ViewEngine retrieval service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultRequestTimeout bounds a single API request.
const DefaultRequestTimeout = 10 * time.Second

// APIKeyHeader is the authentication header attached to every request.
const APIKeyHeader = "X-API-Key"

// Transport performs authenticated request/response exchanges with the
// service. It owns connection reuse via the shared http.Client; retry
// policy belongs to callers. Safe for concurrent use.
type Transport struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewTransport creates a Transport for the given base URL and API key.
// A non-positive timeout falls back to DefaultRequestTimeout.
func NewTransport(baseURL, apiKey string, timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send issues one request and returns the HTTP status code and raw body.
// path may be absolute (artifact locations are full URLs) or relative to
// the base URL. A non-nil body is JSON-encoded.
func (t *Transport) Send(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = t.baseURL + path
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(APIKeyHeader, t.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Kind: TransportMalformedResponse, Err: err}
	}

	return resp.StatusCode, data, nil
}

// classifyTransport maps a net/http round-trip error to a TransportError.
func classifyTransport(err error) *TransportError {
	kind := TransportConnectFailed
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = TransportTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = TransportTimeout
	}
	return &TransportError{Kind: kind, Err: err}
}
