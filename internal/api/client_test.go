package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/viewengine/viewctl/internal/models"
)

func TestListTools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/mcp/tools" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get(APIKeyHeader); got != "test-key" {
			t.Errorf("Expected API key header 'test-key', got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tools":[{"name":"retrieve","description":"Retrieve a web page"},{"name":"status","description":"Check job status"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}

	if len(tools) != 2 {
		t.Fatalf("Expected 2 tools, got %d", len(tools))
	}
	if tools[0].Name != "retrieve" {
		t.Errorf("Expected first tool 'retrieve', got %q", tools[0].Name)
	}
}

func TestListTools_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.ListTools(context.Background())

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("Expected ServiceError, got %T: %v", err, err)
	}
	if svcErr.Kind != ServiceUnauthorized {
		t.Errorf("Expected kind unauthorized, got %s", svcErr.Kind)
	}
	if svcErr.Message != "invalid api key" {
		t.Errorf("Expected service message, got %q", svcErr.Message)
	}
}

func TestSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/mcp/retrieve" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req models.SubmissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if req.URL != "https://example.com" {
			t.Errorf("Expected url in body, got %q", req.URL)
		}
		if req.Mode != models.ModeCommunity {
			t.Errorf("Expected mode community, got %q", req.Mode)
		}
		if !req.ForceRefresh {
			t.Error("Expected forceRefresh true")
		}
		if req.TimeoutSeconds != 60 {
			t.Errorf("Expected timeoutSeconds 60, got %d", req.TimeoutSeconds)
		}

		w.Write([]byte(`{"requestId":"req-1","status":"queued","estimatedWaitTimeSeconds":5}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	handle, err := client.Submit(context.Background(), models.SubmissionRequest{
		URL:            "https://example.com",
		TimeoutSeconds: 60,
		ForceRefresh:   true,
		Mode:           models.ModeCommunity,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if handle.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", handle.RequestID)
	}
	if handle.InitialStatus != models.JobStatusQueued {
		t.Errorf("InitialStatus = %q, want queued", handle.InitialStatus)
	}
	if handle.EstimatedWaitSeconds != 5 {
		t.Errorf("EstimatedWaitSeconds = %d, want 5", handle.EstimatedWaitSeconds)
	}
}

func TestSubmit_EmptyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Server should not be called for an empty URL")
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.Submit(context.Background(), models.SubmissionRequest{})
	if err == nil {
		t.Fatal("Expected error for empty URL")
	}
}

func TestSubmit_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.Submit(context.Background(), models.SubmissionRequest{URL: "https://example.com"})

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.Kind != ServiceUnauthorized {
		t.Fatalf("Expected unauthorized ServiceError, got %v", err)
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit exceeded"}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.Submit(context.Background(), models.SubmissionRequest{URL: "https://example.com"})

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.Kind != ServiceRateLimited {
		t.Fatalf("Expected rate limited ServiceError, got %v", err)
	}
}

func TestSubmit_MalformedAck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.Submit(context.Background(), models.SubmissionRequest{URL: "https://example.com"})

	var trErr *TransportError
	if !errors.As(err, &trErr) || trErr.Kind != TransportMalformedResponse {
		t.Fatalf("Expected malformed response TransportError, got %v", err)
	}
}

func TestSubmit_MissingRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"queued"}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.Submit(context.Background(), models.SubmissionRequest{URL: "https://example.com"})

	var trErr *TransportError
	if !errors.As(err, &trErr) || trErr.Kind != TransportMalformedResponse {
		t.Fatalf("Expected malformed response TransportError, got %v", err)
	}
}

func TestJobStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/mcp/retrieve/req-1" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"requestId":"req-1","status":"processing","message":"rendering page"}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	snap, err := client.JobStatus(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("JobStatus failed: %v", err)
	}

	if snap.RequestID != "req-1" {
		t.Errorf("RequestID = %q", snap.RequestID)
	}
	if snap.Status != models.JobStatusProcessing {
		t.Errorf("Status = %q, want processing", snap.Status)
	}
	if snap.Message != "rendering page" {
		t.Errorf("Message = %q", snap.Message)
	}
}

func TestJobStatus_FillsMissingRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"queued"}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	snap, err := client.JobStatus(context.Background(), "req-9")
	if err != nil {
		t.Fatalf("JobStatus failed: %v", err)
	}
	if snap.RequestID != "req-9" {
		t.Errorf("RequestID = %q, want req-9", snap.RequestID)
	}
}

func TestFetchContent(t *testing.T) {
	payload := `{"title":"Example","text":"Hello"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pages/req-1.json" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get(APIKeyHeader); got != "test-key" {
			t.Errorf("Expected API key on content fetch, got %q", got)
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := newTestClient(server)
	data, err := client.FetchContent(context.Background(), &models.ContentRef{
		PageDataURL: server.URL + "/pages/req-1.json",
	})
	if err != nil {
		t.Fatalf("FetchContent failed: %v", err)
	}
	if string(data) != payload {
		t.Errorf("Unexpected payload: %s", data)
	}
}

func TestFetchContent_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"content expired"}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.FetchContent(context.Background(), &models.ContentRef{
		PageDataURL: server.URL + "/pages/req-1.json",
	})

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("Expected ServiceError, got %T: %v", err, err)
	}
	if svcErr.Kind != ServiceContentUnavailable {
		t.Errorf("Expected kind content_unavailable, got %s", svcErr.Kind)
	}
	if svcErr.Message != "content expired" {
		t.Errorf("Message = %q", svcErr.Message)
	}
}

func TestFetchContent_NilRef(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Server should not be called without a content reference")
	}))
	defer server.Close()

	client := newTestClient(server)
	if _, err := client.FetchContent(context.Background(), nil); err == nil {
		t.Fatal("Expected error for nil content reference")
	}
}

func TestFetchContentByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/mcp/content/req-1" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`page data`))
	}))
	defer server.Close()

	client := newTestClient(server)
	data, err := client.FetchContentByID(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("FetchContentByID failed: %v", err)
	}
	if string(data) != "page data" {
		t.Errorf("Unexpected payload: %s", data)
	}
}

func TestSend_ConnectFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	client := newTestClient(server)
	_, err := client.ListTools(context.Background())

	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("Expected TransportError, got %T: %v", err, err)
	}
	if trErr.Kind != TransportConnectFailed {
		t.Errorf("Expected kind connect_failed, got %s", trErr.Kind)
	}
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(NewTransport(server.URL, "test-key", 0))
}
