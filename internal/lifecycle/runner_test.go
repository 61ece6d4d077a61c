package lifecycle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/viewengine/viewctl/internal/api"
	"github.com/viewengine/viewctl/internal/models"
)

// memoryJournal records lifecycle calls for assertions.
type memoryJournal struct {
	mu          sync.Mutex
	submissions []models.JobHandle
	outcomes    []string
}

func (j *memoryJournal) RecordSubmission(req models.SubmissionRequest, handle models.JobHandle) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.submissions = append(j.submissions, handle)
	return fmt.Sprintf("journal-%d", len(j.submissions)), nil
}

func (j *memoryJournal) RecordOutcome(id string, snapshot *models.JobStatusSnapshot, runErr error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	status := "error"
	if snapshot != nil {
		status = string(snapshot.Status)
	}
	j.outcomes = append(j.outcomes, id+":"+status)
	return nil
}

func TestRunnerFullLifecycle(t *testing.T) {
	var polls int
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/v1/mcp/retrieve", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Unexpected method %s on submit", r.Method)
		}
		w.Write([]byte(`{"requestId":"req-run","status":"queued","estimatedWaitTimeSeconds":2}`))
	})
	mux.HandleFunc("/v1/mcp/retrieve/req-run", func(w http.ResponseWriter, r *http.Request) {
		polls++
		switch polls {
		case 1:
			w.Write([]byte(`{"requestId":"req-run","status":"processing","message":"fetching"}`))
		default:
			fmt.Fprintf(w, `{"requestId":"req-run","status":"complete","content":{"pageDataUrl":%q,"contentHash":"h1"}}`,
				server.URL+"/v1/mcp/content/req-run")
		}
	})
	mux.HandleFunc("/v1/mcp/content/req-run", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Example"}`))
	})

	client := api.NewClient(api.NewTransport(server.URL, "test-key", 0))
	poller, err := NewPoller(client, Policy{Interval: 0, MaxAttempts: 5})
	if err != nil {
		t.Fatalf("Failed to create poller: %v", err)
	}
	journal := &memoryJournal{}
	runner := NewRunner(client, poller, journal)

	result, err := runner.Run(context.Background(), models.SubmissionRequest{
		URL:  "https://example.com",
		Mode: models.ModePrivate,
	}, true, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Handle.RequestID != "req-run" {
		t.Errorf("Handle.RequestID = %q", result.Handle.RequestID)
	}
	if result.Snapshot.Status != models.JobStatusComplete {
		t.Errorf("Snapshot status = %q, want complete", result.Snapshot.Status)
	}
	if !strings.Contains(string(result.Artifact), "Example") {
		t.Errorf("Unexpected artifact: %s", result.Artifact)
	}
	if polls != 2 {
		t.Errorf("Expected 2 polls, got %d", polls)
	}

	if len(journal.submissions) != 1 || journal.submissions[0].RequestID != "req-run" {
		t.Errorf("Journal submissions = %+v", journal.submissions)
	}
	if len(journal.outcomes) != 1 || journal.outcomes[0] != "journal-1:complete" {
		t.Errorf("Journal outcomes = %+v", journal.outcomes)
	}
}

func TestRunnerSkipsFetchWithoutFlag(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/v1/mcp/retrieve", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"requestId":"req-nf","status":"queued"}`))
	})
	mux.HandleFunc("/v1/mcp/retrieve/req-nf", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"requestId":"req-nf","status":"complete","content":{"pageDataUrl":%q}}`,
			server.URL+"/v1/mcp/content/req-nf")
	})
	mux.HandleFunc("/v1/mcp/content/req-nf", func(w http.ResponseWriter, r *http.Request) {
		t.Error("Content endpoint should not be called when fetch is disabled")
	})

	client := api.NewClient(api.NewTransport(server.URL, "test-key", 0))
	poller, err := NewPoller(client, Policy{Interval: 0, MaxAttempts: 3})
	if err != nil {
		t.Fatalf("Failed to create poller: %v", err)
	}
	runner := NewRunner(client, poller, nil)

	result, err := runner.Run(context.Background(), models.SubmissionRequest{URL: "https://example.com"}, false, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Artifact != nil {
		t.Error("Expected no artifact when fetch is disabled")
	}
}

func TestRunnerSubmitFailureSkipsPolling(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/v1/mcp/retrieve", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	})
	mux.HandleFunc("/v1/mcp/retrieve/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("Status endpoint should not be called after a failed submission")
	})

	client := api.NewClient(api.NewTransport(server.URL, "bad-key", 0))
	poller, err := NewPoller(client, Policy{Interval: 0, MaxAttempts: 3})
	if err != nil {
		t.Fatalf("Failed to create poller: %v", err)
	}
	journal := &memoryJournal{}
	runner := NewRunner(client, poller, journal)

	_, err = runner.Run(context.Background(), models.SubmissionRequest{URL: "https://example.com"}, false, nil)
	if err == nil {
		t.Fatal("Expected submission error")
	}
	if len(journal.submissions) != 0 {
		t.Errorf("Expected no journal entries for a failed submission, got %d", len(journal.submissions))
	}
}
