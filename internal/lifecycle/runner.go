package lifecycle

import (
	"context"
	"log"

	"github.com/viewengine/viewctl/internal/api"
	"github.com/viewengine/viewctl/internal/models"
)

// Journal records lifecycle transitions for later inspection. The
// history store implements it; a nil Journal disables recording.
type Journal interface {
	RecordSubmission(req models.SubmissionRequest, handle models.JobHandle) (string, error)
	RecordOutcome(id string, snapshot *models.JobStatusSnapshot, runErr error) error
}

// Result is the outcome of a full retrieval lifecycle.
type Result struct {
	Handle   models.JobHandle
	Snapshot *models.JobStatusSnapshot
	Artifact []byte
}

// Runner drives the full submit, poll, fetch lifecycle for one job.
// Submission, polling, and artifact fetch are strictly sequential;
// concurrent jobs each get their own Run call.
type Runner struct {
	client  *api.Client
	poller  *Poller
	journal Journal
}

// NewRunner creates a Runner. journal may be nil.
func NewRunner(client *api.Client, poller *Poller, journal Journal) *Runner {
	return &Runner{client: client, poller: poller, journal: journal}
}

// Run submits the request, polls to a terminal status, and, when fetch
// is set and the job completed with content, downloads the artifact.
// If the job reaches a terminal status but the artifact fetch fails,
// the partial Result is returned alongside the error. Journal write
// failures are logged and do not fail the lifecycle.
func (r *Runner) Run(ctx context.Context, req models.SubmissionRequest, fetch bool, observe Observer) (*Result, error) {
	handle, err := r.client.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	var journalID string
	if r.journal != nil {
		journalID, err = r.journal.RecordSubmission(req, *handle)
		if err != nil {
			log.Printf("history: recording submission: %v", err)
			journalID = ""
		}
	}

	snap, err := r.poller.PollUntilTerminal(ctx, *handle, observe)
	if r.journal != nil && journalID != "" {
		if jerr := r.journal.RecordOutcome(journalID, snap, err); jerr != nil {
			log.Printf("history: recording outcome: %v", jerr)
		}
	}
	if err != nil {
		return nil, err
	}

	result := &Result{Handle: *handle, Snapshot: snap}
	if fetch && snap.Status == models.JobStatusComplete && snap.Content != nil {
		artifact, err := r.client.FetchContent(ctx, snap.Content)
		if err != nil {
			return result, err
		}
		result.Artifact = artifact
	}
	return result, nil
}
