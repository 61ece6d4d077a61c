// Package models defines the wire-level domain types for the ViewEngine API.
package models

import "time"

// JobStatus represents the server-reported state of a retrieval job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusComplete   JobStatus = "complete"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCanceled   JobStatus = "canceled"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusComplete, JobStatusFailed, JobStatusCanceled:
		return true
	}
	return false
}

// RetrievalMode selects how the service processes a page.
type RetrievalMode string

const (
	ModePrivate   RetrievalMode = "private"
	ModeCommunity RetrievalMode = "community"
)

// SubmissionRequest is the body of a retrieval job submission.
type SubmissionRequest struct {
	URL            string        `json:"url"`
	TimeoutSeconds int           `json:"timeoutSeconds"`
	ForceRefresh   bool          `json:"forceRefresh"`
	Mode           RetrievalMode `json:"mode"`
}

// SubmissionAck is the service's acknowledgment of a newly submitted job.
type SubmissionAck struct {
	RequestID            string    `json:"requestId"`
	Status               JobStatus `json:"status"`
	EstimatedWaitSeconds int       `json:"estimatedWaitTimeSeconds"`
}

// JobHandle identifies a submitted job for the rest of its lifecycle.
// The RequestID is stable for the job's entire lifetime.
type JobHandle struct {
	RequestID            string
	InitialStatus        JobStatus
	EstimatedWaitSeconds int
}

// ContentRef points at the artifacts produced by a completed job.
type ContentRef struct {
	PageDataURL string             `json:"pageDataUrl"`
	ContentHash string             `json:"contentHash,omitempty"`
	Artifacts   map[string]string  `json:"artifacts,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// JobStatusSnapshot is one poll's view of a job. A fresh snapshot is
// decoded on every poll; snapshots are never mutated after decoding.
type JobStatusSnapshot struct {
	RequestID   string      `json:"requestId"`
	Status      JobStatus   `json:"status"`
	Message     string      `json:"message,omitempty"`
	URL         string      `json:"url,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	Content     *ContentRef `json:"content,omitempty"`
	ErrorDetail string      `json:"error,omitempty"`
}

// ToolDescriptor describes one operation the service exposes.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
