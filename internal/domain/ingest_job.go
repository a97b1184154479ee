package domain

import (
	"fmt"
	"time"
)

// IngestJobStatus represents the status of an ingestion job
type IngestJobStatus string

const (
	IngestJobStatusPending    IngestJobStatus = "pending"
	IngestJobStatusProcessing IngestJobStatus = "processing"
	IngestJobStatusCompleted  IngestJobStatus = "completed"
	IngestJobStatusFailed     IngestJobStatus = "failed"
)

// IngestJob represents an async document ingestion job. Each uploaded
// report gets one job; the background worker claims pending jobs and
// runs the extract/chunk/embed/store pipeline for the report.
type IngestJob struct {
	ID          string
	ReportID    string
	Status      IngestJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewIngestJob creates a new pending IngestJob for a report
func NewIngestJob(id, reportID string, createdAt time.Time) *IngestJob {
	return &IngestJob{
		ID:        id,
		ReportID:  reportID,
		Status:    IngestJobStatusPending,
		CreatedAt: createdAt,
	}
}

// ValidateIngestJob validates an IngestJob instance
func ValidateIngestJob(j *IngestJob) error {
	if j == nil {
		return fmt.Errorf("ingest job cannot be nil")
	}

	if j.ID == "" {
		return fmt.Errorf("ingest job ID is required")
	}

	if j.ReportID == "" {
		return fmt.Errorf("ingest job ReportID is required")
	}

	if !isValidIngestJobStatus(j.Status) {
		return fmt.Errorf("ingest job Status is invalid: %s", j.Status)
	}

	if j.Retries < 0 {
		return fmt.Errorf("ingest job Retries cannot be negative")
	}

	return nil
}

// isValidIngestJobStatus checks if an IngestJobStatus is valid
func isValidIngestJobStatus(s IngestJobStatus) bool {
	switch s {
	case IngestJobStatusPending, IngestJobStatusProcessing,
		IngestJobStatusCompleted, IngestJobStatusFailed:
		return true
	}
	return false
}
