package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/finsight-labs/finrag/internal/domain"
)

const (
	// MaxRetries is the maximum number of attempts for a failed ingestion job
	MaxRetries = 3
)

// IngestJobRepository defines the interface for ingestion job persistence
type IngestJobRepository interface {
	// ClaimPendingJobs retrieves and claims pending ingestion jobs
	ClaimPendingJobs(ctx context.Context) ([]*domain.IngestJob, error)

	// UpdateJobStatus updates the status of an ingestion job
	UpdateJobStatus(ctx context.Context, jobID string, status domain.IngestJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// Ingestor defines the interface for running the ingestion pipeline
type Ingestor interface {
	Ingest(ctx context.Context, reportID, password string) error
}

// IngestWorker processes document ingestion jobs
type IngestWorker struct {
	repo     IngestJobRepository
	ingestor Ingestor
}

// NewIngestWorker creates a new IngestWorker instance
func NewIngestWorker(repo IngestJobRepository, ingestor Ingestor) *IngestWorker {
	return &IngestWorker{
		repo:     repo,
		ingestor: ingestor,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IngestWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending ingestion jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *IngestWorker) processJob(ctx context.Context, job *domain.IngestJob) error {
	log.Printf("Processing job %s for report %s", job.ID, job.ReportID)

	// Background jobs have no way to supply a document password; protected
	// documents fail and surface through the report error message.
	if err := w.ingestor.Ingest(ctx, job.ReportID, ""); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IngestJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *IngestWorker) handleJobFailure(ctx context.Context, job *domain.IngestJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IngestJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	// Reset to pending so the next poll picks it up again
	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IngestJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
