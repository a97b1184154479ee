package domain

import (
	"fmt"
	"time"
)

// ReportStatus represents the processing status of an uploaded report
type ReportStatus string

const (
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusIndexed    ReportStatus = "indexed"
	ReportStatusReady      ReportStatus = "ready"
	ReportStatusFailed     ReportStatus = "failed"
)

// FileType represents the format of an uploaded report
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeTXT  FileType = "txt"
	FileTypeCSV  FileType = "csv"
	FileTypeJSON FileType = "json"
	FileTypeHTML FileType = "html"
)

// Report represents an uploaded financial document tracked through the
// ingestion pipeline.
type Report struct {
	ID                string
	Filename          string
	SourcePath        string // local path or s3:// key the document is read from
	FileType          FileType
	UploadDate        time.Time
	ProcessingStatus  ReportStatus
	ErrorMessage      string
	EmbeddingProvider string
	EmbeddingModel    string
	ChunksCreated     int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewReport creates a new Report instance in the processing state
func NewReport(id, filename, sourcePath string, fileType FileType, now time.Time) *Report {
	return &Report{
		ID:               id,
		Filename:         filename,
		SourcePath:       sourcePath,
		FileType:         fileType,
		UploadDate:       now,
		ProcessingStatus: ReportStatusProcessing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ValidateReport validates a Report instance
func ValidateReport(r *Report) error {
	if r == nil {
		return fmt.Errorf("report cannot be nil")
	}

	if r.ID == "" {
		return fmt.Errorf("report ID is required")
	}

	if r.Filename == "" {
		return fmt.Errorf("report Filename is required")
	}

	if !isValidReportStatus(r.ProcessingStatus) {
		return fmt.Errorf("report ProcessingStatus is invalid: %s", r.ProcessingStatus)
	}

	if !isValidFileType(r.FileType) {
		return fmt.Errorf("report FileType is invalid: %s", r.FileType)
	}

	if r.ChunksCreated < 0 {
		return fmt.Errorf("report ChunksCreated cannot be negative")
	}

	return nil
}

// isValidReportStatus checks if a ReportStatus is valid
func isValidReportStatus(s ReportStatus) bool {
	switch s {
	case ReportStatusProcessing, ReportStatusIndexed,
		ReportStatusReady, ReportStatusFailed:
		return true
	}
	return false
}

// isValidFileType checks if a FileType is valid
func isValidFileType(t FileType) bool {
	switch t {
	case FileTypePDF, FileTypeTXT, FileTypeCSV, FileTypeJSON, FileTypeHTML:
		return true
	}
	return false
}
