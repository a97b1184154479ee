package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/finsight-labs/finrag/internal/anonymizer"
	"github.com/finsight-labs/finrag/internal/chunker"
	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/extract"
)

// DocumentSource fetches raw document bytes by source path.
type DocumentSource interface {
	Fetch(ctx context.Context, path string) (io.ReadCloser, error)
}

// Embedder is the slice of the LLM provider the ingestion pipeline
// needs.
type Embedder interface {
	Name() domain.Provider
	EmbeddingModel() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// IngestService runs the document pipeline: fetch, extract, validate,
// anonymize, chunk, embed, store.
type IngestService struct {
	reportRepo ReportRepositoryInterface
	source     DocumentSource
	anonymizer anonymizer.Anonymizer
	embedder   Embedder
	index      *IndexService
	jobRepo    IngestJobRepositoryInterface
	chunkOpts  chunker.Options
	uuidGen    UUIDGenerator
	dimensions int
}

func NewIngestService(
	reportRepo ReportRepositoryInterface,
	source DocumentSource,
	anon anonymizer.Anonymizer,
	embedder Embedder,
	index *IndexService,
	chunkOpts chunker.Options,
	dimensions int,
) *IngestService {
	if anon == nil {
		anon = &anonymizer.Passthrough{}
	}
	return &IngestService{
		reportRepo: reportRepo,
		source:     source,
		anonymizer: anon,
		embedder:   embedder,
		index:      index,
		chunkOpts:  chunkOpts,
		uuidGen:    &DefaultUUIDGenerator{},
		dimensions: dimensions,
	}
}

// NewIngestServiceWithQueue builds an IngestService that also enqueues a
// background ingestion job for every report it registers.
func NewIngestServiceWithQueue(
	reportRepo ReportRepositoryInterface,
	source DocumentSource,
	anon anonymizer.Anonymizer,
	embedder Embedder,
	index *IndexService,
	jobRepo IngestJobRepositoryInterface,
	chunkOpts chunker.Options,
	dimensions int,
) *IngestService {
	s := NewIngestService(reportRepo, source, anon, embedder, index, chunkOpts, dimensions)
	s.jobRepo = jobRepo
	return s
}

// CreateReport registers an uploaded document in the processing state.
// When a job queue is configured, a pending ingestion job is enqueued so
// the background worker picks the report up.
func (s *IngestService) CreateReport(ctx context.Context, filename, sourcePath string) (*domain.Report, error) {
	fileType, err := FileTypeFromName(filename)
	if err != nil {
		return nil, err
	}

	rep := domain.NewReport(s.uuidGen.NewString(), filename, sourcePath, fileType, time.Now().UTC())
	if err := domain.ValidateReport(rep); err != nil {
		return nil, err
	}
	if err := s.reportRepo.Create(ctx, rep); err != nil {
		return nil, err
	}

	if s.jobRepo != nil {
		job := domain.NewIngestJob(s.uuidGen.NewString(), rep.ID, time.Now().UTC())
		if err := s.jobRepo.Create(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to enqueue ingest job: %w", err)
		}
	}

	return rep, nil
}

// Ingest processes one report end to end. Extraction failures mark the
// report failed and no chunks are produced; a per-chunk embedding
// failure degrades to a zero vector, which never clears a similarity
// threshold, instead of aborting the document.
func (s *IngestService) Ingest(ctx context.Context, reportID, password string) error {
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return err
	}

	doc, err := s.extractDocument(ctx, rep, password)
	if err != nil {
		return s.fail(ctx, rep.ID, err)
	}

	if ok, issues := ValidateFinancialDocument(doc.FullText); !ok {
		return s.fail(ctx, rep.ID, domain.NewDomainError(domain.ErrCodeValidation, "document contains no financial data"))
	} else if len(issues) > 0 {
		log.Printf("report %s validation warnings: %s", rep.ID, strings.Join(issues, "; "))
	}

	pieces := s.chunk(doc)
	if len(pieces) == 0 {
		return s.fail(ctx, rep.ID, domain.ErrNoExtractableText)
	}

	embeddings := s.embedAll(ctx, rep.ID, pieces)

	if _, err := s.index.Store(ctx, rep.ID, pieces, embeddings, string(s.embedder.Name()), s.embedder.EmbeddingModel()); err != nil {
		return s.fail(ctx, rep.ID, err)
	}
	return nil
}

// Reindex re-extracts and re-embeds a report, replacing its chunk set.
// Used after switching the embedding provider.
func (s *IngestService) Reindex(ctx context.Context, reportID, password string) (int, error) {
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return 0, err
	}

	doc, err := s.extractDocument(ctx, rep, password)
	if err != nil {
		return 0, s.fail(ctx, rep.ID, err)
	}

	pieces := s.chunk(doc)
	if len(pieces) == 0 {
		return 0, s.fail(ctx, rep.ID, domain.ErrNoExtractableText)
	}

	embeddings := s.embedAll(ctx, rep.ID, pieces)

	count, err := s.index.Reindex(ctx, rep.ID, pieces, embeddings, string(s.embedder.Name()), s.embedder.EmbeddingModel())
	if err != nil {
		return 0, s.fail(ctx, rep.ID, err)
	}
	return count, nil
}

func (s *IngestService) extractDocument(ctx context.Context, rep *domain.Report, password string) (*extract.Document, error) {
	extractor, err := extract.ForType(rep.FileType)
	if err != nil {
		return nil, err
	}

	rc, err := s.source.Fetch(ctx, rep.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer rc.Close()

	doc, err := extractor.Extract(ctx, rc, extract.Options{Password: password})
	if err != nil {
		return nil, err
	}

	doc.FullText = s.anonymizer.Anonymize(doc.FullText)
	for i := range doc.Pages {
		doc.Pages[i].Text = s.anonymizer.Anonymize(doc.Pages[i].Text)
	}
	return doc, nil
}

func (s *IngestService) chunk(doc *extract.Document) []chunker.Piece {
	if len(doc.Pages) > 0 {
		pages := make([]chunker.Page, 0, len(doc.Pages))
		for _, p := range doc.Pages {
			pages = append(pages, chunker.Page{Number: p.Number, Text: p.Text})
		}
		return chunker.SplitPages(pages, s.chunkOpts)
	}
	return chunker.Split(doc.FullText, s.chunkOpts)
}

// embedAll embeds every piece, substituting a zero vector when a
// single embedding call fails.
func (s *IngestService) embedAll(ctx context.Context, reportID string, pieces []chunker.Piece) [][]float32 {
	embeddings := make([][]float32, 0, len(pieces))
	for _, p := range pieces {
		vec, err := s.embedder.Embed(ctx, p.Text)
		if err != nil {
			log.Printf("embedding failed for report %s chunk %d, storing zero vector: %v", reportID, p.ChunkIndex, err)
			vec = make([]float32, s.dimensions)
		}
		embeddings = append(embeddings, vec)
	}
	return embeddings
}

func (s *IngestService) fail(ctx context.Context, reportID string, cause error) error {
	if err := s.reportRepo.UpdateStatus(ctx, reportID, domain.ReportStatusFailed, cause.Error()); err != nil {
		log.Printf("failed to mark report %s as failed: %v", reportID, err)
	}
	return cause
}

// FileTypeFromName infers the document format from the filename
// extension.
func FileTypeFromName(filename string) (domain.FileType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return domain.FileTypePDF, nil
	case ".txt", ".text", ".md":
		return domain.FileTypeTXT, nil
	case ".csv":
		return domain.FileTypeCSV, nil
	case ".json":
		return domain.FileTypeJSON, nil
	case ".html", ".htm":
		return domain.FileTypeHTML, nil
	}
	return "", domain.ErrUnsupportedFileType
}
