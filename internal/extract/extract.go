// Package extract converts uploaded documents into plain text and
// per-page sections for chunking.
package extract

import (
	"context"
	"io"

	"github.com/finsight-labs/finrag/internal/domain"
)

// Page is extracted text attributed to one page of the source document.
type Page struct {
	Number int
	Text   string
}

// Document is the result of text extraction.
type Document struct {
	FullText string
	Pages    []Page
}

// Options carry per-extraction settings.
type Options struct {
	// Password unlocks encrypted documents. Only PDF extraction honors it.
	Password string
}

// Extractor converts a raw document stream into text.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader, opts Options) (*Document, error)
}

// ForType returns the extractor registered for a file type.
func ForType(t domain.FileType) (Extractor, error) {
	switch t {
	case domain.FileTypeTXT:
		return &PlainText{}, nil
	case domain.FileTypeCSV:
		return &CSV{}, nil
	case domain.FileTypeJSON:
		return &JSON{}, nil
	case domain.FileTypeHTML:
		return &HTML{}, nil
	case domain.FileTypePDF:
		return NewPDF(), nil
	}
	return nil, domain.ErrUnsupportedFileType
}
