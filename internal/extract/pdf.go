package extract

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/finsight-labs/finrag/internal/domain"
)

// CommandRunner executes an external command and returns its combined
// output. Factored out so tests can stub the pdftotext binary.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// PDF extracts text from PDF documents by shelling out to pdftotext.
// Pages are delimited by form feeds in the tool's output. Encrypted
// documents surface as password-required or password-incorrect
// conditions, distinguishable from generic extraction failure.
type PDF struct {
	runner CommandRunner
}

// NewPDF creates a PDF extractor backed by the pdftotext binary.
func NewPDF() *PDF {
	return &PDF{runner: execRunner{}}
}

// NewPDFWithRunner creates a PDF extractor with a custom command runner.
func NewPDFWithRunner(runner CommandRunner) *PDF {
	return &PDF{runner: runner}
}

func (e *PDF) Extract(ctx context.Context, r io.Reader, opts Options) (*Document, error) {
	tmp, err := os.CreateTemp("", "finrag-*.pdf")
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to stage document", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to stage document", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to stage document", err)
	}

	args := []string{"-layout", "-enc", "UTF-8"}
	if opts.Password != "" {
		args = append(args, "-upw", opts.Password)
	}
	args = append(args, tmp.Name(), "-")

	out, err := e.runner.Run(ctx, "pdftotext", args...)
	if err != nil {
		return nil, classifyPDFError(string(out), opts.Password != "", err)
	}

	return splitFormFeedPages(string(out)), nil
}

// classifyPDFError maps pdftotext failures to the extraction error
// taxonomy. Poppler reports encrypted documents with "Incorrect
// password" whether or not one was supplied.
func classifyPDFError(output string, passwordGiven bool, cause error) error {
	lower := strings.ToLower(output)
	if strings.Contains(lower, "incorrect password") || strings.Contains(lower, "encrypted") {
		if passwordGiven {
			return domain.ErrPasswordIncorrect
		}
		return domain.ErrPasswordRequired
	}
	return domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "pdf extraction failed", cause)
}

// splitFormFeedPages builds a Document from pdftotext output, which
// separates pages with form-feed characters.
func splitFormFeedPages(output string) *Document {
	raw := strings.Split(output, "\f")
	var pages []Page
	var kept []string
	for i, pageText := range raw {
		text := strings.TrimSpace(normalizeNewlines(pageText))
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: text})
		kept = append(kept, text)
	}
	return &Document{
		FullText: strings.Join(kept, "\n\n"),
		Pages:    pages,
	}
}
