// Package chunker splits extracted document text into overlapping,
// size-bounded segments for embedding.
package chunker

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Options controls chunk construction.
type Options struct {
	ChunkSize   int    // target chunk size in characters
	Overlap     int    // characters carried over between adjacent chunks
	SectionType string // free-form tag attached to each piece, e.g. "table"
}

// DefaultOptions provides sane defaults for financial documents.
func DefaultOptions() Options {
	return Options{
		ChunkSize:   1000,
		Overlap:     200,
		SectionType: "text",
	}
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultOptions().ChunkSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.SectionType == "" {
		o.SectionType = DefaultOptions().SectionType
	}
	return o
}

// Piece is a single chunk of text with its position metadata.
type Piece struct {
	Text        string
	ChunkIndex  int
	PageNumber  *int
	SectionType string
}

// Page is a unit of extracted text attributed to a document page.
type Page struct {
	Number int
	Text   string
}

// Split breaks text into overlapping chunks. Paragraphs (separated by
// blank lines) are accumulated into a buffer; when appending the next
// paragraph would exceed ChunkSize the buffer is emitted and the next
// buffer is seeded with the last Overlap characters of the emitted
// chunk. A single paragraph longer than ChunkSize is emitted whole
// rather than split mid-paragraph. Empty or whitespace-only input
// yields no chunks. Split never fails.
func Split(text string, opts Options) []Piece {
	opts = opts.withDefaults()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		// No paragraph boundaries to work with: fall back to fixed-size
		// character slices.
		paragraphs = fixedSlices(text, opts.ChunkSize)
	}

	pieces := make([]Piece, 0, 4)
	current := ""

	emit := func() {
		trimmed := strings.TrimSpace(current)
		if trimmed == "" {
			return
		}
		pieces = append(pieces, Piece{
			Text:        trimmed,
			ChunkIndex:  len(pieces),
			SectionType: opts.SectionType,
		})
	}

	for _, para := range paragraphs {
		if current != "" && utf8.RuneCountInString(current)+utf8.RuneCountInString(para)+2 > opts.ChunkSize {
			trimmed := strings.TrimSpace(current)
			if trimmed != "" {
				pieces = append(pieces, Piece{
					Text:        trimmed,
					ChunkIndex:  len(pieces),
					SectionType: opts.SectionType,
				})
			}
			current = overlapTail(trimmed, opts.Overlap) + para
			continue
		}

		if current != "" {
			current += "\n\n" + para
		} else {
			current = para
		}
	}

	emit()
	return pieces
}

// SplitPages chunks each page independently, tagging pieces with the
// page number and a "page_N" section type, and assigns chunk indices
// sequentially across the whole document.
func SplitPages(pages []Page, opts Options) []Piece {
	opts = opts.withDefaults()

	ordered := make([]Page, len(pages))
	copy(ordered, pages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Number < ordered[j].Number
	})

	var all []Piece
	for _, page := range ordered {
		pageOpts := opts
		pageOpts.SectionType = fmt.Sprintf("page_%d", page.Number)
		for _, piece := range Split(page.Text, pageOpts) {
			num := page.Number
			piece.PageNumber = &num
			piece.ChunkIndex = len(all)
			all = append(all, piece)
		}
	}
	return all
}

// splitParagraphs returns the non-empty paragraphs of text, split on
// blank-line boundaries.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// fixedSlices cuts text into consecutive slices of at most size runes.
func fixedSlices(text string, size int) []string {
	runes := []rune(text)
	slices := make([]string, 0, (len(runes)/size)+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		slices = append(slices, string(runes[start:end]))
	}
	return slices
}

// overlapTail returns the last overlap runes of s, or all of s when it
// is shorter than the overlap window.
func overlapTail(s string, overlap int) string {
	if overlap <= 0 || s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= overlap {
		return s
	}
	return string(runes[len(runes)-overlap:])
}
