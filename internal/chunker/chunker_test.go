package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_EmptyInput(t *testing.T) {
	opts := Options{ChunkSize: 50, Overlap: 10}

	assert.Empty(t, Split("", opts))
	assert.Empty(t, Split("   \n\t\n  ", opts))
}

func TestSplit_SingleSmallParagraph(t *testing.T) {
	pieces := Split("Net income rose 4% in Q3.", Options{ChunkSize: 100, Overlap: 10})

	require.Len(t, pieces, 1)
	assert.Equal(t, "Net income rose 4% in Q3.", pieces[0].Text)
	assert.Equal(t, 0, pieces[0].ChunkIndex)
	assert.Equal(t, "text", pieces[0].SectionType)
}

func TestSplit_TwoParagraphsFitOneChunk(t *testing.T) {
	p1 := strings.Repeat("a", 20)
	p2 := strings.Repeat("b", 20)

	pieces := Split(p1+"\n\n"+p2, Options{ChunkSize: 50, Overlap: 10})

	require.Len(t, pieces, 1)
	assert.Equal(t, p1+"\n\n"+p2, pieces[0].Text)
}

func TestSplit_TwoParagraphsOverlapSeed(t *testing.T) {
	// Two 40-char paragraphs with chunk_size 50: the second chunk must
	// start with the last 10 characters of the first.
	p1 := "aaaaaaaaaabbbbbbbbbbccccccccccdddddddddd"
	p2 := strings.Repeat("e", 40)
	require.Len(t, p1, 40)

	pieces := Split(p1+"\n\n"+p2, Options{ChunkSize: 50, Overlap: 10})

	require.Len(t, pieces, 2)
	assert.Equal(t, p1, pieces[0].Text)
	assert.Equal(t, "dddddddddd"+p2, pieces[1].Text)
	assert.Equal(t, 0, pieces[0].ChunkIndex)
	assert.Equal(t, 1, pieces[1].ChunkIndex)
}

func TestSplit_OverlapInvariant(t *testing.T) {
	const overlap = 25

	var paragraphs []string
	for i := 0; i < 12; i++ {
		paragraphs = append(paragraphs, strings.Repeat(string(rune('a'+i)), 80))
	}
	text := strings.Join(paragraphs, "\n\n")

	pieces := Split(text, Options{ChunkSize: 200, Overlap: overlap})
	require.Greater(t, len(pieces), 1)

	for i := 0; i < len(pieces)-1; i++ {
		prev := []rune(pieces[i].Text)
		window := overlap
		if len(prev) < window {
			window = len(prev)
		}
		tail := string(prev[len(prev)-window:])
		assert.True(t, strings.HasPrefix(pieces[i+1].Text, tail),
			"chunk %d does not start with the overlap tail of chunk %d", i+1, i)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("Revenue grew steadily across the period.\n\n", 30)
	opts := Options{ChunkSize: 180, Overlap: 40}

	first := Split(text, opts)
	second := Split(text, opts)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i])
	}
}

func TestSplit_OversizedParagraphEmittedWhole(t *testing.T) {
	big := strings.Repeat("x", 120)
	small := strings.Repeat("y", 30)

	pieces := Split(big+"\n\n"+small, Options{ChunkSize: 50, Overlap: 10})

	require.Len(t, pieces, 2)
	assert.Equal(t, big, pieces[0].Text)
	assert.Equal(t, 120, utf8.RuneCountInString(pieces[0].Text))
}

func TestSplit_SequentialIndices(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 8; i++ {
		paragraphs = append(paragraphs, strings.Repeat("w", 60))
	}

	pieces := Split(strings.Join(paragraphs, "\n\n"), Options{ChunkSize: 80, Overlap: 10})
	require.NotEmpty(t, pieces)
	for i, p := range pieces {
		assert.Equal(t, i, p.ChunkIndex)
	}
}

func TestSplit_CustomSectionType(t *testing.T) {
	pieces := Split("Assets | Liabilities | Equity", Options{ChunkSize: 100, SectionType: "table"})

	require.Len(t, pieces, 1)
	assert.Equal(t, "table", pieces[0].SectionType)
}

func TestSplitPages(t *testing.T) {
	pages := []Page{
		{Number: 2, Text: "Second page paragraph."},
		{Number: 1, Text: "First page paragraph one.\n\nFirst page paragraph two."},
	}

	pieces := SplitPages(pages, Options{ChunkSize: 30, Overlap: 5})
	require.NotEmpty(t, pieces)

	// Pages are processed in order and indices are global.
	for i, p := range pieces {
		assert.Equal(t, i, p.ChunkIndex)
		require.NotNil(t, p.PageNumber)
	}
	assert.Equal(t, 1, *pieces[0].PageNumber)
	assert.Equal(t, "page_1", pieces[0].SectionType)

	last := pieces[len(pieces)-1]
	assert.Equal(t, 2, *last.PageNumber)
	assert.Equal(t, "page_2", last.SectionType)
}

func TestSplitPages_SkipsEmptyPages(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: "   "},
		{Number: 2, Text: "Cash flow summary."},
	}

	pieces := SplitPages(pages, Options{ChunkSize: 100, Overlap: 10})

	require.Len(t, pieces, 1)
	assert.Equal(t, 2, *pieces[0].PageNumber)
	assert.Equal(t, 0, pieces[0].ChunkIndex)
}

func TestFixedSlices(t *testing.T) {
	slices := fixedSlices("abcdefghij", 4)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, slices)
}

func TestOverlapTail(t *testing.T) {
	assert.Equal(t, "", overlapTail("abc", 0))
	assert.Equal(t, "abc", overlapTail("abc", 10))
	assert.Equal(t, "cde", overlapTail("abcde", 3))
}
