package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finrag/internal/domain"
)

func TestForType(t *testing.T) {
	for _, ft := range []domain.FileType{
		domain.FileTypeTXT, domain.FileTypeCSV, domain.FileTypeJSON,
		domain.FileTypeHTML, domain.FileTypePDF,
	} {
		ex, err := ForType(ft)
		require.NoError(t, err, "file type %s", ft)
		assert.NotNil(t, ex)
	}

	_, err := ForType("docx")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestPlainText_Extract(t *testing.T) {
	ex := &PlainText{}

	doc, err := ex.Extract(context.Background(), strings.NewReader("Revenue up.\r\nCosts flat.\r\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "Revenue up.\nCosts flat.\n", doc.FullText)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, 1, doc.Pages[0].Number)
}

func TestPlainText_ExtractEmpty(t *testing.T) {
	ex := &PlainText{}

	doc, err := ex.Extract(context.Background(), strings.NewReader("  \n\t"), Options{})
	require.NoError(t, err)
	assert.Empty(t, doc.FullText)
	assert.Empty(t, doc.Pages)
}

func TestCSV_Extract(t *testing.T) {
	ex := &CSV{}
	input := "quarter,revenue,expenses\nQ1,100,80\nQ2,120,85\n"

	doc, err := ex.Extract(context.Background(), strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t,
		"quarter | revenue | expenses\nQ1 | 100 | 80\nQ2 | 120 | 85",
		doc.FullText)
}

func TestCSV_ExtractMalformed(t *testing.T) {
	ex := &CSV{}

	_, err := ex.Extract(context.Background(), strings.NewReader("a,\"unterminated\n"), Options{})
	require.Error(t, err)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrCodeExtraction, derr.Code)
}

func TestJSON_Extract(t *testing.T) {
	ex := &JSON{}
	input := `{"fiscal_year": 2025, "totals": {"revenue": 4200, "expenses": 3100}, "quarters": ["Q1","Q2"]}`

	doc, err := ex.Extract(context.Background(), strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Contains(t, doc.FullText, "fiscal_year: 2025")
	assert.Contains(t, doc.FullText, "totals.revenue: 4200")
	assert.Contains(t, doc.FullText, "quarters[0]: Q1")
}

func TestJSON_ExtractInvalid(t *testing.T) {
	ex := &JSON{}

	_, err := ex.Extract(context.Background(), strings.NewReader("{not json"), Options{})
	assert.Error(t, err)
}

func TestHTML_Extract(t *testing.T) {
	ex := &HTML{}
	input := `<html><head><style>p{color:red}</style></head><body>
		<h1>Annual Report</h1>
		<p>Revenue grew   12% year over year.</p>
		<table><tr><th>Line</th><th>Amount</th></tr><tr><td>Cash</td><td>950</td></tr></table>
		<script>alert(1)</script>
	</body></html>`

	doc, err := ex.Extract(context.Background(), strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Contains(t, doc.FullText, "Annual Report")
	assert.Contains(t, doc.FullText, "Revenue grew 12% year over year.")
	assert.Contains(t, doc.FullText, "Line | Amount")
	assert.Contains(t, doc.FullText, "Cash | 950")
	assert.NotContains(t, doc.FullText, "alert")
	assert.NotContains(t, doc.FullText, "color:red")
}

type stubRunner struct {
	output string
	err    error
}

func (s *stubRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return []byte(s.output), s.err
}

func TestPDF_ExtractPages(t *testing.T) {
	runner := &stubRunner{output: "Page one text.\f\nPage two text.\f"}
	ex := NewPDFWithRunner(runner)

	doc, err := ex.Extract(context.Background(), strings.NewReader("%PDF-1.4"), Options{})
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, "Page one text.", doc.Pages[0].Text)
	assert.Equal(t, 2, doc.Pages[1].Number)
	assert.Equal(t, "Page one text.\n\nPage two text.", doc.FullText)
}

func TestPDF_PasswordRequired(t *testing.T) {
	runner := &stubRunner{
		output: "Error: Incorrect password\n",
		err:    errors.New("exit status 1"),
	}
	ex := NewPDFWithRunner(runner)

	_, err := ex.Extract(context.Background(), strings.NewReader("%PDF-1.4"), Options{})
	assert.ErrorIs(t, err, domain.ErrPasswordRequired)
}

func TestPDF_PasswordIncorrect(t *testing.T) {
	runner := &stubRunner{
		output: "Error: Incorrect password\n",
		err:    errors.New("exit status 1"),
	}
	ex := NewPDFWithRunner(runner)

	_, err := ex.Extract(context.Background(), strings.NewReader("%PDF-1.4"), Options{Password: "hunter2"})
	assert.ErrorIs(t, err, domain.ErrPasswordIncorrect)
}

func TestPDF_GenericFailure(t *testing.T) {
	runner := &stubRunner{
		output: "Syntax Error: Couldn't read xref table\n",
		err:    errors.New("exit status 1"),
	}
	ex := NewPDFWithRunner(runner)

	_, err := ex.Extract(context.Background(), strings.NewReader("not a pdf"), Options{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPasswordRequired)
	assert.NotErrorIs(t, err, domain.ErrPasswordIncorrect)
}
