package service

import (
	"fmt"
	"regexp"
	"strings"
)

// financialIndicators are the patterns a financial report is expected
// to contain. Matching is against lower-cased text.
var financialIndicators = []*regexp.Regexp{
	regexp.MustCompile(`revenue`),
	regexp.MustCompile(`expense`),
	regexp.MustCompile(`profit`),
	regexp.MustCompile(`assets`),
	regexp.MustCompile(`liabilities`),
	regexp.MustCompile(`balance sheet`),
	regexp.MustCompile(`cash flow`),
	regexp.MustCompile(`equity`),
	regexp.MustCompile(`\$\d+`),
	regexp.MustCompile(`fiscal year`),
	regexp.MustCompile(`gaap`),
	regexp.MustCompile(`income statement`),
	regexp.MustCompile(`depreciation`),
	regexp.MustCompile(`amortization`),
}

// ValidateFinancialDocument checks whether extracted text looks like
// financial data. A document passes with any indicator present; the
// returned issues flag thin matches without failing them.
func ValidateFinancialDocument(text string) (bool, []string) {
	lower := strings.ToLower(text)

	found := 0
	for _, re := range financialIndicators {
		if re.MatchString(lower) {
			found++
		}
	}

	var issues []string
	if found < 2 {
		issues = append(issues, fmt.Sprintf("document has limited financial indicators (%d of %d expected)", found, len(financialIndicators)))
	}
	if len(strings.TrimSpace(text)) < 500 {
		issues = append(issues, "document seems too short for a financial report")
	}

	return found > 0, issues
}
