package agents

import (
	"fmt"
	"strings"
)

// CalculateRatio divides numerator by denominator and labels the result.
// A zero denominator yields an explanatory message instead of an error.
func CalculateRatio(numerator, denominator float64, name string) string {
	if name == "" {
		name = "custom"
	}
	if denominator == 0 {
		return fmt.Sprintf("Cannot calculate %s: denominator is zero", name)
	}
	return fmt.Sprintf("%s: %.2f", name, numerator/denominator)
}

// LiquidityRatios computes the current, quick and cash ratios with a
// short interpretation of the current ratio. Ratios whose denominator
// is zero are omitted.
func LiquidityRatios(currentAssets, currentLiabilities, cash, inventory float64) string {
	var lines []string

	if currentLiabilities > 0 {
		currentRatio := currentAssets / currentLiabilities
		lines = append(lines, fmt.Sprintf("Current Ratio: %.2f", currentRatio))
		switch {
		case currentRatio < 1.0:
			lines = append(lines, "  Low liquidity risk")
		case currentRatio < 1.5:
			lines = append(lines, "  Moderate liquidity")
		default:
			lines = append(lines, "  Strong liquidity")
		}

		lines = append(lines, fmt.Sprintf("Quick Ratio: %.2f", (currentAssets-inventory)/currentLiabilities))
		lines = append(lines, fmt.Sprintf("Cash Ratio: %.2f", cash/currentLiabilities))
	}

	return strings.Join(lines, "\n")
}

// ProfitabilityRatios computes net profit margin, ROA and ROE as
// percentages. Ratios whose denominator is zero are omitted.
func ProfitabilityRatios(netIncome, revenue, totalAssets, shareholdersEquity float64) string {
	var lines []string

	if revenue > 0 {
		lines = append(lines, fmt.Sprintf("Net Profit Margin: %.2f%%", netIncome/revenue*100))
	}
	if totalAssets > 0 {
		lines = append(lines, fmt.Sprintf("Return on Assets (ROA): %.2f%%", netIncome/totalAssets*100))
	}
	if shareholdersEquity > 0 {
		lines = append(lines, fmt.Sprintf("Return on Equity (ROE): %.2f%%", netIncome/shareholdersEquity*100))
	}

	return strings.Join(lines, "\n")
}

// LeverageRatios computes debt-to-assets, debt-to-equity and interest
// coverage. Ratios whose denominator is zero are omitted.
func LeverageRatios(totalDebt, totalAssets, totalEquity, ebit, interestExpense float64) string {
	var lines []string

	if totalAssets > 0 {
		lines = append(lines, fmt.Sprintf("Debt-to-Assets: %.2f", totalDebt/totalAssets))
	}
	if totalEquity > 0 {
		lines = append(lines, fmt.Sprintf("Debt-to-Equity: %.2f", totalDebt/totalEquity))
	}
	if interestExpense > 0 {
		lines = append(lines, fmt.Sprintf("Interest Coverage: %.2fx", ebit/interestExpense))
	}

	return strings.Join(lines, "\n")
}
