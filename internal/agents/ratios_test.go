package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateRatio(t *testing.T) {
	assert.Equal(t, "current: 1.50", CalculateRatio(150, 100, "current"))
	assert.Equal(t, "custom: 0.25", CalculateRatio(1, 4, ""))
	assert.Equal(t, "Cannot calculate quick: denominator is zero", CalculateRatio(10, 0, "quick"))
}

func TestLiquidityRatios(t *testing.T) {
	out := LiquidityRatios(200, 100, 50, 40)

	assert.Contains(t, out, "Current Ratio: 2.00")
	assert.Contains(t, out, "Strong liquidity")
	assert.Contains(t, out, "Quick Ratio: 1.60")
	assert.Contains(t, out, "Cash Ratio: 0.50")
}

func TestLiquidityRatios_Interpretation(t *testing.T) {
	assert.Contains(t, LiquidityRatios(80, 100, 10, 5), "Low liquidity risk")
	assert.Contains(t, LiquidityRatios(120, 100, 10, 5), "Moderate liquidity")
}

func TestLiquidityRatios_ZeroLiabilities(t *testing.T) {
	assert.Empty(t, LiquidityRatios(200, 0, 50, 40))
}

func TestProfitabilityRatios(t *testing.T) {
	out := ProfitabilityRatios(50, 500, 1000, 250)

	assert.Contains(t, out, "Net Profit Margin: 10.00%")
	assert.Contains(t, out, "Return on Assets (ROA): 5.00%")
	assert.Contains(t, out, "Return on Equity (ROE): 20.00%")
}

func TestProfitabilityRatios_SkipsZeroDenominators(t *testing.T) {
	out := ProfitabilityRatios(50, 0, 1000, 0)

	assert.NotContains(t, out, "Net Profit Margin")
	assert.Contains(t, out, "Return on Assets (ROA): 5.00%")
	assert.NotContains(t, out, "Return on Equity")
}

func TestLeverageRatios(t *testing.T) {
	out := LeverageRatios(400, 1000, 500, 150, 30)

	assert.Contains(t, out, "Debt-to-Assets: 0.40")
	assert.Contains(t, out, "Debt-to-Equity: 0.80")
	assert.Contains(t, out, "Interest Coverage: 5.00x")
}

func TestLeverageRatios_NoInterestExpense(t *testing.T) {
	assert.NotContains(t, LeverageRatios(400, 1000, 500, 150, 0), "Interest Coverage")
}
