package agents

import (
	"fmt"
	"math"
	"strings"
)

// GrowthTrend analyzes a time series: period-over-period growth rates,
// their average and volatility, CAGR, and a trend label. Periods whose
// prior value is zero are skipped.
func GrowthTrend(values []float64, periods []string) string {
	if len(values) < 2 || len(periods) != len(values) {
		return "Insufficient data for trend analysis (need at least 2 periods)"
	}

	var lines []string
	var rates []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		growth := (values[i] - values[i-1]) / values[i-1] * 100
		rates = append(rates, growth)
		lines = append(lines, fmt.Sprintf("%s to %s: %+.2f%%", periods[i-1], periods[i], growth))
	}

	if len(rates) > 0 {
		avg := mean(rates)
		lines = append(lines, fmt.Sprintf("\nAverage Growth Rate: %+.2f%%", avg))
		if len(rates) > 1 {
			lines = append(lines, fmt.Sprintf("Growth Volatility: %.2f%%", stddev(rates)))
		}
		switch {
		case avg > 5:
			lines = append(lines, "Trend: Strong Growth")
		case avg > 0:
			lines = append(lines, "Trend: Moderate Growth")
		case avg > -5:
			lines = append(lines, "Trend: Slight Decline")
		default:
			lines = append(lines, "Trend: Significant Decline")
		}
	}

	if cagr, ok := compoundAnnualGrowth(values); ok {
		lines = append(lines, fmt.Sprintf("CAGR: %+.2f%%", cagr))
	}

	return strings.Join(lines, "\n")
}

// ComparePeriods reports the absolute and percentage change of a metric
// between two periods.
func ComparePeriods(current, previous float64, metric string) string {
	if previous == 0 {
		return fmt.Sprintf("%s: Cannot calculate change (previous value is zero)", metric)
	}

	change := current - previous
	return strings.Join([]string{
		fmt.Sprintf("%s Analysis:", metric),
		fmt.Sprintf("  Current: %.2f", current),
		fmt.Sprintf("  Previous: %.2f", previous),
		fmt.Sprintf("  Change: %+.2f", change),
		fmt.Sprintf("  %% Change: %+.2f%%", change/previous*100),
	}, "\n")
}

// IdentifyVariance compares actual against budget and flags variances
// beyond thresholdPct. A non-positive threshold defaults to 10%.
func IdentifyVariance(actual, budget float64, metric string, thresholdPct float64) string {
	if budget == 0 {
		return fmt.Sprintf("%s: Cannot calculate variance (budget is zero)", metric)
	}
	if thresholdPct <= 0 {
		thresholdPct = 10.0
	}

	variance := actual - budget
	variancePct := variance / budget * 100

	lines := []string{
		fmt.Sprintf("%s Variance Analysis:", metric),
		fmt.Sprintf("  Actual: %.2f", actual),
		fmt.Sprintf("  Budget: %.2f", budget),
		fmt.Sprintf("  Variance: %+.2f", variance),
		fmt.Sprintf("  Variance %%: %+.2f%%", variancePct),
	}

	switch {
	case variancePct > thresholdPct:
		lines = append(lines, fmt.Sprintf("  Favorable variance exceeds %.1f%%", thresholdPct))
	case variancePct < -thresholdPct:
		lines = append(lines, fmt.Sprintf("  Warning: unfavorable variance exceeds %.1f%%", thresholdPct))
	default:
		lines = append(lines, fmt.Sprintf("  Within acceptable range (within %.1f%%)", thresholdPct))
	}

	return strings.Join(lines, "\n")
}

// SeasonalAnalysis compares quarterly values against their average and
// names the peak and lowest quarters.
func SeasonalAnalysis(q1, q2, q3, q4 float64, metric string) string {
	quarters := []float64{q1, q2, q3, q4}
	avg := mean(quarters)

	lines := []string{fmt.Sprintf("%s Seasonal Analysis:", metric)}
	for i, q := range quarters {
		if avg != 0 {
			lines = append(lines, fmt.Sprintf("  Q%d: %.2f (%+.1f%% vs avg)", i+1, q, (q/avg-1)*100))
		} else {
			lines = append(lines, fmt.Sprintf("  Q%d: %.2f", i+1, q))
		}
	}
	lines = append(lines, fmt.Sprintf("  Average: %.2f", avg))

	peak, low := 0, 0
	for i, q := range quarters {
		if q > quarters[peak] {
			peak = i
		}
		if q < quarters[low] {
			low = i
		}
	}
	lines = append(lines, fmt.Sprintf("  Peak Quarter: Q%d", peak+1))
	lines = append(lines, fmt.Sprintf("  Lowest Quarter: Q%d", low+1))

	return strings.Join(lines, "\n")
}

// compoundAnnualGrowth returns the compound growth rate across the
// series as a percentage. It requires positive endpoints.
func compoundAnnualGrowth(values []float64) (float64, bool) {
	n := len(values)
	if n < 2 || values[0] <= 0 || values[n-1] <= 0 {
		return 0, false
	}
	return (math.Pow(values[n-1]/values[0], 1/float64(n-1)) - 1) * 100, true
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the sample standard deviation.
func stddev(values []float64) float64 {
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
