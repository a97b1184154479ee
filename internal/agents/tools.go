package agents

import (
	"encoding/json"
	"fmt"
	"strings"
)

// tool is a deterministic calculation a handler can invoke mid-turn.
// run receives the raw JSON args from the model's tool call.
type tool struct {
	name        string
	usage       string
	description string
	run         func(args json.RawMessage) (string, error)
}

// toolCall is the JSON shape the model replies with to invoke a tool.
type toolCall struct {
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args"`
}

// parseToolCall recognizes a completion that is a tool invocation:
// a JSON object with a non-empty "tool" field, optionally wrapped in a
// markdown code fence. Anything else is a final answer.
func parseToolCall(text string) (toolCall, bool) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if !strings.HasPrefix(s, "{") {
		return toolCall{}, false
	}

	var call toolCall
	if err := json.Unmarshal([]byte(s), &call); err != nil || call.Tool == "" {
		return toolCall{}, false
	}
	return call, true
}

// toolInstructions renders the tool protocol as an extra system prompt.
func toolInstructions(tools []tool) string {
	var b strings.Builder
	b.WriteString("You can run calculations before answering. To run one, reply with only a JSON object naming the tool and its arguments, for example:\n")
	b.WriteString(`{"tool": "` + tools[0].name + `", "args": {` + tools[0].usage + `}}`)
	b.WriteString("\n\nAvailable tools:\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "- %s(%s): %s\n", t.name, t.usage, t.description)
	}
	b.WriteString("\nThe tool result will be sent back to you. When you have the final answer, reply in plain text.")
	return b.String()
}

func decodeArgs[T any](args json.RawMessage) (T, error) {
	var params T
	if len(args) == 0 {
		return params, fmt.Errorf("missing args")
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return params, fmt.Errorf("invalid args: %w", err)
	}
	return params, nil
}

func metricsTools() []tool {
	return []tool{
		{
			name:        "calculate_ratio",
			usage:       `"numerator": 120, "denominator": 80, "ratio_name": "current"`,
			description: "divide two figures into a named ratio",
			run: func(args json.RawMessage) (string, error) {
				params, err := decodeArgs[struct {
					Numerator   float64 `json:"numerator"`
					Denominator float64 `json:"denominator"`
					RatioName   string  `json:"ratio_name"`
				}](args)
				if err != nil {
					return "", err
				}
				return CalculateRatio(params.Numerator, params.Denominator, params.RatioName), nil
			},
		},
		{
			name:        "calculate_liquidity_ratios",
			usage:       `"current_assets": 0, "current_liabilities": 0, "cash": 0, "inventory": 0`,
			description: "current, quick and cash ratios",
			run: func(args json.RawMessage) (string, error) {
				params, err := decodeArgs[struct {
					CurrentAssets      float64 `json:"current_assets"`
					CurrentLiabilities float64 `json:"current_liabilities"`
					Cash               float64 `json:"cash"`
					Inventory          float64 `json:"inventory"`
				}](args)
				if err != nil {
					return "", err
				}
				return LiquidityRatios(params.CurrentAssets, params.CurrentLiabilities, params.Cash, params.Inventory), nil
			},
		},
		{
			name:        "calculate_profitability_ratios",
			usage:       `"net_income": 0, "revenue": 0, "total_assets": 0, "shareholders_equity": 0`,
			description: "net profit margin, ROA and ROE",
			run: func(args json.RawMessage) (string, error) {
				params, err := decodeArgs[struct {
					NetIncome          float64 `json:"net_income"`
					Revenue            float64 `json:"revenue"`
					TotalAssets        float64 `json:"total_assets"`
					ShareholdersEquity float64 `json:"shareholders_equity"`
				}](args)
				if err != nil {
					return "", err
				}
				return ProfitabilityRatios(params.NetIncome, params.Revenue, params.TotalAssets, params.ShareholdersEquity), nil
			},
		},
		{
			name:        "calculate_leverage_ratios",
			usage:       `"total_debt": 0, "total_assets": 0, "total_equity": 0, "ebit": 0, "interest_expense": 0`,
			description: "debt-to-assets, debt-to-equity and interest coverage",
			run: func(args json.RawMessage) (string, error) {
				params, err := decodeArgs[struct {
					TotalDebt       float64 `json:"total_debt"`
					TotalAssets     float64 `json:"total_assets"`
					TotalEquity     float64 `json:"total_equity"`
					EBIT            float64 `json:"ebit"`
					InterestExpense float64 `json:"interest_expense"`
				}](args)
				if err != nil {
					return "", err
				}
				return LeverageRatios(params.TotalDebt, params.TotalAssets, params.TotalEquity, params.EBIT, params.InterestExpense), nil
			},
		},
	}
}

func trendTools() []tool {
	return []tool{
		{
			name:        "analyze_growth_trend",
			usage:       `"values": [100, 110], "periods": ["Q1", "Q2"]`,
			description: "growth rates, CAGR and volatility over a series",
			run: func(args json.RawMessage) (string, error) {
				params, err := decodeArgs[struct {
					Values  []float64 `json:"values"`
					Periods []string  `json:"periods"`
				}](args)
				if err != nil {
					return "", err
				}
				return GrowthTrend(params.Values, params.Periods), nil
			},
		},
		{
			name:        "compare_periods",
			usage:       `"current_value": 0, "previous_value": 0, "metric_name": "Revenue"`,
			description: "absolute and percentage change between two periods",
			run: func(args json.RawMessage) (string, error) {
				params, err := decodeArgs[struct {
					CurrentValue  float64 `json:"current_value"`
					PreviousValue float64 `json:"previous_value"`
					MetricName    string  `json:"metric_name"`
				}](args)
				if err != nil {
					return "", err
				}
				return ComparePeriods(params.CurrentValue, params.PreviousValue, params.MetricName), nil
			},
		},
		{
			name:        "identify_variance",
			usage:       `"actual": 0, "budget": 0, "metric_name": "Revenue", "threshold_pct": 10`,
			description: "actual-vs-budget variance with threshold flagging",
			run: func(args json.RawMessage) (string, error) {
				params, err := decodeArgs[struct {
					Actual       float64 `json:"actual"`
					Budget       float64 `json:"budget"`
					MetricName   string  `json:"metric_name"`
					ThresholdPct float64 `json:"threshold_pct"`
				}](args)
				if err != nil {
					return "", err
				}
				return IdentifyVariance(params.Actual, params.Budget, params.MetricName, params.ThresholdPct), nil
			},
		},
		{
			name:        "seasonal_analysis",
			usage:       `"q1": 0, "q2": 0, "q3": 0, "q4": 0, "metric_name": "Revenue"`,
			description: "quarterly pattern against the yearly average",
			run: func(args json.RawMessage) (string, error) {
				params, err := decodeArgs[struct {
					Q1         float64 `json:"q1"`
					Q2         float64 `json:"q2"`
					Q3         float64 `json:"q3"`
					Q4         float64 `json:"q4"`
					MetricName string  `json:"metric_name"`
				}](args)
				if err != nil {
					return "", err
				}
				return SeasonalAnalysis(params.Q1, params.Q2, params.Q3, params.Q4, params.MetricName), nil
			},
		},
	}
}
