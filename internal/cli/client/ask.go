package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskRequest represents the ask API request.
type AskRequest struct {
	Query        string   `json:"query"`
	ReportIDs    []string `json:"report_ids,omitempty"`
	SectionTypes []string `json:"section_types,omitempty"`
	TopK         int      `json:"top_k,omitempty"`
	Threshold    float64  `json:"threshold,omitempty"`
	UseRouting   bool     `json:"use_routing"`
	Agents       []string `json:"agents,omitempty"`
	SessionID    string   `json:"session_id,omitempty"`
}

// AskResponse represents the ask API response.
type AskResponse struct {
	Answer           string         `json:"answer"`
	AgentUsed        string         `json:"agent_used"`
	AgentsUsed       []string       `json:"agents_used,omitempty"`
	Success          bool           `json:"success"`
	Sources          []SearchResult `json:"sources"`
	ProcessingTimeMS int64          `json:"processing_time_ms"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		reportIDs []string
		agents    []string
		topK      int
		threshold float64
		noRoute   bool
		sources   bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about indexed reports",
		Long: `Asks a question and gets an agent-generated answer grounded in the
indexed reports.

By default the question is routed to the best-matching agent. Use
--agent to pin one or more agents instead, or --no-route to always
use the default document analysis agent.

Examples:
  finrag ask "What was the operating margin in Q3?"
  finrag ask "Compare revenue trends" --agent trend_analysis --agent financial_metrics
  finrag ask "Summarize the risk section" --report 4f7c... --no-route`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, args[0], reportIDs, agents, topK, threshold, !noRoute, sources, outputJSON)
		},
	}

	cmd.Flags().StringSliceVar(&reportIDs, "report", nil, "Restrict to report IDs (repeatable)")
	cmd.Flags().StringSliceVar(&agents, "agent", nil, "Pin specific agents (repeatable, disables routing)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Maximum number of source chunks (server default if 0)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum source similarity (server default if 0)")
	cmd.Flags().BoolVar(&noRoute, "no-route", false, "Skip keyword routing and use the default agent")
	cmd.Flags().BoolVar(&sources, "sources", false, "Print the source chunks used for the answer")

	return cmd
}

func runAsk(cmd *cobra.Command, question string, reportIDs, agents []string, topK int, threshold float64, useRouting, showSources, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	sessionID, _ := cmd.Flags().GetString("session")

	req := AskRequest{
		Query:      question,
		ReportIDs:  reportIDs,
		TopK:       topK,
		Threshold:  threshold,
		UseRouting: useRouting && len(agents) == 0,
		Agents:     agents,
		SessionID:  sessionID,
	}

	resp, err := api.Post("/ask", req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var answer AskResponse
	if err := json.Unmarshal(resp.Data, &answer); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer.Answer)
	fmt.Println()
	if len(answer.AgentsUsed) > 1 {
		fmt.Printf("Agents: %s\n", strings.Join(answer.AgentsUsed, ", "))
	} else {
		fmt.Printf("Agent: %s\n", answer.AgentUsed)
	}
	fmt.Printf("Sources: %d chunks (%dms)\n", len(answer.Sources), answer.ProcessingTimeMS)

	if showSources && len(answer.Sources) > 0 {
		fmt.Println()
		for i, src := range answer.Sources {
			fmt.Printf("%d. %s (similarity %.3f)\n", i+1, src.ReportFilename, src.Similarity)
			fmt.Printf("   %s\n", previewText(src.Content, 200))
		}
	}

	return nil
}
