package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query        string   `json:"query"`
	ReportIDs    []string `json:"report_ids,omitempty"`
	SectionTypes []string `json:"section_types,omitempty"`
	TopK         int      `json:"top_k,omitempty"`
	Threshold    float64  `json:"threshold,omitempty"`
}

// SearchResult represents a single search hit.
type SearchResult struct {
	ChunkID        string  `json:"chunk_id"`
	ReportID       string  `json:"report_id"`
	ReportFilename string  `json:"report_filename"`
	Content        string  `json:"content"`
	ChunkIndex     int     `json:"chunk_index"`
	PageNumber     *int    `json:"page_number,omitempty"`
	SectionType    string  `json:"section_type,omitempty"`
	Similarity     float64 `json:"similarity"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		reportIDs    []string
		sectionTypes []string
		topK         int
		threshold    float64
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed reports",
		Long:  "Searches indexed report chunks by semantic similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd, args[0], reportIDs, sectionTypes, topK, threshold, outputJSON)
		},
	}

	cmd.Flags().StringSliceVar(&reportIDs, "report", nil, "Restrict to report IDs (repeatable)")
	cmd.Flags().StringSliceVar(&sectionTypes, "section", nil, "Restrict to section types (repeatable)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Maximum number of results (server default if 0)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity (server default if 0)")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, reportIDs, sectionTypes []string, topK int, threshold float64, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	req := SearchRequest{
		Query:        query,
		ReportIDs:    reportIDs,
		SectionTypes: sectionTypes,
		TopK:         topK,
		Threshold:    threshold,
	}

	resp, err := api.Post("/search", req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var results []SearchResult
	if err := json.Unmarshal(resp.Data, &results); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("%d. %s (similarity %.3f)\n", i+1, r.ReportFilename, r.Similarity)
		if r.SectionType != "" {
			fmt.Printf("   Section: %s\n", r.SectionType)
		}
		if r.PageNumber != nil {
			fmt.Printf("   Page: %d\n", *r.PageNumber)
		}
		fmt.Printf("   %s\n", previewText(r.Content, 200))
		fmt.Printf("   Chunk: %s\n", r.ChunkID)
		if i < len(results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
