package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ChunkItem represents a stored chunk as returned by the API.
type ChunkItem struct {
	ID          string `json:"id"`
	ReportID    string `json:"report_id"`
	Content     string `json:"content"`
	ChunkIndex  int    `json:"chunk_index"`
	PageNumber  *int   `json:"page_number,omitempty"`
	SectionType string `json:"section_type,omitempty"`
}

// ChunksCmd creates the chunks command.
func ChunksCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "chunks <report_id>",
		Short: "List a report's indexed chunks",
		Long:  "Lists the chunks stored for a report, in chunk order.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runChunks(cmd, args[0], full, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Print full chunk content instead of a preview")

	return cmd
}

func runChunks(cmd *cobra.Command, reportID string, full, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/reports/%s/chunks", reportID))
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	var chunks []ChunkItem
	if err := json.Unmarshal(resp.Data, &chunks); err != nil {
		return fmt.Errorf("failed to parse chunks: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(chunks, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(chunks) == 0 {
		fmt.Println("No chunks found.")
		return nil
	}

	fmt.Printf("Found %d chunks:\n\n", len(chunks))
	for i, chunk := range chunks {
		fmt.Printf("[%d]", chunk.ChunkIndex)
		if chunk.SectionType != "" {
			fmt.Printf(" %s", chunk.SectionType)
		}
		if chunk.PageNumber != nil {
			fmt.Printf(" (page %d)", *chunk.PageNumber)
		}
		fmt.Println()

		content := chunk.Content
		if !full {
			content = previewText(content, 200)
		}
		fmt.Println(content)
		if i < len(chunks)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}

func previewText(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
