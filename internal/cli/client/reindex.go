package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ReindexRequest represents the reindex API request.
type ReindexRequest struct {
	Password string `json:"password,omitempty"`
}

// ReindexResponse represents the reindex API response.
type ReindexResponse struct {
	ReportID      string `json:"report_id"`
	ChunksCreated int    `json:"chunks_created"`
}

// ReindexCmd creates the reindex command.
func ReindexCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "reindex <report_id>",
		Short: "Re-run ingestion for a report",
		Long: `Re-extracts, re-chunks and re-embeds a report synchronously.

Use --password for password-protected PDFs; background ingestion
cannot supply one, so protected documents stay failed until
reindexed this way.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runReindex(cmd, args[0], password, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Document password for protected PDFs")

	return cmd
}

func runReindex(cmd *cobra.Command, reportID, password string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var body interface{}
	if password != "" {
		body = ReindexRequest{Password: password}
	}

	resp, err := api.Post(fmt.Sprintf("/reports/%s/reindex", reportID), body)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	var result ReindexResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Reindexed report %s: %d chunks created\n", result.ReportID, result.ChunksCreated)
	return nil
}
