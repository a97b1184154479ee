package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get <report_id>",
		Short:   "Get a report by ID",
		Long:    "Retrieves a report's metadata and processing status.",
		Aliases: []string{"view"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runGet(cmd *cobra.Command, reportID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/reports/%s", reportID))
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	var report ReportItem
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Filename: %s\n", report.Filename)
	fmt.Printf("Type: %s\n", report.FileType)
	fmt.Printf("Status: %s\n", report.ProcessingStatus)
	if report.ErrorMessage != "" {
		fmt.Printf("Error: %s\n", report.ErrorMessage)
	}
	if report.EmbeddingProvider != "" {
		fmt.Printf("Embeddings: %s (%s)\n", report.EmbeddingProvider, report.EmbeddingModel)
	}
	fmt.Printf("Chunks: %d\n", report.ChunksCreated)
	fmt.Printf("Uploaded: %s\n", report.UploadDate)
	fmt.Printf("ID: %s\n", report.ID)
	return nil
}
