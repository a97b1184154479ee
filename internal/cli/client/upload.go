package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ReportItem represents a report as returned by the API.
type ReportItem struct {
	ID                string `json:"id"`
	Filename          string `json:"filename"`
	FileType          string `json:"file_type"`
	UploadDate        string `json:"upload_date"`
	ProcessingStatus  string `json:"processing_status"`
	ErrorMessage      string `json:"error_message,omitempty"`
	EmbeddingProvider string `json:"embedding_provider,omitempty"`
	EmbeddingModel    string `json:"embedding_model,omitempty"`
	ChunksCreated     int    `json:"chunks_created"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a financial document",
		Long: `Uploads a financial document (PDF, TXT, CSV or XLSX) for indexing.

The document is chunked and embedded in the background; check its
processing_status with 'finrag get <report_id>'.

Examples:
  finrag upload annual-report-2024.pdf
  finrag upload balance-sheet.csv --output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], outputJSON, quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the upload progress bar")

	return cmd
}

func runUpload(cmd *cobra.Command, filePath string, outputJSON, quiet bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var onProgress ProgressFunc
	if !quiet && !outputJSON {
		onProgress = func(current, total int64) {
			if total > 0 {
				fmt.Fprintf(os.Stderr, "\rUploading... %d%%", current*100/total)
			}
		}
	}

	resp, err := api.PostFile("/reports", "file", filePath, onProgress)
	if onProgress != nil {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var report ReportItem
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Uploaded %s [%s]\n", report.Filename, report.FileType)
	fmt.Printf("Status: %s\n", report.ProcessingStatus)
	fmt.Printf("ID: %s\n", report.ID)
	return nil
}
