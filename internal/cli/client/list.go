package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ListReportsResponse represents the report list API response.
type ListReportsResponse struct {
	Reports    []ReportItem `json:"reports"`
	NextCursor string       `json:"next_cursor,omitempty"`
	HasMore    bool         `json:"has_more"`
}

// ListCmd creates the report list command.
func ListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded reports",
		Long:  "Lists uploaded reports with their processing status, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results (1-100)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runList(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	path := "/reports"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp ListReportsResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Reports) == 0 {
		fmt.Println("No reports found.")
		return nil
	}

	fmt.Printf("Found %d reports:\n\n", len(listResp.Reports))
	for i, report := range listResp.Reports {
		fmt.Printf("%d. %s [%s]\n", i+1, report.Filename, report.FileType)
		fmt.Printf("   Status: %s\n", report.ProcessingStatus)
		if report.ErrorMessage != "" {
			fmt.Printf("   Error: %s\n", report.ErrorMessage)
		}
		if report.ChunksCreated > 0 {
			fmt.Printf("   Chunks: %d\n", report.ChunksCreated)
		}
		if report.UploadDate != "" {
			fmt.Printf("   Uploaded: %s\n", report.UploadDate)
		}
		fmt.Printf("   ID: %s\n", report.ID)
		if i < len(listResp.Reports)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	if listResp.HasMore && listResp.NextCursor != "" {
		fmt.Printf("\n%s\n", strings.Repeat("-", 40))
		fmt.Printf("More results available. Use --cursor %s\n", listResp.NextCursor)
	}

	return nil
}
