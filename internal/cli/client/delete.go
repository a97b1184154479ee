package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <report_id>",
		Short: "Delete a report and its chunks",
		Long:  "Deletes a report along with every chunk indexed from it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDelete(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, reportID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := api.Delete(fmt.Sprintf("/reports/%s", reportID)); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	if outputJSON {
		fmt.Printf("{\"deleted\": %q}\n", reportID)
		return nil
	}

	fmt.Printf("Deleted report %s\n", reportID)
	return nil
}
