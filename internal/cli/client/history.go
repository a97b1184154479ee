package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ConversationEntry represents one entry in the conversation history.
type ConversationEntry struct {
	Query     string `json:"query"`
	Answer    string `json:"answer"`
	Agent     string `json:"agent"`
	Timestamp string `json:"timestamp"`
}

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the conversation history",
		Long:  "Shows past questions and answers from the current server conversation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHistory(cmd, outputJSON)
		},
	}

	return cmd
}

func runHistory(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/conversation/history")
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	var entries []ConversationEntry
	if err := json.Unmarshal(resp.Data, &entries); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No conversation history.")
		return nil
	}

	for i, e := range entries {
		fmt.Printf("[%s] %s\n", e.Timestamp, e.Agent)
		fmt.Printf("Q: %s\n", e.Query)
		fmt.Printf("A: %s\n", previewText(e.Answer, 400))
		if i < len(entries)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}
	return nil
}

// ResetCmd creates the reset command.
func ResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the conversation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runReset(cmd, outputJSON)
		},
	}

	return cmd
}

func runReset(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/conversation/reset", nil)
	if err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}

	if outputJSON {
		fmt.Println(string(resp.Data))
		return nil
	}

	fmt.Println("Conversation history cleared.")
	return nil
}
