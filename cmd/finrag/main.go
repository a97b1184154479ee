package main

import (
	"fmt"
	"os"

	"github.com/finsight-labs/finrag/internal/cli"
	"github.com/finsight-labs/finrag/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "finrag",
		Short: "Finrag CLI - Q&A over financial documents",
		Long: `Finrag CLI uploads financial documents and asks questions about them.

Environment variables:
  FINRAG_API_URL      API base URL (default: http://localhost:8080)
  FINRAG_SESSION_ID   Session ID sent as X-Session-ID (optional)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	rootCmd.PersistentFlags().String("session", "", "Session ID (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.ChunksCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.ReindexCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.AgentsCmd())
	rootCmd.AddCommand(client.HistoryCmd())
	rootCmd.AddCommand(client.ResetCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
