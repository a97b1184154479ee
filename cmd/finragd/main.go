package main

import (
	"fmt"
	"os"

	"github.com/finsight-labs/finrag/internal/cli"
	"github.com/finsight-labs/finrag/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finragd",
		Short: "Finrag daemon",
		Long:  "Finrag daemon for running the API server and the background ingest worker",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.MigrateCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
