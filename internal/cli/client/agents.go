package client

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// AgentsCmd creates the agents command.
func AgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List available query agents",
		Long:  "Lists the agents the server can route questions to, with their descriptions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAgents(cmd, outputJSON)
		},
	}

	return cmd
}

func runAgents(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/agents")
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	var agents map[string]string
	if err := json.Unmarshal(resp.Data, &agents); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(agents, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	names := make([]string, 0, len(agents))
	for name := range agents {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s\n  %s\n", name, agents[name])
	}
	return nil
}
