package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// InitCmd creates the init command.
func InitCmd() *cobra.Command {
	var (
		apiURL    string
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Save client configuration",
		Long: `Saves the API URL (and optionally a session ID) to the global config
file so they do not have to be passed on every invocation.

Config location: $XDG_CONFIG_HOME/finrag/config.json (or the platform
equivalent). Flags and the FINRAG_API_URL environment variable always
take precedence over the saved config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runInit(apiURL, sessionID, outputJSON)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", defaultAPIURL, "API base URL to save")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Session ID to save (sent as X-Session-ID)")

	return cmd
}

func runInit(apiURL, sessionID string, outputJSON bool) error {
	config := &GlobalConfig{
		APIURL:    apiURL,
		SessionID: sessionID,
	}

	if err := SaveGlobalConfig(config); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(map[string]string{
			"config_path": configPath,
			"api_url":     apiURL,
		}, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Saved config to %s\n", configPath)
	fmt.Printf("API URL: %s\n", apiURL)
	return nil
}
