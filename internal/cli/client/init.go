package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func InitCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Save the API server URL",
		Long:  "Stores the analysis server URL in the user config so other commands can find it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runInit(apiURL, outputJSON)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL (default: http://localhost:8000)")

	return cmd
}

func runInit(apiURL string, outputJSON bool) error {
	_ = godotenv.Load()
	if apiURL == "" {
		apiURL = os.Getenv(envAPIURL)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	if err := SaveGlobalConfig(&GlobalConfig{APIURL: apiURL}); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"api_url":     apiURL,
			"config_path": configPath,
		})
	}

	fmt.Printf("Saved API URL %s to %s\n", apiURL, configPath)
	return nil
}
