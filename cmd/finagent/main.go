package main

import (
	"fmt"
	"os"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/cli"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "finagent",
		Short: "Finagent CLI - Q&A over SEC 10-K filings",
		Long: `Finagent CLI asks questions of an analysis server that retrieves
and synthesizes answers from indexed SEC 10-K filings.

Environment variables:
  FINAGENT_API_URL   API base URL (default: http://localhost:8000)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.ChatCmd())
	rootCmd.AddCommand(client.AddTickerCmd())
	rootCmd.AddCommand(client.FilingsCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
