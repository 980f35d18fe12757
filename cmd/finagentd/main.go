package main

import (
	"fmt"
	"os"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/cli"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finagentd",
		Short: "Finagent daemon",
		Long:  "Finagent daemon for running the analysis API server and managing ingest jobs",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.EnqueueCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
