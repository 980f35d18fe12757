package client

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ChatCmd creates the chat command, an interactive loop around the analysis
// endpoint.
func ChatCmd() *cobra.Command {
	var (
		model      string
		depth      int
		creativity float64
		ticker     string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question loop against indexed filings",
		Long: `Starts an interactive session. Each line is sent to the analysis
pipeline; type "exit" or press Ctrl-D to leave.

Examples:
  finagent chat
  finagent chat --ticker AAPL`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runChat(c, model, depth, creativity, ticker)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Generation model to use")
	cmd.Flags().IntVar(&depth, "depth", 0, "Chunks retrieved per sub-query")
	cmd.Flags().Float64Var(&creativity, "creativity", 0, "Generation temperature (0.0 to 1.0)")
	cmd.Flags().StringVar(&ticker, "ticker", "", "Restrict retrieval to one company")

	return cmd
}

func runChat(c *APIClient, model string, depth int, creativity float64, ticker string) error {
	fmt.Println("Financial filing analysis. Type a question, or \"exit\" to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			return nil
		}

		if err := runAsk(c, query, model, depth, creativity, ticker, false, false); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println()
	}
}
