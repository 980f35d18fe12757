package client

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type AddTickerRequest struct {
	Ticker string `json:"ticker"`
	Depth  int    `json:"depth"`
}

// ProgressEvent mirrors the NDJSON events streamed during ingestion.
type ProgressEvent struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Ticker  string   `json:"ticker,omitempty"`
	Years   []string `json:"years,omitempty"`
	Company string   `json:"company,omitempty"`
}

// AddTickerCmd creates the add-ticker command.
func AddTickerCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "add-ticker <ticker>",
		Short: "Download and index a company's 10-K filings",
		Long: `Fetches 10-K filings from SEC EDGAR for the given ticker and indexes
them into the vector store, streaming progress as it goes.

Examples:
  finagent add-ticker AAPL
  finagent add-ticker NVDA --depth 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runAddTicker(c, args[0], depth, outputJSON)
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 1, "How many years of filings to index")

	return cmd
}

func runAddTicker(c *APIClient, ticker string, depth int, outputJSON bool) error {
	req := AddTickerRequest{
		Ticker: strings.ToUpper(strings.TrimSpace(ticker)),
		Depth:  depth,
	}

	sawError := false
	err := c.PostStream("/api/add_ticker", req, func(line []byte) error {
		if outputJSON {
			fmt.Println(string(line))
			return nil
		}

		var event ProgressEvent
		if err := json.Unmarshal(line, &event); err != nil {
			fmt.Println(string(line))
			return nil
		}

		switch event.Type {
		case "error":
			sawError = true
			fmt.Fprintf(os.Stderr, "error: %s\n", event.Message)
		case "success":
			fmt.Println(event.Message)
			if len(event.Years) > 0 {
				fmt.Printf("Indexed years: %s\n", strings.Join(event.Years, ", "))
			}
		default:
			fmt.Println(event.Message)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if sawError {
		return fmt.Errorf("ingestion of %s reported errors", req.Ticker)
	}
	return nil
}
