package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type FilingItem struct {
	ID         string `json:"id"`
	Ticker     string `json:"ticker"`
	Company    string `json:"company"`
	Year       int    `json:"year"`
	ChunkCount int    `json:"chunkCount"`
	IndexedAt  string `json:"indexedAt"`
}

type FilingsPage struct {
	Items   []FilingItem `json:"items"`
	Cursor  string       `json:"cursor,omitempty"`
	HasMore bool         `json:"has_more"`
}

// FilingsCmd creates the filings command.
func FilingsCmd() *cobra.Command {
	var (
		ticker string
		cursor string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "filings",
		Short: "List indexed filings",
		Long:  "Lists which 10-K filings have been downloaded and indexed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runFilings(c, ticker, cursor, limit, outputJSON)
		},
	}

	cmd.Flags().StringVar(&ticker, "ticker", "", "Only show filings for this ticker")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from a previous page")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")

	return cmd
}

func runFilings(c *APIClient, ticker, cursor string, limit int, outputJSON bool) error {
	params := url.Values{}
	if ticker != "" {
		params.Set("ticker", strings.ToUpper(strings.TrimSpace(ticker)))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	path := "/api/filings"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page FilingsPage
	if err := c.Get(path, &page); err != nil {
		return err
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(page)
	}

	if len(page.Items) == 0 {
		fmt.Println("No filings indexed yet.")
		return nil
	}

	for _, f := range page.Items {
		fmt.Printf("%-6s %d  %-30s %4d chunks  indexed %s\n", f.Ticker, f.Year, f.Company, f.ChunkCount, f.IndexedAt)
	}
	if page.HasMore {
		fmt.Printf("\nMore results available. Next page: --cursor %s\n", page.Cursor)
	}

	return nil
}
