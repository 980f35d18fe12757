package client

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// AnalyzeSettings mirrors the per-request settings accepted by the API.
type AnalyzeSettings struct {
	Model       string  `json:"model,omitempty"`
	SearchDepth int     `json:"searchDepth,omitempty"`
	Creativity  float64 `json:"creativity,omitempty"`
}

type AnalyzeRequest struct {
	Query    string           `json:"query"`
	Settings *AnalyzeSettings `json:"settings,omitempty"`
	Ticker   string           `json:"ticker,omitempty"`
}

type TraceStep struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Substeps    []string `json:"substeps"`
}

type Thinking struct {
	Steps      []TraceStep `json:"steps"`
	IsComplete bool        `json:"isComplete"`
}

type Source struct {
	Ticker     string  `json:"ticker"`
	Company    string  `json:"company"`
	Year       int     `json:"year"`
	DocType    string  `json:"docType"`
	Snippet    string  `json:"snippet"`
	Confidence float64 `json:"confidence"`
}

type Answer struct {
	Reasoning string   `json:"reasoning"`
	Sources   []Source `json:"sources"`
}

type AnalyzeResponse struct {
	Thinking Thinking `json:"thinking"`
	Answer   Answer   `json:"answer"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		model      string
		depth      int
		creativity float64
		ticker     string
		showTrace  bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about indexed 10-K filings",
		Long: `Runs a question through the analysis pipeline and prints the answer
with its cited sources.

Examples:
  finagent ask "Compare Apple and Nvidia revenue growth"
  finagent ask --ticker NVDA "What are the main risk factors?"
  finagent ask --depth 5 --creativity 0.3 "How did margins change?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			c, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runAsk(c, strings.Join(args, " "), model, depth, creativity, ticker, showTrace, outputJSON)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Generation model to use")
	cmd.Flags().IntVar(&depth, "depth", 0, "Chunks retrieved per sub-query")
	cmd.Flags().Float64Var(&creativity, "creativity", 0, "Generation temperature (0.0 to 1.0)")
	cmd.Flags().StringVar(&ticker, "ticker", "", "Restrict retrieval to one company")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "Print the pipeline trace")

	return cmd
}

func runAsk(c *APIClient, query, model string, depth int, creativity float64, ticker string, showTrace, outputJSON bool) error {
	req := AnalyzeRequest{
		Query:  query,
		Ticker: strings.ToUpper(strings.TrimSpace(ticker)),
	}
	if model != "" || depth > 0 || creativity > 0 {
		req.Settings = &AnalyzeSettings{
			Model:       model,
			SearchDepth: depth,
			Creativity:  creativity,
		}
	}

	var resp AnalyzeResponse
	if err := c.Post("/api/analyze", req, &resp); err != nil {
		return err
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(resp)
	}

	if showTrace {
		for _, step := range resp.Thinking.Steps {
			fmt.Printf("[%s] %s: %s\n", step.Status, step.Title, step.Description)
			for _, sub := range step.Substeps {
				fmt.Printf("    - %s\n", sub)
			}
		}
		fmt.Println()
	}

	fmt.Println(resp.Answer.Reasoning)

	if len(resp.Answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range resp.Answer.Sources {
			fmt.Printf("  %s %d %s (confidence %.2f)\n", s.Company, s.Year, s.DocType, s.Confidence)
		}
	}

	return nil
}
