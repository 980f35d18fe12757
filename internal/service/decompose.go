package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// CompletionClient defines the interface for text generation
type CompletionClient interface {
	Complete(ctx context.Context, model, system, prompt string, temperature float32) (string, error)
}

const decomposeSystemPrompt = `You are a smart financial research assistant. ` +
	`Your goal is to break down a complex user question into simple search queries.`

const decomposePromptTemplate = `User Question: %q

Rules:
1. If the question is simple, return just that one query.
2. If the question is complex (e.g. Compare X and Y), break it into steps.
3. Return the output STRICTLY as a JSON list of strings. No markdown.

Example Input: "Compare Microsoft and Google revenue in 2023"
Example Output: ["Microsoft revenue 2023", "Google revenue 2023"]`

// Decomposer splits a user question into atomic sub-queries using the text
// generation capability.
type Decomposer struct {
	client CompletionClient
}

func NewDecomposer(client CompletionClient) *Decomposer {
	return &Decomposer{client: client}
}

// Decompose returns an ordered, non-empty list of sub-queries for the given
// question. Any call failure or malformed response degrades to a single
// sub-query containing the original question; decomposition never aborts the
// pipeline. One attempt, no retry.
func (d *Decomposer) Decompose(ctx context.Context, query, model string) []string {
	prompt := fmt.Sprintf(decomposePromptTemplate, query)

	raw, err := d.client.Complete(ctx, model, decomposeSystemPrompt, prompt, 0)
	if err != nil {
		log.Printf("decomposition failed, falling back to original query: %v", err)
		return []string{query}
	}

	subQueries, err := parseSubQueries(raw)
	if err != nil {
		log.Printf("decomposition response unparsable, falling back to original query: %v", err)
		return []string{query}
	}

	return subQueries
}

// parseSubQueries parses a JSON array of strings, tolerating markdown code
// fences the model sometimes wraps the payload in.
func parseSubQueries(raw string) ([]string, error) {
	text := stripCodeFences(raw)

	var subQueries []string
	if err := json.Unmarshal([]byte(text), &subQueries); err != nil {
		return nil, fmt.Errorf("invalid sub-query list: %w", err)
	}

	out := make([]string, 0, len(subQueries))
	for _, q := range subQueries {
		q = strings.TrimSpace(q)
		if q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("sub-query list is empty")
	}
	return out, nil
}

func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
