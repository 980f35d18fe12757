package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
)

const synthesizeSystemPrompt = `You are a senior financial analyst. ` +
	`Answer the User's Question using the provided Research Data.`

const synthesizeInstructions = `Instructions:
1. Answer specifically and accurately.
2. If the data contains numbers, COMPARE them explicitly.
3. Cite the company and year for every fact.
4. If data is missing, state clearly what is missing. Do not fabricate.`

// Synthesizer produces the final cited answer from the aggregated evidence.
type Synthesizer struct {
	client CompletionClient
}

func NewSynthesizer(client CompletionClient) *Synthesizer {
	return &Synthesizer{client: client}
}

// Synthesize renders the evidence pool into one context block and asks the
// generation capability for a cited, comparative answer. The creativity value
// maps directly to sampling temperature. A call failure is fatal for the run;
// there is no local fallback here.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, pool domain.EvidencePool, model string, creativity float32) (string, error) {
	prompt := fmt.Sprintf(`User Question: %s

--- RESEARCH DATA START ---
%s
--- RESEARCH DATA END ---

%s`, query, RenderEvidence(pool), synthesizeInstructions)

	answer, err := s.client.Complete(ctx, model, synthesizeSystemPrompt, prompt, creativity)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeSynthesis, "answer generation failed", err)
	}

	return answer, nil
}

// RenderEvidence serializes the pool into one text block, each chunk tagged
// with its company and year so the model can cite it.
func RenderEvidence(pool domain.EvidencePool) string {
	var b strings.Builder
	for _, group := range pool.Groups {
		fmt.Fprintf(&b, "--- Results for %q ---\n", group.SubQuery)
		for _, chunk := range group.Chunks {
			fmt.Fprintf(&b, "Source (%s %s): %s\n", chunk.Company, chunk.Year, chunk.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}
