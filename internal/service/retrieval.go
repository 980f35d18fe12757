package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearchRepository defines the vector store interface for retrieval
type ChunkSearchRepository interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int, companyFilter string) ([]domain.Chunk, error)
}

// Retriever issues similarity searches against the vector index and fans out
// one search per sub-query.
type Retriever struct {
	embedding EmbeddingClient
	repo      ChunkSearchRepository
}

func NewRetriever(embedding EmbeddingClient, repo ChunkSearchRepository) *Retriever {
	return &Retriever{embedding: embedding, repo: repo}
}

// Search runs one similarity search for a single query string. The query is
// embedded with the query-variant transform; mixing it up with the document
// variant would silently degrade relevance. Failures propagate: unlike
// decomposition there is no local fallback.
func (r *Retriever) Search(ctx context.Context, query string, limit int, companyFilter string) ([]domain.Chunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		return nil, domain.ErrInvalidSearchDepth
	}

	embedding, err := r.embedding.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRetrieval, "failed to embed query", err)
	}

	chunks, err := r.repo.SearchSimilar(ctx, embedding, limit, companyFilter)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRetrieval, "vector search failed", err)
	}

	return chunks, nil
}

// RetrieveAll executes one search per sub-query in order and accumulates the
// evidence. The company filter applies to every sub-query in the run. A
// sub-query returning zero chunks contributes nothing and is not an error.
// The returned source records are deduplicated by (company, year), first
// occurrence wins, first-seen order preserved.
func (r *Retriever) RetrieveAll(ctx context.Context, subQueries []string, depth int, companyFilter string) (domain.EvidencePool, []domain.SourceRecord, error) {
	pool := domain.EvidencePool{Groups: make([]domain.EvidenceGroup, 0, len(subQueries))}
	records := make([]domain.SourceRecord, 0, len(subQueries)*depth)

	for _, q := range subQueries {
		chunks, err := r.Search(ctx, q, depth, companyFilter)
		if err != nil {
			return domain.EvidencePool{}, nil, fmt.Errorf("retrieval for %q: %w", q, err)
		}

		pool.Groups = append(pool.Groups, domain.EvidenceGroup{SubQuery: q, Chunks: chunks})

		for _, chunk := range chunks {
			records = append(records, buildSourceRecord(chunk))
		}
	}

	return pool, domain.DedupSources(records), nil
}

// buildSourceRecord projects a retrieved chunk to its UI-facing record,
// applying sentinels for missing metadata. The snippet prefers the stored
// excerpt, then the provenance label, then a fixed placeholder.
func buildSourceRecord(chunk domain.Chunk) domain.SourceRecord {
	ticker := chunk.Company
	if ticker == "" {
		ticker = domain.UnknownTicker
	}
	company := chunk.Company
	if company == "" {
		company = domain.UnknownCompany
	}

	year := domain.DefaultYear
	if parsed, err := strconv.Atoi(strings.TrimSpace(chunk.Year)); err == nil {
		year = parsed
	}

	snippet := chunk.Excerpt
	if snippet == "" {
		snippet = chunk.Source
	}
	if snippet == "" {
		snippet = domain.NoPreviewText
	}

	return domain.SourceRecord{
		ID:         uuid.NewString(),
		Ticker:     ticker,
		Company:    company,
		Year:       year,
		DocType:    domain.DocType10K,
		Snippet:    snippet,
		Page:       1,
		Confidence: confidenceFromScore(chunk.Score),
	}
}

// confidenceFromScore maps the similarity score to the record's confidence.
// The score is already normalized to (0,1] by the vector store query.
func confidenceFromScore(score float32) float32 {
	if score <= 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
