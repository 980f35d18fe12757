package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRetriever_Search(t *testing.T) {
	embedding := []float32{0.1, 0.2, 0.3}
	chunks := []domain.Chunk{
		{Text: "Net sales increased", Company: "AAPL", Year: "2022", Score: 0.8},
	}

	embedder := new(MockEmbeddingClient)
	embedder.On("EmbedQuery", mock.Anything, "Apple revenue 2022").Return(embedding, nil)

	repo := new(MockChunkSearchRepository)
	repo.On("SearchSimilar", mock.Anything, embedding, 3, "").Return(chunks, nil)

	r := NewRetriever(embedder, repo)
	result, err := r.Search(context.Background(), "Apple revenue 2022", 3, "")

	require.NoError(t, err)
	assert.Equal(t, chunks, result)
	embedder.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestRetriever_Search_EmptyQuery(t *testing.T) {
	r := NewRetriever(new(MockEmbeddingClient), new(MockChunkSearchRepository))

	_, err := r.Search(context.Background(), "   ", 3, "")

	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestRetriever_Search_InvalidDepth(t *testing.T) {
	r := NewRetriever(new(MockEmbeddingClient), new(MockChunkSearchRepository))

	_, err := r.Search(context.Background(), "revenue", 0, "")

	assert.ErrorIs(t, err, domain.ErrInvalidSearchDepth)
}

func TestRetriever_Search_EmbedFailure(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).Return(nil, errors.New("api down"))

	r := NewRetriever(embedder, new(MockChunkSearchRepository))
	_, err := r.Search(context.Background(), "revenue", 3, "")

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeRetrieval, domainErr.Code)
}

func TestRetriever_RetrieveAll_OneSearchPerSubQuery(t *testing.T) {
	embedding := []float32{0.5}
	subQueries := []string{"Apple revenue 2022", "Nvidia revenue 2022", "Apple margins 2022"}

	embedder := new(MockEmbeddingClient)
	repo := new(MockChunkSearchRepository)
	for _, q := range subQueries {
		embedder.On("EmbedQuery", mock.Anything, q).Return(embedding, nil).Once()
	}
	repo.On("SearchSimilar", mock.Anything, embedding, 3, "").Return([]domain.Chunk{}, nil).Times(3)

	r := NewRetriever(embedder, repo)
	pool, sources, err := r.RetrieveAll(context.Background(), subQueries, 3, "")

	require.NoError(t, err)
	require.Len(t, pool.Groups, 3)
	assert.Equal(t, "Apple revenue 2022", pool.Groups[0].SubQuery)
	assert.Empty(t, sources)
	embedder.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestRetriever_RetrieveAll_FilterAppliesToEverySubQuery(t *testing.T) {
	embedding := []float32{0.5}

	embedder := new(MockEmbeddingClient)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).Return(embedding, nil)

	repo := new(MockChunkSearchRepository)
	repo.On("SearchSimilar", mock.Anything, embedding, 2, "NVDA").Return([]domain.Chunk{}, nil).Times(2)

	r := NewRetriever(embedder, repo)
	_, _, err := r.RetrieveAll(context.Background(), []string{"revenue", "margins"}, 2, "NVDA")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRetriever_RetrieveAll_DedupsSourcesFirstWins(t *testing.T) {
	embedding := []float32{0.5}

	// Chunks across sub-queries produce company-year keys A, B, A, C, B.
	first := []domain.Chunk{
		{Text: "a1", Company: "AAPL", Year: "2022", Excerpt: "first aapl", Score: 0.9},
		{Text: "b1", Company: "NVDA", Year: "2022", Excerpt: "first nvda", Score: 0.8},
	}
	second := []domain.Chunk{
		{Text: "a2", Company: "AAPL", Year: "2022", Excerpt: "second aapl", Score: 0.7},
		{Text: "c1", Company: "MSFT", Year: "2023", Excerpt: "first msft", Score: 0.6},
		{Text: "b2", Company: "NVDA", Year: "2022", Excerpt: "second nvda", Score: 0.5},
	}

	embedder := new(MockEmbeddingClient)
	embedder.On("EmbedQuery", mock.Anything, "q1").Return(embedding, nil)
	embedder.On("EmbedQuery", mock.Anything, "q2").Return(embedding, nil)

	repo := new(MockChunkSearchRepository)
	repo.On("SearchSimilar", mock.Anything, embedding, 5, "").Return(first, nil).Once()
	repo.On("SearchSimilar", mock.Anything, embedding, 5, "").Return(second, nil).Once()

	r := NewRetriever(embedder, repo)
	pool, sources, err := r.RetrieveAll(context.Background(), []string{"q1", "q2"}, 5, "")

	require.NoError(t, err)
	require.Len(t, pool.Groups, 2)
	assert.Len(t, pool.Groups[0].Chunks, 2)
	assert.Len(t, pool.Groups[1].Chunks, 3)

	// [A, B, A, C, B] collapses to [A, B, C], first occurrence surviving.
	require.Len(t, sources, 3)
	assert.Equal(t, "AAPL", sources[0].Company)
	assert.Equal(t, 2022, sources[0].Year)
	assert.Equal(t, "first aapl", sources[0].Snippet)
	assert.Equal(t, "NVDA", sources[1].Company)
	assert.Equal(t, "first nvda", sources[1].Snippet)
	assert.Equal(t, "MSFT", sources[2].Company)
	assert.Equal(t, 2023, sources[2].Year)
}

func TestRetriever_RetrieveAll_SearchFailureAborts(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).Return(nil, errors.New("down"))

	r := NewRetriever(embedder, new(MockChunkSearchRepository))
	_, _, err := r.RetrieveAll(context.Background(), []string{"q1"}, 3, "")

	require.Error(t, err)
	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
}

func TestBuildSourceRecord_Sentinels(t *testing.T) {
	record := buildSourceRecord(domain.Chunk{Text: "body"})

	assert.Equal(t, domain.UnknownTicker, record.Ticker)
	assert.Equal(t, domain.UnknownCompany, record.Company)
	assert.Equal(t, domain.DefaultYear, record.Year)
	assert.Equal(t, domain.DocType10K, record.DocType)
	assert.Equal(t, domain.NoPreviewText, record.Snippet)
	assert.Equal(t, 1, record.Page)
	assert.NotEmpty(t, record.ID)
}

func TestBuildSourceRecord_SnippetFallbackChain(t *testing.T) {
	withExcerpt := buildSourceRecord(domain.Chunk{Excerpt: "the excerpt", Source: "Live Fetch"})
	assert.Equal(t, "the excerpt", withExcerpt.Snippet)

	withSource := buildSourceRecord(domain.Chunk{Source: "Live Fetch"})
	assert.Equal(t, "Live Fetch", withSource.Snippet)
}

func TestBuildSourceRecord_YearParsing(t *testing.T) {
	record := buildSourceRecord(domain.Chunk{Company: "AAPL", Year: "2021"})
	assert.Equal(t, 2021, record.Year)

	malformed := buildSourceRecord(domain.Chunk{Company: "AAPL", Year: "n/a"})
	assert.Equal(t, domain.DefaultYear, malformed.Year)
}

func TestConfidenceFromScore(t *testing.T) {
	assert.Equal(t, float32(0.73), confidenceFromScore(0.73))
	assert.Equal(t, float32(0), confidenceFromScore(-1))
	assert.Equal(t, float32(1), confidenceFromScore(1.5))
}
