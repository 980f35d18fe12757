package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockCompletionAPI struct {
	mock.Mock
}

func (m *MockCompletionAPI) CreateCompletion(ctx context.Context, model, system, prompt string, temperature float32) (string, error) {
	args := m.Called(ctx, model, system, prompt, temperature)
	return args.String(0), args.Error(1)
}

func newTestClient(embeddings EmbeddingAPI, completions CompletionAPI) *Client {
	return &Client{
		embeddings:  embeddings,
		completions: completions,
		dimensions:  DefaultEmbeddingDimensions,
	}
}

func validEmbedding() []float32 {
	embedding := make([]float32, DefaultEmbeddingDimensions)
	for i := range embedding {
		embedding[i] = float32(i) * 0.001
	}
	return embedding
}

func TestEmbedQuery_UsesQueryTaskPrefix(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newTestClient(mockAPI, nil)

	ctx := context.Background()
	embedding := validEmbedding()
	mockAPI.On("CreateEmbeddings", ctx, "search query: NVDA revenue 2024").Return(embedding, nil)

	got, err := client.EmbedQuery(ctx, "NVDA revenue 2024")

	require.NoError(t, err)
	assert.Equal(t, embedding, got)
	mockAPI.AssertExpectations(t)
}

func TestEmbedDocument_UsesDocumentTaskPrefix(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newTestClient(mockAPI, nil)

	ctx := context.Background()
	embedding := validEmbedding()
	mockAPI.On("CreateEmbeddings", ctx, "search document: filing text").Return(embedding, nil)

	got, err := client.EmbedDocument(ctx, "filing text")

	require.NoError(t, err)
	assert.Equal(t, embedding, got)
	mockAPI.AssertExpectations(t)
}

func TestEmbed_EmptyText(t *testing.T) {
	client := newTestClient(new(MockEmbeddingAPI), nil)

	_, err := client.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = client.EmbedDocument(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestEmbed_WrongDimensions(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newTestClient(mockAPI, nil)

	mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything).Return([]float32{0.1, 0.2}, nil)

	_, err := client.EmbedQuery(context.Background(), "query")
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestEmbed_APIError(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := newTestClient(mockAPI, nil)

	mockAPI.On("CreateEmbeddings", mock.Anything, mock.Anything).Return(nil, errors.New("rate limit exceeded"))

	_, err := client.EmbedQuery(context.Background(), "query")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create embedding")
}

func TestComplete_Success(t *testing.T) {
	mockAPI := new(MockCompletionAPI)
	client := newTestClient(nil, mockAPI)

	ctx := context.Background()
	mockAPI.On("CreateCompletion", ctx, "gpt-4o-mini", "system prompt", "user prompt", float32(0.3)).
		Return("the answer", nil)

	got, err := client.Complete(ctx, "gpt-4o-mini", "system prompt", "user prompt", 0.3)

	require.NoError(t, err)
	assert.Equal(t, "the answer", got)
	mockAPI.AssertExpectations(t)
}

func TestComplete_EmptyPrompt(t *testing.T) {
	client := newTestClient(nil, new(MockCompletionAPI))

	_, err := client.Complete(context.Background(), "gpt-4o-mini", "", "", 0)
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestNewClientFromEnv_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClientFromEnv()
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
