package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from text-embedding-3-small
	DefaultEmbeddingDimensions = 1536
	// DefaultChatModel is used when a request does not select a model
	DefaultChatModel = "gpt-4o-mini"
)

// Embedding task prefixes. Queries and documents are embedded with distinct
// task prefixes but share one model, so both land in the same vector space.
// Indexing with one variant and searching with the other silently degrades
// relevance, which is why the two operations are separate methods.
const (
	queryTaskPrefix    = "search query: "
	documentTaskPrefix = "search document: "
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrEmptyCompletion is returned when the model returns no choices
	ErrEmptyCompletion = errors.New("no completion choices returned")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// CompletionAPI defines the interface for text generation
type CompletionAPI interface {
	CreateCompletion(ctx context.Context, model, system, prompt string, temperature float32) (string, error)
}

// Client wraps the OpenAI API for embeddings and chat completions
type Client struct {
	embeddings  EmbeddingAPI
	completions CompletionAPI
	dimensions  int
}

type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel) *OpenAIAdapter {
	return NewOpenAIAdapterWithBaseURL(apiKey, model, "")
}

// NewOpenAIAdapterWithBaseURL points the adapter at an alternative
// OpenAI-compatible endpoint, e.g. a local inference server.
func NewOpenAIAdapterWithBaseURL(apiKey string, model openai.EmbeddingModel, baseURL string) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateCompletion calls the OpenAI chat completions API
func (a *OpenAIAdapter) CreateCompletion(ctx context.Context, model, system, prompt string, temperature float32) (string, error) {
	if model == "" {
		model = DefaultChatModel
	}

	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey              string
	BaseURL             string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	adapter := NewOpenAIAdapterWithBaseURL(cfg.APIKey, cfg.EmbeddingModel, cfg.BaseURL)
	return &Client{
		embeddings:  adapter,
		completions: adapter,
		dimensions:  dimensions,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// EmbedQuery generates an embedding for a search query.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, queryTaskPrefix, text)
}

// EmbedDocument generates an embedding for a document chunk at ingestion time.
func (c *Client) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, documentTaskPrefix, text)
}

func (c *Client) embed(ctx context.Context, taskPrefix, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embedding, err := c.embeddings.CreateEmbeddings(ctx, taskPrefix+text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	expected := c.dimensions
	if expected <= 0 {
		expected = DefaultEmbeddingDimensions
	}
	if len(embedding) != expected {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

// Complete generates free-form text for the given prompt. The temperature
// maps directly to the caller's creativity setting.
func (c *Client) Complete(ctx context.Context, model, system, prompt string, temperature float32) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}
	return c.completions.CreateCompletion(ctx, model, system, prompt, temperature)
}
