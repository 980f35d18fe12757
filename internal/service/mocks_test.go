package service

import (
	"context"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/edgar"
	"github.com/stretchr/testify/mock"
)

type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, model, system, prompt string, temperature float32) (string, error) {
	args := m.Called(ctx, model, system, prompt, temperature)
	return args.String(0), args.Error(1)
}

type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbeddingClient) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockChunkSearchRepository struct {
	mock.Mock
}

func (m *MockChunkSearchRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int, companyFilter string) ([]domain.Chunk, error) {
	args := m.Called(ctx, embedding, limit, companyFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

type MockChunkWriteRepository struct {
	mock.Mock
}

func (m *MockChunkWriteRepository) InsertChunks(ctx context.Context, chunks []domain.FilingChunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockChunkWriteRepository) DeleteByCompanyYear(ctx context.Context, company string, year int) error {
	args := m.Called(ctx, company, year)
	return args.Error(0)
}

type MockEdgarClient struct {
	mock.Mock
}

func (m *MockEdgarClient) LookupCompany(ctx context.Context, ticker string) (*edgar.Company, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*edgar.Company), args.Error(1)
}

func (m *MockEdgarClient) FilingHistory(ctx context.Context, cik string) ([]edgar.FilingRef, error) {
	args := m.Called(ctx, cik)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]edgar.FilingRef), args.Error(1)
}

func (m *MockEdgarClient) DownloadFiling(ctx context.Context, cik string, ref edgar.FilingRef) ([]byte, error) {
	args := m.Called(ctx, cik, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockFilingRegistry struct {
	mock.Mock
}

func (m *MockFilingRegistry) Create(ctx context.Context, f *domain.Filing) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFilingRegistry) GetByTickerYear(ctx context.Context, ticker string, year int) (*domain.Filing, error) {
	args := m.Called(ctx, ticker, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Filing), args.Error(1)
}

type MockFilingArchiver struct {
	mock.Mock
}

func (m *MockFilingArchiver) ArchiveFiling(ctx context.Context, key string, body []byte) error {
	args := m.Called(ctx, key, body)
	return args.Error(0)
}
