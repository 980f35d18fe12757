package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIngestJobRepository is a mock implementation of IngestJobRepository
type MockIngestJobRepository struct {
	mock.Mock
}

func (m *MockIngestJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.IngestJob), args.Error(1)
}

func (m *MockIngestJobRepository) UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockIngestJobRepository) IncrementRetries(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTickerIngester is a mock implementation of TickerIngester
type MockTickerIngester struct {
	mock.Mock
}

func (m *MockTickerIngester) ProcessTicker(ctx context.Context, ticker string, depth int, emit service.EmitFunc) error {
	args := m.Called(ctx, ticker, depth, emit)
	return args.Error(0)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestIngestWorker_ProcessJobs_NoPendingJobs tests when there are no pending jobs
func TestIngestWorker_ProcessJobs_NoPendingJobs(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockTickerIngester)

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{}, nil)

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockIngester.AssertNotCalled(t, "ProcessTicker", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestIngestWorker_ProcessJobs_ClaimError tests claim failure propagation
func TestIngestWorker_ProcessJobs_ClaimError(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockTickerIngester)

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return(nil, errors.New("db down"))

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
}

// TestIngestWorker_ProcessJobs_Success tests successful job processing
func TestIngestWorker_ProcessJobs_Success(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockTickerIngester)

	job := &domain.IngestJob{ID: "job-1", Ticker: "AAPL", Depth: 2, Status: domain.IngestJobStatusProcessing}

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{job}, nil)
	mockIngester.On("ProcessTicker", mock.Anything, "AAPL", 2, mock.Anything).Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusCompleted, "").Return(nil)

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockIngester.AssertExpectations(t)
}

// TestIngestWorker_ProcessJobs_FailureRequeues tests a failed job is requeued
func TestIngestWorker_ProcessJobs_FailureRequeues(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockTickerIngester)

	job := &domain.IngestJob{ID: "job-1", Ticker: "ZZZZ", Depth: 1, Retries: 0}

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{job}, nil)
	mockIngester.On("ProcessTicker", mock.Anything, "ZZZZ", 1, mock.Anything).Return(errors.New("ticker not found"))
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusPending, mock.MatchedBy(func(msg string) bool {
		return msg == "retry 1: ticker not found"
	})).Return(nil)

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestIngestWorker_ProcessJobs_MaxRetriesExceeded tests permanent failure after retries
func TestIngestWorker_ProcessJobs_MaxRetriesExceeded(t *testing.T) {
	mockRepo := new(MockIngestJobRepository)
	mockIngester := new(MockTickerIngester)

	job := &domain.IngestJob{ID: "job-1", Ticker: "ZZZZ", Depth: 1, Retries: MaxRetries - 1}

	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{job}, nil)
	mockIngester.On("ProcessTicker", mock.Anything, "ZZZZ", 1, mock.Anything).Return(errors.New("ticker not found"))
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusFailed, mock.MatchedBy(func(msg string) bool {
		return msg == "max retries exceeded: ticker not found"
	})).Return(nil)

	worker := NewIngestWorker(mockRepo, mockIngester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
