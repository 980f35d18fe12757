package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) ProcessTicker(ctx context.Context, ticker string, depth int, emit service.EmitFunc) error {
	args := m.Called(ctx, ticker, depth, emit)
	return args.Error(0)
}

func postAddTicker(t *testing.T, handler *IngestHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/add_ticker", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	handler.AddTicker(w, req)
	return w
}

func TestIngestHandler_StreamsEvents(t *testing.T) {
	mockSvc := new(MockIngestService)
	mockSvc.On("ProcessTicker", mock.Anything, "AAPL", 2, mock.Anything).
		Run(func(args mock.Arguments) {
			emit := args.Get(3).(service.EmitFunc)
			emit(service.ProgressEvent{Type: service.ProgressLog, Message: "Starting search for AAPL (Last 2 years)..."})
			emit(service.ProgressEvent{Type: service.ProgressSuccess, Message: "Successfully indexed AAPL", Ticker: "AAPL", Years: []string{"2023", "2022"}})
		}).
		Return(nil)

	handler := NewIngestHandler(mockSvc)
	w := postAddTicker(t, handler, `{"ticker": "aapl", "depth": 2}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)

	var first service.ProgressEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, service.ProgressLog, first.Type)

	var last service.ProgressEvent
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &last))
	assert.Equal(t, service.ProgressSuccess, last.Type)
	assert.Equal(t, "AAPL", last.Ticker)
	assert.Equal(t, []string{"2023", "2022"}, last.Years)

	mockSvc.AssertExpectations(t)
}

func TestIngestHandler_DefaultDepth(t *testing.T) {
	mockSvc := new(MockIngestService)
	mockSvc.On("ProcessTicker", mock.Anything, "MSFT", 1, mock.Anything).Return(nil)

	handler := NewIngestHandler(mockSvc)
	w := postAddTicker(t, handler, `{"ticker": "MSFT"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestIngestHandler_MissingTicker(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewIngestHandler(mockSvc)

	w := postAddTicker(t, handler, `{"depth": 1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "ProcessTicker")
}

func TestIngestHandler_InvalidBody(t *testing.T) {
	mockSvc := new(MockIngestService)
	handler := NewIngestHandler(mockSvc)

	w := postAddTicker(t, handler, "{broken")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "ProcessTicker")
}

func TestIngestHandler_ServiceErrorAfterStreamStarted(t *testing.T) {
	mockSvc := new(MockIngestService)
	mockSvc.On("ProcessTicker", mock.Anything, "ZZZZ", 1, mock.Anything).
		Run(func(args mock.Arguments) {
			emit := args.Get(3).(service.EmitFunc)
			emit(service.ProgressEvent{Type: service.ProgressError, Message: "Ticker not found in SEC database"})
		}).
		Return(assert.AnError)

	handler := NewIngestHandler(mockSvc)
	w := postAddTicker(t, handler, `{"ticker": "zzzz", "depth": 1}`)

	// Status is already committed when the failure surfaces; the error
	// travels in the event stream.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"error"`)
	mockSvc.AssertExpectations(t)
}
