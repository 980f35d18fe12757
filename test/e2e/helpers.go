//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/api/handlers"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/edgar"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/openai"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/repository"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/server"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/service"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/testutil"
)

const embeddingDimensions = 1536

// E2ETestEnv holds all resources needed for E2E tests: a pgvector container,
// stub OpenAI and EDGAR servers, and the real HTTP server wired on top.
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	OpenAIStub   *httptest.Server
	EdgarStub    *httptest.Server
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	openaiStub := newOpenAIStub()
	edgarStub := newEdgarStub()

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:  "test-key",
		BaseURL: openaiStub.URL + "/v1",
	})
	edgarClient := edgar.NewClientWithBaseURL("FinAgent e2e@example.com", http.DefaultClient, edgarStub.URL)

	chunkRepo := repository.NewChunkRepository(pool)
	filingRepo := repository.NewFilingRepository(pool)

	pipeline := service.NewPipeline(
		service.NewDecomposer(aiClient),
		service.NewRetriever(aiClient, chunkRepo),
		service.NewSynthesizer(aiClient),
	)
	ingestSvc := service.NewIngestServiceWithConfig(edgarClient, aiClient, chunkRepo, filingRepo, nil, service.IngestConfig{
		Chunking: service.DefaultChunkConfig(),
	})

	router := server.NewRouter(server.RouterConfig{
		AnalyzeHandler: handlers.NewAnalyzeHandler(pipeline, handlers.AnalyzeDefaults{
			Model:       "gpt-4o-mini",
			SearchDepth: 3,
			Creativity:  0.1,
		}),
		IngestHandler:  handlers.NewIngestHandler(ingestSvc),
		FilingsHandler: handlers.NewFilingsHandler(filingRepo),
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	srv := &http.Server{Handler: router}
	go srv.Serve(listener)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		OpenAIStub: openaiStub,
		EdgarStub:  edgarStub,
		ServerURL:  "http://" + listener.Addr().String(),
		ServerCloser: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		},
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.OpenAIStub != nil {
		e.OpenAIStub.Close()
	}
	if e.EdgarStub != nil {
		e.EdgarStub.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Post performs a POST request and returns the raw response
func (e *E2ETestEnv) Post(path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, e.ServerURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return e.HTTPClient.Do(req)
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*http.Response, error) {
	return e.HTTPClient.Get(e.ServerURL + path)
}

// ReadJSON decodes a response body into out
func ReadJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("failed to decode body %q: %v", body, err)
	}
}

// newOpenAIStub serves the two OpenAI endpoints the service calls. Embeddings
// are deterministic per input so repeated queries are stable; chat completions
// answer the decomposition prompt with a JSON list and everything else with a
// canned analysis.
func newOpenAIStub() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		input := ""
		if len(req.Input) > 0 {
			input = req.Input[0]
		}

		resp := map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "index": 0, "embedding": stubEmbedding(input)},
			},
			"model": "text-embedding-3-small",
		}
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		user := ""
		for _, m := range req.Messages {
			if m.Role == "user" {
				user = m.Content
			}
		}

		content := "Based on the filings, Apple reported $394.3 billion in net sales for fiscal 2022 (AAPL 2022)."
		if strings.Contains(user, "JSON list of strings") {
			content = `["Apple revenue 2022"]`
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	return httptest.NewServer(mux)
}

// stubEmbedding hashes the input into a deterministic unit-ish vector so
// identical texts embed identically and the vector store behaves normally.
func stubEmbedding(input string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(input))
	seed := h.Sum32()

	v := make([]float32, embeddingDimensions)
	v[int(seed)%embeddingDimensions] = 1.0
	v[int(seed>>8)%embeddingDimensions] += 0.5
	return v
}

// newEdgarStub serves the three SEC EDGAR endpoints the ingest path hits.
func newEdgarStub() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/files/company_tickers.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}}`)
	})

	mux.HandleFunc("/submissions/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"filings": {"recent": {
			"form": ["10-K", "10-Q"],
			"filingDate": ["2022-10-28", "2022-07-29"],
			"accessionNumber": ["0000320193-22-000108", "0000320193-22-000070"],
			"primaryDocument": ["aapl-20220924.htm", "aapl-20220625.htm"]
		}}}`)
	})

	mux.HandleFunc("/Archives/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<h1>Apple Inc. Form 10-K</h1>
			<p>Net sales were $394.3 billion in fiscal 2022, an increase from the prior year.</p>
			<p>iPhone net sales grew driven by demand for new models.</p>
		</body></html>`)
	})

	return httptest.NewServer(mux)
}
