package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/edgar"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/telemetry"
)

const (
	// excerptMaxChars bounds the excerpt stored alongside each chunk.
	excerptMaxChars = 400
	// embedBatchSize keeps embedding bursts inside upstream quota limits.
	embedBatchSize = 5
)

// ProgressEvent is one newline-delimited progress message streamed to the
// caller during ingestion.
type ProgressEvent struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Ticker  string   `json:"ticker,omitempty"`
	Years   []string `json:"years,omitempty"`
	Company string   `json:"company,omitempty"`
}

const (
	ProgressLog     = "log"
	ProgressError   = "error"
	ProgressSuccess = "success"
)

// EmitFunc receives progress events as ingestion advances.
type EmitFunc func(ProgressEvent)

// EdgarClient defines the SEC EDGAR operations used by ingestion.
type EdgarClient interface {
	LookupCompany(ctx context.Context, ticker string) (*edgar.Company, error)
	FilingHistory(ctx context.Context, cik string) ([]edgar.FilingRef, error)
	DownloadFiling(ctx context.Context, cik string, ref edgar.FilingRef) ([]byte, error)
}

// ChunkWriteRepository defines the vector store interface for ingestion.
type ChunkWriteRepository interface {
	InsertChunks(ctx context.Context, chunks []domain.FilingChunk) error
	DeleteByCompanyYear(ctx context.Context, company string, year int) error
}

// FilingRegistry tracks indexed filings for duplicate prevention.
type FilingRegistry interface {
	Create(ctx context.Context, f *domain.Filing) error
	GetByTickerYear(ctx context.Context, ticker string, year int) (*domain.Filing, error)
}

// FilingArchiver optionally stores the raw filing document.
type FilingArchiver interface {
	ArchiveFiling(ctx context.Context, key string, body []byte) error
}

// IngestConfig tunes the rate limiting applied while ingesting.
type IngestConfig struct {
	Chunking ChunkConfig
	// BatchDelay is slept between embedding batches to respect API quotas.
	BatchDelay time.Duration
	// DownloadDelay is slept between filing downloads to be polite to the SEC.
	DownloadDelay time.Duration
}

func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		Chunking:      DefaultChunkConfig(),
		BatchDelay:    2 * time.Second,
		DownloadDelay: 500 * time.Millisecond,
	}
}

// IngestService downloads, chunks, embeds and stores 10-K filings.
type IngestService struct {
	edgar     EdgarClient
	embedding EmbeddingClient
	chunks    ChunkWriteRepository
	filings   FilingRegistry
	archiver  FilingArchiver
	cfg       IngestConfig
}

func NewIngestService(edgarClient EdgarClient, embedding EmbeddingClient, chunks ChunkWriteRepository, filings FilingRegistry) *IngestService {
	return &IngestService{
		edgar:     edgarClient,
		embedding: embedding,
		chunks:    chunks,
		filings:   filings,
		cfg:       DefaultIngestConfig(),
	}
}

func NewIngestServiceWithConfig(edgarClient EdgarClient, embedding EmbeddingClient, chunks ChunkWriteRepository, filings FilingRegistry, archiver FilingArchiver, cfg IngestConfig) *IngestService {
	svc := NewIngestService(edgarClient, embedding, chunks, filings)
	svc.archiver = archiver
	svc.cfg = cfg
	return svc
}

// ProcessTicker ingests up to depth years of 10-K filings for a ticker,
// streaming progress through emit. Errors on individual filings are reported
// as events; the method returns an error only when nothing could be ingested.
func (s *IngestService) ProcessTicker(ctx context.Context, ticker string, depth int, emit EmitFunc) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		emit(ProgressEvent{Type: ProgressError, Message: "ticker is required"})
		return domain.ErrInvalidTicker
	}
	if depth <= 0 {
		depth = 1
	}

	ctx, span := telemetry.StartSpan(ctx, "IngestService.ProcessTicker", telemetry.SpanAttributes{
		Ticker:    ticker,
		Operation: "ingest",
	})
	defer span.End()

	emit(ProgressEvent{Type: ProgressLog, Message: fmt.Sprintf("Starting search for %s (Last %d years)...", ticker, depth)})

	company, err := s.edgar.LookupCompany(ctx, ticker)
	if err != nil {
		emit(ProgressEvent{Type: ProgressError, Message: "Ticker not found in SEC database"})
		return err
	}

	emit(ProgressEvent{Type: ProgressLog, Message: fmt.Sprintf("Found %s (CIK: %s)", company.Name, company.CIK)})

	history, err := s.edgar.FilingHistory(ctx, company.CIK)
	if err != nil {
		emit(ProgressEvent{Type: ProgressError, Message: err.Error()})
		return err
	}

	foundCount := 0
	processedYears := []string{}

	for _, ref := range history {
		if foundCount >= depth {
			break
		}
		if ref.Form != edgar.Form10K {
			continue
		}

		year := ref.Year()
		if year == 0 || containsYear(processedYears, year) {
			continue
		}

		if _, err := s.filings.GetByTickerYear(ctx, ticker, year); err == nil {
			emit(ProgressEvent{Type: ProgressLog, Message: fmt.Sprintf("Skipping %d: already indexed", year)})
			processedYears = append(processedYears, fmt.Sprintf("%d", year))
			foundCount++
			continue
		}

		emit(ProgressEvent{Type: ProgressLog, Message: fmt.Sprintf("Downloading 10-K for %d...", year)})

		body, err := s.edgar.DownloadFiling(ctx, company.CIK, ref)
		if err != nil {
			emit(ProgressEvent{Type: ProgressLog, Message: fmt.Sprintf("Failed to download %d", year)})
			continue
		}

		if s.archiver != nil {
			key := fmt.Sprintf("%s_%d_10K.html", ticker, year)
			if err := s.archiver.ArchiveFiling(ctx, key, body); err != nil {
				emit(ProgressEvent{Type: ProgressLog, Message: fmt.Sprintf("Archive of %s failed: %v", key, err)})
			}
		}

		if err := s.indexFiling(ctx, ticker, company, ref, year, body, emit); err != nil {
			emit(ProgressEvent{Type: ProgressError, Message: err.Error()})
			return err
		}

		processedYears = append(processedYears, fmt.Sprintf("%d", year))
		foundCount++

		if s.cfg.DownloadDelay > 0 {
			sleepCtx(ctx, s.cfg.DownloadDelay)
		}
	}

	if foundCount == 0 {
		emit(ProgressEvent{Type: ProgressError, Message: "No 10-K filings found."})
		return domain.ErrNoFilingsFound
	}

	emit(ProgressEvent{
		Type:    ProgressSuccess,
		Message: fmt.Sprintf("Successfully indexed %d reports for %s.", foundCount, ticker),
		Ticker:  ticker,
		Years:   processedYears,
		Company: company.Name,
	})
	return nil
}

func (s *IngestService) indexFiling(ctx context.Context, ticker string, company *edgar.Company, ref edgar.FilingRef, year int, body []byte, emit EmitFunc) error {
	text := cleanHTML(body)
	chunks := chunkText(text, s.cfg.Chunking)
	emit(ProgressEvent{Type: ProgressLog, Message: fmt.Sprintf("Indexing %d chunks for %d...", len(chunks), year)})

	// Stale chunks from an interrupted earlier run would duplicate evidence.
	if err := s.chunks.DeleteByCompanyYear(ctx, ticker, year); err != nil {
		return fmt.Errorf("failed to clear existing chunks: %w", err)
	}

	totalBatches := (len(chunks) + embedBatchSize - 1) / embedBatchSize

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := make([]domain.FilingChunk, 0, end-start)
		for i, content := range chunks[start:end] {
			embedding, err := s.embedding.EmbedDocument(ctx, content)
			if err != nil {
				return fmt.Errorf("failed to embed chunk: %w", err)
			}
			batch = append(batch, domain.FilingChunk{
				ID:        fmt.Sprintf("%s_%d_%d", ticker, year, start+i),
				Company:   ticker,
				Year:      year,
				Source:    "Live Fetch",
				Content:   content,
				Excerpt:   truncate(content, excerptMaxChars),
				Embedding: embedding,
			})
		}

		if err := s.chunks.InsertChunks(ctx, batch); err != nil {
			return fmt.Errorf("failed to store chunks: %w", err)
		}

		currentBatch := start/embedBatchSize + 1
		emit(ProgressEvent{Type: ProgressLog, Message: fmt.Sprintf("Indexed batch %d/%d...", currentBatch, totalBatches)})

		if s.cfg.BatchDelay > 0 && end < len(chunks) {
			sleepCtx(ctx, s.cfg.BatchDelay)
		}
	}

	filing := &domain.Filing{
		ID:          uuid.NewString(),
		Ticker:      ticker,
		CIK:         company.CIK,
		CompanyName: company.Name,
		Year:        year,
		Accession:   ref.Accession,
		PrimaryDoc:  ref.PrimaryDoc,
		ChunkCount:  len(chunks),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.filings.Create(ctx, filing); err != nil {
		return fmt.Errorf("failed to record filing: %w", err)
	}

	return nil
}

// cleanHTML extracts the visible text of a filing document, dropping script
// and style content.
func cleanHTML(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return string(body)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func containsYear(years []string, year int) bool {
	needle := fmt.Sprintf("%d", year)
	for _, y := range years {
		if y == needle {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
