package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/api"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/pagination"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/repository"
)

type FilingLister interface {
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*repository.FilingPageResult, error)
	ListByTicker(ctx context.Context, ticker string) ([]*domain.Filing, error)
}

// FilingsHandler exposes which filings have been indexed, so the frontend can
// show available tickers before a query.
type FilingsHandler struct {
	repo FilingLister
}

func NewFilingsHandler(repo FilingLister) *FilingsHandler {
	return &FilingsHandler{repo: repo}
}

type FilingResponse struct {
	ID         string `json:"id"`
	Ticker     string `json:"ticker"`
	Company    string `json:"company"`
	Year       int    `json:"year"`
	ChunkCount int    `json:"chunkCount"`
	IndexedAt  string `json:"indexedAt"`
}

func filingToResponse(f *domain.Filing) FilingResponse {
	return FilingResponse{
		ID:         f.ID,
		Ticker:     f.Ticker,
		Company:    f.CompanyName,
		Year:       f.Year,
		ChunkCount: f.ChunkCount,
		IndexedAt:  f.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *FilingsHandler) List(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))
	if ticker != "" {
		filings, err := h.repo.ListByTicker(r.Context(), ticker)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		items := make([]FilingResponse, 0, len(filings))
		for _, f := range filings {
			items = append(items, filingToResponse(f))
		}
		api.JSON(w, http.StatusOK, pagination.PageResult[FilingResponse]{Items: items})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			api.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	page, err := h.repo.ListWithCursor(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]FilingResponse, 0, len(page.Items))
	for _, f := range page.Items {
		items = append(items, filingToResponse(f))
	}

	api.JSON(w, http.StatusOK, pagination.PageResult[FilingResponse]{
		Items:   items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	})
}
