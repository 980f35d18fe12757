package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/api"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/service"
)

type TickerIngestService interface {
	ProcessTicker(ctx context.Context, ticker string, depth int, emit service.EmitFunc) error
}

type IngestHandler struct {
	svc TickerIngestService
}

func NewIngestHandler(svc TickerIngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

type AddTickerRequest struct {
	Ticker string `json:"ticker"`
	Depth  int    `json:"depth"`
}

// AddTicker streams ingestion progress as newline-delimited JSON. Each event
// is flushed as soon as it is produced so the client can render live logs.
func (h *IngestHandler) AddTicker(w http.ResponseWriter, r *http.Request) {
	var req AddTickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		api.Error(w, http.StatusBadRequest, "ticker is required")
		return
	}
	depth := req.Depth
	if depth <= 0 {
		depth = 1
	}

	log.Printf("add ticker request: %s (depth: %d)", ticker, depth)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	emit := func(event service.ProgressEvent) {
		if err := enc.Encode(event); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	if err := h.svc.ProcessTicker(r.Context(), ticker, depth, emit); err != nil {
		// Headers are already out; the failure is reported through the
		// emitted error event.
		log.Printf("ingest of %s failed: %v", ticker, err)
	}
}
