package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/api"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/service"
)

type AnalyzePipeline interface {
	Run(ctx context.Context, query string, settings service.Settings) (*domain.AnswerResult, error)
}

// AnalyzeDefaults fill request settings the client left unset.
type AnalyzeDefaults struct {
	Model       string
	SearchDepth int
	Creativity  float32
}

type AnalyzeHandler struct {
	pipeline AnalyzePipeline
	defaults AnalyzeDefaults
}

func NewAnalyzeHandler(pipeline AnalyzePipeline, defaults AnalyzeDefaults) *AnalyzeHandler {
	return &AnalyzeHandler{pipeline: pipeline, defaults: defaults}
}

type AnalyzeSettings struct {
	Model       string  `json:"model"`
	SearchDepth int     `json:"searchDepth"`
	Creativity  float32 `json:"creativity"`
}

type AnalyzeRequest struct {
	Query    string           `json:"query"`
	Settings *AnalyzeSettings `json:"settings"`
	Ticker   string           `json:"ticker"`
}

// MetricHighlight is the headline metric card shown next to the answer.
type MetricHighlight struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Trend string `json:"trend"`
}

type AnswerPayload struct {
	Reasoning  string                `json:"reasoning"`
	Sources    []domain.SourceRecord `json:"sources"`
	MainMetric MetricHighlight       `json:"mainMetric"`
	ChartData  interface{}           `json:"chartData"`
	Sentiment  interface{}           `json:"sentiment"`
}

type AnalyzeResponse struct {
	Thinking domain.Trace  `json:"thinking"`
	Answer   AnswerPayload `json:"answer"`
}

func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	settings := h.resolveSettings(req)

	log.Printf("received query: %q (filter: %s)", query, filterLabel(settings.Ticker))

	result, err := h.pipeline.Run(r.Context(), query, settings)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sources := result.Sources
	if sources == nil {
		sources = []domain.SourceRecord{}
	}

	api.JSON(w, http.StatusOK, AnalyzeResponse{
		Thinking: result.Trace,
		Answer: AnswerPayload{
			Reasoning: result.Reasoning,
			Sources:   sources,
			MainMetric: MetricHighlight{
				Label: "Analysis Complete",
				Value: "Done",
				Trend: "neutral",
			},
			ChartData: nil,
			Sentiment: nil,
		},
	})
}

func (h *AnalyzeHandler) resolveSettings(req AnalyzeRequest) service.Settings {
	settings := service.Settings{
		Model:       h.defaults.Model,
		SearchDepth: h.defaults.SearchDepth,
		Creativity:  h.defaults.Creativity,
		Ticker:      strings.ToUpper(strings.TrimSpace(req.Ticker)),
	}
	if req.Settings == nil {
		return settings
	}
	if req.Settings.Model != "" {
		settings.Model = req.Settings.Model
	}
	if req.Settings.SearchDepth > 0 {
		settings.SearchDepth = req.Settings.SearchDepth
	}
	if req.Settings.Creativity > 0 {
		settings.Creativity = req.Settings.Creativity
	}
	return settings
}

func filterLabel(ticker string) string {
	if ticker == "" {
		return "none"
	}
	return ticker
}
