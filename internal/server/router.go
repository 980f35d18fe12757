package server

import (
	"net/http"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/api"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/api/handlers"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	AnalyzeHandler *handlers.AnalyzeHandler
	IngestHandler  *handlers.IngestHandler
	FilingsHandler *handlers.FilingsHandler
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.CORS(origins))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", cfg.AnalyzeHandler.Analyze)
		r.Post("/add_ticker", cfg.IngestHandler.AddTicker)
		if cfg.FilingsHandler != nil {
			r.Get("/filings", cfg.FilingsHandler.List)
		}
	})

	return r
}
