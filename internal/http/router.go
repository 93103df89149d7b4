package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sharerapy/internal/handlers"
	"sharerapy/internal/rag"
	"sharerapy/internal/service"
	"sharerapy/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine         rag.Engine
	Reports        service.ReportService
	Reindexer      handlers.Reindexer
	DB             handlers.Pinger
	VectorStore    vectorstore.VectorStore
	CollectionName string
	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer

	// Per-client AI Mode rate limit. Zero disables it.
	AIRateLimit float64
	AIRateBurst int
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	answerHandler := handlers.NewAnswerHandler(deps.Engine)
	reportHandler := handlers.NewReportHandler(deps.Reports)
	indexHandler := handlers.NewIndexHandler(deps.Reindexer)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.With(RateLimit(deps.AIRateLimit, deps.AIRateBurst)).
			Method(http.MethodPost, "/ai/answer", answerHandler)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reportHandler.List)
			r.Post("/", reportHandler.Create)
			r.Get("/{id}", reportHandler.Get)
			r.Put("/{id}", reportHandler.Update)
			r.Delete("/{id}", reportHandler.Delete)
		})

		r.Method(http.MethodPost, "/index", indexHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	r.Method(http.MethodGet, "/reports/{id}", handlers.NewReportPageHandler(deps.Reports))

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
