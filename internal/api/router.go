package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	_ "github.com/hypnolab/sleep-analysis/docs"
	"github.com/hypnolab/sleep-analysis/internal/api/handler"
	"github.com/hypnolab/sleep-analysis/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Router struct {
	userHandler     *handler.UserHandler
	analysisHandler *handler.AnalysisHandler
	insightHandler  *handler.InsightHandler
	logger          *zap.Logger
}

func NewRouter(
	userHandler *handler.UserHandler,
	analysisHandler *handler.AnalysisHandler,
	insightHandler *handler.InsightHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		userHandler:     userHandler,
		analysisHandler: analysisHandler,
		insightHandler:  insightHandler,
		logger:          logger,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Middleware
	httpMetrics := middleware.NewHTTPMetrics()
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.RequestLogger(rt.logger))
	r.Use(middleware.Tracing)
	r.Use(httpMetrics.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Users
		r.Route("/users", func(r chi.Router) {
			r.Post("/", rt.userHandler.Create)
			r.Get("/{userId}", rt.userHandler.GetByID)

			// Analyses (nested under users)
			r.Route("/{userId}/analyses", func(r chi.Router) {
				r.Post("/", rt.analysisHandler.Create)
				r.Get("/", rt.analysisHandler.List)
				r.Get("/{analysisId}", rt.analysisHandler.GetByID)

				// Per-analysis insight
				r.Route("/{analysisId}/insight", func(r chi.Router) {
					r.Get("/", rt.insightHandler.GetInsight)
					r.Post("/feedback", rt.insightHandler.PostFeedback)
				})
			})
		})
	})

	return r
}
