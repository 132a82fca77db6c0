package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apihandler "github.com/maraichr/gdcgraph/internal/api/handler"
	apimw "github.com/maraichr/gdcgraph/internal/api/middleware"
	"github.com/maraichr/gdcgraph/internal/graph"
)

// RouterDeps holds optional dependencies for the router.
type RouterDeps struct {
	Graph   *graph.Client
	Asker   apihandler.Asker
	GDC     apihandler.GDCLookup
	Metrics prometheus.Gatherer
	// Auth guards /api/v1 when set.
	Auth []func(http.Handler) http.Handler
}

func NewRouter(logger *slog.Logger, deps *RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(chimw.Recoverer)

	if deps == nil {
		deps = &RouterDeps{}
	}

	// Health checks
	var pinger apihandler.Pinger
	if deps.Graph != nil {
		pinger = deps.Graph
	}
	health := apihandler.NewHealthHandler(pinger)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.Auth...)

		ask := apihandler.NewAskHandler(logger, deps.Asker)
		r.Post("/ask", ask.Ask)
		r.Get("/schema", ask.Schema)

		if deps.GDC != nil {
			gdc := apihandler.NewGDCHandler(logger, deps.GDC)
			r.Get("/cases/{caseID}", gdc.Case)
			r.Get("/files/{fileID}", gdc.File)
		}

		if deps.Graph != nil {
			g := apihandler.NewGraphHandler(logger, deps.Graph)
			r.Get("/graph/stats", g.Stats)
		}
	})

	return r
}
