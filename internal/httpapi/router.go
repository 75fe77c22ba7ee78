// Package httpapi is the thin Submission API transport over the job
// store: decode -> call the Job Store -> encode. No business logic
// lives here.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ramyatawia/docflow-orchestrator/internal/job"
	appmetrics "github.com/ramyatawia/docflow-orchestrator/internal/metrics"
)

// NewRouter builds the chi router exposing the submission API.
func NewRouter(store *job.Store, m *appmetrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observability(m))

	h := &handlers{store: store, metrics: m}

	r.Post("/submit", h.submit)
	r.Get("/status/{jobID}", h.status)
	r.Get("/result/{jobID}", h.result)
	r.Post("/cancel/{jobID}", h.cancel)
	r.Get("/stats", h.stats)
	r.Get("/list", h.list)

	if m != nil {
		r.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	}

	return r
}
