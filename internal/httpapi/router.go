// Package httpapi exposes the recorder and records catalog over HTTP, per
// spec §6, grounded on the teacher's internal/api router layout stripped of
// its auth/CORS/rate-limit middleware stack (out of scope here).
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	xglog "github.com/radio-aktywne/datarecords/internal/log"
)

// NewRouter wires the full HTTP surface: a single recording endpoint backed
// by recorder, a records catalog CRUD surface, and the usual ping/metrics
// probes.
func NewRouter(rec RecorderService, cat RecordsService) http.Handler {
	h := &handlers{recorder: rec, records: cat}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(xglog.Middleware())

	r.Get("/ping", handlePing)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/record", h.handleRecord)

	r.Get("/records/{event}", h.handleListRecords)
	r.Get("/records/{event}/{start}", h.handleDownload)
	r.Head("/records/{event}/{start}", h.handleHead)
	r.Put("/records/{event}/{start}", h.handleUpload)
	r.Delete("/records/{event}/{start}", h.handleDelete)

	return r
}
