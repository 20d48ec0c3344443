package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	ChiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(ChiMiddleware.Logger)
	r.Use(ChiMiddleware.Recoverer)
	r.Use(ChiMiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// VK callback endpoint; acknowledges sub-second, processing is async.
	r.Post("/callback", h.Callback)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/toggles", h.GetToggles)
		r.Put("/toggles", h.SetToggle)
		r.Get("/target", h.GetTarget)
		r.Put("/target", h.SetTarget)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
