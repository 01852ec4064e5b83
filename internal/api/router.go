package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(h *Handler, mw *Middleware, metrics http.Handler) http.Handler {
	mux := chi.NewRouter()
	mux.Use(mw.Log, mw.Recover, mw.Cors)

	mux.Route("/api", func(r chi.Router) {
		r.HandleFunc("/health", h.HealthHandler)
		r.Handle("/metrics", metrics)

		r.Get("/catalog", h.Catalog)
		r.Get("/summary", h.Summary)
		r.Get("/stats/store", h.StoreStats)

		r.Route("/claims", func(r chi.Router) {
			r.Get("/", h.ListClaims)
			r.Get("/{id}", h.GetClaim)

			r.Group(func(r chi.Router) {
				r.Use(mw.APIKeyAuth)
				r.Post("/", h.CreateClaim)
				r.Put("/{id}/technicians", h.AssignTechnicians)
				r.Put("/{id}/resolve", h.Resolve)
				r.Put("/{id}/reopen", h.Reopen)
			})
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/{number}", h.GetClient)
			r.Get("/{number}/claims", h.ClientHistory)
			r.Get("/{number}/claims/active", h.ActiveClaims)
			r.Get("/{number}/claims/current", h.CurrentClaim)

			r.Group(func(r chi.Router) {
				r.Use(mw.APIKeyAuth)
				r.Post("/", h.CreateClient)
				r.Post("/import", h.ImportClients)
				r.Put("/{number}", h.UpdateClient)
			})
		})
	})

	return mux
}
