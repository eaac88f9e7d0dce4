package health

import "github.com/go-chi/chi/v5"

// Routes mounts the health endpoints on the router.
func Routes(r chi.Router, h *Handler) {
	r.Get("/healthz", h.Live)
	r.Get("/readyz", h.Ready)
}
