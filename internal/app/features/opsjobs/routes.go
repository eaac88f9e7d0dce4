package opsjobs

import "github.com/go-chi/chi/v5"

// Routes mounts the job trigger endpoints on the router.
func Routes(r chi.Router, h *Handler) {
	r.Route("/ops/jobs", func(r chi.Router) {
		r.Post("/invoices/run", h.RunInvoices)
		r.Post("/overdue/run", h.RunOverdue)
		r.Post("/migration/run", h.RunMigration)
	})
}
