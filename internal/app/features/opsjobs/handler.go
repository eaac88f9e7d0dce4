// Package opsjobs exposes operator endpoints for triggering the billing
// jobs out of schedule. Every handler just invokes the same Run the
// scheduler does and returns the structured report; idempotency is the
// job's own responsibility, so triggering twice is harmless.
package opsjobs

import (
	"encoding/json"
	"net/http"

	"github.com/playdesk/clubledger/internal/app/jobs"
	"go.uber.org/zap"
)

type Handler struct {
	invoice  *jobs.InvoiceJob
	overdue  *jobs.OverdueJob
	migrator *jobs.Migrator
	log      *zap.Logger
}

func NewHandler(invoice *jobs.InvoiceJob, overdue *jobs.OverdueJob, migrator *jobs.Migrator, logger *zap.Logger) *Handler {
	return &Handler{
		invoice:  invoice,
		overdue:  overdue,
		migrator: migrator,
		log:      logger,
	}
}

// RunInvoices handles POST /ops/jobs/invoices/run.
func (h *Handler) RunInvoices(w http.ResponseWriter, r *http.Request) {
	report, err := h.invoice.Run(r.Context())
	h.respond(w, report, err)
}

// RunOverdue handles POST /ops/jobs/overdue/run.
func (h *Handler) RunOverdue(w http.ResponseWriter, r *http.Request) {
	report, err := h.overdue.Run(r.Context())
	h.respond(w, report, err)
}

// RunMigration handles POST /ops/jobs/migration/run. Answers 409 when
// no legacy source is configured.
func (h *Handler) RunMigration(w http.ResponseWriter, r *http.Request) {
	if h.migrator == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "no legacy ledger source configured",
		})
		return
	}
	report, err := h.migrator.Run(r.Context())
	h.respond(w, report, err)
}

func (h *Handler) respond(w http.ResponseWriter, report any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		h.log.Error("job trigger failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(report)
}
