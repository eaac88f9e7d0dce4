// internal/app/jobs/invoice.go
package jobs

import (
	"context"

	"github.com/google/uuid"
	membershipstore "github.com/playdesk/clubledger/internal/app/store/memberships"
	tenantstore "github.com/playdesk/clubledger/internal/app/store/tenants"
	transactionstore "github.com/playdesk/clubledger/internal/app/store/transactions"
	"github.com/playdesk/clubledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// InvoiceJob generates the monthly membership charges.
//
// For every active membership it creates one pending transaction dated
// at the membership's next due date — unless a membership charge with a
// due date in that calendar month already exists. The existence check
// is re-evaluated immediately before the insert, so re-runs and
// duplicate deployments converge on a single charge per month; in a
// genuine race the worst case is a detectable double-create that the
// per-item report surfaces for manual reconciliation.
type InvoiceJob struct {
	tenants      *tenantstore.Store
	memberships  *membershipstore.Store
	transactions *transactionstore.Store
	log          *zap.Logger
}

func NewInvoiceJob(db *mongo.Database, logger *zap.Logger) *InvoiceJob {
	return &InvoiceJob{
		tenants:      tenantstore.New(db),
		memberships:  membershipstore.New(db),
		transactions: transactionstore.New(db),
		log:          logger,
	}
}

func (j *InvoiceJob) Name() string { return "monthly-invoice" }

func (j *InvoiceJob) Run(ctx context.Context) (InvoiceReport, error) {
	report := InvoiceReport{RunID: uuid.NewString()}

	tenants, err := j.tenants.ListActive(ctx)
	if err != nil {
		return report, err
	}

	for _, tenant := range tenants {
		memberships, err := j.memberships.ListActiveByTenant(ctx, tenant.ID)
		if err != nil {
			// A tenant-level listing failure is isolated like an item
			// failure; the remaining tenants still get billed.
			report.Errors++
			report.Items = append(report.Items, Item{
				TenantID: tenant.ID.Hex(),
				Action:   ActionError,
				Error:    err.Error(),
			})
			j.log.Error("invoice run: listing memberships failed",
				zap.String("tenant_id", tenant.ID.Hex()),
				zap.Error(err))
			continue
		}

		for _, m := range memberships {
			report.Processed++
			item := j.invoiceMembership(ctx, tenant.ID.Hex(), m)
			switch item.Action {
			case ActionCreated:
				report.Created++
			case ActionSkipped:
				report.Skipped++
			case ActionError:
				report.Errors++
			}
			report.Items = append(report.Items, item)
		}
	}

	j.log.Info("monthly invoice run finished",
		zap.String("run_id", report.RunID),
		zap.Int("processed", report.Processed),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors))
	return report, nil
}

func (j *InvoiceJob) invoiceMembership(ctx context.Context, tenantHex string, m models.Membership) Item {
	item := Item{TenantID: tenantHex, MembershipID: m.ID.Hex()}

	exists, err := j.transactions.HasMembershipChargeInMonth(ctx, m.TenantID, m.ID, m.NextDueDate)
	if err != nil {
		item.Action = ActionError
		item.Error = err.Error()
		j.log.Error("invoice run: idempotency check failed",
			zap.String("membership_id", m.ID.Hex()),
			zap.Error(err))
		return item
	}
	if exists {
		item.Action = ActionSkipped
		return item
	}

	_, err = j.transactions.Create(ctx, models.Transaction{
		TenantID:     m.TenantID,
		UserID:       &m.UserID,
		MembershipID: &m.ID,
		Type:         models.TransactionIncome,
		Category:     models.CategoryMembership,
		Status:       models.TransactionPending,
		AmountCents:  m.PlanValueCents,
		DueDate:      m.NextDueDate,
		Description:  "membership charge",
	})
	if err != nil {
		item.Action = ActionError
		item.Error = err.Error()
		j.log.Error("invoice run: creating charge failed",
			zap.String("membership_id", m.ID.Hex()),
			zap.Error(err))
		return item
	}

	item.Action = ActionCreated
	return item
}
