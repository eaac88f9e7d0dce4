// internal/app/jobs/overdue.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/playdesk/clubledger/internal/app/events"
	"github.com/playdesk/clubledger/internal/app/gateway/messaging"
	membershipstore "github.com/playdesk/clubledger/internal/app/store/memberships"
	tenantstore "github.com/playdesk/clubledger/internal/app/store/tenants"
	transactionstore "github.com/playdesk/clubledger/internal/app/store/transactions"
	userstore "github.com/playdesk/clubledger/internal/app/store/users"
	"github.com/playdesk/clubledger/internal/app/system/normalize"
	"github.com/playdesk/clubledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// OverdueJob detects unpaid past-due membership charges, marks them
// overdue, and suspends the owning membership.
//
// A single overdue charge is sufficient. There is no implicit grace
// period: Grace is an explicit input to the date comparison, and zero
// means a charge is eligible the moment its due date passes. The
// suspension notice and the suspended event are best-effort; the
// membership is durably suspended whether or not they go out.
type OverdueJob struct {
	tenants      *tenantstore.Store
	memberships  *membershipstore.Store
	transactions *transactionstore.Store
	users        *userstore.Store
	messenger    messaging.Messenger
	log          *zap.Logger

	// Grace widens the overdue window: a charge becomes eligible when
	// dueDate+Grace is strictly before now.
	Grace time.Duration

	// Events defaults to a no-op publisher.
	Events events.Publisher

	// Now overrides the clock in tests.
	Now func() time.Time
}

func NewOverdueJob(db *mongo.Database, messenger messaging.Messenger, grace time.Duration, logger *zap.Logger) *OverdueJob {
	return &OverdueJob{
		tenants:      tenantstore.New(db),
		memberships:  membershipstore.New(db),
		transactions: transactionstore.New(db),
		users:        userstore.New(db),
		messenger:    messenger,
		log:          logger,
		Grace:        grace,
		Events:       events.Nop{},
		Now:          time.Now,
	}
}

func (j *OverdueJob) Name() string { return "overdue-suspension" }

func (j *OverdueJob) Run(ctx context.Context) (OverdueReport, error) {
	report := OverdueReport{RunID: uuid.NewString()}
	now := j.Now().UTC()

	tenants, err := j.tenants.ListActive(ctx)
	if err != nil {
		return report, err
	}

	for _, tenant := range tenants {
		memberships, err := j.memberships.ListBillableByTenant(ctx, tenant.ID)
		if err != nil {
			report.Errors++
			report.Items = append(report.Items, Item{
				TenantID: tenant.ID.Hex(),
				Action:   ActionError,
				Error:    err.Error(),
			})
			j.log.Error("overdue run: listing memberships failed",
				zap.String("tenant_id", tenant.ID.Hex()),
				zap.Error(err))
			continue
		}

		pending, err := j.transactions.ListPendingMembershipCharges(ctx, tenant.ID)
		if err != nil {
			report.Errors++
			report.Items = append(report.Items, Item{
				TenantID: tenant.ID.Hex(),
				Action:   ActionError,
				Error:    err.Error(),
			})
			continue
		}
		byMembership := make(map[primitive.ObjectID][]models.Transaction)
		for _, tx := range pending {
			if tx.MembershipID != nil {
				byMembership[*tx.MembershipID] = append(byMembership[*tx.MembershipID], tx)
			}
		}

		for _, m := range memberships {
			report.Processed++
			item := j.checkMembership(ctx, tenant.ID.Hex(), m, byMembership[m.ID], now)
			switch item.Action {
			case ActionSuspended:
				report.Suspended++
			case ActionError:
				report.Errors++
			}
			report.Items = append(report.Items, item)
		}
	}

	j.log.Info("overdue suspension run finished",
		zap.String("run_id", report.RunID),
		zap.Int("processed", report.Processed),
		zap.Int("suspended", report.Suspended),
		zap.Int("errors", report.Errors))
	return report, nil
}

func (j *OverdueJob) checkMembership(ctx context.Context, tenantHex string, m models.Membership, charges []models.Transaction, now time.Time) Item {
	item := Item{TenantID: tenantHex, MembershipID: m.ID.Hex()}

	var overdue *models.Transaction
	for i := range charges {
		if charges[i].DueDate.Add(j.Grace).Before(now) {
			overdue = &charges[i]
			break
		}
	}
	if overdue == nil {
		item.Action = ActionSkipped
		return item
	}

	if err := j.transactions.MarkOverdue(ctx, overdue.ID); err != nil {
		item.Action = ActionError
		item.Error = err.Error()
		j.log.Error("overdue run: marking transaction failed",
			zap.String("transaction_id", overdue.ID.Hex()),
			zap.Error(err))
		return item
	}
	if err := j.memberships.Suspend(ctx, m.ID, now); err != nil {
		item.Action = ActionError
		item.Error = err.Error()
		j.log.Error("overdue run: suspending membership failed",
			zap.String("membership_id", m.ID.Hex()),
			zap.Error(err))
		return item
	}

	j.notify(ctx, m, *overdue)
	j.publish(ctx, m, *overdue, now)

	item.Action = ActionSuspended
	return item
}

func (j *OverdueJob) notify(ctx context.Context, m models.Membership, tx models.Transaction) {
	user, err := j.users.GetByID(ctx, m.TenantID, m.UserID)
	if err != nil {
		j.log.Warn("overdue run: loading user for notice failed",
			zap.String("user_id", m.UserID.Hex()),
			zap.Error(err))
		return
	}
	target := normalize.Phone(user.Phone)
	if target == "" {
		target = normalize.Email(user.Email)
	}
	if target == "" {
		return
	}

	text := fmt.Sprintf("Your membership was suspended over an unpaid charge due %s.",
		tx.DueDate.Format("2006-01-02"))
	if err := j.messenger.SendMessage(ctx, target, text); err != nil {
		j.log.Warn("overdue run: suspension notice failed",
			zap.String("membership_id", m.ID.Hex()),
			zap.Error(err))
	}
}

func (j *OverdueJob) publish(ctx context.Context, m models.Membership, tx models.Transaction, now time.Time) {
	err := j.Events.Publish(ctx, events.MembershipSuspended{
		EventID:       uuid.NewString(),
		TenantID:      m.TenantID.Hex(),
		MembershipID:  m.ID.Hex(),
		TransactionID: tx.ID.Hex(),
		DueDate:       tx.DueDate,
		OccurredAt:    now,
	})
	if err != nil {
		j.log.Error("overdue run: event publish failed",
			zap.String("membership_id", m.ID.Hex()),
			zap.Error(err))
	}
}
