// internal/app/billing/service.go
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/playdesk/clubledger/internal/app/events"
	"github.com/playdesk/clubledger/internal/app/gateway/accounting"
	balancestore "github.com/playdesk/clubledger/internal/app/store/balances"
	membershipstore "github.com/playdesk/clubledger/internal/app/store/memberships"
	"github.com/playdesk/clubledger/internal/app/store/queries/balancequeries"
	transactionstore "github.com/playdesk/clubledger/internal/app/store/transactions"
	"github.com/playdesk/clubledger/internal/app/system/money"
	"github.com/playdesk/clubledger/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service orchestrates membership billing: payment application,
// cancellation, suspension, and activation. All state transitions run
// through here; nothing edits a membership status directly.
//
// External collaborators (accounting mirror, event bus) are called only
// after local writes are durable, and their failures are logged and
// swallowed, never propagated into the billing path.
type Service struct {
	db           *mongo.Database
	memberships  *membershipstore.Store
	transactions *transactionstore.Store
	balances     *balancestore.Store
	log          *zap.Logger

	// Mirror and Events default to no-ops; bootstrap swaps in real
	// implementations when configured.
	Mirror accounting.Mirror
	Events events.Publisher

	// AccountingCategoryID is the mirror-side category for membership
	// income.
	AccountingCategoryID string

	now func() time.Time
}

func NewService(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		db:           db,
		memberships:  membershipstore.New(db),
		transactions: transactionstore.New(db),
		balances:     balancestore.New(db),
		log:          logger,
		Mirror:       accounting.Disabled{},
		Events:       events.Nop{},
		now:          time.Now,
	}
}

// Create opens a new membership in pending state together with its
// initial pending charge, due on the first computed due date.
func (s *Service) Create(ctx context.Context, tenantID, userID primitive.ObjectID, planValueCents int64, startDate time.Time, notes string) (models.Membership, error) {
	if tenantID.IsZero() {
		return models.Membership{}, ErrMissingTenant
	}
	if planValueCents <= 0 {
		return models.Membership{}, ErrInvalidAmount
	}

	live, err := s.memberships.FindLive(ctx, tenantID, userID)
	if err != nil {
		return models.Membership{}, err
	}
	if live != nil {
		return models.Membership{}, ErrMembershipExists
	}

	m, err := s.memberships.Create(ctx, models.Membership{
		TenantID:       tenantID,
		UserID:         userID,
		Status:         models.MembershipPending,
		PlanValueCents: planValueCents,
		StartDate:      startDate,
		NextDueDate:    NextDueDate(startDate),
		Notes:          notes,
	})
	if err != nil {
		return models.Membership{}, err
	}

	_, err = s.transactions.Create(ctx, models.Transaction{
		TenantID:     tenantID,
		UserID:       &userID,
		MembershipID: &m.ID,
		Type:         models.TransactionIncome,
		Category:     models.CategoryMembership,
		Status:       models.TransactionPending,
		AmountCents:  planValueCents,
		DueDate:      m.NextDueDate,
		Description:  "membership charge",
	})
	if err != nil {
		return models.Membership{}, fmt.Errorf("create initial charge: %w", err)
	}

	s.log.Info("membership created",
		zap.String("tenant_id", tenantID.Hex()),
		zap.String("membership_id", m.ID.Hex()),
		zap.Int64("plan_value_cents", planValueCents))
	return m, nil
}

// RegisterManualPayment applies a payment to a membership.
//
// The amount arrives in whole currency units and is converted to cents
// exactly once, here; everything below runs on integers.
//
//   - Open invoice, paid >= invoice amount: the invoice completes and
//     the membership becomes activation-eligible.
//   - Open invoice, paid < invoice amount: a completed transaction for
//     the paid amount is recorded and the invoice shrinks by exactly
//     that amount; membership status does not change.
//   - No open invoice: a completed transaction for the paid amount is
//     recorded. Paying at least the plan value makes the membership
//     activation-eligible; paying less, on a not-yet-active membership,
//     also creates a pending charge for the shortfall.
//
// Partial payments never error. The refreshed membership and the
// primary transaction touched are returned.
func (s *Service) RegisterManualPayment(ctx context.Context, membershipID primitive.ObjectID, amount decimal.Decimal, method string) (models.Membership, models.Transaction, error) {
	cents, err := money.ToCents(amount)
	if err != nil {
		return models.Membership{}, models.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if cents <= 0 {
		return models.Membership{}, models.Transaction{}, ErrInvalidAmount
	}

	m, err := s.memberships.GetByID(ctx, membershipID)
	if err == mongo.ErrNoDocuments {
		return models.Membership{}, models.Transaction{}, ErrMembershipNotFound
	}
	if err != nil {
		return models.Membership{}, models.Transaction{}, err
	}

	now := s.now().UTC()
	open, err := s.transactions.FindOpenInvoice(ctx, m.TenantID, m.ID)
	if err != nil {
		return models.Membership{}, models.Transaction{}, err
	}

	var (
		primary  models.Transaction
		eligible bool
		partial  bool
	)

	switch {
	case open != nil && cents >= open.AmountCents:
		// Full payment of the open invoice.
		if err := s.transactions.Complete(ctx, open.ID, now, method); err != nil {
			return models.Membership{}, models.Transaction{}, err
		}
		primary, err = s.transactions.GetByID(ctx, open.ID)
		if err != nil {
			return models.Membership{}, models.Transaction{}, err
		}
		eligible = true

	case open != nil:
		// Partial payment: record the paid part, shrink the debt.
		primary, err = s.transactions.Create(ctx, models.Transaction{
			TenantID:     m.TenantID,
			UserID:       &m.UserID,
			MembershipID: &m.ID,
			Type:         models.TransactionIncome,
			Category:     models.CategoryMembership,
			Status:       models.TransactionCompleted,
			AmountCents:  cents,
			DueDate:      open.DueDate,
			PaidAt:       &now,
			Method:       method,
			Description:  "partial membership payment (abated from debt)",
		})
		if err != nil {
			return models.Membership{}, models.Transaction{}, err
		}
		if err := s.transactions.ReduceAmount(ctx, open.ID, cents); err != nil {
			return models.Membership{}, models.Transaction{}, err
		}
		partial = true

	default:
		// No open invoice: record the payment as-is.
		primary, err = s.transactions.Create(ctx, models.Transaction{
			TenantID:     m.TenantID,
			UserID:       &m.UserID,
			MembershipID: &m.ID,
			Type:         models.TransactionIncome,
			Category:     models.CategoryMembership,
			Status:       models.TransactionCompleted,
			AmountCents:  cents,
			DueDate:      now,
			PaidAt:       &now,
			Method:       method,
			Description:  "membership payment",
		})
		if err != nil {
			return models.Membership{}, models.Transaction{}, err
		}

		if cents >= m.PlanValueCents {
			eligible = true
		} else if m.Status != models.MembershipActive {
			// Under-payment on a not-yet-active membership leaves a
			// pending charge for the remainder.
			partial = true
			_, err = s.transactions.Create(ctx, models.Transaction{
				TenantID:     m.TenantID,
				UserID:       &m.UserID,
				MembershipID: &m.ID,
				Type:         models.TransactionIncome,
				Category:     models.CategoryMembership,
				Status:       models.TransactionPending,
				AmountCents:  m.PlanValueCents - cents,
				DueDate:      m.NextDueDate,
				Description:  "remaining membership balance",
			})
			if err != nil {
				return models.Membership{}, models.Transaction{}, err
			}
		}

		if m.Status == models.MembershipActive {
			// No invoice to settle: this payment sits as a credit with
			// no shortfall counterpart. Kept visible rather than silent.
			s.log.Warn("payment on active membership with no open invoice recorded as credit",
				zap.String("membership_id", m.ID.Hex()),
				zap.Int64("amount_cents", cents))
		}
	}

	if eligible && m.Status != models.MembershipActive {
		if err := s.memberships.Activate(ctx, m.ID); err != nil {
			return models.Membership{}, models.Transaction{}, err
		}
	}

	// Advance the billing anchor from the current one, every branch.
	if err := s.memberships.SetNextDueDate(ctx, m.ID, NextDueDate(m.NextDueDate)); err != nil {
		return models.Membership{}, models.Transaction{}, err
	}

	refreshed, err := s.memberships.GetByID(ctx, m.ID)
	if err != nil {
		return models.Membership{}, models.Transaction{}, err
	}

	// Local state is durable from here on; everything below is
	// best-effort.
	s.refreshBalance(ctx, m.TenantID, m.UserID)
	s.mirrorPayment(ctx, primary)
	s.publishPayment(ctx, refreshed, primary, partial, now)

	s.log.Info("manual payment registered",
		zap.String("membership_id", m.ID.Hex()),
		zap.String("transaction_id", primary.ID.Hex()),
		zap.Int64("amount_cents", cents),
		zap.Bool("partial", partial),
		zap.String("membership_status", refreshed.Status))
	return refreshed, primary, nil
}

// Cancel requests cancellation. Immediate cancellation deactivates now;
// otherwise the membership stays live as canceled_scheduled until the
// period end (the current next due date).
func (s *Service) Cancel(ctx context.Context, membershipID primitive.ObjectID, immediate bool) (models.Membership, error) {
	m, err := s.memberships.GetByID(ctx, membershipID)
	if err == mongo.ErrNoDocuments {
		return models.Membership{}, ErrMembershipNotFound
	}
	if err != nil {
		return models.Membership{}, err
	}

	now := s.now().UTC()
	if immediate {
		err = s.memberships.CancelImmediate(ctx, m.ID, now)
	} else {
		err = s.memberships.CancelScheduled(ctx, m.ID, now, m.NextDueDate)
	}
	if err != nil {
		return models.Membership{}, err
	}

	s.log.Info("membership cancellation requested",
		zap.String("membership_id", m.ID.Hex()),
		zap.Bool("immediate", immediate))
	return s.memberships.GetByID(ctx, m.ID)
}

// Suspend moves a membership into suspended state. The overdue job is
// the usual caller, after marking the triggering charge overdue.
func (s *Service) Suspend(ctx context.Context, membershipID primitive.ObjectID) (models.Membership, error) {
	m, err := s.memberships.GetByID(ctx, membershipID)
	if err == mongo.ErrNoDocuments {
		return models.Membership{}, ErrMembershipNotFound
	}
	if err != nil {
		return models.Membership{}, err
	}
	if err := s.memberships.Suspend(ctx, m.ID, s.now().UTC()); err != nil {
		return models.Membership{}, err
	}
	return s.memberships.GetByID(ctx, m.ID)
}

// Balance recomputes the user's balance from source transactions,
// refreshes the cached projection, and returns the value in cents.
func (s *Service) Balance(ctx context.Context, tenantID, userID primitive.ObjectID) (int64, error) {
	if tenantID.IsZero() {
		return 0, ErrMissingTenant
	}
	cents, err := balancequeries.ConfirmedBalance(ctx, s.db, tenantID, userID)
	if err != nil {
		return 0, err
	}
	if err := s.balances.Upsert(ctx, tenantID, userID, cents, s.now().UTC()); err != nil {
		return 0, err
	}
	return cents, nil
}

func (s *Service) refreshBalance(ctx context.Context, tenantID, userID primitive.ObjectID) {
	if _, err := s.Balance(ctx, tenantID, userID); err != nil {
		s.log.Error("balance refresh failed",
			zap.String("tenant_id", tenantID.Hex()),
			zap.String("user_id", userID.Hex()),
			zap.Error(err))
	}
}

func (s *Service) mirrorPayment(ctx context.Context, tx models.Transaction) {
	id, err := s.Mirror.CreateExternalTransaction(ctx, tx.Description, tx.AmountCents, s.AccountingCategoryID, tx.Status == models.TransactionCompleted)
	if err != nil {
		s.log.Error("accounting mirror failed",
			zap.String("transaction_id", tx.ID.Hex()),
			zap.Error(err))
		return
	}
	if id == "" {
		return
	}
	if err := s.transactions.SetExternalID(ctx, tx.ID, id); err != nil {
		s.log.Error("storing external id failed",
			zap.String("transaction_id", tx.ID.Hex()),
			zap.Error(err))
	}
}

func (s *Service) publishPayment(ctx context.Context, m models.Membership, tx models.Transaction, partial bool, at time.Time) {
	err := s.Events.Publish(ctx, events.PaymentRecorded{
		EventID:       uuid.NewString(),
		TenantID:      m.TenantID.Hex(),
		MembershipID:  m.ID.Hex(),
		TransactionID: tx.ID.Hex(),
		Amount:        money.FromCents(tx.AmountCents),
		Method:        tx.Method,
		Partial:       partial,
		OccurredAt:    at,
	})
	if err != nil {
		s.log.Error("payment event publish failed",
			zap.String("transaction_id", tx.ID.Hex()),
			zap.Error(err))
	}
}
