package billing

import (
	"errors"
	"testing"
	"time"

	balancestore "github.com/playdesk/clubledger/internal/app/store/balances"
	transactionstore "github.com/playdesk/clubledger/internal/app/store/transactions"
	"github.com/playdesk/clubledger/internal/domain/models"
	"github.com/playdesk/clubledger/internal/testutil"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, db *mongo.Database, now time.Time) *Service {
	t.Helper()
	svc := NewService(db, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	svc := newTestService(t, db, time.Date(2026, time.January, 20, 10, 0, 0, 0, time.UTC))

	tenant := f.CreateTenant(ctx, "Clube A")
	user := f.CreateUser(ctx, tenant.ID, "Ana")
	start := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)

	m, err := svc.Create(ctx, tenant.ID, user.ID, 1400, start, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.Status != models.MembershipPending {
		t.Errorf("status: got %q, want pending", m.Status)
	}
	wantDue := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	if !m.NextDueDate.Equal(wantDue) {
		t.Errorf("next due date: got %v, want %v", m.NextDueDate, wantDue)
	}

	txs, err := transactionstore.New(db).ListByMembership(ctx, tenant.ID, m.ID)
	if err != nil {
		t.Fatalf("ListByMembership: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("initial charges: got %d, want 1", len(txs))
	}
	if txs[0].Status != models.TransactionPending || txs[0].AmountCents != 1400 {
		t.Errorf("initial charge: got status %q amount %d, want pending 1400", txs[0].Status, txs[0].AmountCents)
	}
	if !txs[0].DueDate.Equal(wantDue) {
		t.Errorf("initial charge due date: got %v, want %v", txs[0].DueDate, wantDue)
	}

	// One live membership per user.
	if _, err := svc.Create(ctx, tenant.ID, user.ID, 1400, start, ""); !errors.Is(err, ErrMembershipExists) {
		t.Errorf("second create: got %v, want ErrMembershipExists", err)
	}

	// Validation.
	if _, err := svc.Create(ctx, primitive.NilObjectID, user.ID, 1400, start, ""); !errors.Is(err, ErrMissingTenant) {
		t.Errorf("nil tenant: got %v, want ErrMissingTenant", err)
	}
	if _, err := svc.Create(ctx, tenant.ID, primitive.NewObjectID(), 0, start, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero plan: got %v, want ErrInvalidAmount", err)
	}
}

func TestRegisterManualPaymentFullPayActivates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	now := time.Date(2026, time.February, 3, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, db, now)

	tenant := f.CreateTenant(ctx, "Clube A")
	user := f.CreateUser(ctx, tenant.ID, "Ana")
	m, err := svc.Create(ctx, tenant.ID, user.ID, 1400, time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	refreshed, primary, err := svc.RegisterManualPayment(ctx, m.ID, decimal.RequireFromString("14.00"), "pix")
	if err != nil {
		t.Fatalf("RegisterManualPayment: %v", err)
	}

	if refreshed.Status != models.MembershipActive {
		t.Errorf("status: got %q, want active", refreshed.Status)
	}
	if primary.Status != models.TransactionCompleted {
		t.Errorf("invoice status: got %q, want completed", primary.Status)
	}
	if primary.AmountCents != 1400 {
		t.Errorf("invoice amount: got %d, want 1400", primary.AmountCents)
	}
	if primary.PaidAt == nil || !primary.PaidAt.Equal(now) {
		t.Errorf("paid at: got %v, want %v", primary.PaidAt, now)
	}

	// The anchor advances from February 10 to March 10.
	wantDue := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	if !refreshed.NextDueDate.Equal(wantDue) {
		t.Errorf("next due date: got %v, want %v", refreshed.NextDueDate, wantDue)
	}

	// No open invoice remains.
	open, err := transactionstore.New(db).FindOpenInvoice(ctx, tenant.ID, m.ID)
	if err != nil {
		t.Fatalf("FindOpenInvoice: %v", err)
	}
	if open != nil {
		t.Errorf("open invoice after full pay: got %v, want none", open.ID)
	}

	// The balance projection was refreshed with the completed payment.
	bal, err := balancestore.New(db).Get(ctx, tenant.ID, user.ID)
	if err != nil {
		t.Fatalf("balance Get: %v", err)
	}
	if bal.BalanceCents != 1400 {
		t.Errorf("cached balance: got %d, want 1400", bal.BalanceCents)
	}
}

func TestRegisterManualPaymentPartialAbatesDebt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	now := time.Date(2026, time.February, 3, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, db, now)

	tenant := f.CreateTenant(ctx, "Clube A")
	user := f.CreateUser(ctx, tenant.ID, "Ana")
	m, err := svc.Create(ctx, tenant.ID, user.ID, 1400, time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	refreshed, primary, err := svc.RegisterManualPayment(ctx, m.ID, decimal.RequireFromString("5.00"), "cash")
	if err != nil {
		t.Fatalf("RegisterManualPayment: %v", err)
	}

	// Partial payments never change membership status.
	if refreshed.Status != models.MembershipPending {
		t.Errorf("status: got %q, want pending", refreshed.Status)
	}
	if primary.Status != models.TransactionCompleted || primary.AmountCents != 500 {
		t.Errorf("payment record: got status %q amount %d, want completed 500", primary.Status, primary.AmountCents)
	}

	// The open invoice shrank by exactly the paid amount.
	open, err := transactionstore.New(db).FindOpenInvoice(ctx, tenant.ID, m.ID)
	if err != nil {
		t.Fatalf("FindOpenInvoice: %v", err)
	}
	if open == nil {
		t.Fatal("expected the invoice to stay open")
	}
	if open.AmountCents != 900 {
		t.Errorf("remaining debt: got %d, want 900", open.AmountCents)
	}
}

func TestRegisterManualPaymentNoInvoiceShortfall(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	now := time.Date(2026, time.February, 3, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, db, now)

	tenant := f.CreateTenant(ctx, "Clube A")
	user := f.CreateUser(ctx, tenant.ID, "Ana")
	due := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	m := f.CreateMembership(ctx, tenant.ID, user.ID, models.MembershipPending, 1400, due)

	refreshed, primary, err := svc.RegisterManualPayment(ctx, m.ID, decimal.RequireFromString("10.00"), "pix")
	if err != nil {
		t.Fatalf("RegisterManualPayment: %v", err)
	}

	// Under-payment without an invoice does not activate.
	if refreshed.Status != models.MembershipPending {
		t.Errorf("status: got %q, want pending", refreshed.Status)
	}
	if primary.Status != models.TransactionCompleted || primary.AmountCents != 1000 {
		t.Errorf("payment record: got status %q amount %d, want completed 1000", primary.Status, primary.AmountCents)
	}

	// A pending charge for the shortfall appeared.
	open, err := transactionstore.New(db).FindOpenInvoice(ctx, tenant.ID, m.ID)
	if err != nil {
		t.Fatalf("FindOpenInvoice: %v", err)
	}
	if open == nil {
		t.Fatal("expected a shortfall charge")
	}
	if open.AmountCents != 400 {
		t.Errorf("shortfall: got %d, want 400", open.AmountCents)
	}
	if !open.DueDate.Equal(due) {
		t.Errorf("shortfall due date: got %v, want %v", open.DueDate, due)
	}
}

func TestRegisterManualPaymentReactivatesSuspended(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	now := time.Date(2026, time.February, 20, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, db, now)

	tenant := f.CreateTenant(ctx, "Clube A")
	user := f.CreateUser(ctx, tenant.ID, "Ana")
	due := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	m := f.CreateMembership(ctx, tenant.ID, user.ID, models.MembershipSuspended, 1400, due)
	f.CreateTransaction(ctx, models.Transaction{
		TenantID:     tenant.ID,
		UserID:       &user.ID,
		MembershipID: &m.ID,
		AmountCents:  1400,
		DueDate:      due,
	})

	refreshed, _, err := svc.RegisterManualPayment(ctx, m.ID, decimal.RequireFromString("14.00"), "pix")
	if err != nil {
		t.Fatalf("RegisterManualPayment: %v", err)
	}
	if refreshed.Status != models.MembershipActive {
		t.Errorf("status: got %q, want active", refreshed.Status)
	}
	if refreshed.SuspendedAt != nil {
		t.Errorf("suspended_at: got %v, want cleared", refreshed.SuspendedAt)
	}
}

func TestRegisterManualPaymentCreditOnActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	now := time.Date(2026, time.February, 20, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, db, now)

	tenant := f.CreateTenant(ctx, "Clube A")
	user := f.CreateUser(ctx, tenant.ID, "Ana")
	due := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	m := f.CreateMembership(ctx, tenant.ID, user.ID, models.MembershipActive, 1400, due)

	refreshed, primary, err := svc.RegisterManualPayment(ctx, m.ID, decimal.RequireFromString("5.00"), "cash")
	if err != nil {
		t.Fatalf("RegisterManualPayment: %v", err)
	}
	if refreshed.Status != models.MembershipActive {
		t.Errorf("status: got %q, want active", refreshed.Status)
	}
	if primary.Status != models.TransactionCompleted || primary.AmountCents != 500 {
		t.Errorf("credit record: got status %q amount %d, want completed 500", primary.Status, primary.AmountCents)
	}

	// No shortfall charge on an already-active membership.
	open, err := transactionstore.New(db).FindOpenInvoice(ctx, tenant.ID, m.ID)
	if err != nil {
		t.Fatalf("FindOpenInvoice: %v", err)
	}
	if open != nil {
		t.Errorf("unexpected open charge %v after credit", open.ID)
	}
}

func TestRegisterManualPaymentValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	svc := newTestService(t, db, time.Now().UTC())

	_, _, err := svc.RegisterManualPayment(ctx, primitive.NewObjectID(), decimal.RequireFromString("14.00"), "pix")
	if !errors.Is(err, ErrMembershipNotFound) {
		t.Errorf("unknown membership: got %v, want ErrMembershipNotFound", err)
	}

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Clube A")
	user := f.CreateUser(ctx, tenant.ID, "Ana")
	m := f.CreateMembership(ctx, tenant.ID, user.ID, models.MembershipActive, 1400,
		time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))

	_, _, err = svc.RegisterManualPayment(ctx, m.ID, decimal.Zero, "pix")
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	_, _, err = svc.RegisterManualPayment(ctx, m.ID, decimal.RequireFromString("-1.00"), "pix")
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
	_, _, err = svc.RegisterManualPayment(ctx, m.ID, decimal.RequireFromString("14.005"), "pix")
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("sub-cent amount: got %v, want ErrInvalidAmount", err)
	}
}

func TestCancel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	now := time.Date(2026, time.February, 20, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, db, now)

	tenant := f.CreateTenant(ctx, "Clube A")
	due := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	immediate := f.CreateMembership(ctx, tenant.ID, f.CreateUser(ctx, tenant.ID, "Ana").ID, models.MembershipActive, 1400, due)
	got, err := svc.Cancel(ctx, immediate.ID, true)
	if err != nil {
		t.Fatalf("Cancel immediate: %v", err)
	}
	if got.Status != models.MembershipInactive {
		t.Errorf("immediate status: got %q, want inactive", got.Status)
	}
	if got.EndDate == nil || !got.EndDate.Equal(now) {
		t.Errorf("immediate end date: got %v, want %v", got.EndDate, now)
	}

	scheduled := f.CreateMembership(ctx, tenant.ID, f.CreateUser(ctx, tenant.ID, "Bia").ID, models.MembershipActive, 1400, due)
	got, err = svc.Cancel(ctx, scheduled.ID, false)
	if err != nil {
		t.Fatalf("Cancel scheduled: %v", err)
	}
	if got.Status != models.MembershipCanceledScheduled {
		t.Errorf("scheduled status: got %q, want canceled_scheduled", got.Status)
	}
	if got.EndDate == nil || !got.EndDate.Equal(due) {
		t.Errorf("scheduled end date: got %v, want period end %v", got.EndDate, due)
	}

	if _, err := svc.Cancel(ctx, primitive.NewObjectID(), true); !errors.Is(err, ErrMembershipNotFound) {
		t.Errorf("unknown membership: got %v, want ErrMembershipNotFound", err)
	}
}

func TestBalanceRefreshesProjection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	svc := newTestService(t, db, time.Now().UTC())

	tenant := f.CreateTenant(ctx, "Clube A")
	user := f.CreateUser(ctx, tenant.ID, "Ana")
	now := time.Now().UTC()

	f.CreateTransaction(ctx, models.Transaction{
		TenantID: tenant.ID, UserID: &user.ID,
		Type: models.TransactionIncome, Status: models.TransactionCompleted,
		AmountCents: 1400, DueDate: now,
	})
	f.CreateTransaction(ctx, models.Transaction{
		TenantID: tenant.ID, UserID: &user.ID,
		Type: models.TransactionExpense, Category: models.CategoryFieldRental,
		Status: models.TransactionCompleted,
		AmountCents: 300, DueDate: now,
	})

	cents, err := svc.Balance(ctx, tenant.ID, user.ID)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if cents != 1100 {
		t.Errorf("balance: got %d, want 1100", cents)
	}

	bal, err := balancestore.New(db).Get(ctx, tenant.ID, user.ID)
	if err != nil {
		t.Fatalf("balance Get: %v", err)
	}
	if bal.BalanceCents != 1100 {
		t.Errorf("cached balance: got %d, want 1100", bal.BalanceCents)
	}
}
