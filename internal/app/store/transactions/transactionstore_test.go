package transactionstore_test

import (
	"errors"
	"testing"
	"time"

	transactionstore "github.com/playdesk/clubledger/internal/app/store/transactions"
	"github.com/playdesk/clubledger/internal/domain/models"
	"github.com/playdesk/clubledger/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := transactionstore.New(db)

	_, err := store.Create(ctx, models.Transaction{AmountCents: 100})
	if !errors.Is(err, transactionstore.ErrMissingTenant) {
		t.Errorf("missing tenant: got %v, want ErrMissingTenant", err)
	}

	_, err = store.Create(ctx, models.Transaction{TenantID: primitive.NewObjectID(), AmountCents: 0})
	if !errors.Is(err, transactionstore.ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}

	_, err = store.Create(ctx, models.Transaction{TenantID: primitive.NewObjectID(), AmountCents: -50})
	if !errors.Is(err, transactionstore.ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
}

func TestFindOpenInvoice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	store := transactionstore.New(db)

	tenant := f.CreateTenant(ctx, "Clube A")
	user := f.CreateUser(ctx, tenant.ID, "Ana")
	m := f.CreateMembership(ctx, tenant.ID, user.ID, models.MembershipActive, 1400,
		time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC))

	open, err := store.FindOpenInvoice(ctx, tenant.ID, m.ID)
	if err != nil {
		t.Fatalf("FindOpenInvoice: %v", err)
	}
	if open != nil {
		t.Fatalf("expected no open invoice, got %v", open.ID)
	}

	older := f.CreateTransaction(ctx, models.Transaction{
		TenantID:     tenant.ID,
		UserID:       &user.ID,
		MembershipID: &m.ID,
		AmountCents:  1400,
		DueDate:      m.NextDueDate,
		CreatedAt:    time.Now().UTC().Add(-2 * time.Hour),
	})
	newer := f.CreateTransaction(ctx, models.Transaction{
		TenantID:     tenant.ID,
		UserID:       &user.ID,
		MembershipID: &m.ID,
		AmountCents:  700,
		DueDate:      m.NextDueDate,
		CreatedAt:    time.Now().UTC().Add(-1 * time.Hour),
	})
	// Completed transactions never count as open invoices.
	f.CreateTransaction(ctx, models.Transaction{
		TenantID:     tenant.ID,
		UserID:       &user.ID,
		MembershipID: &m.ID,
		Status:       models.TransactionCompleted,
		AmountCents:  1400,
		DueDate:      m.NextDueDate,
	})

	open, err = store.FindOpenInvoice(ctx, tenant.ID, m.ID)
	if err != nil {
		t.Fatalf("FindOpenInvoice: %v", err)
	}
	if open == nil {
		t.Fatal("expected an open invoice")
	}
	if open.ID != newer.ID {
		t.Errorf("open invoice: got %v, want most recent pending %v (older %v)", open.ID, newer.ID, older.ID)
	}
}

func TestHasMembershipChargeInMonth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	store := transactionstore.New(db)

	tenant := f.CreateTenant(ctx, "Clube A")
	user := f.CreateUser(ctx, tenant.ID, "Ana")
	due := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	m := f.CreateMembership(ctx, tenant.ID, user.ID, models.MembershipActive, 1400, due)

	has, err := store.HasMembershipChargeInMonth(ctx, tenant.ID, m.ID, due)
	if err != nil {
		t.Fatalf("HasMembershipChargeInMonth: %v", err)
	}
	if has {
		t.Error("empty collection: got true, want false")
	}

	// A charge in the previous month does not shadow February.
	f.CreateTransaction(ctx, models.Transaction{
		TenantID:     tenant.ID,
		MembershipID: &m.ID,
		AmountCents:  1400,
		DueDate:      time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC),
	})
	has, err = store.HasMembershipChargeInMonth(ctx, tenant.ID, m.ID, due)
	if err != nil {
		t.Fatalf("HasMembershipChargeInMonth: %v", err)
	}
	if has {
		t.Error("january charge only: got true, want false")
	}

	// A cancelled charge in the month does not count.
	f.CreateTransaction(ctx, models.Transaction{
		TenantID:     tenant.ID,
		MembershipID: &m.ID,
		Status:       models.TransactionCancelled,
		AmountCents:  1400,
		DueDate:      due,
	})
	has, err = store.HasMembershipChargeInMonth(ctx, tenant.ID, m.ID, due)
	if err != nil {
		t.Fatalf("HasMembershipChargeInMonth: %v", err)
	}
	if has {
		t.Error("cancelled charge only: got true, want false")
	}

	// A completed charge anywhere in the month counts.
	f.CreateTransaction(ctx, models.Transaction{
		TenantID:     tenant.ID,
		MembershipID: &m.ID,
		Status:       models.TransactionCompleted,
		AmountCents:  1400,
		DueDate:      time.Date(2026, time.February, 27, 8, 0, 0, 0, time.UTC),
	})
	has, err = store.HasMembershipChargeInMonth(ctx, tenant.ID, m.ID, due)
	if err != nil {
		t.Fatalf("HasMembershipChargeInMonth: %v", err)
	}
	if !has {
		t.Error("completed charge in month: got false, want true")
	}

	// Another membership's charge is invisible.
	other := f.CreateMembership(ctx, tenant.ID, user.ID, models.MembershipActive, 1400, due)
	has, err = store.HasMembershipChargeInMonth(ctx, tenant.ID, other.ID, due)
	if err != nil {
		t.Fatalf("HasMembershipChargeInMonth: %v", err)
	}
	if has {
		t.Error("other membership: got true, want false")
	}
}

func TestCompleteIsRaceTolerant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	store := transactionstore.New(db)

	tenant := f.CreateTenant(ctx, "Clube A")
	tx := f.CreateTransaction(ctx, models.Transaction{
		TenantID:    tenant.ID,
		AmountCents: 1400,
		DueDate:     time.Now().UTC(),
	})

	paidAt := time.Date(2026, time.February, 3, 10, 0, 0, 0, time.UTC)
	if err := store.Complete(ctx, tx.ID, paidAt, "pix"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got, err := store.GetByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.TransactionCompleted {
		t.Errorf("status: got %q, want completed", got.Status)
	}
	if got.PaidAt == nil || !got.PaidAt.Equal(paidAt) {
		t.Errorf("paid at: got %v, want %v", got.PaidAt, paidAt)
	}
	if got.Method != "pix" {
		t.Errorf("method: got %q, want pix", got.Method)
	}

	// A second completion finds nothing pending.
	if err := store.Complete(ctx, tx.ID, paidAt, "pix"); !errors.Is(err, transactionstore.ErrNotPending) {
		t.Errorf("double complete: got %v, want ErrNotPending", err)
	}
	if err := store.MarkOverdue(ctx, tx.ID); !errors.Is(err, transactionstore.ErrNotPending) {
		t.Errorf("overdue after complete: got %v, want ErrNotPending", err)
	}
}

func TestReduceAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	store := transactionstore.New(db)

	tenant := f.CreateTenant(ctx, "Clube A")
	tx := f.CreateTransaction(ctx, models.Transaction{
		TenantID:    tenant.ID,
		AmountCents: 1400,
		DueDate:     time.Now().UTC(),
	})

	if err := store.ReduceAmount(ctx, tx.ID, 500); err != nil {
		t.Fatalf("ReduceAmount: %v", err)
	}
	got, err := store.GetByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AmountCents != 900 {
		t.Errorf("amount after reduce: got %d, want 900", got.AmountCents)
	}

	// Reducing below zero is refused, the amount stays put.
	if err := store.ReduceAmount(ctx, tx.ID, 1000); !errors.Is(err, transactionstore.ErrNotPending) {
		t.Errorf("over-reduce: got %v, want ErrNotPending", err)
	}
	got, err = store.GetByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AmountCents != 900 {
		t.Errorf("amount after refused reduce: got %d, want 900", got.AmountCents)
	}

	if err := store.ReduceAmount(ctx, tx.ID, 0); !errors.Is(err, transactionstore.ErrInvalidAmount) {
		t.Errorf("zero reduce: got %v, want ErrInvalidAmount", err)
	}
}

func TestExistsByLegacyIDAndCountMigrated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	store := transactionstore.New(db)

	tenant := f.CreateTenant(ctx, "Clube A")
	otherTenant := f.CreateTenant(ctx, "Clube B")

	exists, err := store.ExistsByLegacyID(ctx, tenant.ID, "old-1")
	if err != nil {
		t.Fatalf("ExistsByLegacyID: %v", err)
	}
	if exists {
		t.Error("before insert: got true, want false")
	}

	f.CreateTransaction(ctx, models.Transaction{
		TenantID:    tenant.ID,
		AmountCents: 100,
		DueDate:     time.Now().UTC(),
		LegacyID:    "old-1",
	})
	f.CreateTransaction(ctx, models.Transaction{
		TenantID:    tenant.ID,
		AmountCents: 200,
		DueDate:     time.Now().UTC(),
		LegacyID:    "old-2",
	})
	// No legacy id: not migrated.
	f.CreateTransaction(ctx, models.Transaction{
		TenantID:    tenant.ID,
		AmountCents: 300,
		DueDate:     time.Now().UTC(),
	})

	exists, err = store.ExistsByLegacyID(ctx, tenant.ID, "old-1")
	if err != nil {
		t.Fatalf("ExistsByLegacyID: %v", err)
	}
	if !exists {
		t.Error("after insert: got false, want true")
	}

	// Scoped by tenant.
	exists, err = store.ExistsByLegacyID(ctx, otherTenant.ID, "old-1")
	if err != nil {
		t.Fatalf("ExistsByLegacyID: %v", err)
	}
	if exists {
		t.Error("other tenant: got true, want false")
	}

	count, err := store.CountMigrated(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("CountMigrated: %v", err)
	}
	if count != 2 {
		t.Errorf("CountMigrated: got %d, want 2", count)
	}
}
