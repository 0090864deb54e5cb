package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// One connection: a second pool connection would see a fresh empty
	// in-memory database, and production runs small pools anyway.
	db.SetMaxOpenConns(1)

	service := &Service{db: db}

	// Use the actual schema initialization
	if err := service.initSchema(); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func createTestUser(t *testing.T, service *Service, email string) *models.User {
	t.Helper()
	user, err := service.CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func TestAppendLedgerEntry_Grant(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "grant@example.com")

	entry, err := service.AppendLedgerEntry(ctx, store.LedgerEntryParams{
		UserId: user.Id,
		Type:   models.CreditTypePurchase,
		Amount: 100,
	})
	if err != nil {
		t.Fatalf("AppendLedgerEntry failed: %v", err)
	}

	if entry.BalanceBefore != 0 {
		t.Errorf("Expected balance before 0, got %d", entry.BalanceBefore)
	}
	if entry.BalanceAfter != 100 {
		t.Errorf("Expected balance after 100, got %d", entry.BalanceAfter)
	}

	balance, err := service.GetBalance(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 100 {
		t.Errorf("Expected balance 100, got %d", balance)
	}
}

func TestAppendLedgerEntry_InsufficientCredits(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "spend@example.com")

	_, err := service.AppendLedgerEntry(ctx, store.LedgerEntryParams{
		UserId: user.Id,
		Type:   models.CreditTypePurchase,
		Amount: 30,
	})
	if err != nil {
		t.Fatalf("Initial grant failed: %v", err)
	}

	// Spending more than the balance must fail and change nothing.
	_, err = service.AppendLedgerEntry(ctx, store.LedgerEntryParams{
		UserId: user.Id,
		Type:   models.CreditTypeBoostAd,
		Amount: -31,
	})
	if !errors.Is(err, store.ErrInsufficientCredits) {
		t.Fatalf("Expected ErrInsufficientCredits, got: %v", err)
	}

	balance, err := service.GetBalance(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 30 {
		t.Errorf("Expected balance unchanged at 30, got %d", balance)
	}

	history, err := service.GetLedgerHistory(ctx, user.Id, 10, 0)
	if err != nil {
		t.Fatalf("GetLedgerHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected 1 ledger entry after failed spend, got %d", len(history))
	}
}

func TestAppendLedgerEntry_ZeroAmount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user := createTestUser(t, service, "zero@example.com")

	_, err := service.AppendLedgerEntry(context.Background(), store.LedgerEntryParams{
		UserId: user.Id,
		Type:   models.CreditTypeAdminAdd,
		Amount: 0,
	})
	if !errors.Is(err, store.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got: %v", err)
	}
}

func TestLedgerInvariant_BalanceEqualsSum(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "sum@example.com")

	amounts := []int64{50, -20, 10, -5, 100, -100}
	var expected int64
	for _, amount := range amounts {
		txType := models.CreditTypePurchase
		if amount < 0 {
			txType = models.CreditTypeBoostAd
		}
		if _, err := service.AppendLedgerEntry(ctx, store.LedgerEntryParams{
			UserId: user.Id,
			Type:   txType,
			Amount: amount,
		}); err != nil {
			t.Fatalf("AppendLedgerEntry(%d) failed: %v", amount, err)
		}
		expected += amount
	}

	balance, err := service.GetBalance(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != expected {
		t.Errorf("Expected balance %d, got %d", expected, balance)
	}

	// Reconciliation checks the same invariant from the audit trail side.
	if err := service.ReconcileBalance(ctx, user.Id); err != nil {
		t.Errorf("ReconcileBalance failed: %v", err)
	}
}

func TestGetBalance_NoRow(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	balance, err := service.GetBalance(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("Expected balance 0 for unknown user, got %d", balance)
	}
}

func TestCountLedgerEntries(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "count@example.com")

	for i := 0; i < 3; i++ {
		if _, err := service.AppendLedgerEntry(ctx, store.LedgerEntryParams{
			UserId: user.Id,
			Type:   models.CreditTypePurchase,
			Amount: 10,
		}); err != nil {
			t.Fatalf("AppendLedgerEntry failed: %v", err)
		}
	}

	count, err := service.CountLedgerEntries(ctx, user.Id)
	if err != nil {
		t.Fatalf("CountLedgerEntries failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 entries, got %d", count)
	}
}
