package database

import (
	"context"
	"errors"
	"testing"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"
)

func TestRedeemPromoCode(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "promo@example.com")

	if err := service.CreatePromoCode(ctx, models.PromoCode{
		Code: "WELCOME", Amount: 15, MaxUses: 2,
	}); err != nil {
		t.Fatalf("CreatePromoCode failed: %v", err)
	}

	entry, err := service.RedeemPromoCode(ctx, "WELCOME", user.Id)
	if err != nil {
		t.Fatalf("RedeemPromoCode failed: %v", err)
	}
	if entry.Amount != 15 {
		t.Errorf("Expected grant of 15, got %d", entry.Amount)
	}
	if entry.Type != models.CreditTypePromoCode {
		t.Errorf("Expected promo_code type, got %s", entry.Type)
	}

	balance, _ := service.GetBalance(ctx, user.Id)
	if balance != 15 {
		t.Errorf("Expected balance 15, got %d", balance)
	}
}

func TestRedeemPromoCode_OncePerUser(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "promo@example.com")

	if err := service.CreatePromoCode(ctx, models.PromoCode{
		Code: "ONCE", Amount: 10, MaxUses: 10,
	}); err != nil {
		t.Fatalf("CreatePromoCode failed: %v", err)
	}

	if _, err := service.RedeemPromoCode(ctx, "ONCE", user.Id); err != nil {
		t.Fatalf("First redemption failed: %v", err)
	}
	_, err := service.RedeemPromoCode(ctx, "ONCE", user.Id)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate, got: %v", err)
	}
}

func TestRedeemPromoCode_Exhausted(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	first := createTestUser(t, service, "first@example.com")
	second := createTestUser(t, service, "second@example.com")

	if err := service.CreatePromoCode(ctx, models.PromoCode{
		Code: "LAST", Amount: 10, MaxUses: 1,
	}); err != nil {
		t.Fatalf("CreatePromoCode failed: %v", err)
	}

	if _, err := service.RedeemPromoCode(ctx, "LAST", first.Id); err != nil {
		t.Fatalf("First redemption failed: %v", err)
	}
	_, err := service.RedeemPromoCode(ctx, "LAST", second.Id)
	if err == nil {
		t.Fatal("Expected error for exhausted code, got nil")
	}

	balance, _ := service.GetBalance(ctx, second.Id)
	if balance != 0 {
		t.Errorf("Exhausted code must not grant credits, balance %d", balance)
	}
}

func TestRedeemPromoCode_Unknown(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user := createTestUser(t, service, "promo@example.com")
	_, err := service.RedeemPromoCode(context.Background(), "NOPE", user.Id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got: %v", err)
	}
}
