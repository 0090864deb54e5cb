package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"github.com/shopspring/decimal"
)

func createTestAd(t *testing.T, service *Service, userId string) *models.Advertisement {
	t.Helper()
	ad, err := service.CreateAd(context.Background(), store.CreateAdParams{
		UserId:      userId,
		Title:       "Mountain bike",
		Description: "Barely used",
		Price:       decimal.NewFromInt(150),
		Images:      []string{"ads/bike-1.jpg"},
	})
	if err != nil {
		t.Fatalf("Failed to create test ad: %v", err)
	}
	return ad
}

func setAdExpiry(t *testing.T, service *Service, adId string, expiresAt time.Time) {
	t.Helper()
	if _, err := service.db.Exec("UPDATE ads SET expires_at = ? WHERE id = ?", expiresAt, adId); err != nil {
		t.Fatalf("Failed to set ad expiry: %v", err)
	}
}

func TestCreateAd_InitialState(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user := createTestUser(t, service, "owner@example.com")
	ad := createTestAd(t, service, user.Id)

	if ad.Status != models.AdStatusPendingApproval {
		t.Errorf("Expected status pending_approval, got %s", ad.Status)
	}
	if ad.ExpiresAt == nil {
		t.Fatal("Expected initial expiry to be set")
	}
	if ad.BoostedUntil != nil {
		t.Errorf("Expected no boost on a new ad")
	}
	if len(ad.Images) != 1 || ad.Images[0] != "ads/bike-1.jpg" {
		t.Errorf("Images round-trip failed: %v", ad.Images)
	}
}

func TestTransitionAd_ApproveAndReject(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "owner@example.com")

	ad := createTestAd(t, service, user.Id)
	err := service.TransitionAd(ctx, store.TransitionAdParams{
		AdId: ad.Id,
		From: models.AdStatusPendingApproval,
		To:   models.AdStatusApproved,
	})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	got, err := service.GetAd(ctx, ad.Id)
	if err != nil {
		t.Fatalf("GetAd failed: %v", err)
	}
	if got.Status != models.AdStatusApproved {
		t.Errorf("Expected approved, got %s", got.Status)
	}

	// Rejection requires a reason.
	other := createTestAd(t, service, user.Id)
	err = service.TransitionAd(ctx, store.TransitionAdParams{
		AdId: other.Id,
		From: models.AdStatusPendingApproval,
		To:   models.AdStatusRejected,
	})
	if !errors.Is(err, store.ErrEmptyReason) {
		t.Fatalf("Expected ErrEmptyReason, got: %v", err)
	}

	err = service.TransitionAd(ctx, store.TransitionAdParams{
		AdId:       other.Id,
		From:       models.AdStatusPendingApproval,
		To:         models.AdStatusRejected,
		FlagReason: "spam",
	})
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	got, err = service.GetAd(ctx, other.Id)
	if err != nil {
		t.Fatalf("GetAd failed: %v", err)
	}
	if got.Status != models.AdStatusRejected {
		t.Errorf("Expected rejected, got %s", got.Status)
	}
	if got.FlagReason != "spam" {
		t.Errorf("Expected flag_reason spam, got %q", got.FlagReason)
	}
}

func TestTransitionAd_StaleStatus(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "owner@example.com")
	ad := createTestAd(t, service, user.Id)

	if err := service.TransitionAd(ctx, store.TransitionAdParams{
		AdId: ad.Id, From: models.AdStatusPendingApproval, To: models.AdStatusApproved,
	}); err != nil {
		t.Fatalf("First approve failed: %v", err)
	}

	// A second admin acting on the stale pending snapshot loses the race.
	err := service.TransitionAd(ctx, store.TransitionAdParams{
		AdId: ad.Id, From: models.AdStatusPendingApproval, To: models.AdStatusApproved,
	})
	if !errors.Is(err, store.ErrConcurrentModification) {
		t.Fatalf("Expected ErrConcurrentModification, got: %v", err)
	}
}

func TestTransitionAd_InvalidTransition(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	user := createTestUser(t, service, "owner@example.com")
	ad := createTestAd(t, service, user.Id)

	// Sold is terminal; nothing transitions out of pending into paused either.
	err := service.TransitionAd(context.Background(), store.TransitionAdParams{
		AdId: ad.Id, From: models.AdStatusPendingApproval, To: models.AdStatusPaused,
	})
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got: %v", err)
	}
}

func TestTransitionAd_PauseRelistSold(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "owner@example.com")
	ad := createTestAd(t, service, user.Id)

	steps := []struct {
		from, to models.AdStatus
	}{
		{models.AdStatusPendingApproval, models.AdStatusApproved},
		{models.AdStatusApproved, models.AdStatusPaused},
		{models.AdStatusPaused, models.AdStatusApproved},
		{models.AdStatusApproved, models.AdStatusSold},
	}
	for _, step := range steps {
		if err := service.TransitionAd(ctx, store.TransitionAdParams{
			AdId: ad.Id, From: step.from, To: step.to,
		}); err != nil {
			t.Fatalf("Transition %s -> %s failed: %v", step.from, step.to, err)
		}
	}

	got, err := service.GetAd(ctx, ad.Id)
	if err != nil {
		t.Fatalf("GetAd failed: %v", err)
	}
	if got.Status != models.AdStatusSold {
		t.Errorf("Expected sold, got %s", got.Status)
	}
}

func TestTransitionAd_RejectPaused(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "owner@example.com")
	ad := createTestAd(t, service, user.Id)

	steps := []struct {
		from, to models.AdStatus
	}{
		{models.AdStatusPendingApproval, models.AdStatusApproved},
		{models.AdStatusApproved, models.AdStatusPaused},
	}
	for _, step := range steps {
		if err := service.TransitionAd(ctx, store.TransitionAdParams{
			AdId: ad.Id, From: step.from, To: step.to,
		}); err != nil {
			t.Fatalf("Transition %s -> %s failed: %v", step.from, step.to, err)
		}
	}

	// Moderation can still take a paused ad down.
	if err := service.TransitionAd(ctx, store.TransitionAdParams{
		AdId: ad.Id, From: models.AdStatusPaused, To: models.AdStatusRejected,
		FlagReason: "prohibited item",
	}); err != nil {
		t.Fatalf("Reject of paused ad failed: %v", err)
	}

	got, err := service.GetAd(ctx, ad.Id)
	if err != nil {
		t.Fatalf("GetAd failed: %v", err)
	}
	if got.Status != models.AdStatusRejected {
		t.Errorf("Expected rejected, got %s", got.Status)
	}
}

func TestBoostAd(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "owner@example.com")
	ad := createTestAd(t, service, user.Id)

	if _, err := service.AppendLedgerEntry(ctx, store.LedgerEntryParams{
		UserId: user.Id, Type: models.CreditTypePurchase, Amount: 100,
	}); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	until := time.Now().UTC().Add(7 * 24 * time.Hour)
	entry, err := service.BoostAd(ctx, store.BoostAdParams{
		AdId: ad.Id, UserId: user.Id, Cost: 20, BoostedUntil: until,
	})
	if err != nil {
		t.Fatalf("BoostAd failed: %v", err)
	}

	if entry.Amount != -20 {
		t.Errorf("Expected ledger amount -20, got %d", entry.Amount)
	}
	if entry.RelatedAdId != ad.Id {
		t.Errorf("Expected transaction to reference ad %s, got %s", ad.Id, entry.RelatedAdId)
	}

	balance, err := service.GetBalance(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 80 {
		t.Errorf("Expected balance 80 after boost, got %d", balance)
	}

	got, err := service.GetAd(ctx, ad.Id)
	if err != nil {
		t.Fatalf("GetAd failed: %v", err)
	}
	if !got.Boosted(time.Now().UTC()) {
		t.Error("Expected ad to be boosted")
	}
}

func TestBoostAd_AlreadyBoosted(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "owner@example.com")
	ad := createTestAd(t, service, user.Id)

	if _, err := service.AppendLedgerEntry(ctx, store.LedgerEntryParams{
		UserId: user.Id, Type: models.CreditTypePurchase, Amount: 100,
	}); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	until := time.Now().UTC().Add(7 * 24 * time.Hour)
	if _, err := service.BoostAd(ctx, store.BoostAdParams{
		AdId: ad.Id, UserId: user.Id, Cost: 20, BoostedUntil: until,
	}); err != nil {
		t.Fatalf("First boost failed: %v", err)
	}

	// Re-boosting before expiry must fail without spending.
	_, err := service.BoostAd(ctx, store.BoostAdParams{
		AdId: ad.Id, UserId: user.Id, Cost: 20, BoostedUntil: until.Add(24 * time.Hour),
	})
	if !errors.Is(err, store.ErrAlreadyBoosted) {
		t.Fatalf("Expected ErrAlreadyBoosted, got: %v", err)
	}

	balance, _ := service.GetBalance(ctx, user.Id)
	if balance != 80 {
		t.Errorf("Expected balance still 80, got %d", balance)
	}

	// The failed re-boost must not have extended the window.
	got, _ := service.GetAd(ctx, ad.Id)
	if got.BoostedUntil == nil || got.BoostedUntil.After(until.Add(time.Minute)) {
		t.Errorf("boosted_until mutated by failed re-boost: %v", got.BoostedUntil)
	}
}

func TestBoostAd_InsufficientCredits(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "owner@example.com")
	ad := createTestAd(t, service, user.Id)

	until := time.Now().UTC().Add(7 * 24 * time.Hour)
	_, err := service.BoostAd(ctx, store.BoostAdParams{
		AdId: ad.Id, UserId: user.Id, Cost: 20, BoostedUntil: until,
	})
	if !errors.Is(err, store.ErrInsufficientCredits) {
		t.Fatalf("Expected ErrInsufficientCredits, got: %v", err)
	}

	// The failed spend must not leave the boost behind.
	got, err := service.GetAd(ctx, ad.Id)
	if err != nil {
		t.Fatalf("GetAd failed: %v", err)
	}
	if got.BoostedUntil != nil {
		t.Errorf("Expected boosted_until unchanged, got %v", got.BoostedUntil)
	}
}

func TestBoostAd_NotOwner(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, service, "owner@example.com")
	stranger := createTestUser(t, service, "stranger@example.com")
	ad := createTestAd(t, service, owner.Id)

	_, err := service.BoostAd(ctx, store.BoostAdParams{
		AdId: ad.Id, UserId: stranger.Id, Cost: 20,
		BoostedUntil: time.Now().UTC().Add(24 * time.Hour),
	})
	if !errors.Is(err, store.ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied, got: %v", err)
	}
}

func TestRenewAd_Window(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "owner@example.com")
	window := 7 * 24 * time.Hour
	extension := 30 * 24 * time.Hour

	// 10 days out: outside the window, renewal rejected.
	far := createTestAd(t, service, user.Id)
	setAdExpiry(t, service, far.Id, time.Now().UTC().Add(10*24*time.Hour))
	_, err := service.RenewAd(ctx, far.Id, user.Id, window, extension)
	if !errors.Is(err, store.ErrRenewalNotDue) {
		t.Fatalf("Expected ErrRenewalNotDue, got: %v", err)
	}

	// 3 days out: inside the window, renewal succeeds.
	near := createTestAd(t, service, user.Id)
	setAdExpiry(t, service, near.Id, time.Now().UTC().Add(3*24*time.Hour))
	renewed, err := service.RenewAd(ctx, near.Id, user.Id, window, extension)
	if err != nil {
		t.Fatalf("RenewAd failed: %v", err)
	}
	if renewed.ExpiresAt == nil || renewed.ExpiresAt.Before(time.Now().UTC().Add(29*24*time.Hour)) {
		t.Errorf("Expected new expiry ~30 days out, got %v", renewed.ExpiresAt)
	}
	if renewed.LastRenewedAt == nil {
		t.Error("Expected last_renewed_at to be set")
	}

	// Already past: renewal succeeds too.
	stale := createTestAd(t, service, user.Id)
	setAdExpiry(t, service, stale.Id, time.Now().UTC().Add(-24*time.Hour))
	if _, err := service.RenewAd(ctx, stale.Id, user.Id, window, extension); err != nil {
		t.Fatalf("RenewAd of expired ad failed: %v", err)
	}
}

func TestIncrementViewCount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "owner@example.com")
	ad := createTestAd(t, service, user.Id)

	for i := 0; i < 3; i++ {
		if err := service.IncrementViewCount(ctx, ad.Id); err != nil {
			t.Fatalf("IncrementViewCount failed: %v", err)
		}
	}

	got, err := service.GetAd(ctx, ad.Id)
	if err != nil {
		t.Fatalf("GetAd failed: %v", err)
	}
	if got.ViewCount != 3 {
		t.Errorf("Expected view count 3, got %d", got.ViewCount)
	}
}

func TestListAdsExpiringWithin(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "owner@example.com")

	soon := createTestAd(t, service, user.Id)
	if err := service.TransitionAd(ctx, store.TransitionAdParams{
		AdId: soon.Id, From: models.AdStatusPendingApproval, To: models.AdStatusApproved,
	}); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	setAdExpiry(t, service, soon.Id, time.Now().UTC().Add(24*time.Hour))

	ads, err := service.ListAdsExpiringWithin(ctx, 72*time.Hour)
	if err != nil {
		t.Fatalf("ListAdsExpiringWithin failed: %v", err)
	}
	if len(ads) != 1 || ads[0].Id != soon.Id {
		t.Fatalf("Expected the expiring ad, got %d ads", len(ads))
	}

	if err := service.MarkPreExpiryNotified(ctx, soon.Id); err != nil {
		t.Fatalf("MarkPreExpiryNotified failed: %v", err)
	}
	ads, err = service.ListAdsExpiringWithin(ctx, 72*time.Hour)
	if err != nil {
		t.Fatalf("ListAdsExpiringWithin failed: %v", err)
	}
	if len(ads) != 0 {
		t.Errorf("Expected no ads after notification, got %d", len(ads))
	}
}
