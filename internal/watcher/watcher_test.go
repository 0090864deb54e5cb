package watcher

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"trokazz-server/internal/database"
	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"github.com/shopspring/decimal"
)

type recordingNotifier struct {
	calls []string
}

func (r *recordingNotifier) Notify(_ context.Context, userId, notifType, _, _ string) {
	r.calls = append(r.calls, userId+":"+notifType)
}

func setupWatcherTest(t *testing.T) *database.Service {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func createApprovedAd(t *testing.T, db *database.Service, userId string) *models.Advertisement {
	t.Helper()
	ctx := context.Background()

	ad, err := db.CreateAd(ctx, store.CreateAdParams{
		UserId:      userId,
		Title:       "Old sofa",
		Description: "Comfy",
		Price:       decimal.NewFromInt(40),
	})
	if err != nil {
		t.Fatalf("failed to create ad: %v", err)
	}
	err = db.TransitionAd(ctx, store.TransitionAdParams{
		AdId: ad.Id,
		From: models.AdStatusPendingApproval,
		To:   models.AdStatusApproved,
	})
	if err != nil {
		t.Fatalf("failed to approve ad: %v", err)
	}
	return ad
}

func TestSweepWarnsOnce(t *testing.T) {
	db := setupWatcherTest(t)
	ctx := context.Background()

	user, err := db.CreateUser(ctx, store.CreateUserParams{
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	createApprovedAd(t, db, user.Id)

	notifier := &recordingNotifier{}
	// Initial ad lifetime is 30 days; a 31-day window makes it a candidate.
	w, err := NewExpiryWatcher(db, notifier, models.WatcherConfig{
		PollingInterval: time.Minute,
		WarningWindow:   31 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	w.sweep(ctx)
	if len(notifier.calls) != 1 {
		t.Fatalf("expected one warning, got %v", notifier.calls)
	}
	if notifier.calls[0] != user.Id+":"+models.NotifAdExpiring {
		t.Errorf("unexpected notification: %s", notifier.calls[0])
	}

	// A second sweep must not warn again.
	w.sweep(ctx)
	if len(notifier.calls) != 1 {
		t.Fatalf("expected warning to stay idempotent, got %v", notifier.calls)
	}
}

func TestSweepIgnoresAdsOutsideWindow(t *testing.T) {
	db := setupWatcherTest(t)
	ctx := context.Background()

	user, err := db.CreateUser(ctx, store.CreateUserParams{
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	createApprovedAd(t, db, user.Id)

	notifier := &recordingNotifier{}
	w, err := NewExpiryWatcher(db, notifier, models.WatcherConfig{
		PollingInterval: time.Minute,
		WarningWindow:   7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	w.sweep(ctx)
	if len(notifier.calls) != 0 {
		t.Fatalf("expected no warnings for a fresh ad, got %v", notifier.calls)
	}
}

func TestStartStop(t *testing.T) {
	db := setupWatcherTest(t)

	w, err := NewExpiryWatcher(db, &recordingNotifier{}, models.WatcherConfig{
		PollingInterval: 50 * time.Millisecond,
		WarningWindow:   time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	w.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	w.Stop()
}

func TestNewExpiryWatcherValidation(t *testing.T) {
	db := setupWatcherTest(t)

	if _, err := NewExpiryWatcher(db, &recordingNotifier{}, models.WatcherConfig{
		PollingInterval: 0,
		WarningWindow:   time.Hour,
	}); err == nil {
		t.Error("expected error for zero polling interval")
	}
	if _, err := NewExpiryWatcher(db, &recordingNotifier{}, models.WatcherConfig{
		PollingInterval: time.Minute,
		WarningWindow:   0,
	}); err == nil {
		t.Error("expected error for zero warning window")
	}
}
