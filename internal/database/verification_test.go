package database

import (
	"context"
	"errors"
	"testing"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"
)

func TestReviewVerification_Approve(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "seller@example.com")
	admin := createTestUser(t, service, "admin@example.com")

	req, err := service.CreateVerificationRequest(ctx, user.Id, "docs/id.jpg", "docs/selfie.jpg")
	if err != nil {
		t.Fatalf("CreateVerificationRequest failed: %v", err)
	}

	reviewed, err := service.ReviewVerification(ctx, store.ReviewVerificationParams{
		RequestId:  req.Id,
		Approve:    true,
		ReviewedBy: admin.Id,
	})
	if err != nil {
		t.Fatalf("ReviewVerification failed: %v", err)
	}
	if reviewed.Status != models.VerificationApproved {
		t.Errorf("Expected approved, got %s", reviewed.Status)
	}
	if reviewed.ReviewedAt == nil {
		t.Error("Expected reviewed_at to be set")
	}

	got, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if !got.IsVerified {
		t.Error("Expected user to be verified after approval")
	}
}

func TestReviewVerification_RejectKeepsUnverified(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "seller@example.com")
	admin := createTestUser(t, service, "admin@example.com")

	req, err := service.CreateVerificationRequest(ctx, user.Id, "docs/id.jpg", "docs/selfie.jpg")
	if err != nil {
		t.Fatalf("CreateVerificationRequest failed: %v", err)
	}

	// Rejection needs a reason.
	_, err = service.ReviewVerification(ctx, store.ReviewVerificationParams{
		RequestId:  req.Id,
		Approve:    false,
		ReviewedBy: admin.Id,
	})
	if !errors.Is(err, store.ErrEmptyReason) {
		t.Fatalf("Expected ErrEmptyReason, got: %v", err)
	}

	reviewed, err := service.ReviewVerification(ctx, store.ReviewVerificationParams{
		RequestId:       req.Id,
		Approve:         false,
		RejectionReason: "document unreadable",
		ReviewedBy:      admin.Id,
	})
	if err != nil {
		t.Fatalf("ReviewVerification failed: %v", err)
	}
	if reviewed.Status != models.VerificationRejected {
		t.Errorf("Expected rejected, got %s", reviewed.Status)
	}
	if reviewed.RejectionReason != "document unreadable" {
		t.Errorf("Expected rejection reason, got %q", reviewed.RejectionReason)
	}

	got, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if got.IsVerified {
		t.Error("Rejection must not set is_verified")
	}
}

func TestReviewVerification_AlreadyReviewed(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "seller@example.com")
	admin := createTestUser(t, service, "admin@example.com")

	req, err := service.CreateVerificationRequest(ctx, user.Id, "docs/id.jpg", "docs/selfie.jpg")
	if err != nil {
		t.Fatalf("CreateVerificationRequest failed: %v", err)
	}

	if _, err := service.ReviewVerification(ctx, store.ReviewVerificationParams{
		RequestId: req.Id, Approve: true, ReviewedBy: admin.Id,
	}); err != nil {
		t.Fatalf("First review failed: %v", err)
	}

	_, err = service.ReviewVerification(ctx, store.ReviewVerificationParams{
		RequestId: req.Id, Approve: true, ReviewedBy: admin.Id,
	})
	if !errors.Is(err, store.ErrConcurrentModification) {
		t.Fatalf("Expected ErrConcurrentModification, got: %v", err)
	}
}

func TestCreateVerificationRequest_OnePendingPerUser(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, service, "seller@example.com")

	if _, err := service.CreateVerificationRequest(ctx, user.Id, "docs/id.jpg", "docs/selfie.jpg"); err != nil {
		t.Fatalf("First request failed: %v", err)
	}
	_, err := service.CreateVerificationRequest(ctx, user.Id, "docs/id2.jpg", "docs/selfie2.jpg")
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate, got: %v", err)
	}
}
