package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func scanVerification(row rowScanner) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	var reviewedAt sql.NullTime
	err := row.Scan(&req.Id, &req.UserId, &req.Status, &req.DocumentUrl, &req.SelfieUrl,
		&req.RejectionReason, &req.ReviewedBy, &reviewedAt, &req.CreatedAt)
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		req.ReviewedAt = &reviewedAt.Time
	}
	return &req, nil
}

// CreateVerificationRequest submits identity documents for review. A user may
// have at most one pending request at a time.
func (s *Service) CreateVerificationRequest(ctx context.Context, userId, documentUrl, selfieUrl string) (*models.VerificationRequest, error) {
	if documentUrl == "" || selfieUrl == "" {
		return nil, fmt.Errorf("both document and selfie are required: %w", store.ErrEmptyReason)
	}

	var existing string
	err := s.db.QueryRowContext(ctx, queryHasPendingVerification, userId).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("pending request %s exists: %w", existing, store.ErrDuplicate)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check pending verification: %w", err)
	}

	requestId := uuid.New().String()
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, queryInsertVerification,
		requestId, userId, documentUrl, selfieUrl, now); err != nil {
		return nil, fmt.Errorf("failed to insert verification request: %w", err)
	}

	zap.L().Info("Verification request submitted",
		zap.String("request_id", requestId),
		zap.String("user_id", userId))
	return s.GetVerificationRequest(ctx, requestId)
}

func (s *Service) GetVerificationRequest(ctx context.Context, requestId string) (*models.VerificationRequest, error) {
	req, err := scanVerification(s.db.QueryRowContext(ctx, queryGetVerification, requestId))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("verification request %s: %w", requestId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification request: %w", err)
	}
	return req, nil
}

// ReviewVerification resolves a pending request. Approval flips the user's
// verified flag in the same database transaction; rejection requires a reason
// and never touches the flag. The pending-status guard in the UPDATE closes
// the race between two admins reviewing the same request.
func (s *Service) ReviewVerification(ctx context.Context, params store.ReviewVerificationParams) (*models.VerificationRequest, error) {
	if !params.Approve && params.RejectionReason == "" {
		return nil, fmt.Errorf("rejection needs a reason: %w", store.ErrEmptyReason)
	}

	req, err := s.GetVerificationRequest(ctx, params.RequestId)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status := models.VerificationRejected
	reason := params.RejectionReason
	if params.Approve {
		status = models.VerificationApproved
		reason = ""
	}

	result, err := tx.ExecContext(ctx, queryReviewVerification,
		string(status), reason, params.ReviewedBy, time.Now().UTC(), params.RequestId)
	if err != nil {
		return nil, fmt.Errorf("failed to review verification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("request %s is no longer pending: %w", params.RequestId, store.ErrConcurrentModification)
	}

	if params.Approve {
		if _, err := tx.ExecContext(ctx, querySetUserVerified, true, req.UserId); err != nil {
			return nil, fmt.Errorf("failed to mark user verified: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Verification request reviewed",
		zap.String("request_id", params.RequestId),
		zap.String("user_id", req.UserId),
		zap.String("status", string(status)),
		zap.String("reviewed_by", params.ReviewedBy))

	return s.GetVerificationRequest(ctx, params.RequestId)
}
