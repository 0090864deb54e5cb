package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"go.uber.org/zap"
)

func (s *Service) CreatePromoCode(ctx context.Context, promo models.PromoCode) error {
	if promo.Code == "" {
		return fmt.Errorf("promo code cannot be empty: %w", store.ErrEmptyReason)
	}
	if promo.Amount <= 0 || promo.MaxUses <= 0 {
		return store.ErrInvalidAmount
	}

	var expiresAt any
	if promo.ExpiresAt != nil {
		expiresAt = *promo.ExpiresAt
	}
	if _, err := s.db.ExecContext(ctx, queryInsertPromoCode,
		promo.Code, promo.Amount, promo.MaxUses, expiresAt); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("code %s: %w", promo.Code, store.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert promo code: %w", err)
	}
	return nil
}

// RedeemPromoCode consumes one use of the code and grants its credits in a
// single database transaction. The guarded used_count increment makes the
// redemption atomic under concurrent attempts on the last use.
func (s *Service) RedeemPromoCode(ctx context.Context, code, userId string) (*models.CreditTransaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var promo models.PromoCode
	var expiresAt sql.NullTime
	err = tx.QueryRowContext(ctx, queryGetPromoCode, code).
		Scan(&promo.Code, &promo.Amount, &promo.MaxUses, &promo.UsedCount, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("promo code %s: %w", code, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	if expiresAt.Valid && expiresAt.Time.Before(time.Now().UTC()) {
		return nil, fmt.Errorf("promo code %s expired: %w", code, store.ErrNotFound)
	}

	var already int
	err = tx.QueryRowContext(ctx, queryHasPromoRedemption, code, userId).Scan(&already)
	if err == nil {
		return nil, fmt.Errorf("promo code %s already redeemed: %w", code, store.ErrDuplicate)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check promo redemption: %w", err)
	}

	result, err := tx.ExecContext(ctx, queryConsumePromoCode, code)
	if err != nil {
		return nil, fmt.Errorf("failed to consume promo code: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("promo code %s exhausted: %w", code, store.ErrInsufficientCredits)
	}

	if _, err := tx.ExecContext(ctx, queryInsertPromoRedemption, code, userId, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to record promo redemption: %w", err)
	}

	entry, err := s.appendEntryTx(ctx, tx, store.LedgerEntryParams{
		UserId:      userId,
		Type:        models.CreditTypePromoCode,
		Amount:      promo.Amount,
		Description: fmt.Sprintf("Promo code %s", code),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Promo code redeemed",
		zap.String("code", code),
		zap.String("user_id", userId),
		zap.Int64("amount", promo.Amount))
	return entry, nil
}
