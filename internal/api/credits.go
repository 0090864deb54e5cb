package api

import (
	"context"
	"fmt"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"go.uber.org/zap"
)

// GrantCredits is the admin top-up path. Amount must be positive.
func (s *Service) GrantCredits(ctx context.Context, userId string, amount int64, description string) (*models.CreditTransaction, error) {
	if amount <= 0 {
		return nil, store.ErrInvalidAmount
	}
	if description == "" {
		description = "Credits granted by support"
	}

	entry, err := s.store.AppendLedgerEntry(ctx, store.LedgerEntryParams{
		UserId:      userId,
		Type:        models.CreditTypeAdminAdd,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	s.Notify(ctx, userId, models.NotifCreditsGranted,
		fmt.Sprintf("%d credits were added to your account", amount), "/credits")

	zap.L().Info("Credits granted",
		zap.String("user_id", userId),
		zap.Int64("amount", amount),
		zap.Int64("new_balance", entry.BalanceAfter))
	return entry, nil
}

// PurchaseCredits records a completed credit pack purchase.
func (s *Service) PurchaseCredits(ctx context.Context, userId string, amount int64, reference string) (*models.CreditTransaction, error) {
	if amount <= 0 {
		return nil, store.ErrInvalidAmount
	}

	entry, err := s.store.AppendLedgerEntry(ctx, store.LedgerEntryParams{
		UserId:      userId,
		Type:        models.CreditTypePurchase,
		Amount:      amount,
		Description: fmt.Sprintf("Credit pack purchase %s", reference),
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Credits purchased",
		zap.String("user_id", userId),
		zap.Int64("amount", amount),
		zap.String("reference", reference))
	return entry, nil
}

// SpendCredits debits the user's balance. The storage layer enforces the
// non-negative balance guard atomically with the ledger append.
func (s *Service) SpendCredits(ctx context.Context, userId string, amount int64, creditType, relatedAdId string) (*models.CreditTransaction, error) {
	if amount <= 0 {
		return nil, store.ErrInvalidAmount
	}

	entry, err := s.store.AppendLedgerEntry(ctx, store.LedgerEntryParams{
		UserId:      userId,
		Type:        creditType,
		Amount:      -amount,
		RelatedAdId: relatedAdId,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Credits spent",
		zap.String("user_id", userId),
		zap.String("type", creditType),
		zap.Int64("amount", amount),
		zap.Int64("new_balance", entry.BalanceAfter))
	return entry, nil
}

func (s *Service) GetBalance(ctx context.Context, userId string) (int64, error) {
	return s.store.GetBalance(ctx, userId)
}

func (s *Service) GetLedgerHistory(ctx context.Context, userId string, limit, offset int) ([]models.CreditTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.GetLedgerHistory(ctx, userId, limit, offset)
}

// RedeemPromoCode grants the code's credits once per user.
func (s *Service) RedeemPromoCode(ctx context.Context, userId, code string) (*models.CreditTransaction, error) {
	entry, err := s.store.RedeemPromoCode(ctx, code, userId)
	if err != nil {
		return nil, err
	}

	s.Notify(ctx, userId, models.NotifCreditsGranted,
		fmt.Sprintf("Promo code applied: %d credits added", entry.Amount), "/credits")

	zap.L().Info("Promo code redeemed",
		zap.String("user_id", userId),
		zap.String("code", code),
		zap.Int64("amount", entry.Amount))
	return entry, nil
}
