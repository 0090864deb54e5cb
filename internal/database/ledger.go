/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

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

// AppendLedgerEntry atomically updates the user's balance and records the
// transaction. The guard that keeps balances non-negative lives here, not in
// callers: any entry that would overdraw fails with ErrInsufficientCredits
// and leaves both tables untouched.
func (s *Service) AppendLedgerEntry(ctx context.Context, params store.LedgerEntryParams) (*models.CreditTransaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry, err := s.appendEntryTx(ctx, tx, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entry, nil
}

// appendEntryTx performs the balance mutation and transaction append within
// an existing database transaction so compound operations (boost, promo
// redemption) stay all-or-nothing.
func (s *Service) appendEntryTx(ctx context.Context, tx *sql.Tx, params store.LedgerEntryParams) (*models.CreditTransaction, error) {
	if params.Amount == 0 {
		return nil, store.ErrInvalidAmount
	}

	zap.L().Debug("Processing ledger entry",
		zap.String("user_id", params.UserId),
		zap.String("type", params.Type),
		zap.Int64("amount", params.Amount))

	// Get current balance row (version backs the CAS below)
	var accountId string
	var currentBalance, version int64

	err := tx.QueryRowContext(ctx, queryGetCreditBalanceForUpdate, params.UserId).
		Scan(&accountId, &currentBalance, &version)
	if err == sql.ErrNoRows {
		accountId = uuid.New().String()
		currentBalance = 0
		version = 1
		if _, err := tx.ExecContext(ctx, queryInsertCreditBalance, accountId, params.UserId, 0, 1); err != nil {
			return nil, fmt.Errorf("failed to create balance row: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get current balance: %w", err)
	}

	newBalance := currentBalance + params.Amount
	if newBalance < 0 {
		zap.L().Info("Ledger entry rejected: would overdraw",
			zap.String("user_id", params.UserId),
			zap.Int64("balance", currentBalance),
			zap.Int64("amount", params.Amount))
		return nil, fmt.Errorf("balance %d, need %d: %w", currentBalance, -params.Amount, store.ErrInsufficientCredits)
	}

	transactionId := uuid.New().String()
	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx, queryInsertCreditTransaction,
		transactionId, params.UserId, params.Type, params.Amount,
		currentBalance, newBalance, params.Description, params.RelatedAdId, now); err != nil {
		return nil, fmt.Errorf("failed to insert credit transaction: %w", err)
	}

	// Update balance with optimistic locking
	result, err := tx.ExecContext(ctx, queryUpdateCreditBalance,
		newBalance, transactionId, params.UserId, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	zap.L().Info("Ledger entry processed",
		zap.String("transaction_id", transactionId),
		zap.String("user_id", params.UserId),
		zap.String("type", params.Type),
		zap.Int64("old_balance", currentBalance),
		zap.Int64("new_balance", newBalance))

	return &models.CreditTransaction{
		Id:            transactionId,
		UserId:        params.UserId,
		Type:          params.Type,
		Amount:        params.Amount,
		BalanceBefore: currentBalance,
		BalanceAfter:  newBalance,
		Description:   params.Description,
		RelatedAdId:   params.RelatedAdId,
		CreatedAt:     now,
	}, nil
}

// GetBalance returns the user's current credit balance (O(1) lookup).
// A missing balance row means zero.
func (s *Service) GetBalance(ctx context.Context, userId string) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, queryGetCreditBalance, userId).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// GetLedgerHistory returns paginated credit transactions, newest first.
func (s *Service) GetLedgerHistory(ctx context.Context, userId string, limit, offset int) ([]models.CreditTransaction, error) {
	rows, err := s.db.QueryContext(ctx, queryGetLedgerHistory, userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.CreditTransaction
	for rows.Next() {
		var entry models.CreditTransaction
		if err := rows.Scan(&entry.Id, &entry.UserId, &entry.Type, &entry.Amount,
			&entry.BalanceBefore, &entry.BalanceAfter,
			&entry.Description, &entry.RelatedAdId, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credit transaction: %w", err)
		}
		transactions = append(transactions, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

// CountLedgerEntries returns the user's total transaction count, used for the
// level tier lookup.
func (s *Service) CountLedgerEntries(ctx context.Context, userId string) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, queryCountLedgerEntries, userId).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return count, nil
}

// ReconcileBalance verifies that the balance row matches the sum of all
// transactions for the user.
func (s *Service) ReconcileBalance(ctx context.Context, userId string) error {
	currentBalance, err := s.GetBalance(ctx, userId)
	if err != nil {
		return fmt.Errorf("failed to get current balance: %w", err)
	}

	var calculatedBalance int64
	if err := s.db.QueryRowContext(ctx, queryReconcileBalance, userId).Scan(&calculatedBalance); err != nil {
		return fmt.Errorf("failed to calculate balance from transactions: %w", err)
	}

	if currentBalance != calculatedBalance {
		zap.L().Error("Balance reconciliation failed",
			zap.String("user_id", userId),
			zap.Int64("current_balance", currentBalance),
			zap.Int64("calculated_balance", calculatedBalance))
		return fmt.Errorf("balance mismatch: current=%d, calculated=%d", currentBalance, calculatedBalance)
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("user_id", userId),
		zap.Int64("balance", currentBalance))
	return nil
}
