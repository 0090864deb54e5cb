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

package main

import (
	"context"
	"flag"
	"fmt"
	"regexp"

	"trokazz-server/internal/common"
	"trokazz-server/internal/config"
	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateArgs(email string, amount int64) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

func main() {
	emailFlag := flag.String("email", "", "Email of the user to credit (required)")
	amountFlag := flag.Int64("amount", 0, "Number of credits to grant (required)")
	descFlag := flag.String("description", "Credits granted by support", "Ledger entry description")
	flag.Parse()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if err := validateArgs(*emailFlag, *amountFlag); err != nil {
		logger.Fatal("Invalid arguments", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	user, err := dbService.GetUserByEmail(ctx, *emailFlag)
	if err != nil {
		logger.Fatal("User lookup failed", zap.String("email", *emailFlag), zap.Error(err))
	}

	entry, err := dbService.AppendLedgerEntry(ctx, store.LedgerEntryParams{
		UserId:      user.Id,
		Type:        models.CreditTypeAdminAdd,
		Amount:      *amountFlag,
		Description: *descFlag,
	})
	if err != nil {
		logger.Fatal("Failed to grant credits", zap.Error(err))
	}

	logger.Info("Credits granted",
		zap.String("user_id", user.Id),
		zap.String("email", user.Email),
		zap.Int64("amount", entry.Amount),
		zap.Int64("new_balance", entry.BalanceAfter))

	fmt.Printf("\n✓ Granted %d credits to %s (%s)\n", entry.Amount, user.DisplayName, user.Email)
	fmt.Printf("  Balance: %d -> %d\n", entry.BalanceBefore, entry.BalanceAfter)
	fmt.Printf("  Transaction: %s\n\n", entry.Id)
}
