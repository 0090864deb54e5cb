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

	"trokazz-server/internal/common"
	"trokazz-server/internal/config"
	"trokazz-server/internal/database"
	"trokazz-server/internal/models"

	"go.uber.org/zap"
)

const recentEntryLimit = 5

type balanceStats struct {
	totalUsers       int
	usersWithCredits int
	totalCredits     int64
}

func formatTransactionId(txId string) string {
	if txId == "" {
		return "none"
	}
	if len(txId) > 8 {
		return txId[:8] + "..."
	}
	return txId
}

func printEntry(entry models.CreditTransaction, isLast bool) {
	symbol := common.BoxPrefix(isLast)

	fmt.Printf("%s %-13s %+6d -> %6d (tx: %s, at: %s)\n",
		symbol,
		entry.Type,
		entry.Amount,
		entry.BalanceAfter,
		formatTransactionId(entry.Id),
		entry.CreatedAt.Format("2006-01-02 15:04:05"))
}

func printEntries(entries []models.CreditTransaction) {
	for i, entry := range entries {
		printEntry(entry, i == len(entries)-1)
	}
}

func printUserHeader(user common.UserInfo, balance, count int64) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.DisplayName, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Balance: %d credits over %d transactions\n", balance, count)
	common.PrintBoxSeparator(78)
}

func processUser(ctx context.Context, user common.UserInfo, dbService *database.Service) (int64, error) {
	balance, err := dbService.GetBalance(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	count, err := dbService.CountLedgerEntries(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	entries, err := dbService.GetLedgerHistory(ctx, user.Id, recentEntryLimit, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to get ledger history: %w", err)
	}

	printUserHeader(user, balance, count)
	printEntries(entries)

	return balance, nil
}

func processUsersAndGenerateReport(ctx context.Context, users []common.UserInfo, dbService *database.Service, logger *zap.Logger) balanceStats {
	stats := balanceStats{}

	for _, user := range users {
		stats.totalUsers++

		balance, err := processUser(ctx, user, dbService)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("display_name", user.DisplayName),
				zap.Error(err))
			continue
		}

		if balance > 0 {
			stats.usersWithCredits++
			stats.totalCredits += balance
		}
	}

	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	flag.Parse()

	logger.Info("Starting credit balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	users, err := common.InitializeUsers(ctx, dbService, *emailFlag, logger)
	if err != nil {
		logger.Fatal("Failed to load users", zap.Error(err))
	}

	common.PrintHeader("CREDIT BALANCES", common.DefaultWidth)
	stats := processUsersAndGenerateReport(ctx, users, dbService, logger)
	common.PrintFooter(fmt.Sprintf("Users: %d | With credits: %d | Total credits: %d",
		stats.totalUsers, stats.usersWithCredits, stats.totalCredits), common.DefaultWidth)
}
