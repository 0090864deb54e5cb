package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"trokazz-server/internal/common"
	"trokazz-server/internal/config"
	"trokazz-server/internal/models"

	"go.uber.org/zap"
)

func main() {
	codeFlag := flag.String("code", "", "Promo code to create (required, stored uppercase)")
	amountFlag := flag.Int64("amount", 0, "Credits granted per redemption (required)")
	maxUsesFlag := flag.Int64("max-uses", 100, "Total number of redemptions allowed")
	expiresFlag := flag.String("expires", "", "Expiry date, YYYY-MM-DD (optional, never expires if empty)")
	flag.Parse()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	code := strings.ToUpper(strings.TrimSpace(*codeFlag))
	if code == "" {
		logger.Fatal("A promo code is required")
	}
	if *amountFlag <= 0 {
		logger.Fatal("Amount must be positive", zap.Int64("amount", *amountFlag))
	}
	if *maxUsesFlag <= 0 {
		logger.Fatal("Max uses must be positive", zap.Int64("max_uses", *maxUsesFlag))
	}

	var expiresAt *time.Time
	if *expiresFlag != "" {
		parsed, err := time.Parse("2006-01-02", *expiresFlag)
		if err != nil {
			logger.Fatal("Invalid expiry date", zap.String("expires", *expiresFlag), zap.Error(err))
		}
		expiresAt = &parsed
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

	err = dbService.CreatePromoCode(ctx, models.PromoCode{
		Code:      code,
		Amount:    *amountFlag,
		MaxUses:   *maxUsesFlag,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		logger.Fatal("Failed to create promo code", zap.Error(err))
	}

	logger.Info("Promo code created",
		zap.String("code", code),
		zap.Int64("amount", *amountFlag),
		zap.Int64("max_uses", *maxUsesFlag))

	expiry := "never"
	if expiresAt != nil {
		expiry = expiresAt.Format("2006-01-02")
	}
	fmt.Printf("\n✓ Promo code %s created: %d credits, %d uses, expires %s\n\n",
		code, *amountFlag, *maxUsesFlag, expiry)
}
