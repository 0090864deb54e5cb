package api

import (
	"context"
	"fmt"
	"time"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"go.uber.org/zap"
)

func (s *Service) CreateAd(ctx context.Context, params store.CreateAdParams) (*models.Advertisement, error) {
	ad, err := s.store.CreateAd(ctx, params)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Ad submitted for review",
		zap.String("ad_id", ad.Id),
		zap.String("user_id", ad.UserId))
	return ad, nil
}

// GetAd returns an ad and, for non-owner views of an approved ad, counts the
// view. Only approved ads are visible to anyone but the owner.
func (s *Service) GetAd(ctx context.Context, adId, viewerId string) (*models.Advertisement, error) {
	ad, err := s.store.GetAd(ctx, adId)
	if err != nil {
		return nil, err
	}

	if ad.UserId != viewerId {
		if ad.Status != models.AdStatusApproved && ad.Status != models.AdStatusSold {
			return nil, store.ErrNotFound
		}
		if err := s.store.IncrementViewCount(ctx, adId); err != nil {
			zap.L().Warn("Failed to count view", zap.String("ad_id", adId), zap.Error(err))
		} else {
			ad.ViewCount++
		}
	}
	return ad, nil
}

func (s *Service) ListAds(ctx context.Context, filter store.AdFilter) ([]models.Advertisement, error) {
	return s.store.ListApprovedAds(ctx, filter)
}

func (s *Service) ListMyAds(ctx context.Context, userId string) ([]models.Advertisement, error) {
	return s.store.ListUserAds(ctx, userId)
}

func (s *Service) UpdateAd(ctx context.Context, params store.UpdateAdParams) (*models.Advertisement, error) {
	return s.store.UpdateAd(ctx, params)
}

// BoostResult reports the outcome of a boost purchase.
type BoostResult struct {
	Ad         *models.Advertisement     `json:"ad"`
	Cost       int64                     `json:"cost"`
	Tier       string                    `json:"tier"`
	NewBalance int64                     `json:"new_balance"`
	Entry      *models.CreditTransaction `json:"entry,omitempty"`
}

// BoostAd charges the owner's tier-discounted boost price and opens the boost
// window. The debit and the window update commit atomically.
func (s *Service) BoostAd(ctx context.Context, adId, userId string) (*BoostResult, error) {
	ad, err := s.store.GetAd(ctx, adId)
	if err != nil {
		return nil, err
	}
	if ad.UserId != userId {
		return nil, store.ErrPermissionDenied
	}
	// Sold and rejected are terminal; anything else can buy visibility now
	// or ahead of approval.
	if ad.Status == models.AdStatusSold || ad.Status == models.AdStatusRejected {
		return nil, fmt.Errorf("cannot boost a %s ad: %w", ad.Status, store.ErrInvalidTransition)
	}

	count, err := s.store.CountLedgerEntries(ctx, userId)
	if err != nil {
		return nil, err
	}
	tier := s.pricing.TierFor(count)
	cost := s.pricing.EffectiveBoostCost(tier.DiscountPercent)
	until := time.Now().Add(time.Duration(s.pricing.Boost.DurationDays) * 24 * time.Hour)

	entry, err := s.store.BoostAd(ctx, store.BoostAdParams{
		AdId:         adId,
		UserId:       userId,
		Cost:         cost,
		BoostedUntil: until,
	})
	if err != nil {
		return nil, err
	}

	boosted, err := s.store.GetAd(ctx, adId)
	if err != nil {
		return nil, err
	}
	balance, err := s.store.GetBalance(ctx, userId)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Ad boosted",
		zap.String("ad_id", adId),
		zap.String("user_id", userId),
		zap.Int64("cost", cost),
		zap.String("tier", tier.Name),
		zap.Time("boosted_until", until))

	return &BoostResult{
		Ad:         boosted,
		Cost:       cost,
		Tier:       tier.Name,
		NewBalance: balance,
		Entry:      entry,
	}, nil
}

// RenewAd extends the ad's expiry when it falls inside the renewal window.
func (s *Service) RenewAd(ctx context.Context, adId, userId string) (*models.Advertisement, error) {
	window := time.Duration(s.pricing.Renewal.WindowDays) * 24 * time.Hour
	extension := time.Duration(s.pricing.Renewal.ExtensionDays) * 24 * time.Hour

	ad, err := s.store.RenewAd(ctx, adId, userId, window, extension)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Ad renewed",
		zap.String("ad_id", adId),
		zap.String("user_id", userId),
		zap.Timep("expires_at", ad.ExpiresAt))
	return ad, nil
}

// PauseAd hides an approved ad from public listings.
func (s *Service) PauseAd(ctx context.Context, adId, userId string) error {
	return s.ownerTransition(ctx, adId, userId, models.AdStatusApproved, models.AdStatusPaused)
}

// RelistAd returns a paused ad to public listings without another review.
func (s *Service) RelistAd(ctx context.Context, adId, userId string) error {
	return s.ownerTransition(ctx, adId, userId, models.AdStatusPaused, models.AdStatusApproved)
}

// MarkSold closes an ad permanently.
func (s *Service) MarkSold(ctx context.Context, adId, userId string) error {
	ad, err := s.store.GetAd(ctx, adId)
	if err != nil {
		return err
	}
	if ad.UserId != userId {
		return store.ErrPermissionDenied
	}
	if ad.Status != models.AdStatusApproved && ad.Status != models.AdStatusPaused {
		return store.ErrInvalidTransition
	}
	return s.store.TransitionAd(ctx, store.TransitionAdParams{
		AdId: adId,
		From: ad.Status,
		To:   models.AdStatusSold,
	})
}

func (s *Service) ownerTransition(ctx context.Context, adId, userId string, from, to models.AdStatus) error {
	ad, err := s.store.GetAd(ctx, adId)
	if err != nil {
		return err
	}
	if ad.UserId != userId {
		return store.ErrPermissionDenied
	}
	return s.store.TransitionAd(ctx, store.TransitionAdParams{
		AdId: adId,
		From: from,
		To:   to,
	})
}

// ReportAd files a complaint against an ad for moderator review.
func (s *Service) ReportAd(ctx context.Context, adId, reporterId, reason string) (*models.Report, error) {
	report, err := s.store.CreateReport(ctx, adId, reporterId, reason)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Ad reported",
		zap.String("ad_id", adId),
		zap.String("report_id", report.Id))
	return report, nil
}
