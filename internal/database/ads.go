package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// New ads are visible for 30 days before they need renewal.
const adInitialLifetime = 30 * 24 * time.Hour

// allowedTransitions is the advertisement state machine. Boost and renewal do
// not appear here because they never change status.
var allowedTransitions = map[models.AdStatus][]models.AdStatus{
	models.AdStatusPendingApproval: {models.AdStatusApproved, models.AdStatusRejected},
	models.AdStatusApproved:        {models.AdStatusPaused, models.AdStatusSold, models.AdStatusRejected},
	models.AdStatusPaused:          {models.AdStatusApproved, models.AdStatusSold, models.AdStatusRejected},
}

func transitionAllowed(from, to models.AdStatus) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAd(row rowScanner) (*models.Advertisement, error) {
	var ad models.Advertisement
	var priceStr, imagesJSON string
	var boostedUntil, expiresAt, lastRenewedAt sql.NullTime

	err := row.Scan(&ad.Id, &ad.UserId, &ad.Title, &ad.Description, &priceStr, &imagesJSON,
		&ad.Status, &ad.FlagReason, &ad.ViewCount, &boostedUntil, &expiresAt, &lastRenewedAt,
		&ad.PreExpiryNotified, &ad.CreatedAt, &ad.UpdatedAt)
	if err != nil {
		return nil, err
	}

	ad.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price '%s': %w", priceStr, err)
	}
	if err := json.Unmarshal([]byte(imagesJSON), &ad.Images); err != nil {
		return nil, fmt.Errorf("failed to parse images: %w", err)
	}
	if boostedUntil.Valid {
		ad.BoostedUntil = &boostedUntil.Time
	}
	if expiresAt.Valid {
		ad.ExpiresAt = &expiresAt.Time
	}
	if lastRenewedAt.Valid {
		ad.LastRenewedAt = &lastRenewedAt.Time
	}
	return &ad, nil
}

func encodeImages(images []string) (string, error) {
	if len(images) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to encode images: %w", err)
	}
	return string(data), nil
}

// CreateAd inserts a new advertisement in pending_approval with the initial
// 30-day lifetime.
func (s *Service) CreateAd(ctx context.Context, params store.CreateAdParams) (*models.Advertisement, error) {
	if params.Title == "" {
		return nil, fmt.Errorf("title is required: %w", store.ErrEmptyReason)
	}
	if params.Price.IsNegative() || params.Price.IsZero() {
		return nil, fmt.Errorf("price must be positive: %w", store.ErrInvalidAmount)
	}
	if len(params.Images) > 5 {
		return nil, fmt.Errorf("at most 5 images allowed: %w", store.ErrInvalidAmount)
	}

	imagesJSON, err := encodeImages(params.Images)
	if err != nil {
		return nil, err
	}

	adId := uuid.New().String()
	now := time.Now().UTC()
	expiresAt := now.Add(adInitialLifetime)

	_, err = s.db.ExecContext(ctx, queryInsertAd,
		adId, params.UserId, params.Title, params.Description, params.Price.String(),
		imagesJSON, string(models.AdStatusPendingApproval), expiresAt, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ad: %w", err)
	}

	zap.L().Info("Ad created",
		zap.String("ad_id", adId),
		zap.String("user_id", params.UserId),
		zap.String("title", params.Title))

	return s.GetAd(ctx, adId)
}

func (s *Service) GetAd(ctx context.Context, adId string) (*models.Advertisement, error) {
	ad, err := scanAd(s.db.QueryRowContext(ctx, queryGetAd, adId))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ad %s: %w", adId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ad: %w", err)
	}
	return ad, nil
}

// ListApprovedAds returns live listings, boosted ads first, newest first
// within each group.
func (s *Service) ListApprovedAds(ctx context.Context, filter store.AdFilter) ([]models.Advertisement, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	like := "%" + filter.Query + "%"
	now := time.Now().UTC()

	rows, err := s.db.QueryContext(ctx, queryListApprovedAds, now, like, like, now, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	return collectAds(rows)
}

func (s *Service) ListUserAds(ctx context.Context, userId string) ([]models.Advertisement, error) {
	rows, err := s.db.QueryContext(ctx, queryListUserAds, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ads: %w", err)
	}
	return collectAds(rows)
}

func collectAds(rows *sql.Rows) ([]models.Advertisement, error) {
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var ads []models.Advertisement
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ad: %w", err)
		}
		ads = append(ads, *ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ad rows: %w", err)
	}
	return ads, nil
}

// UpdateAd applies owner edits. Edits of an approved ad do not reset it to
// pending_approval; status is untouched here.
func (s *Service) UpdateAd(ctx context.Context, params store.UpdateAdParams) (*models.Advertisement, error) {
	if params.Price.IsNegative() || params.Price.IsZero() {
		return nil, fmt.Errorf("price must be positive: %w", store.ErrInvalidAmount)
	}
	if len(params.Images) > 5 {
		return nil, fmt.Errorf("at most 5 images allowed: %w", store.ErrInvalidAmount)
	}
	imagesJSON, err := encodeImages(params.Images)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, queryUpdateAd,
		params.Title, params.Description, params.Price.String(), imagesJSON,
		time.Now().UTC(), params.AdId, params.UserId)
	if err != nil {
		return nil, fmt.Errorf("failed to update ad: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, s.classifyAdMiss(ctx, params.AdId, params.UserId)
	}
	return s.GetAd(ctx, params.AdId)
}

// TransitionAd moves an ad between statuses with a compare-and-swap on the
// expected current status, closing the fetch-then-act race between admins.
func (s *Service) TransitionAd(ctx context.Context, params store.TransitionAdParams) error {
	if !transitionAllowed(params.From, params.To) {
		return fmt.Errorf("%s -> %s: %w", params.From, params.To, store.ErrInvalidTransition)
	}
	if params.To == models.AdStatusRejected && params.FlagReason == "" {
		return fmt.Errorf("rejection needs a reason: %w", store.ErrEmptyReason)
	}

	result, err := s.db.ExecContext(ctx, queryTransitionAd,
		string(params.To), params.FlagReason, time.Now().UTC(), params.AdId, string(params.From))
	if err != nil {
		return fmt.Errorf("failed to transition ad: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := s.GetAd(ctx, params.AdId); err != nil {
			return err
		}
		return fmt.Errorf("ad %s is no longer %s: %w", params.AdId, params.From, store.ErrConcurrentModification)
	}

	zap.L().Info("Ad status transitioned",
		zap.String("ad_id", params.AdId),
		zap.String("from", string(params.From)),
		zap.String("to", string(params.To)))
	return nil
}

// BoostAd sets the boost window and debits the owner's credits as one atomic
// unit. If the spend fails nothing changes, including boosted_until.
func (s *Service) BoostAd(ctx context.Context, params store.BoostAdParams) (*models.CreditTransaction, error) {
	if params.Cost < 0 {
		return nil, store.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, querySetBoost,
		params.BoostedUntil, now, params.AdId, params.UserId, now)
	if err != nil {
		return nil, fmt.Errorf("failed to set boost: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		// Classify through the open transaction; a pool read here would
		// starve on a single-connection pool.
		return nil, classifyBoostMiss(ctx, tx, params.AdId, params.UserId, now)
	}

	// A full-discount boost is free; no ledger entry to write.
	var entry *models.CreditTransaction
	if params.Cost > 0 {
		entry, err = s.appendEntryTx(ctx, tx, store.LedgerEntryParams{
			UserId:      params.UserId,
			Type:        models.CreditTypeBoostAd,
			Amount:      -params.Cost,
			Description: "Ad boost",
			RelatedAdId: params.AdId,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Ad boosted",
		zap.String("ad_id", params.AdId),
		zap.String("user_id", params.UserId),
		zap.Int64("cost", params.Cost),
		zap.Time("boosted_until", params.BoostedUntil))
	return entry, nil
}

// RenewAd extends the ad's lifetime when the current expiry is absent, past,
// or inside the renewal window. Early renewal outside the window is rejected
// to prevent indefinite stacking.
func (s *Service) RenewAd(ctx context.Context, adId, userId string, window, extension time.Duration) (*models.Advertisement, error) {
	now := time.Now().UTC()
	windowEnd := now.Add(window)
	newExpiry := now.Add(extension)

	result, err := s.db.ExecContext(ctx, queryRenewAd,
		newExpiry, now, now, adId, userId, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to renew ad: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		ad, err := s.GetAd(ctx, adId)
		if err != nil {
			return nil, err
		}
		if ad.UserId != userId {
			return nil, fmt.Errorf("ad %s: %w", adId, store.ErrPermissionDenied)
		}
		return nil, fmt.Errorf("expires %s: %w", ad.ExpiresAt.Format(time.RFC3339), store.ErrRenewalNotDue)
	}

	zap.L().Info("Ad renewed",
		zap.String("ad_id", adId),
		zap.Time("expires_at", newExpiry))
	return s.GetAd(ctx, adId)
}

// IncrementViewCount bumps the monotonic view counter.
func (s *Service) IncrementViewCount(ctx context.Context, adId string) error {
	_, err := s.db.ExecContext(ctx, queryIncrementViewCount, adId)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	return nil
}

// ListAdsExpiringWithin returns approved ads expiring inside the window that
// have not yet been warned about.
func (s *Service) ListAdsExpiringWithin(ctx context.Context, window time.Duration) ([]models.Advertisement, error) {
	now := time.Now().UTC()
	rows, err := s.db.QueryContext(ctx, queryListAdsExpiringWithin, now, now.Add(window))
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring ads: %w", err)
	}
	return collectAds(rows)
}

func (s *Service) MarkPreExpiryNotified(ctx context.Context, adId string) error {
	_, err := s.db.ExecContext(ctx, queryMarkPreExpiryNotified, adId)
	if err != nil {
		return fmt.Errorf("failed to mark pre-expiry notified: %w", err)
	}
	return nil
}

// classifyAdMiss turns a zero-row owner update into the right sentinel.
func (s *Service) classifyAdMiss(ctx context.Context, adId, userId string) error {
	ad, err := s.GetAd(ctx, adId)
	if err != nil {
		return err
	}
	if ad.UserId != userId {
		return fmt.Errorf("ad %s: %w", adId, store.ErrPermissionDenied)
	}
	return fmt.Errorf("ad %s: %w", adId, store.ErrConcurrentModification)
}

func classifyBoostMiss(ctx context.Context, tx *sql.Tx, adId, userId string, now time.Time) error {
	ad, err := scanAd(tx.QueryRowContext(ctx, queryGetAd, adId))
	if err == sql.ErrNoRows {
		return fmt.Errorf("ad %s: %w", adId, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get ad: %w", err)
	}
	if ad.UserId != userId {
		return fmt.Errorf("ad %s: %w", adId, store.ErrPermissionDenied)
	}
	if ad.Boosted(now) {
		return fmt.Errorf("boosted until %s: %w", ad.BoostedUntil.Format(time.RFC3339), store.ErrAlreadyBoosted)
	}
	return fmt.Errorf("ad %s: %w", adId, store.ErrConcurrentModification)
}
