package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

// Register creates an account, grants the signup bonus and returns the user
// with a session token.
func (s *Service) Register(ctx context.Context, email, displayName, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("a valid email is required")
	}
	if displayName == "" {
		return nil, "", fmt.Errorf("display name is required")
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.store.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	if s.pricing.SignupBonus > 0 {
		_, err := s.store.AppendLedgerEntry(ctx, store.LedgerEntryParams{
			UserId:      user.Id,
			Type:        models.CreditTypeSignupBonus,
			Amount:      s.pricing.SignupBonus,
			Description: "Welcome bonus",
		})
		if err != nil {
			// The account exists; losing the bonus is recoverable by an admin grant.
			zap.L().Error("Failed to grant signup bonus",
				zap.String("user_id", user.Id),
				zap.Error(err))
		}
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	zap.L().Info("User registered",
		zap.String("user_id", user.Id),
		zap.String("email", user.Email))
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !s.auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	zap.L().Info("User logged in", zap.String("user_id", user.Id))
	return user, token, nil
}

// ProfileSummary is the account overview shown on the profile page.
type ProfileSummary struct {
	User             *models.User `json:"user"`
	Balance          int64        `json:"balance"`
	TransactionCount int64        `json:"transaction_count"`
	Tier             string       `json:"tier"`
	DiscountPercent  int64        `json:"discount_percent"`
	ActiveAds        int          `json:"active_ads"`
}

// GetProfile assembles the user's profile with balance and loyalty tier.
func (s *Service) GetProfile(ctx context.Context, userId string) (*ProfileSummary, error) {
	user, err := s.store.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}

	balance, err := s.store.GetBalance(ctx, userId)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountLedgerEntries(ctx, userId)
	if err != nil {
		return nil, err
	}

	ads, err := s.store.ListUserAds(ctx, userId)
	if err != nil {
		return nil, err
	}
	active := 0
	for _, ad := range ads {
		if ad.Status == models.AdStatusApproved {
			active++
		}
	}

	tier := s.pricing.TierFor(count)
	return &ProfileSummary{
		User:             user,
		Balance:          balance,
		TransactionCount: count,
		Tier:             tier.Name,
		DiscountPercent:  tier.DiscountPercent,
		ActiveAds:        active,
	}, nil
}

// PublicProfile is what other users see on a seller's page.
type PublicProfile struct {
	Id          string                 `json:"id"`
	DisplayName string                 `json:"display_name"`
	IsVerified  bool                   `json:"is_verified"`
	MemberSince string                 `json:"member_since"`
	Ads         []models.Advertisement `json:"ads"`
}

// GetPublicProfile returns a seller's display profile with their approved ads.
func (s *Service) GetPublicProfile(ctx context.Context, userId string) (*PublicProfile, error) {
	user, err := s.store.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}

	ads, err := s.store.ListUserAds(ctx, userId)
	if err != nil {
		return nil, err
	}
	approved := make([]models.Advertisement, 0, len(ads))
	for _, ad := range ads {
		if ad.Status == models.AdStatusApproved {
			approved = append(approved, ad)
		}
	}

	return &PublicProfile{
		Id:          user.Id,
		DisplayName: user.DisplayName,
		IsVerified:  user.IsVerified,
		MemberSince: user.CreatedAt.Format("2006-01-02"),
		Ads:         approved,
	}, nil
}

// RequestVerification submits a seller verification request for review.
func (s *Service) RequestVerification(ctx context.Context, userId, documentUrl, selfieUrl string) (*models.VerificationRequest, error) {
	if documentUrl == "" || selfieUrl == "" {
		return nil, fmt.Errorf("document and selfie are both required")
	}
	request, err := s.store.CreateVerificationRequest(ctx, userId, documentUrl, selfieUrl)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Verification requested",
		zap.String("user_id", userId),
		zap.String("request_id", request.Id))
	return request, nil
}
