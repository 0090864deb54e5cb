package store

import (
	"context"
	"errors"
	"time"

	"trokazz-server/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("not found")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInsufficientCredits    = errors.New("insufficient credits")
	ErrAlreadyBoosted         = errors.New("ad is already boosted")
	ErrRenewalNotDue          = errors.New("ad is not due for renewal")
	ErrEmptyReason            = errors.New("a non-empty reason is required")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrDuplicate              = errors.New("duplicate entry")
)

// CreateUserParams contains the parameters for registering a user.
type CreateUserParams struct {
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
}

// CreateAdParams contains the parameters for creating an advertisement.
// The ad always starts in pending_approval with ExpiresAt set by the store.
type CreateAdParams struct {
	UserId      string
	Title       string
	Description string
	Price       decimal.Decimal
	Images      []string
}

// UpdateAdParams contains the owner-editable fields of an advertisement.
type UpdateAdParams struct {
	AdId        string
	UserId      string
	Title       string
	Description string
	Price       decimal.Decimal
	Images      []string
}

// LedgerEntryParams captures one credit ledger mutation. Amount is signed;
// the balance guard rejects any entry that would take the balance negative.
type LedgerEntryParams struct {
	UserId      string
	Type        string
	Amount      int64
	Description string
	RelatedAdId string
}

// BoostAdParams sets an ad's boost window and debits the owner's credits in
// one atomic unit.
type BoostAdParams struct {
	AdId         string
	UserId       string
	Cost         int64
	BoostedUntil time.Time
}

// TransitionAdParams moves an ad between statuses with a compare-and-swap on
// the expected current status.
type TransitionAdParams struct {
	AdId       string
	From       models.AdStatus
	To         models.AdStatus
	FlagReason string
}

// ReviewVerificationParams resolves a pending verification request.
type ReviewVerificationParams struct {
	RequestId       string
	Approve         bool
	RejectionReason string
	ReviewedBy      string
}

// AdFilter narrows public ad listings.
type AdFilter struct {
	Query  string
	Limit  int
	Offset int
}

// Store defines the contract the SQLite backend satisfies. Kept as an
// interface so another backend remains possible without touching the API
// layer.
type Store interface {
	// --- Users ---
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	GetDisplayNames(ctx context.Context, userIds []string) (map[string]string, error)
	SetUserVerified(ctx context.Context, userId string, verified bool) error

	// --- Credit ledger ---
	AppendLedgerEntry(ctx context.Context, params LedgerEntryParams) (*models.CreditTransaction, error)
	GetBalance(ctx context.Context, userId string) (int64, error)
	GetLedgerHistory(ctx context.Context, userId string, limit, offset int) ([]models.CreditTransaction, error)
	CountLedgerEntries(ctx context.Context, userId string) (int64, error)
	ReconcileBalance(ctx context.Context, userId string) error

	// --- Promo codes ---
	CreatePromoCode(ctx context.Context, promo models.PromoCode) error
	RedeemPromoCode(ctx context.Context, code, userId string) (*models.CreditTransaction, error)

	// --- Advertisements ---
	CreateAd(ctx context.Context, params CreateAdParams) (*models.Advertisement, error)
	GetAd(ctx context.Context, adId string) (*models.Advertisement, error)
	ListApprovedAds(ctx context.Context, filter AdFilter) ([]models.Advertisement, error)
	ListUserAds(ctx context.Context, userId string) ([]models.Advertisement, error)
	UpdateAd(ctx context.Context, params UpdateAdParams) (*models.Advertisement, error)
	TransitionAd(ctx context.Context, params TransitionAdParams) error
	BoostAd(ctx context.Context, params BoostAdParams) (*models.CreditTransaction, error)
	RenewAd(ctx context.Context, adId, userId string, window, extension time.Duration) (*models.Advertisement, error)
	IncrementViewCount(ctx context.Context, adId string) error
	ListAdsExpiringWithin(ctx context.Context, window time.Duration) ([]models.Advertisement, error)
	MarkPreExpiryNotified(ctx context.Context, adId string) error

	// --- Verification requests ---
	CreateVerificationRequest(ctx context.Context, userId, documentUrl, selfieUrl string) (*models.VerificationRequest, error)
	GetVerificationRequest(ctx context.Context, requestId string) (*models.VerificationRequest, error)
	ReviewVerification(ctx context.Context, params ReviewVerificationParams) (*models.VerificationRequest, error)

	// --- Reports ---
	CreateReport(ctx context.Context, adId, reporterId, reason string) (*models.Report, error)
	GetReport(ctx context.Context, reportId string) (*models.Report, error)
	ResolveReport(ctx context.Context, reportId string, status models.ReportStatus) error

	// --- Moderation queue ---
	FetchModerationQueue(ctx context.Context) ([]models.ModerationQueueItem, error)

	// --- Notifications ---
	CreateNotification(ctx context.Context, userId, notifType, message, link string) (*models.Notification, error)
	ListNotifications(ctx context.Context, userId string, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnreadNotifications(ctx context.Context, userId string) (int64, error)
	MarkNotificationRead(ctx context.Context, userId, notificationId string) error
	MarkAllNotificationsRead(ctx context.Context, userId string) error

	// --- Lifecycle ---
	Close()
}
