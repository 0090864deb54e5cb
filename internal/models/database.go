package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdStatus is the moderation/lifecycle state of an advertisement.
type AdStatus string

const (
	AdStatusPendingApproval AdStatus = "pending_approval"
	AdStatusApproved        AdStatus = "approved"
	AdStatusRejected        AdStatus = "rejected"
	AdStatusSold            AdStatus = "sold"
	AdStatusPaused          AdStatus = "paused"
)

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	Id           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Advertisement is a classified listing.
type Advertisement struct {
	Id                string          `db:"id" json:"id"`
	UserId            string          `db:"user_id" json:"user_id"`
	Title             string          `db:"title" json:"title"`
	Description       string          `db:"description" json:"description"`
	Price             decimal.Decimal `db:"price" json:"price"`
	Images            []string        `db:"images" json:"images"`
	Status            AdStatus        `db:"status" json:"status"`
	FlagReason        string          `db:"flag_reason" json:"flag_reason,omitempty"`
	ViewCount         int64           `db:"view_count" json:"view_count"`
	BoostedUntil      *time.Time      `db:"boosted_until" json:"boosted_until,omitempty"`
	ExpiresAt         *time.Time      `db:"expires_at" json:"expires_at,omitempty"`
	LastRenewedAt     *time.Time      `db:"last_renewed_at" json:"last_renewed_at,omitempty"`
	PreExpiryNotified bool            `db:"pre_expiry_notified" json:"-"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Boosted reports whether the ad is currently boosted.
func (a *Advertisement) Boosted(now time.Time) bool {
	return a.BoostedUntil != nil && a.BoostedUntil.After(now)
}

// Credit transaction types. Amounts are signed whole credits.
const (
	CreditTypePurchase    = "purchase"
	CreditTypeBoostAd     = "boost_ad"
	CreditTypeSignupBonus = "signup_bonus"
	CreditTypeAdminAdd    = "admin_add"
	CreditTypePromoCode   = "promo_code"
)

// CreditBalance is the current-state row for a user's credits (hot data).
// Version backs the optimistic locking on every ledger write.
type CreditBalance struct {
	Id                string    `db:"id"`
	UserId            string    `db:"user_id"`
	Balance           int64     `db:"balance"`
	LastTransactionId string    `db:"last_transaction_id"`
	Version           int64     `db:"version"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// CreditTransaction is an immutable ledger entry (cold data).
type CreditTransaction struct {
	Id            string    `db:"id" json:"id"`
	UserId        string    `db:"user_id" json:"user_id"`
	Type          string    `db:"transaction_type" json:"type"`
	Amount        int64     `db:"amount" json:"amount"`
	BalanceBefore int64     `db:"balance_before" json:"balance_before"`
	BalanceAfter  int64     `db:"balance_after" json:"balance_after"`
	Description   string    `db:"description" json:"description,omitempty"`
	RelatedAdId   string    `db:"related_ad_id" json:"related_ad_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// VerificationStatus is the state of a seller verification request.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// VerificationRequest is a user's identity-document submission.
type VerificationRequest struct {
	Id              string             `db:"id" json:"id"`
	UserId          string             `db:"user_id" json:"user_id"`
	Status          VerificationStatus `db:"status" json:"status"`
	DocumentUrl     string             `db:"document_url" json:"document_url"`
	SelfieUrl       string             `db:"selfie_url" json:"selfie_url"`
	RejectionReason string             `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ReviewedBy      string             `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time         `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
}

// ReportStatus is the state of a user report against an ad.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report is a user complaint about an advertisement.
type Report struct {
	Id         string       `db:"id" json:"id"`
	AdId       string       `db:"ad_id" json:"ad_id"`
	ReporterId string       `db:"reporter_id" json:"reporter_id"`
	Reason     string       `db:"reason" json:"reason"`
	Status     ReportStatus `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// Notification types emitted by state transitions.
const (
	NotifAdApproved           = "ad_approved"
	NotifAdRejected           = "ad_rejected"
	NotifAdExpiring           = "ad_expiring"
	NotifVerificationApproved = "verification_approved"
	NotifVerificationRejected = "verification_rejected"
	NotifCreditsGranted       = "credits_granted"
)

// Notification is a per-user message delivered over the realtime channel
// with a polling fallback.
type Notification struct {
	Id        string    `db:"id" json:"id"`
	UserId    string    `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	Link      string    `db:"link" json:"link,omitempty"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PromoCode grants a fixed credit amount, limited by total uses and expiry.
// A code can be redeemed at most once per user.
type PromoCode struct {
	Code      string     `db:"code" json:"code"`
	Amount    int64      `db:"amount" json:"amount"`
	MaxUses   int64      `db:"max_uses" json:"max_uses"`
	UsedCount int64      `db:"used_count" json:"used_count"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}
