package models

import "time"

// ModerationItemKind tags the union of item types in the admin queue.
type ModerationItemKind string

const (
	ModerationItemAd           ModerationItemKind = "ad"
	ModerationItemVerification ModerationItemKind = "verification"
	ModerationItemReport       ModerationItemKind = "report"
)

// ModerationQueueItem is one entry in the unified admin worklist. Exactly one
// of Ad, Verification or Report is set, matching Kind. SubmitterName is the
// display name of the ad owner, requester or reporter, resolved in a single
// batched profile lookup.
type ModerationQueueItem struct {
	Kind          ModerationItemKind   `json:"kind"`
	CreatedAt     time.Time            `json:"created_at"`
	SubmitterName string               `json:"submitter_name"`
	Ad            *Advertisement       `json:"ad,omitempty"`
	Verification  *VerificationRequest `json:"verification,omitempty"`
	Report        *Report              `json:"report,omitempty"`
}

// ModerationAction is an admin's decision on a queue item.
type ModerationAction string

const (
	// Ads and verification requests.
	ModerationApprove ModerationAction = "approve"
	ModerationReject  ModerationAction = "reject"
	// Reports.
	ModerationAccept  ModerationAction = "accept"
	ModerationDismiss ModerationAction = "dismiss"
)
