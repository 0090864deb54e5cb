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

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (id, email, display_name, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetUserById = `
		SELECT id, email, display_name, password_hash, is_verified, is_admin, created_at
		FROM users
		WHERE id = ?`

	queryGetUserByEmail = `
		SELECT id, email, display_name, password_hash, is_verified, is_admin, created_at
		FROM users
		WHERE email = ?`

	queryGetUsers = `
		SELECT id, email, display_name, password_hash, is_verified, is_admin, created_at
		FROM users
		ORDER BY created_at`

	querySetUserVerified = `
		UPDATE users SET is_verified = ? WHERE id = ?`

	queryPromoteToAdmin = `
		UPDATE users SET is_admin = 1 WHERE email = ?`

	// Credit balance queries
	queryGetCreditBalance = `
		SELECT balance
		FROM credit_balances
		WHERE user_id = ?`

	queryGetCreditBalanceForUpdate = `
		SELECT id, balance, version
		FROM credit_balances
		WHERE user_id = ?`

	queryInsertCreditBalance = `
		INSERT INTO credit_balances (id, user_id, balance, version)
		VALUES (?, ?, ?, ?)`

	queryUpdateCreditBalance = `
		UPDATE credit_balances
		SET balance = ?, last_transaction_id = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND version = ?`

	// Credit transaction queries
	queryInsertCreditTransaction = `
		INSERT INTO credit_transactions (
			id, user_id, transaction_type, amount, balance_before, balance_after,
			description, related_ad_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetLedgerHistory = `
		SELECT id, user_id, transaction_type, amount, balance_before, balance_after,
		       description, related_ad_id, created_at
		FROM credit_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	queryCountLedgerEntries = `
		SELECT COUNT(*) FROM credit_transactions WHERE user_id = ?`

	queryReconcileBalance = `
		SELECT COALESCE(SUM(amount), 0) as calculated_balance
		FROM credit_transactions
		WHERE user_id = ?`

	// Advertisement queries
	adColumns = `id, user_id, title, description, price, images, status, flag_reason,
		view_count, boosted_until, expires_at, last_renewed_at, pre_expiry_notified,
		created_at, updated_at`

	queryInsertAd = `
		INSERT INTO ads (id, user_id, title, description, price, images, status, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetAd = `
		SELECT ` + adColumns + ` FROM ads WHERE id = ?`

	queryListApprovedAds = `
		SELECT ` + adColumns + `
		FROM ads
		WHERE status = 'approved'
		  AND (expires_at IS NULL OR expires_at > ?)
		  AND (title LIKE ? OR description LIKE ?)
		ORDER BY (boosted_until IS NOT NULL AND boosted_until > ?) DESC, created_at DESC
		LIMIT ? OFFSET ?`

	queryListUserAds = `
		SELECT ` + adColumns + ` FROM ads WHERE user_id = ? ORDER BY created_at DESC`

	queryUpdateAd = `
		UPDATE ads
		SET title = ?, description = ?, price = ?, images = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	queryTransitionAd = `
		UPDATE ads
		SET status = ?, flag_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?`

	querySetBoost = `
		UPDATE ads
		SET boosted_until = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
		  AND (boosted_until IS NULL OR boosted_until <= ?)`

	queryRenewAd = `
		UPDATE ads
		SET expires_at = ?, last_renewed_at = ?, pre_expiry_notified = 0, updated_at = ?
		WHERE id = ? AND user_id = ?
		  AND (expires_at IS NULL OR expires_at <= ?)`

	queryIncrementViewCount = `
		UPDATE ads SET view_count = view_count + 1 WHERE id = ?`

	queryListAdsExpiringWithin = `
		SELECT ` + adColumns + `
		FROM ads
		WHERE status = 'approved'
		  AND pre_expiry_notified = 0
		  AND expires_at IS NOT NULL
		  AND expires_at > ?
		  AND expires_at <= ?
		ORDER BY expires_at`

	queryMarkPreExpiryNotified = `
		UPDATE ads SET pre_expiry_notified = 1 WHERE id = ?`

	queryPendingAdsForQueue = `
		SELECT ` + adColumns + `
		FROM ads
		WHERE status = 'pending_approval'
		ORDER BY created_at DESC
		LIMIT ?`

	// Verification queries
	verificationColumns = `id, user_id, status, document_url, selfie_url,
		rejection_reason, reviewed_by, reviewed_at, created_at`

	queryInsertVerification = `
		INSERT INTO verification_requests (id, user_id, status, document_url, selfie_url, created_at)
		VALUES (?, ?, 'pending', ?, ?, ?)`

	queryHasPendingVerification = `
		SELECT id FROM verification_requests WHERE user_id = ? AND status = 'pending' LIMIT 1`

	queryGetVerification = `
		SELECT ` + verificationColumns + ` FROM verification_requests WHERE id = ?`

	queryReviewVerification = `
		UPDATE verification_requests
		SET status = ?, rejection_reason = ?, reviewed_by = ?, reviewed_at = ?
		WHERE id = ? AND status = 'pending'`

	queryPendingVerificationsForQueue = `
		SELECT ` + verificationColumns + `
		FROM verification_requests
		WHERE status = 'pending'
		ORDER BY created_at`

	// Report queries
	reportColumns = `id, ad_id, reporter_id, reason, status, created_at`

	queryInsertReport = `
		INSERT INTO reports (id, ad_id, reporter_id, reason, status, created_at)
		VALUES (?, ?, ?, ?, 'pending', ?)`

	queryGetReport = `
		SELECT ` + reportColumns + ` FROM reports WHERE id = ?`

	queryResolveReport = `
		UPDATE reports SET status = ? WHERE id = ? AND status = 'pending'`

	queryPendingReportsForQueue = `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE status = 'pending'
		ORDER BY created_at DESC
		LIMIT ?`

	// Notification queries
	queryInsertNotification = `
		INSERT INTO notifications (id, user_id, type, message, link, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`

	queryListNotifications = `
		SELECT id, user_id, type, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = ? AND (? = 0 OR is_read = 0)
		ORDER BY created_at DESC
		LIMIT ?`

	queryCountUnreadNotifications = `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`

	queryMarkNotificationRead = `
		UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`

	queryMarkAllNotificationsRead = `
		UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`

	// Promo code queries
	queryInsertPromoCode = `
		INSERT INTO promo_codes (code, amount, max_uses, used_count, expires_at)
		VALUES (?, ?, ?, 0, ?)`

	queryGetPromoCode = `
		SELECT code, amount, max_uses, used_count, expires_at
		FROM promo_codes
		WHERE code = ?`

	queryConsumePromoCode = `
		UPDATE promo_codes
		SET used_count = used_count + 1
		WHERE code = ? AND used_count < max_uses`

	queryInsertPromoRedemption = `
		INSERT INTO promo_redemptions (code, user_id, created_at) VALUES (?, ?, ?)`

	queryHasPromoRedemption = `
		SELECT 1 FROM promo_redemptions WHERE code = ? AND user_id = ? LIMIT 1`
)
