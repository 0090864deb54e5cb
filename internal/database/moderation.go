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

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"trokazz-server/internal/models"

	"go.uber.org/zap"
)

// queueBatchSize bounds how many pending ads and pending reports a single
// queue fetch exposes. This bounds a triage batch rather than exposing the
// whole backlog per fetch; verification requests are rare enough to stay
// uncapped.
const queueBatchSize = 3

// FetchModerationQueue merges pending ads, pending verification requests and
// pending reports into one worklist ordered by created_at ascending (oldest
// first). Submitter names are resolved in a single batched lookup.
func (s *Service) FetchModerationQueue(ctx context.Context) ([]models.ModerationQueueItem, error) {
	var items []models.ModerationQueueItem
	var userIds []string

	ads, err := s.pendingAds(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ads {
		items = append(items, models.ModerationQueueItem{
			Kind:      models.ModerationItemAd,
			CreatedAt: ads[i].CreatedAt,
			Ad:        &ads[i],
		})
		userIds = append(userIds, ads[i].UserId)
	}

	verifications, err := s.pendingVerifications(ctx)
	if err != nil {
		return nil, err
	}
	for i := range verifications {
		items = append(items, models.ModerationQueueItem{
			Kind:         models.ModerationItemVerification,
			CreatedAt:    verifications[i].CreatedAt,
			Verification: &verifications[i],
		})
		userIds = append(userIds, verifications[i].UserId)
	}

	reports, err := s.pendingReports(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		items = append(items, models.ModerationQueueItem{
			Kind:      models.ModerationItemReport,
			CreatedAt: reports[i].CreatedAt,
			Report:    &reports[i],
		})
		userIds = append(userIds, reports[i].ReporterId)
	}

	names, err := s.GetDisplayNames(ctx, userIds)
	if err != nil {
		return nil, err
	}
	for i := range items {
		switch items[i].Kind {
		case models.ModerationItemAd:
			items[i].SubmitterName = names[items[i].Ad.UserId]
		case models.ModerationItemVerification:
			items[i].SubmitterName = names[items[i].Verification.UserId]
		case models.ModerationItemReport:
			items[i].SubmitterName = names[items[i].Report.ReporterId]
		}
	}

	// Stable sort: concatenation order is preserved for equal timestamps.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	zap.L().Debug("Moderation queue fetched",
		zap.Int("ads", len(ads)),
		zap.Int("verifications", len(verifications)),
		zap.Int("reports", len(reports)))
	return items, nil
}

func (s *Service) pendingAds(ctx context.Context) ([]models.Advertisement, error) {
	rows, err := s.db.QueryContext(ctx, queryPendingAdsForQueue, queueBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending ads: %w", err)
	}
	return collectAds(rows)
}

func (s *Service) pendingVerifications(ctx context.Context) ([]models.VerificationRequest, error) {
	rows, err := s.db.QueryContext(ctx, queryPendingVerificationsForQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending verifications: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var requests []models.VerificationRequest
	for rows.Next() {
		req, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating verification rows: %w", err)
	}
	return requests, nil
}

func (s *Service) pendingReports(ctx context.Context) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, queryPendingReportsForQueue, queueBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending reports: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var reports []models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}
	return reports, nil
}
