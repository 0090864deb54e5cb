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

package api

import (
	"context"
	"fmt"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"go.uber.org/zap"
)

// GetModerationQueue returns the unified admin worklist, oldest first.
func (s *Service) GetModerationQueue(ctx context.Context) ([]models.ModerationQueueItem, error) {
	return s.store.FetchModerationQueue(ctx)
}

// ResolveParams is an admin decision on one moderation queue item.
type ResolveParams struct {
	Kind    models.ModerationItemKind
	ItemId  string
	Action  models.ModerationAction
	Reason  string
	AdminId string
}

// ResolveModerationItem applies an admin decision and notifies the affected
// user. Each branch is idempotence-guarded by the store's pending checks.
func (s *Service) ResolveModerationItem(ctx context.Context, params ResolveParams) error {
	var err error
	switch params.Kind {
	case models.ModerationItemAd:
		err = s.resolveAd(ctx, params)
	case models.ModerationItemVerification:
		err = s.resolveVerification(ctx, params)
	case models.ModerationItemReport:
		err = s.resolveReport(ctx, params)
	default:
		return fmt.Errorf("unknown moderation item kind %q", params.Kind)
	}

	if err != nil {
		return err
	}
	zap.L().Info("Moderation item resolved",
		zap.String("kind", string(params.Kind)),
		zap.String("item_id", params.ItemId),
		zap.String("action", string(params.Action)),
		zap.String("admin_id", params.AdminId))
	return nil
}

func (s *Service) resolveAd(ctx context.Context, params ResolveParams) error {
	ad, err := s.store.GetAd(ctx, params.ItemId)
	if err != nil {
		return err
	}

	switch params.Action {
	case models.ModerationApprove:
		err = s.store.TransitionAd(ctx, store.TransitionAdParams{
			AdId: ad.Id,
			From: models.AdStatusPendingApproval,
			To:   models.AdStatusApproved,
		})
		if err != nil {
			return err
		}
		s.Notify(ctx, ad.UserId, models.NotifAdApproved,
			fmt.Sprintf("Your ad %q is now live", ad.Title), "/ads/"+ad.Id)
		return nil

	case models.ModerationReject:
		err = s.store.TransitionAd(ctx, store.TransitionAdParams{
			AdId:       ad.Id,
			From:       models.AdStatusPendingApproval,
			To:         models.AdStatusRejected,
			FlagReason: params.Reason,
		})
		if err != nil {
			return err
		}
		s.Notify(ctx, ad.UserId, models.NotifAdRejected,
			fmt.Sprintf("Your ad %q was rejected: %s", ad.Title, params.Reason), "/my-ads")
		return nil

	default:
		return fmt.Errorf("action %q does not apply to ads", params.Action)
	}
}

func (s *Service) resolveVerification(ctx context.Context, params ResolveParams) error {
	approve := params.Action == models.ModerationApprove
	if !approve && params.Action != models.ModerationReject {
		return fmt.Errorf("action %q does not apply to verification requests", params.Action)
	}

	request, err := s.store.ReviewVerification(ctx, store.ReviewVerificationParams{
		RequestId:       params.ItemId,
		Approve:         approve,
		RejectionReason: params.Reason,
		ReviewedBy:      params.AdminId,
	})
	if err != nil {
		return err
	}

	if approve {
		s.Notify(ctx, request.UserId, models.NotifVerificationApproved,
			"Your seller verification was approved", "/profile")
	} else {
		s.Notify(ctx, request.UserId, models.NotifVerificationRejected,
			fmt.Sprintf("Your seller verification was rejected: %s", params.Reason), "/profile")
	}
	return nil
}

// resolveReport handles accept (take the reported ad down) and dismiss.
func (s *Service) resolveReport(ctx context.Context, params ResolveParams) error {
	report, err := s.store.GetReport(ctx, params.ItemId)
	if err != nil {
		return err
	}

	switch params.Action {
	case models.ModerationAccept:
		if err := s.store.ResolveReport(ctx, report.Id, models.ReportResolved); err != nil {
			return err
		}
		return s.takeDownReportedAd(ctx, report)

	case models.ModerationDismiss:
		return s.store.ResolveReport(ctx, report.Id, models.ReportDismissed)

	default:
		return fmt.Errorf("action %q does not apply to reports", params.Action)
	}
}

func (s *Service) takeDownReportedAd(ctx context.Context, report *models.Report) error {
	ad, err := s.store.GetAd(ctx, report.AdId)
	if err != nil {
		return err
	}

	// Sold or already-rejected ads have nothing left to take down. Paused
	// ads still go down, or the owner could pause to dodge the penalty and
	// relist later.
	if ad.Status == models.AdStatusSold || ad.Status == models.AdStatusRejected {
		return nil
	}

	err = s.store.TransitionAd(ctx, store.TransitionAdParams{
		AdId:       ad.Id,
		From:       ad.Status,
		To:         models.AdStatusRejected,
		FlagReason: report.Reason,
	})
	if err != nil {
		return err
	}

	s.Notify(ctx, ad.UserId, models.NotifAdRejected,
		fmt.Sprintf("Your ad %q was removed after a report: %s", ad.Title, report.Reason), "/my-ads")
	return nil
}
