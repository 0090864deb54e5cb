package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func scanReport(row rowScanner) (*models.Report, error) {
	var report models.Report
	err := row.Scan(&report.Id, &report.AdId, &report.ReporterId,
		&report.Reason, &report.Status, &report.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Service) CreateReport(ctx context.Context, adId, reporterId, reason string) (*models.Report, error) {
	if reason == "" {
		return nil, fmt.Errorf("report needs a reason: %w", store.ErrEmptyReason)
	}
	// The foreign key would catch this too, but a sentinel error is more
	// useful to the caller than a constraint failure.
	if _, err := s.GetAd(ctx, adId); err != nil {
		return nil, err
	}

	reportId := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, queryInsertReport,
		reportId, adId, reporterId, reason, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}

	zap.L().Info("Report created",
		zap.String("report_id", reportId),
		zap.String("ad_id", adId),
		zap.String("reporter_id", reporterId))
	return s.GetReport(ctx, reportId)
}

func (s *Service) GetReport(ctx context.Context, reportId string) (*models.Report, error) {
	report, err := scanReport(s.db.QueryRowContext(ctx, queryGetReport, reportId))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s: %w", reportId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// ResolveReport closes a pending report. The pending-status guard makes the
// resolution first-writer-wins between concurrent admins.
func (s *Service) ResolveReport(ctx context.Context, reportId string, status models.ReportStatus) error {
	if status != models.ReportResolved && status != models.ReportDismissed {
		return fmt.Errorf("cannot resolve to %s: %w", status, store.ErrInvalidTransition)
	}

	result, err := s.db.ExecContext(ctx, queryResolveReport, string(status), reportId)
	if err != nil {
		return fmt.Errorf("failed to resolve report: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := s.GetReport(ctx, reportId); err != nil {
			return err
		}
		return fmt.Errorf("report %s is no longer pending: %w", reportId, store.ErrConcurrentModification)
	}

	zap.L().Info("Report resolved",
		zap.String("report_id", reportId),
		zap.String("status", string(status)))
	return nil
}
