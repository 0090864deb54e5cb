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

func (s *Service) CreateNotification(ctx context.Context, userId, notifType, message, link string) (*models.Notification, error) {
	notificationId := uuid.New().String()
	now := time.Now().UTC()

	if _, err := s.db.ExecContext(ctx, queryInsertNotification,
		notificationId, userId, notifType, message, link, now); err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	zap.L().Debug("Notification created",
		zap.String("notification_id", notificationId),
		zap.String("user_id", userId),
		zap.String("type", notifType))

	return &models.Notification{
		Id:        notificationId,
		UserId:    userId,
		Type:      notifType,
		Message:   message,
		Link:      link,
		IsRead:    false,
		CreatedAt: now,
	}, nil
}

func (s *Service) ListNotifications(ctx context.Context, userId string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	unreadFlag := 0
	if unreadOnly {
		unreadFlag = 1
	}

	rows, err := s.db.QueryContext(ctx, queryListNotifications, userId, unreadFlag, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.Id, &n.UserId, &n.Type, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return notifications, nil
}

func (s *Service) CountUnreadNotifications(ctx context.Context, userId string) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, queryCountUnreadNotifications, userId).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, userId, notificationId string) error {
	result, err := s.db.ExecContext(ctx, queryMarkNotificationRead, notificationId, userId)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("notification %s: %w", notificationId, store.ErrNotFound)
	}
	return nil
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, userId string) error {
	if _, err := s.db.ExecContext(ctx, queryMarkAllNotificationsRead, userId); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
