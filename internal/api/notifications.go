package api

import (
	"context"

	"trokazz-server/internal/models"

	"go.uber.org/zap"
)

// Notify persists a notification and pushes it to any open realtime
// subscriptions. The stored row is canonical; a failed push is not an error.
func (s *Service) Notify(ctx context.Context, userId, notifType, message, link string) {
	notification, err := s.store.CreateNotification(ctx, userId, notifType, message, link)
	if err != nil {
		zap.L().Error("Failed to store notification",
			zap.String("user_id", userId),
			zap.String("type", notifType),
			zap.Error(err))
		return
	}
	s.publisher.Publish(userId, *notification)
}

func (s *Service) ListNotifications(ctx context.Context, userId string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListNotifications(ctx, userId, unreadOnly, limit)
}

func (s *Service) CountUnreadNotifications(ctx context.Context, userId string) (int64, error) {
	return s.store.CountUnreadNotifications(ctx, userId)
}

func (s *Service) MarkNotificationRead(ctx context.Context, userId, notificationId string) error {
	return s.store.MarkNotificationRead(ctx, userId, notificationId)
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, userId string) error {
	return s.store.MarkAllNotificationsRead(ctx, userId)
}
