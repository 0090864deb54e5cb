package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.Id, &user.Email, &user.DisplayName, &user.PasswordHash,
		&user.IsVerified, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	userId := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, queryInsertUser,
		userId, params.Email, params.DisplayName, params.PasswordHash, params.IsAdmin, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("email %s: %w", params.Email, store.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	zap.L().Info("User created",
		zap.String("user_id", userId),
		zap.String("email", params.Email))

	return s.GetUserById(ctx, userId)
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserById, userId))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", userId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserByEmail, email))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("email %s: %w", email, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// GetDisplayNames resolves display names for a set of user ids in one query.
// The moderation queue uses this to avoid an N+1 lookup per item.
func (s *Service) GetDisplayNames(ctx context.Context, userIds []string) (map[string]string, error) {
	names := make(map[string]string, len(userIds))
	if len(userIds) == 0 {
		return names, nil
	}

	// De-duplicate before building the IN clause.
	seen := make(map[string]bool, len(userIds))
	args := make([]any, 0, len(userIds))
	for _, id := range userIds {
		if !seen[id] {
			seen[id] = true
			args = append(args, id)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	query := fmt.Sprintf(`SELECT id, display_name FROM users WHERE id IN (%s)`, placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get display names: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan display name: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating display name rows: %w", err)
	}
	return names, nil
}

func (s *Service) SetUserVerified(ctx context.Context, userId string, verified bool) error {
	result, err := s.db.ExecContext(ctx, querySetUserVerified, verified, userId)
	if err != nil {
		return fmt.Errorf("failed to set user verified: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %s: %w", userId, store.ErrNotFound)
	}
	return nil
}
