package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mint-server/internal/domain/user"
)

// UserRepository MySQL実装のUserRepository
type UserRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewUserRepository 新しいUserRepositoryを作成
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{
		db:     db,
		tracer: otel.Tracer("user-repository"),
	}
}

// FindByID ユーザーIDでユーザーを取得
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*user.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "users"),
	)

	query := `
		SELECT user_id, role, status
		FROM users
		WHERE user_id = ?
	`

	var dbUserID, dbRole, dbStatus string
	err := r.db.conn(ctx).QueryRowContext(ctx, query, userID).Scan(&dbUserID, &dbRole, &dbStatus)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "user not found")
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	role, err := user.NewRole(dbRole)
	if err != nil {
		return nil, err
	}
	status, err := user.NewStatus(dbStatus)
	if err != nil {
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "user found")
	return user.NewUser(dbUserID, role, status)
}
