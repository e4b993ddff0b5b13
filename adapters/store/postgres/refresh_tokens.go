package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
)

// RefreshTokenRepository keeps one refresh token row per user.
type RefreshTokenRepository struct {
	db DBTX
}

func NewRefreshTokenRepository(db DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Save upserts on user_id, so concurrent saves for one user leave the last write.
func (r *RefreshTokenRepository) Save(ctx context.Context, rt *core.RefreshToken) error {
	query, args, err := psql.Insert("refresh_tokens").
		Columns("id", "user_id", "token", "expiry_date").
		Values(rt.ID, rt.UserID, rt.Token, rt.ExpiryDate).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET id = EXCLUDED.id, token = EXCLUDED.token, expiry_date = EXCLUDED.expiry_date").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*core.RefreshToken, error) {
	query, args, err := psql.Select("id", "user_id", "token", "expiry_date").
		From("refresh_tokens").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rt := &core.RefreshToken{}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiryDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.delete(ctx, sq.Eq{"token": token})
}

func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.delete(ctx, sq.Eq{"user_id": userID})
}

func (r *RefreshTokenRepository) delete(ctx context.Context, where sq.Eq) error {
	query, args, err := psql.Delete("refresh_tokens").Where(where).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
