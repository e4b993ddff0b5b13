package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/layer-3/sentinel/core"
)

const uniqueViolation = "23505"

// UserRepository reads and creates rows in users.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *core.User) error {
	query, args, err := psql.Insert("users").
		Columns("id", "email", "password_hash", "role", "active", "created_at").
		Values(u.ID, strings.ToLower(u.Email), u.PasswordHash, string(u.Role), u.Active, u.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.ErrEmailTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepository) ByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	return r.one(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.one(ctx, sq.Eq{"email": strings.ToLower(email)})
}

func (r *UserRepository) one(ctx context.Context, where sq.Eq) (*core.User, error) {
	query, args, err := psql.Select("id", "email", "password_hash", "role", "active", "created_at").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var (
		u    core.User
		role string
	)
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.Role = core.Role(role)
	return &u, nil
}
