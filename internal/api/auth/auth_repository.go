package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	database "github.com/FACorreiaa/trip-tailor/app/db"
	"github.com/FACorreiaa/trip-tailor/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// ErrDuplicateUser is returned when a username or email is already taken.
var ErrDuplicateUser = errors.New("username or email already in use")

// RefreshTokenRecord is a stored refresh token. Only the SHA-256 hash of
// the token ever reaches the database.
type RefreshTokenRecord struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
}

type Repository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*types.UserAuth, error)
	GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error)
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshTokenRecord, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewRepository(pgpool database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) CreateUser(ctx context.Context, username, email, passwordHash string) (*types.UserAuth, error) {
	query := `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id, username, email, created_at, updated_at
    `
	var user types.UserAuth
	err := r.pgpool.QueryRow(ctx, query, username, email, passwordHash).
		Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateUser
		}
		r.logger.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

func (r *RepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE email = $1`
	var user types.UserAuth
	err := r.pgpool.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get user by email", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *RepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE id = $1`
	var user types.UserAuth
	err := r.pgpool.QueryRow(ctx, query, userID).
		Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get user by id", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (r *RepositoryImpl) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `INSERT INTO refresh_tokens (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.pgpool.Exec(ctx, query, tokenHash, userID, expiresAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to store refresh token", slog.Any("error", err))
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshTokenRecord, error) {
	query := `SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = $1`
	var rec RefreshTokenRecord
	err := r.pgpool.QueryRow(ctx, query, tokenHash).Scan(&rec.UserID, &rec.ExpiresAt, &rec.RevokedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get refresh token", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &rec, nil
}

func (r *RepositoryImpl) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE token_hash = $1 AND revoked_at IS NULL`
	_, err := r.pgpool.Exec(ctx, query, tokenHash)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to revoke refresh token", slog.Any("error", err))
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) RevokeAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`
	_, err := r.pgpool.Exec(ctx, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to revoke user refresh tokens", slog.Any("error", err))
		return fmt.Errorf("failed to revoke user refresh tokens: %w", err)
	}
	return nil
}
