package sharing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	database "github.com/FACorreiaa/trip-tailor/app/db"
	"github.com/FACorreiaa/trip-tailor/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository covers the sharing mutations and the anonymous read path.
type Repository interface {
	// SetVisibility updates the visibility flag and public identifier of a
	// trip in one statement and returns the previous public identifier so
	// the caller can invalidate caches for it.
	SetVisibility(ctx context.Context, tripID, userID uuid.UUID, isPublic bool, publicID *uuid.UUID) (*uuid.UUID, error)
	// GetTripByPublicID resolves a trip by public identifier only while
	// its visibility is on; a stale identifier never resolves.
	GetTripByPublicID(ctx context.Context, publicID uuid.UUID) (*types.Trip, error)
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

func (r *RepositoryImpl) SetVisibility(ctx context.Context, tripID, userID uuid.UUID, isPublic bool, publicID *uuid.UUID) (*uuid.UUID, error) {
	query := `
        UPDATE trips
        SET is_public = $3, public_id = $4
        WHERE id = $1 AND user_id = $2
        RETURNING (SELECT public_id FROM trips WHERE id = $1)
    `
	var previousPublicID *uuid.UUID
	err := r.pgpool.QueryRow(ctx, query, tripID, userID, isPublic, publicID).Scan(&previousPublicID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update trip visibility", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update trip visibility: %w", err)
	}
	return previousPublicID, nil
}

func (r *RepositoryImpl) GetTripByPublicID(ctx context.Context, publicID uuid.UUID) (*types.Trip, error) {
	query := `
        SELECT id, user_id, city, days, budget, companions, activities, itinerary,
               is_public, public_id, created_at
        FROM trips
        WHERE public_id = $1 AND is_public = TRUE
    `
	var t types.Trip
	err := r.pgpool.QueryRow(ctx, query, publicID).Scan(
		&t.ID, &t.UserID, &t.City, &t.Days, &t.Budget, &t.Companions,
		&t.Activities, &t.Itinerary, &t.IsPublic, &t.PublicID, &t.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get trip by public ID", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get trip by public ID: %w", err)
	}
	return &t, nil
}
