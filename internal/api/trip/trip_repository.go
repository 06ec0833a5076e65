package trip

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

// Repository defines trip persistence. Every operation is a single,
// non-transactional statement keyed by record identity; no multi-record
// invariant is enforced across a user's trips.
type Repository interface {
	CreateTrip(ctx context.Context, t types.Trip) error
	GetTrip(ctx context.Context, tripID, userID uuid.UUID) (*types.Trip, error)
	GetUserTrips(ctx context.Context, userID uuid.UUID, search, sortBy string) ([]*types.Trip, error)
	DeleteTrip(ctx context.Context, tripID, userID uuid.UUID) error
	GetTripStats(ctx context.Context, userID uuid.UUID) (*types.TripStats, error)
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

const tripColumns = `id, user_id, city, days, budget, companions, activities, itinerary, is_public, public_id, created_at`

func scanTrip(row pgx.Row) (*types.Trip, error) {
	var t types.Trip
	err := row.Scan(
		&t.ID, &t.UserID, &t.City, &t.Days, &t.Budget, &t.Companions,
		&t.Activities, &t.Itinerary, &t.IsPublic, &t.PublicID, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RepositoryImpl) CreateTrip(ctx context.Context, t types.Trip) error {
	query := `
        INSERT INTO trips (
            id, user_id, city, days, budget, companions, activities, itinerary,
            is_public, public_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := r.pgpool.Exec(ctx, query,
		t.ID, t.UserID, t.City, t.Days, t.Budget, t.Companions, t.Activities,
		t.Itinerary, t.IsPublic, t.PublicID, t.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create trip", slog.Any("error", err))
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetTrip(ctx context.Context, tripID, userID uuid.UUID) (*types.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 AND user_id = $2`
	t, err := scanTrip(r.pgpool.QueryRow(ctx, query, tripID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get trip", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return t, nil
}

// GetUserTrips lists a user's trips. search filters on destination or
// itinerary substring; sortBy is one of newest, oldest, city, duration.
func (r *RepositoryImpl) GetUserTrips(ctx context.Context, userID uuid.UUID, search, sortBy string) ([]*types.Trip, error) {
	orderBy := "created_at DESC"
	switch sortBy {
	case "oldest":
		orderBy = "created_at ASC"
	case "city":
		orderBy = "city ASC"
	case "duration":
		orderBy = "days DESC"
	}

	query := `SELECT ` + tripColumns + ` FROM trips WHERE user_id = $1`
	args := []interface{}{userID}
	if search != "" {
		query += ` AND (city ILIKE '%' || $2 || '%' OR itinerary ILIKE '%' || $2 || '%')`
		args = append(args, search)
	}
	query += ` ORDER BY ` + orderBy

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to get user trips", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user trips: %w", err)
	}
	defer rows.Close()

	var trips []*types.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trip rows: %w", err)
	}
	return trips, nil
}

// DeleteTrip removes a trip by identity. Deleting a trip that is already gone
// is not an error, which keeps the operation idempotent.
func (r *RepositoryImpl) DeleteTrip(ctx context.Context, tripID, userID uuid.UUID) error {
	query := `DELETE FROM trips WHERE id = $1 AND user_id = $2`
	_, err := r.pgpool.Exec(ctx, query, tripID, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetTripStats(ctx context.Context, userID uuid.UUID) (*types.TripStats, error) {
	query := `
        SELECT COUNT(*), COALESCE(SUM(days), 0), COUNT(*) FILTER (WHERE is_public)
        FROM trips WHERE user_id = $1
    `
	var stats types.TripStats
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalTrips, &stats.DaysPlanned, &stats.PublicTrips,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to get trip stats", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get trip stats: %w", err)
	}
	return &stats, nil
}
