package trip

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/trip-tailor/internal/types"
)

func newMockRepository(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewRepository(mockPool, slog.Default()), mockPool
}

func tripRow(t types.Trip) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "city", "days", "budget", "companions", "activities",
		"itinerary", "is_public", "public_id", "created_at",
	}).AddRow(
		t.ID, t.UserID, t.City, t.Days, t.Budget, t.Companions, t.Activities,
		t.Itinerary, t.IsPublic, t.PublicID, t.CreatedAt,
	)
}

func TestRepositoryCreateTrip(t *testing.T) {
	repo, mockPool := newMockRepository(t)

	trip := types.Trip{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		City:       "Paris",
		Days:       2,
		Budget:     types.BudgetMedium,
		Activities: []string{"Sightseeing"},
		Itinerary:  "- Activity 1: Walk",
		CreatedAt:  time.Now(),
	}

	mockPool.ExpectExec("INSERT INTO trips").
		WithArgs(trip.ID, trip.UserID, trip.City, trip.Days, trip.Budget,
			trip.Companions, trip.Activities, trip.Itinerary, trip.IsPublic,
			trip.PublicID, trip.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.CreateTrip(context.Background(), trip)

	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepositoryGetTrip(t *testing.T) {
	repo, mockPool := newMockRepository(t)
	tripID := uuid.New()
	userID := uuid.New()

	t.Run("Found", func(t *testing.T) {
		stored := types.Trip{
			ID:        tripID,
			UserID:    userID,
			City:      "Rome",
			Days:      3,
			Budget:    types.BudgetLow,
			Itinerary: "- Activity 1: Colosseum",
			CreatedAt: time.Now(),
		}
		mockPool.ExpectQuery("SELECT (.+) FROM trips WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(tripID, userID).
			WillReturnRows(tripRow(stored))

		got, err := repo.GetTrip(context.Background(), tripID, userID)

		require.NoError(t, err)
		assert.Equal(t, "Rome", got.City)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool.ExpectQuery("SELECT (.+) FROM trips WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(tripID, userID).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		_, err := repo.GetTrip(context.Background(), tripID, userID)

		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestRepositoryGetUserTrips(t *testing.T) {
	repo, mockPool := newMockRepository(t)
	userID := uuid.New()

	t.Run("NoFilter", func(t *testing.T) {
		trips := tripRow(types.Trip{ID: uuid.New(), UserID: userID, City: "Paris", Days: 2, CreatedAt: time.Now()}).
			AddRow(uuid.New(), userID, "Tokyo", 4, types.BudgetTier(""), "", []string(nil), "", false, (*uuid.UUID)(nil), time.Now())

		mockPool.ExpectQuery("SELECT (.+) FROM trips WHERE user_id = \\$1 ORDER BY created_at DESC").
			WithArgs(userID).
			WillReturnRows(trips)

		got, err := repo.GetUserTrips(context.Background(), userID, "", "")

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("SearchAndSort", func(t *testing.T) {
		mockPool.ExpectQuery("SELECT (.+) FROM trips WHERE user_id = \\$1 AND \\(city ILIKE (.+) OR itinerary ILIKE (.+)\\) ORDER BY city ASC").
			WithArgs(userID, "par").
			WillReturnRows(tripRow(types.Trip{ID: uuid.New(), UserID: userID, City: "Paris", Days: 2, CreatedAt: time.Now()}))

		got, err := repo.GetUserTrips(context.Background(), userID, "par", "city")

		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepositoryDeleteTrip(t *testing.T) {
	repo, mockPool := newMockRepository(t)
	tripID := uuid.New()
	userID := uuid.New()

	t.Run("Deleted", func(t *testing.T) {
		mockPool.ExpectExec("DELETE FROM trips WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(tripID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.DeleteTrip(context.Background(), tripID, userID))
	})

	t.Run("AlreadyGoneIsIdempotent", func(t *testing.T) {
		mockPool.ExpectExec("DELETE FROM trips WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(tripID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.NoError(t, repo.DeleteTrip(context.Background(), tripID, userID))
	})
}

func TestRepositoryGetTripStats(t *testing.T) {
	repo, mockPool := newMockRepository(t)
	userID := uuid.New()

	mockPool.ExpectQuery("SELECT COUNT\\(\\*\\), COALESCE\\(SUM\\(days\\), 0\\), COUNT\\(\\*\\) FILTER").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count", "sum", "public"}).AddRow(5, 17, 2))

	stats, err := repo.GetTripStats(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalTrips)
	assert.Equal(t, 17, stats.DaysPlanned)
	assert.Equal(t, 2, stats.PublicTrips)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
