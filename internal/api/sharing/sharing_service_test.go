package sharing

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/trip-tailor/app/observability/metrics"
	"github.com/FACorreiaa/trip-tailor/internal/types"
)

func init() {
	metrics.InitAppMetrics()
}

type MockSharingRepository struct {
	mock.Mock
}

func (m *MockSharingRepository) SetVisibility(ctx context.Context, tripID, userID uuid.UUID, isPublic bool, publicID *uuid.UUID) (*uuid.UUID, error) {
	args := m.Called(ctx, tripID, userID, isPublic, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uuid.UUID), args.Error(1)
}

func (m *MockSharingRepository) GetTripByPublicID(ctx context.Context, publicID uuid.UUID) (*types.Trip, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func newTestService(repo Repository) *ServiceImpl {
	return NewServiceImpl(repo, cache.New(time.Minute, time.Minute), "http://localhost:8080", slog.Default())
}

func TestSetVisibility(t *testing.T) {
	tripID := uuid.New()
	userID := uuid.New()

	t.Run("GoingPublicMintsFreshIdentifier", func(t *testing.T) {
		mockRepo := new(MockSharingRepository)
		service := newTestService(mockRepo)

		mockRepo.On("SetVisibility", mock.Anything, tripID, userID, true, mock.AnythingOfType("*uuid.UUID")).
			Return(nil, nil).Once()

		result, err := service.SetVisibility(context.Background(), tripID, userID, true)

		require.NoError(t, err)
		assert.True(t, result.IsPublic)
		require.NotNil(t, result.PublicID)
		assert.True(t, strings.HasSuffix(result.ShareLink, "/trip/public/"+result.PublicID.String()))
		assert.True(t, strings.HasPrefix(result.ShareLink, "http://localhost:8080"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("GoingPrivateClearsIdentifier", func(t *testing.T) {
		mockRepo := new(MockSharingRepository)
		service := newTestService(mockRepo)

		previous := uuid.New()
		mockRepo.On("SetVisibility", mock.Anything, tripID, userID, false, (*uuid.UUID)(nil)).
			Return(&previous, nil).Once()

		result, err := service.SetVisibility(context.Background(), tripID, userID, false)

		require.NoError(t, err)
		assert.False(t, result.IsPublic)
		assert.Nil(t, result.PublicID)
		assert.Empty(t, result.ShareLink)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EveryPublicToggleGetsDistinctIdentifier", func(t *testing.T) {
		mockRepo := new(MockSharingRepository)
		service := newTestService(mockRepo)

		mockRepo.On("SetVisibility", mock.Anything, tripID, userID, mock.Anything, mock.Anything).
			Return(nil, nil)

		seen := make(map[uuid.UUID]struct{})
		const cycles = 1000
		for i := 0; i < cycles; i++ {
			on, err := service.SetVisibility(context.Background(), tripID, userID, true)
			require.NoError(t, err)
			seen[*on.PublicID] = struct{}{}

			_, err = service.SetVisibility(context.Background(), tripID, userID, false)
			require.NoError(t, err)
		}
		assert.Len(t, seen, cycles)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockSharingRepository)
		service := newTestService(mockRepo)

		mockRepo.On("SetVisibility", mock.Anything, tripID, userID, true, mock.Anything).
			Return(nil, types.ErrNotFound).Once()

		_, err := service.SetVisibility(context.Background(), tripID, userID, true)

		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestShareLink(t *testing.T) {
	service := newTestService(new(MockSharingRepository))
	publicID := uuid.New()

	link := service.ShareLink(publicID)

	assert.Equal(t, "http://localhost:8080/trip/public/"+publicID.String(), link)
}

func TestGetPublicTrip(t *testing.T) {
	publicID := uuid.New()
	stored := &types.Trip{
		ID:        uuid.New(),
		City:      "Paris",
		Days:      2,
		Itinerary: "- Activity 1: Louvre\n- Activity 1: Versailles",
		IsPublic:  true,
		PublicID:  &publicID,
	}

	t.Run("ReDerivesDayStructure", func(t *testing.T) {
		mockRepo := new(MockSharingRepository)
		service := newTestService(mockRepo)

		mockRepo.On("GetTripByPublicID", mock.Anything, publicID).Return(stored, nil).Once()

		got, days, err := service.GetPublicTrip(context.Background(), publicID)

		require.NoError(t, err)
		assert.Equal(t, "Paris", got.City)
		assert.Len(t, days, 2)
	})

	t.Run("SecondReadServedFromCache", func(t *testing.T) {
		mockRepo := new(MockSharingRepository)
		service := newTestService(mockRepo)

		mockRepo.On("GetTripByPublicID", mock.Anything, publicID).Return(stored, nil).Once()

		_, _, err := service.GetPublicTrip(context.Background(), publicID)
		require.NoError(t, err)
		_, _, err = service.GetPublicTrip(context.Background(), publicID)
		require.NoError(t, err)

		mockRepo.AssertNumberOfCalls(t, "GetTripByPublicID", 1)
	})

	t.Run("StaleIdentifierNeverResolves", func(t *testing.T) {
		mockRepo := new(MockSharingRepository)
		service := newTestService(mockRepo)
		tripID := stored.ID
		userID := uuid.New()

		// Warm the cache for the current identifier.
		mockRepo.On("GetTripByPublicID", mock.Anything, publicID).Return(stored, nil).Once()
		_, _, err := service.GetPublicTrip(context.Background(), publicID)
		require.NoError(t, err)

		// Toggling off reports the old identifier and evicts it.
		mockRepo.On("SetVisibility", mock.Anything, tripID, userID, false, (*uuid.UUID)(nil)).
			Return(&publicID, nil).Once()
		_, err = service.SetVisibility(context.Background(), tripID, userID, false)
		require.NoError(t, err)

		// The next read for the old identifier goes to the database, which
		// no longer matches it.
		mockRepo.On("GetTripByPublicID", mock.Anything, publicID).Return(nil, types.ErrNotFound).Once()
		_, _, err = service.GetPublicTrip(context.Background(), publicID)
		assert.ErrorIs(t, err, types.ErrNotFound)

		mockRepo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockSharingRepository)
		service := newTestService(mockRepo)
		unknown := uuid.New()

		mockRepo.On("GetTripByPublicID", mock.Anything, unknown).Return(nil, types.ErrNotFound).Once()

		_, _, err := service.GetPublicTrip(context.Background(), unknown)

		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}
