package sharing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/trip-tailor/app/observability/metrics"
	"github.com/FACorreiaa/trip-tailor/internal/api/trip"
	"github.com/FACorreiaa/trip-tailor/internal/types"
)

const publicSharePath = "/trip/public/"

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	SetVisibility(ctx context.Context, tripID, userID uuid.UUID, isPublic bool) (*VisibilityResult, error)
	GetPublicTrip(ctx context.Context, publicID uuid.UUID) (*types.Trip, []types.ItineraryDayView, error)
}

// VisibilityResult reports the outcome of a visibility toggle. ShareLink is
// only set when the trip was just made public.
type VisibilityResult struct {
	IsPublic  bool       `json:"is_public"`
	PublicID  *uuid.UUID `json:"public_id,omitempty"`
	ShareLink string     `json:"share_link,omitempty"`
}

type ServiceImpl struct {
	logger            *slog.Logger
	sharingRepository Repository
	publicTripCache   *cache.Cache
	baseURL           string
}

func NewServiceImpl(repo Repository, publicTripCache *cache.Cache, baseURL string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:            logger,
		sharingRepository: repo,
		publicTripCache:   publicTripCache,
		baseURL:           baseURL,
	}
}

// SetVisibility toggles sharing for a trip. Going public always mints a
// fresh public identifier; going private clears it, so a previously shared
// link is permanently dead and re-enabling issues a new one. Any cached
// entry for the previous identifier is dropped in the same call.
func (s *ServiceImpl) SetVisibility(ctx context.Context, tripID, userID uuid.UUID, isPublic bool) (*VisibilityResult, error) {
	ctx, span := otel.Tracer("SharingService").Start(ctx, "SetVisibility", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
		attribute.Bool("trip.is_public", isPublic),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SetVisibility"),
		slog.String("tripID", tripID.String()),
		slog.Bool("isPublic", isPublic))

	var publicID *uuid.UUID
	if isPublic {
		id := uuid.New()
		publicID = &id
	}

	previousPublicID, err := s.sharingRepository.SetVisibility(ctx, tripID, userID, isPublic, publicID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to set trip visibility", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to set visibility")
		return nil, err
	}

	if previousPublicID != nil {
		s.publicTripCache.Delete(previousPublicID.String())
	}

	result := &VisibilityResult{
		IsPublic: isPublic,
		PublicID: publicID,
	}
	if publicID != nil {
		result.ShareLink = s.ShareLink(*publicID)
		span.SetAttributes(attribute.String("trip.public_id", publicID.String()))
	}

	l.InfoContext(ctx, "Trip visibility updated")
	span.SetStatus(codes.Ok, "Visibility updated")
	return result, nil
}

// GetPublicTrip resolves a trip anonymously by public identifier. The stored
// itinerary blob is re-parsed into day structure on every read; a short TTL
// cache sits in front of the database for the read-heavy share path.
func (s *ServiceImpl) GetPublicTrip(ctx context.Context, publicID uuid.UUID) (*types.Trip, []types.ItineraryDayView, error) {
	ctx, span := otel.Tracer("SharingService").Start(ctx, "GetPublicTrip", trace.WithAttributes(
		attribute.String("trip.public_id", publicID.String()),
	))
	defer span.End()

	metrics.Get().PublicTripReadsTotal.Add(ctx, 1)

	if cached, found := s.publicTripCache.Get(publicID.String()); found {
		if t, ok := cached.(*types.Trip); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			span.SetStatus(codes.Ok, "Public trip served from cache")
			return t, trip.RenderDays(trip.ParseItinerary(t.Itinerary)), nil
		}
	}

	t, err := s.sharingRepository.GetTripByPublicID(ctx, publicID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Public trip not found")
		return nil, nil, err
	}

	s.publicTripCache.Set(publicID.String(), t, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "Public trip retrieved")
	return t, trip.RenderDays(trip.ParseItinerary(t.Itinerary)), nil
}

// ShareLink builds the public share URL for an identifier.
func (s *ServiceImpl) ShareLink(publicID uuid.UUID) string {
	return fmt.Sprintf("%s%s%s", s.baseURL, publicSharePath, publicID)
}
