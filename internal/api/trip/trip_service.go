package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/trip-tailor/app/observability/metrics"
	"github.com/FACorreiaa/trip-tailor/internal/types"
)

// ErrGenerationFailed marks a generation cycle whose upstream call produced
// no usable text. The handler surfaces it as a single failure notice; no
// partial itinerary is ever shown.
var ErrGenerationFailed = errors.New("itinerary generation failed")

// Generator produces raw itinerary text from a prompt. One outbound call per
// invocation, no retries.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GenerateItinerary(ctx context.Context, prefs *types.TripPreferences) (*types.GeneratedItinerary, error)
	SaveTrip(ctx context.Context, userID uuid.UUID, req types.SaveTripRequest) (*types.Trip, error)
	GetTrip(ctx context.Context, tripID, userID uuid.UUID) (*types.Trip, []types.ItineraryDayView, error)
	GetUserTrips(ctx context.Context, userID uuid.UUID, search, sortBy string) ([]*types.Trip, error)
	DeleteTrip(ctx context.Context, tripID, userID uuid.UUID) error
	GetTripStats(ctx context.Context, userID uuid.UUID) (*types.TripStats, error)
}

type ServiceImpl struct {
	logger         *slog.Logger
	tripRepository Repository
	generator      Generator
}

func NewServiceImpl(repo Repository, generator Generator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		tripRepository: repo,
		generator:      generator,
	}
}

// GenerateItinerary runs one full generation cycle: validate preferences,
// build the prompt, call the generator once, parse the response into days.
// Nothing is persisted; saving is a separate explicit action.
func (s *ServiceImpl) GenerateItinerary(ctx context.Context, prefs *types.TripPreferences) (*types.GeneratedItinerary, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GenerateItinerary", trace.WithAttributes(
		attribute.String("trip.destination", prefs.Destination),
		attribute.Int("trip.days", prefs.Days),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GenerateItinerary"), slog.String("destination", prefs.Destination))

	if err := prefs.Validate(time.Now()); err != nil {
		l.WarnContext(ctx, "Invalid trip preferences", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid preferences")
		return nil, fmt.Errorf("invalid trip preferences: %w", err)
	}

	m := metrics.Get()
	m.GenerationRequestsTotal.Add(ctx, 1)

	prompt := buildItineraryPrompt(prefs)
	start := time.Now()
	rawText, err := s.generator.GenerateContent(ctx, prompt)
	m.GenerationDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		m.GenerationFailuresTotal.Add(ctx, 1)
		l.ErrorContext(ctx, "Generation call failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, err)
	}

	days := ParseItinerary(rawText)
	m.ParsedDaysTotal.Add(ctx, int64(len(days)))
	if len(days) != prefs.Days {
		// Observable but not an error: the parser never rejects a
		// duration mismatch.
		l.WarnContext(ctx, "Parsed day count differs from requested duration",
			slog.Int("requested", prefs.Days),
			slog.Int("parsed", len(days)))
	}

	l.InfoContext(ctx, "Itinerary generated", slog.Int("days", len(days)))
	span.SetAttributes(attribute.Int("itinerary.parsed_days", len(days)))
	span.SetStatus(codes.Ok, "Itinerary generated")

	return &types.GeneratedItinerary{
		RawText:       JoinDays(days),
		Days:          RenderDays(days),
		RequestedDays: prefs.Days,
	}, nil
}

// SaveTrip persists one generation cycle as a new private trip. Regeneration
// never updates a stored trip in place; it flows through here again as a new
// record.
func (s *ServiceImpl) SaveTrip(ctx context.Context, userID uuid.UUID, req types.SaveTripRequest) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "SaveTrip", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("trip.city", req.City),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SaveTrip"), slog.String("userID", userID.String()))

	if req.City == "" || req.Itinerary == "" {
		span.SetStatus(codes.Error, "Missing required fields")
		return nil, fmt.Errorf("city and itinerary are required")
	}
	if req.Days < types.MinTripDays || req.Days > types.MaxTripDays {
		span.SetStatus(codes.Error, "Invalid duration")
		return nil, fmt.Errorf("days must be between %d and %d", types.MinTripDays, types.MaxTripDays)
	}

	t := types.Trip{
		ID:         uuid.New(),
		UserID:     userID,
		City:       req.City,
		Days:       req.Days,
		Budget:     req.Budget,
		Companions: req.Companions,
		Activities: req.Activities,
		Itinerary:  req.Itinerary,
		IsPublic:   false,
		PublicID:   nil,
		CreatedAt:  time.Now(),
	}
	if t.Activities == nil {
		t.Activities = []string{}
	}

	if err := s.tripRepository.CreateTrip(ctx, t); err != nil {
		l.ErrorContext(ctx, "Failed to save trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save trip")
		return nil, fmt.Errorf("failed to save trip: %w", err)
	}

	metrics.Get().TripSavesTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Trip saved", slog.String("tripID", t.ID.String()))
	span.SetAttributes(attribute.String("trip.id", t.ID.String()))
	span.SetStatus(codes.Ok, "Trip saved")
	return &t, nil
}

// GetTrip loads a stored trip and re-derives its day structure from the text
// blob through the same parser the generation path uses.
func (s *ServiceImpl) GetTrip(ctx context.Context, tripID, userID uuid.UUID) (*types.Trip, []types.ItineraryDayView, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GetTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	t, err := s.tripRepository.GetTrip(ctx, tripID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Trip not found")
		return nil, nil, err
	}

	span.SetStatus(codes.Ok, "Trip retrieved")
	return t, RenderDays(ParseItinerary(t.Itinerary)), nil
}

func (s *ServiceImpl) GetUserTrips(ctx context.Context, userID uuid.UUID, search, sortBy string) ([]*types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GetUserTrips", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	trips, err := s.tripRepository.GetUserTrips(ctx, userID, search, sortBy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list trips")
		return nil, err
	}
	span.SetAttributes(attribute.Int("trips.count", len(trips)))
	span.SetStatus(codes.Ok, "Trips listed")
	return trips, nil
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, tripID, userID uuid.UUID) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "DeleteTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeleteTrip"), slog.String("tripID", tripID.String()))

	if err := s.tripRepository.DeleteTrip(ctx, tripID, userID); err != nil {
		l.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete trip")
		return err
	}

	l.InfoContext(ctx, "Trip deleted")
	span.SetStatus(codes.Ok, "Trip deleted")
	return nil
}

func (s *ServiceImpl) GetTripStats(ctx context.Context, userID uuid.UUID) (*types.TripStats, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GetTripStats")
	defer span.End()

	stats, err := s.tripRepository.GetTripStats(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get stats")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Stats retrieved")
	return stats, nil
}
