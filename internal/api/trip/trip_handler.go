package trip

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/trip-tailor/internal/api"
	"github.com/FACorreiaa/trip-tailor/internal/api/auth"
	"github.com/FACorreiaa/trip-tailor/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GenerateItineraryHandler(w http.ResponseWriter, r *http.Request)
	SaveTripHandler(w http.ResponseWriter, r *http.Request)
	GetTripHandler(w http.ResponseWriter, r *http.Request)
	GetUserTripsHandler(w http.ResponseWriter, r *http.Request)
	DeleteTripHandler(w http.ResponseWriter, r *http.Request)
	GetTripStatsHandler(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

// requireUserID pulls the authenticated user out of the request context; it
// writes the error response itself when authentication is missing.
func requireUserID(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		l.ErrorContext(r.Context(), "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.ErrorContext(r.Context(), "Invalid user ID format", slog.String("userID_str", userIDStr))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

// GenerateItineraryHandler handles POST /trips/generate.
func (h *HandlerImpl) GenerateItineraryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GenerateItinerary")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GenerateItineraryHandler"))

	if _, ok := requireUserID(w, r, l); !ok {
		span.SetStatus(codes.Error, "Unauthorized")
		return
	}

	var prefs types.TripPreferences
	if err := api.DecodeJSONBody(w, r, &prefs); err != nil {
		l.ErrorContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.String("trip.destination", prefs.Destination))

	itinerary, err := h.service.GenerateItinerary(ctx, &prefs)
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate itinerary", slog.Any("error", err))
		span.RecordError(err)
		if errors.Is(err, ErrGenerationFailed) {
			span.SetStatus(codes.Error, "Generation failed")
			api.ErrorResponse(w, r, http.StatusBadGateway, "Failed to generate itinerary")
			return
		}
		span.SetStatus(codes.Error, "Invalid preferences")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "Itinerary generated")
	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

// SaveTripHandler handles POST /trips.
func (h *HandlerImpl) SaveTripHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "SaveTrip")
	defer span.End()
	l := h.logger.With(slog.String("handler", "SaveTripHandler"))

	userID, ok := requireUserID(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Unauthorized")
		return
	}

	var req types.SaveTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.service.SaveTrip(ctx, userID, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to save trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save trip")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save trip")
		return
	}

	l.InfoContext(ctx, "Trip saved", slog.String("trip_id", t.ID.String()))
	span.SetAttributes(attribute.String("trip.id", t.ID.String()))
	span.SetStatus(codes.Ok, "Trip saved")
	api.WriteJSONResponse(w, r, http.StatusCreated, t)
}

// GetTripHandler handles GET /trips/{tripID}.
func (h *HandlerImpl) GetTripHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetTrip")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetTripHandler"))

	userID, ok := requireUserID(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Unauthorized")
		return
	}

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid trip ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	t, days, err := h.service.GetTrip(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			span.SetStatus(codes.Error, "Trip not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get trip")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get trip")
		return
	}

	span.SetStatus(codes.Ok, "Trip retrieved")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"trip": t,
		"days": days,
	})
}

// GetUserTripsHandler handles GET /trips?search=&sort=.
func (h *HandlerImpl) GetUserTripsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetUserTrips")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetUserTripsHandler"))

	userID, ok := requireUserID(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Unauthorized")
		return
	}

	search := r.URL.Query().Get("search")
	sortBy := r.URL.Query().Get("sort")

	trips, err := h.service.GetUserTrips(ctx, userID, search, sortBy)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list trips")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list trips")
		return
	}
	if trips == nil {
		trips = []*types.Trip{}
	}

	span.SetAttributes(attribute.Int("trips.count", len(trips)))
	span.SetStatus(codes.Ok, "Trips listed")
	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

// DeleteTripHandler handles DELETE /trips/{tripID}. Confirmation is the UI's
// concern; the operation itself is idempotent.
func (h *HandlerImpl) DeleteTripHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "DeleteTrip")
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeleteTripHandler"))

	userID, ok := requireUserID(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Unauthorized")
		return
	}

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid trip ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	if err := h.service.DeleteTrip(ctx, tripID, userID); err != nil {
		l.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete trip")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete trip")
		return
	}

	span.SetStatus(codes.Ok, "Trip deleted")
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// GetTripStatsHandler handles GET /trips/stats.
func (h *HandlerImpl) GetTripStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetTripStats")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetTripStatsHandler"))

	userID, ok := requireUserID(w, r, l)
	if !ok {
		span.SetStatus(codes.Error, "Unauthorized")
		return
	}

	stats, err := h.service.GetTripStats(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get trip stats", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get stats")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get trip stats")
		return
	}

	span.SetStatus(codes.Ok, "Stats retrieved")
	api.WriteJSONResponse(w, r, http.StatusOK, stats)
}
