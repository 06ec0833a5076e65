package sharing

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
	SetVisibilityHandler(w http.ResponseWriter, r *http.Request)
	GetPublicTripHandler(w http.ResponseWriter, r *http.Request)
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

// SetVisibilityHandler handles PUT /trips/{tripID}/visibility.
func (h *HandlerImpl) SetVisibilityHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SharingHandler").Start(r.Context(), "SetVisibility")
	defer span.End()
	l := h.logger.With(slog.String("handler", "SetVisibilityHandler"))

	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Unauthorized")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid user ID format")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid trip ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}
	span.SetAttributes(attribute.String("trip.id", tripID.String()))

	var req types.SetVisibilityRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.SetVisibility(ctx, tripID, userID, req.IsPublic)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			span.SetStatus(codes.Error, "Trip not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "Failed to set visibility", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to set visibility")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update trip visibility")
		return
	}

	l.InfoContext(ctx, "Trip visibility updated", slog.Bool("is_public", result.IsPublic))
	span.SetStatus(codes.Ok, "Visibility updated")
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

// GetPublicTripHandler handles GET /trips/public/{publicID}. No
// authentication: holding the public identifier is the only capability
// needed while the trip stays public.
func (h *HandlerImpl) GetPublicTripHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SharingHandler").Start(r.Context(), "GetPublicTrip")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetPublicTripHandler"))

	publicID, err := uuid.Parse(chi.URLParam(r, "publicID"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid public ID")
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found or is private")
		return
	}
	span.SetAttributes(attribute.String("trip.public_id", publicID.String()))

	t, days, err := h.service.GetPublicTrip(ctx, publicID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			span.SetStatus(codes.Error, "Trip not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found or is private")
			return
		}
		l.ErrorContext(ctx, "Failed to get public trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get public trip")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get trip")
		return
	}

	span.SetStatus(codes.Ok, "Public trip retrieved")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"trip": t,
		"days": days,
	})
}
