package city

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/trip-tailor/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	SearchPlacesHandler(w http.ResponseWriter, r *http.Request)
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

// SearchPlacesHandler handles GET /places?q={partial}.
func (h *HandlerImpl) SearchPlacesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "SearchPlaces")
	defer span.End()
	l := h.logger.With(slog.String("handler", "SearchPlacesHandler"))

	query := r.URL.Query().Get("q")

	places, err := h.service.SearchPlaces(ctx, query)
	if err != nil {
		l.ErrorContext(ctx, "Place search failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Place search failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to search places")
		return
	}

	span.SetStatus(codes.Ok, "Places returned")
	api.WriteJSONResponse(w, r, http.StatusOK, places)
}
