package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/trip-tailor/internal/api"
	"github.com/FACorreiaa/trip-tailor/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	RegisterHandler(w http.ResponseWriter, r *http.Request)
	LoginHandler(w http.ResponseWriter, r *http.Request)
	RefreshTokenHandler(w http.ResponseWriter, r *http.Request)
	LogoutHandler(w http.ResponseWriter, r *http.Request)
	LogoutAllHandler(w http.ResponseWriter, r *http.Request)
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

// RegisterHandler handles POST /auth/register.
func (h *HandlerImpl) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register")
	defer span.End()
	l := h.logger.With(slog.String("handler", "RegisterHandler"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(ctx, req)
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			span.SetStatus(codes.Error, "Duplicate user")
			api.ErrorResponse(w, r, http.StatusConflict, "Username or email already in use")
			return
		}
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Registration failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "User registered")
	api.WriteJSONResponse(w, r, http.StatusCreated, user)
}

// LoginHandler handles POST /auth/login.
func (h *HandlerImpl) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login")
	defer span.End()
	l := h.logger.With(slog.String("handler", "LoginHandler"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			span.SetStatus(codes.Error, "Invalid credentials")
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Login failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Login failed")
		return
	}

	span.SetStatus(codes.Ok, "Logged in")
	api.WriteJSONResponse(w, r, http.StatusOK, types.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Message:      "Logged in successfully",
	})
}

// RefreshTokenHandler handles POST /auth/refresh.
func (h *HandlerImpl) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "RefreshToken")
	defer span.End()
	l := h.logger.With(slog.String("handler", "RefreshTokenHandler"))

	var req types.RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.service.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			span.SetStatus(codes.Error, "Invalid refresh token")
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		l.ErrorContext(ctx, "Token refresh failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token refresh failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Token refresh failed")
		return
	}

	span.SetStatus(codes.Ok, "Session refreshed")
	api.WriteJSONResponse(w, r, http.StatusOK, tokens)
}

// LogoutHandler handles POST /auth/logout.
func (h *HandlerImpl) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Logout")
	defer span.End()
	l := h.logger.With(slog.String("handler", "LogoutHandler"))

	var req types.LogoutRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Logout(ctx, req.RefreshToken); err != nil {
		l.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Logout failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Logout failed")
		return
	}

	span.SetStatus(codes.Ok, "Logged out")
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Logged out successfully",
	})
}

// LogoutAllHandler handles POST /auth/logout/all. It revokes every refresh
// token of the authenticated user.
func (h *HandlerImpl) LogoutAllHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "LogoutAll")
	defer span.End()
	l := h.logger.With(slog.String("handler", "LogoutAllHandler"))

	userIDStr, ok := GetUserIDFromContext(ctx)
	if !ok {
		span.SetStatus(codes.Error, "Missing user ID in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid user ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.LogoutAll(ctx, userID); err != nil {
		l.ErrorContext(ctx, "Logout all failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Logout all failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Logout failed")
		return
	}

	span.SetStatus(codes.Ok, "All sessions revoked")
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Logged out of all sessions",
	})
}
