package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/trip-tailor/config"
	"github.com/FACorreiaa/trip-tailor/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// ErrInvalidCredentials is returned on bad email/password combinations and
// on unknown, expired or revoked refresh tokens. Callers must not be able
// to distinguish the cases.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.UserAuth, error)
	Login(ctx context.Context, email, password string) (*types.TokenResponse, error)
	RefreshSession(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
}

type ServiceImpl struct {
	logger         *slog.Logger
	authRepository Repository
	jwtCfg         config.JWTConfig
}

func NewServiceImpl(repo Repository, jwtCfg config.JWTConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		authRepository: repo,
		jwtCfg:         jwtCfg,
	}
}

// hashRefreshToken maps an opaque refresh token to its storage form.
func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *ServiceImpl) generateAccessToken(user *types.UserAuth) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// issueTokens mints an access token and stores a fresh refresh token for
// the user.
func (s *ServiceImpl) issueTokens(ctx context.Context, user *types.UserAuth) (*types.TokenResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", user.ID, err)
	}

	refreshToken := uuid.NewString()
	expiresAt := time.Now().Add(s.jwtCfg.RefreshTokenTTL)
	if err := s.authRepository.StoreRefreshToken(ctx, userID, hashRefreshToken(refreshToken), expiresAt); err != nil {
		return nil, err
	}

	return &types.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *ServiceImpl) Register(ctx context.Context, req types.RegisterRequest) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()
	l := s.logger.With(slog.String("method", "Register"))

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, errors.New("username, email and password are required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.authRepository.CreateUser(ctx, req.Username, req.Email, string(hashed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create user")
		return nil, err
	}

	l.InfoContext(ctx, "User registered", slog.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "User registered")
	return user, nil
}

func (s *ServiceImpl) Login(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()
	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.authRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to look up user")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		l.WarnContext(ctx, "Password mismatch", slog.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to issue tokens")
		return nil, err
	}

	l.InfoContext(ctx, "User logged in", slog.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "Logged in")
	return tokens, nil
}

// RefreshSession rotates a refresh token: the presented token is revoked
// and a new pair is issued.
func (s *ServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "RefreshSession")
	defer span.End()
	l := s.logger.With(slog.String("method", "RefreshSession"))

	tokenHash := hashRefreshToken(refreshToken)
	rec, err := s.authRepository.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to look up refresh token")
		return nil, err
	}
	if time.Now().After(rec.ExpiresAt) || rec.RevokedAt != nil {
		l.WarnContext(ctx, "Refresh token expired or revoked", slog.String("user_id", rec.UserID.String()))
		return nil, ErrInvalidCredentials
	}

	user, err := s.authRepository.GetUserByID(ctx, rec.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load user")
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to issue tokens")
		return nil, err
	}

	if err := s.authRepository.RevokeRefreshToken(ctx, tokenHash); err != nil {
		l.WarnContext(ctx, "Failed to revoke old refresh token", slog.Any("error", err))
	}

	span.SetStatus(codes.Ok, "Session refreshed")
	return tokens, nil
}

func (s *ServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Logout")
	defer span.End()

	if err := s.authRepository.RevokeRefreshToken(ctx, hashRefreshToken(refreshToken)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to revoke refresh token")
		return err
	}
	span.SetStatus(codes.Ok, "Logged out")
	return nil
}

// LogoutAll revokes every active refresh token for the user, ending all of
// their sessions at once.
func (s *ServiceImpl) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "LogoutAll")
	defer span.End()

	if err := s.authRepository.RevokeAllUserRefreshTokens(ctx, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to revoke user refresh tokens")
		return err
	}
	s.logger.InfoContext(ctx, "All sessions revoked", slog.String("userID", userID.String()))
	span.SetStatus(codes.Ok, "All sessions revoked")
	return nil
}
