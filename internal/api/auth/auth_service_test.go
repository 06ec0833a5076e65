package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/trip-tailor/config"
	"github.com/FACorreiaa/trip-tailor/internal/types"
)

type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (*types.UserAuth, error) {
	args := m.Called(ctx, username, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepository) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.UserAuth, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepository) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockAuthRepository) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshTokenRecord, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RefreshTokenRecord), args.Error(1)
}

func (m *MockAuthRepository) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockAuthRepository) RevokeAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:       "test-access-secret",
		Issuer:          "trip-tailor-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func TestRegister(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), logger)

		mockRepo.On("CreateUser", mock.Anything, "traveler", "t@example.com", mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123")) == nil
		})).Return(&types.UserAuth{ID: uuid.NewString(), Username: "traveler", Email: "t@example.com"}, nil).Once()

		user, err := service.Register(context.Background(), types.RegisterRequest{
			Username: "traveler",
			Email:    "t@example.com",
			Password: "password123",
		})

		require.NoError(t, err)
		assert.Equal(t, "traveler", user.Username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), logger)

		_, err := service.Register(context.Background(), types.RegisterRequest{
			Username: "traveler",
			Email:    "t@example.com",
			Password: "short",
		})

		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DuplicateUser", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), logger)

		mockRepo.On("CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, ErrDuplicateUser).Once()

		_, err := service.Register(context.Background(), types.RegisterRequest{
			Username: "traveler",
			Email:    "t@example.com",
			Password: "password123",
		})

		assert.ErrorIs(t, err, ErrDuplicateUser)
	})
}

func TestLogin(t *testing.T) {
	logger := slog.Default()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), logger)

		hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user := &types.UserAuth{
			ID:       userID.String(),
			Username: "traveler",
			Email:    "t@example.com",
			Password: string(hashed),
		}

		mockRepo.On("GetUserByEmail", mock.Anything, "t@example.com").Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, userID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		tokens, err := service.Login(context.Background(), "t@example.com", "password123")

		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)

		// The access token must carry our claims and verify with the
		// configured secret.
		claims := &types.Claims{}
		parsed, err := jwt.ParseWithClaims(tokens.AccessToken, claims, func(_ *jwt.Token) (interface{}, error) {
			return []byte("test-access-secret"), nil
		})
		require.NoError(t, err)
		assert.True(t, parsed.Valid)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "trip-tailor-test", claims.Issuer)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), logger)

		mockRepo.On("GetUserByEmail", mock.Anything, "nobody@example.com").
			Return(nil, types.ErrNotFound).Once()

		_, err := service.Login(context.Background(), "nobody@example.com", "password123")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), logger)

		hashed, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
		mockRepo.On("GetUserByEmail", mock.Anything, "t@example.com").
			Return(&types.UserAuth{ID: userID.String(), Password: string(hashed)}, nil).Once()

		_, err := service.Login(context.Background(), "t@example.com", "wrong")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRefreshSession(t *testing.T) {
	logger := slog.Default()
	userID := uuid.New()
	user := &types.UserAuth{ID: userID.String(), Username: "traveler", Email: "t@example.com"}

	t.Run("RotatesToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), logger)

		presented := uuid.NewString()
		presentedHash := hashRefreshToken(presented)

		mockRepo.On("GetRefreshToken", mock.Anything, presentedHash).
			Return(&RefreshTokenRecord{UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
		mockRepo.On("GetUserByID", mock.Anything, userID).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, userID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		mockRepo.On("RevokeRefreshToken", mock.Anything, presentedHash).Return(nil).Once()

		tokens, err := service.RefreshSession(context.Background(), presented)

		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEqual(t, presented, tokens.RefreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), logger)

		mockRepo.On("GetRefreshToken", mock.Anything, mock.Anything).
			Return(&RefreshTokenRecord{UserID: userID, ExpiresAt: time.Now().Add(-time.Hour)}, nil).Once()

		_, err := service.RefreshSession(context.Background(), uuid.NewString())

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("RevokedToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), logger)

		revokedAt := time.Now().Add(-time.Minute)
		mockRepo.On("GetRefreshToken", mock.Anything, mock.Anything).
			Return(&RefreshTokenRecord{UserID: userID, ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt}, nil).Once()

		_, err := service.RefreshSession(context.Background(), uuid.NewString())

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), logger)

		mockRepo.On("GetRefreshToken", mock.Anything, mock.Anything).
			Return(nil, types.ErrNotFound).Once()

		_, err := service.RefreshSession(context.Background(), uuid.NewString())

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogout(t *testing.T) {
	mockRepo := new(MockAuthRepository)
	service := NewServiceImpl(mockRepo, testJWTConfig(), slog.Default())

	token := uuid.NewString()
	mockRepo.On("RevokeRefreshToken", mock.Anything, hashRefreshToken(token)).Return(nil).Once()

	err := service.Logout(context.Background(), token)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestLogoutAll(t *testing.T) {
	t.Run("RevokesEverySession", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), slog.Default())

		userID := uuid.New()
		mockRepo.On("RevokeAllUserRefreshTokens", mock.Anything, userID).Return(nil).Once()

		err := service.LogoutAll(context.Background(), userID)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepositoryFailure", func(t *testing.T) {
		mockRepo := new(MockAuthRepository)
		service := NewServiceImpl(mockRepo, testJWTConfig(), slog.Default())

		userID := uuid.New()
		mockRepo.On("RevokeAllUserRefreshTokens", mock.Anything, userID).
			Return(assert.AnError).Once()

		err := service.LogoutAll(context.Background(), userID)

		assert.ErrorIs(t, err, assert.AnError)
	})
}
