package identity

import (
	"context"
	"testing"
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/auth"
	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, maxRefresh int) (*AuthService, *auth.JWTService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	authenticator, err := auth.NewAdminAuthenticator([]config.AdminCredential{
		{Username: "owner", PasswordHash: string(hash)},
	})
	require.NoError(t, err)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret-0123456789abcdef",
		RefreshSecret:          "test-refresh-secret-0123456789abcdef",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "shopbot-test",
		MaxRefreshCount:        maxRefresh,
	})
	return NewAuthService(authenticator, jwtService, auth.NewInMemoryTokenBlacklist(), nil), jwtService
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newTestAuthService(t, 5)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{Username: "owner", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "owner", resp.Username)

		claims, err := svc.Authenticate(ctx, resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "owner", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "owner", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "ghost", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Authenticate_RejectsRefreshToken(t *testing.T) {
	svc, _ := newTestAuthService(t, 5)
	ctx := context.Background()
	resp, err := svc.Login(ctx, LoginRequest{Username: "owner", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthService_Refresh_Rotates(t *testing.T) {
	svc, _ := newTestAuthService(t, 5)
	ctx := context.Background()
	login, err := svc.Login(ctx, LoginRequest{Username: "owner", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, "owner", refreshed.Username)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidSession, "a rotated refresh token cannot be replayed")
}

func TestAuthService_Refresh_Limit(t *testing.T) {
	svc, _ := newTestAuthService(t, 1)
	ctx := context.Background()
	login, err := svc.Login(ctx, LoginRequest{Username: "owner", Password: "s3cret-pass"})
	require.NoError(t, err)

	first, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: first.RefreshToken})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthService_Logout(t *testing.T) {
	svc, jwtService := newTestAuthService(t, 5)
	ctx := context.Background()
	login, err := svc.Login(ctx, LoginRequest{Username: "owner", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims, LogoutRequest{RefreshToken: login.RefreshToken}))

	_, err = svc.Authenticate(ctx, login.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidSession)
}
