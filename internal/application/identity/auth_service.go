package identity

import (
	"context"
	"errors"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// ErrInvalidSession is returned when a token is expired, malformed or revoked
var ErrInvalidSession = shared.NewDomainError(shared.ErrUnauthorized.Code, "Session is invalid or has expired")

// AuthService handles admin login and the token lifecycle
type AuthService struct {
	authenticator *auth.AdminAuthenticator
	jwtService    *auth.JWTService
	blacklist     auth.TokenBlacklist
	logger        *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	authenticator *auth.AdminAuthenticator,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if blacklist == nil {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		authenticator: authenticator,
		jwtService:    jwtService,
		blacklist:     blacklist,
		logger:        logger,
	}
}

// Login verifies admin credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if err := s.authenticator.Authenticate(req.Username, req.Password); err != nil {
		s.logger.Warn("Failed admin login", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.jwtService.GenerateTokenPair(req.Username)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Admin logged in", zap.String("username", req.Username))
	return toTokenResponse(pair, req.Username), nil
}

// Refresh rotates a refresh token. The presented token is revoked so it
// cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Debug("Refresh token rejected", zap.Error(err))
		return nil, ErrInvalidSession
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrMaxRefreshExceeded) {
			return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "Session has reached its refresh limit, please log in again")
		}
		return nil, ErrInvalidSession
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke rotated refresh token", zap.String("jti", claims.ID), zap.Error(err))
	}
	return toTokenResponse(pair, claims.Username), nil
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, req LogoutRequest) error {
	if err := s.blacklist.AddToBlacklist(ctx, access.ID, access.GetRemainingTTL()); err != nil {
		return err
	}
	if req.RefreshToken != "" {
		if refresh, err := s.jwtService.ValidateRefreshToken(req.RefreshToken); err == nil && refresh.Username == access.Username {
			if err := s.blacklist.AddToBlacklist(ctx, refresh.ID, refresh.GetRemainingTTL()); err != nil {
				return err
			}
		}
	}
	s.logger.Info("Admin logged out", zap.String("username", access.Username))
	return nil
}

// Authenticate validates a bearer access token and checks it was not revoked
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(token)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, shared.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) ensureNotRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		// fail closed
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
		return ErrInvalidSession
	}
	if revoked {
		return ErrInvalidSession
	}
	return nil
}
