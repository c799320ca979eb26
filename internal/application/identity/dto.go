package identity

import (
	"time"

	"github.com/shopbot/backend/internal/domain/identity"
	"github.com/shopbot/backend/internal/infrastructure/auth"
)

// LoginRequest contains admin credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally carries the refresh token so it is revoked together
// with the access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	Username              string    `json:"username"`
}

func toTokenResponse(pair *auth.TokenPair, username string) *TokenResponse {
	return &TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		Username:              username,
	}
}

// ListUsersRequest filters the admin user listing
type ListUsersRequest struct {
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UserResponse represents a chat user in API responses
type UserResponse struct {
	ID          int64     `json:"id"`
	ExternalID  int64     `json:"external_id"`
	Handle      string    `json:"handle"`
	Nickname    string    `json:"nickname,omitempty"`
	DisplayName string    `json:"display_name"`
	Language    string    `json:"language"`
	Subscribed  bool      `json:"subscribed"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToUserResponse converts a domain user to a response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		ExternalID:  u.ExternalID,
		Handle:      u.Handle,
		Nickname:    u.Nickname,
		DisplayName: u.DisplayName(),
		Language:    u.Language.String(),
		Subscribed:  u.Subscribed,
		CreatedAt:   u.CreatedAt,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}

// UpdateProfileRequest changes chat user preferences. Nil fields are left as is.
type UpdateProfileRequest struct {
	Language   *string `json:"language" binding:"omitempty,max=16"`
	Nickname   *string `json:"nickname" binding:"omitempty,max=64"`
	Subscribed *bool   `json:"subscribed"`
}
