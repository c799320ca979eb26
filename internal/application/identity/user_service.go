package identity

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopbot/backend/internal/domain/identity"
	"github.com/shopbot/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const maxNicknameLength = 64

// UserService manages chat users and their preferences
type UserService struct {
	users  identity.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger}
}

// List returns a page of users and the total count
func (s *UserService) List(ctx context.Context, req ListUsersRequest) ([]UserResponse, int64, error) {
	filter := shared.Filter{Page: req.Page, PageSize: req.PageSize, Search: strings.TrimSpace(req.Search)}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToUserResponses(users), total, nil
}

// Get returns one user by chat identity
func (s *UserService) Get(ctx context.Context, externalID int64) (*UserResponse, error) {
	user, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Register records a first contact and returns the user
func (s *UserService) Register(ctx context.Context, externalID int64, handle, lang string) (*UserResponse, error) {
	user, created, err := s.users.GetOrCreate(ctx, externalID, handle, identity.ParseLanguage(lang))
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("Registered new customer", zap.Int64("external_id", externalID))
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Language returns the user's interface language, the default for unknown users
func (s *UserService) Language(ctx context.Context, externalID int64) (identity.Language, error) {
	return s.users.GetLanguage(ctx, externalID)
}

// UpdateProfile applies the non-nil preference changes
func (s *UserService) UpdateProfile(ctx context.Context, externalID int64, req UpdateProfileRequest) (*UserResponse, error) {
	if req.Language != nil {
		if err := s.users.UpdateLanguage(ctx, externalID, identity.ParseLanguage(*req.Language)); err != nil {
			return nil, err
		}
	}
	if req.Nickname != nil {
		nickname, err := normalizeNickname(*req.Nickname)
		if err != nil {
			return nil, err
		}
		if err := s.users.UpdateNickname(ctx, externalID, nickname); err != nil {
			return nil, err
		}
	}
	if req.Subscribed != nil {
		if err := s.users.UpdateSubscription(ctx, externalID, *req.Subscribed); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, externalID)
}

// Count returns the number of registered users
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

func normalizeNickname(raw string) (string, error) {
	nickname := strings.TrimSpace(raw)
	if utf8.RuneCountInString(nickname) > maxNicknameLength {
		return "", shared.InvalidInput("nickname is too long")
	}
	return nickname, nil
}
