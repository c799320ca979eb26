package identity

import (
	"context"

	"github.com/shopbot/backend/internal/domain/shared"
)

// UserRepository defines persistence for chat users
type UserRepository interface {
	// GetByExternalID finds a user by chat identity
	GetByExternalID(ctx context.Context, externalID int64) (*User, error)

	// GetOrCreate returns the user for externalID, inserting it on first contact.
	// The bool reports whether a row was created by this call.
	GetOrCreate(ctx context.Context, externalID int64, handle string, lang Language) (*User, bool, error)

	// GetLanguage returns the stored language, or DefaultLanguage for unknown users
	GetLanguage(ctx context.Context, externalID int64) (Language, error)

	UpdateLanguage(ctx context.Context, externalID int64, lang Language) error
	UpdateNickname(ctx context.Context, externalID int64, nickname string) error
	UpdateSubscription(ctx context.Context, externalID int64, subscribed bool) error

	// List returns a page of users, newest first, and the total count
	List(ctx context.Context, filter shared.Filter) ([]User, int64, error)

	Count(ctx context.Context) (int64, error)
}
