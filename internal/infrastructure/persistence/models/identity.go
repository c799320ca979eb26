package models

import (
	"time"

	"github.com/shopbot/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	ExternalID int64     `gorm:"not null;uniqueIndex:idx_users_external_id"`
	Handle     string    `gorm:"type:varchar(255)"`
	Nickname   string    `gorm:"type:varchar(255)"`
	Language   string    `gorm:"type:varchar(8);not null;default:'ru'"`
	Subscribed bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	lang := identity.Language(m.Language)
	if !lang.IsValid() {
		lang = identity.DefaultLanguage
	}
	return &identity.User{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		Handle:     m.Handle,
		Nickname:   m.Nickname,
		Language:   lang,
		Subscribed: m.Subscribed,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.ID = u.ID
	m.ExternalID = u.ExternalID
	m.Handle = u.Handle
	m.Nickname = u.Nickname
	m.Language = u.Language.String()
	m.Subscribed = u.Subscribed
	m.CreatedAt = u.CreatedAt
}
