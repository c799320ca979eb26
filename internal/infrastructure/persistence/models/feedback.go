package models

import (
	"time"

	"github.com/shopbot/backend/internal/domain/feedback"
)

// FeedbackModel is the persistence model for customer feedback.
type FeedbackModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"not null;index:idx_feedback_user_id"`
	Message   string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'new';index:idx_feedback_status"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FeedbackModel) TableName() string {
	return "feedback"
}

// ToDomain converts the persistence model to a domain Feedback entity.
func (m *FeedbackModel) ToDomain() *feedback.Feedback {
	return &feedback.Feedback{
		ID:        m.ID,
		UserID:    m.UserID,
		Message:   m.Message,
		Status:    feedback.Status(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Feedback entity.
func (m *FeedbackModel) FromDomain(f *feedback.Feedback) {
	m.ID = f.ID
	m.UserID = f.UserID
	m.Message = f.Message
	m.Status = f.Status.String()
	m.CreatedAt = f.CreatedAt
}
