package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopbot/backend/internal/domain/shared"
)

// MaxMessageLength bounds a single feedback message
const MaxMessageLength = 4000

// Status represents the processing state of a feedback message
type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusAnswered Status = "answered"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusRead, StatusAnswered:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusNew:
		return target == StatusRead || target == StatusAnswered
	case StatusRead:
		return target == StatusAnswered
	}
	return false
}

// ParseStatus converts a raw string into a Status
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.InvalidInput(fmt.Sprintf("unknown feedback status %q", s))
	}
	return status, nil
}

// Feedback is a free-text message left by a customer
type Feedback struct {
	ID        int64
	UserID    int64
	Message   string
	Status    Status
	CreatedAt time.Time
}

// ValidateMessage trims the message and checks its length
func ValidateMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", shared.InvalidInput("feedback message cannot be empty")
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return "", shared.InvalidInput(fmt.Sprintf("feedback message cannot exceed %d characters", MaxMessageLength))
	}
	return message, nil
}

// Repository defines persistence for feedback
type Repository interface {
	Create(ctx context.Context, userID int64, message string) (*Feedback, error)
	GetByID(ctx context.Context, id int64) (*Feedback, error)

	// List returns feedback newest first, optionally narrowed to one status
	List(ctx context.Context, status *Status) ([]Feedback, error)

	// UpdateStatus moves feedback to status, returning ErrInvalidState for a
	// transition the current status does not allow
	UpdateStatus(ctx context.Context, id int64, status Status) error
}
