package feedback

import (
	"time"

	"github.com/shopbot/backend/internal/domain/feedback"
)

// SubmitRequest carries a customer's feedback message
type SubmitRequest struct {
	ExternalID int64  `json:"external_id" binding:"required"`
	Handle     string `json:"handle" binding:"max=255"`
	Language   string `json:"language" binding:"omitempty,max=16"`
	Message    string `json:"message" binding:"required"`
}

// UpdateStatusRequest moves feedback to a new status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new read answered"`
}

// Response represents feedback in API responses
type Response struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts domain feedback to a response
func ToResponse(f *feedback.Feedback) Response {
	return Response{
		ID:        f.ID,
		UserID:    f.UserID,
		Message:   f.Message,
		Status:    f.Status.String(),
		CreatedAt: f.CreatedAt,
	}
}

// ToResponses converts a slice of feedback
func ToResponses(items []feedback.Feedback) []Response {
	out := make([]Response, len(items))
	for i := range items {
		out[i] = ToResponse(&items[i])
	}
	return out
}
