package feedback

import (
	"context"

	"github.com/shopbot/backend/internal/domain/feedback"
	"github.com/shopbot/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// Service accepts customer feedback and lets admins triage it
type Service struct {
	repo   feedback.Repository
	users  identity.UserRepository
	logger *zap.Logger
}

// NewService creates a new feedback Service
func NewService(repo feedback.Repository, users identity.UserRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, users: users, logger: logger}
}

// Submit stores a message from a customer, registering them on first contact
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Response, error) {
	message, err := feedback.ValidateMessage(req.Message)
	if err != nil {
		return nil, err
	}
	user, _, err := s.users.GetOrCreate(ctx, req.ExternalID, req.Handle, identity.ParseLanguage(req.Language))
	if err != nil {
		return nil, err
	}
	f, err := s.repo.Create(ctx, user.ID, message)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Feedback received", zap.Int64("feedback_id", f.ID), zap.Int64("user_id", user.ID))
	resp := ToResponse(f)
	return &resp, nil
}

// List returns feedback newest first. An empty status lists everything.
func (s *Service) List(ctx context.Context, status string) ([]Response, error) {
	var filter *feedback.Status
	if status != "" {
		parsed, err := feedback.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &parsed
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToResponses(items), nil
}

// MarkStatus moves feedback to status
func (s *Service) MarkStatus(ctx context.Context, id int64, status string) (*Response, error) {
	target, err := feedback.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(f)
	return &resp, nil
}
