package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopbot/backend/internal/domain/feedback"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFeedbackRepository implements feedback.Repository using GORM
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewGormFeedbackRepository creates a new GormFeedbackRepository
func NewGormFeedbackRepository(db *gorm.DB) *GormFeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

// Create stores a new feedback message with status new
func (r *GormFeedbackRepository) Create(ctx context.Context, userID int64, message string) (*feedback.Feedback, error) {
	message, err := feedback.ValidateMessage(message)
	if err != nil {
		return nil, err
	}
	model := &models.FeedbackModel{
		UserID:    userID,
		Message:   message,
		Status:    feedback.StatusNew.String(),
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByID finds feedback by its ID
func (r *GormFeedbackRepository) GetByID(ctx context.Context, id int64) (*feedback.Feedback, error) {
	var model models.FeedbackModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns feedback newest first, optionally narrowed to one status
func (r *GormFeedbackRepository) List(ctx context.Context, status *feedback.Status) ([]feedback.Feedback, error) {
	query := r.db.WithContext(ctx)
	if status != nil {
		query = query.Where("status = ?", status.String())
	}
	var rows []models.FeedbackModel
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]feedback.Feedback, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// UpdateStatus moves feedback to status when the transition is allowed
func (r *GormFeedbackRepository) UpdateStatus(ctx context.Context, id int64, status feedback.Status) error {
	if !status.IsValid() {
		return shared.InvalidInput(fmt.Sprintf("unknown feedback status %q", status))
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(status) {
		return shared.InvalidState(fmt.Sprintf("cannot change feedback status from %s to %s", current.Status, status))
	}
	result := r.db.WithContext(ctx).Model(&models.FeedbackModel{}).
		Where("id = ? AND status = ?", id, current.Status.String()).
		Update("status", status.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.InvalidState(fmt.Sprintf("feedback %d changed concurrently", id))
	}
	return nil
}

var _ feedback.Repository = (*GormFeedbackRepository)(nil)
