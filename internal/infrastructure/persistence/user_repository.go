package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/shopbot/backend/internal/domain/identity"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByExternalID finds a user by chat identity
func (r *GormUserRepository) GetByExternalID(ctx context.Context, externalID int64) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetOrCreate returns the user for externalID, inserting it on first contact.
// Concurrent first contacts race on the unique external_id index; the loser's
// insert is a no-op and both read back the same row.
func (r *GormUserRepository) GetOrCreate(ctx context.Context, externalID int64, handle string, lang identity.Language) (*identity.User, bool, error) {
	existing, err := r.GetByExternalID(ctx, externalID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	user, err := identity.NewUser(externalID, handle, lang)
	if err != nil {
		return nil, false, err
	}
	model := &models.UserModel{}
	model.FromDomain(user)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return nil, false, result.Error
	}

	stored, err := r.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, false, err
	}
	return stored, result.RowsAffected > 0, nil
}

// GetLanguage returns the stored language, or DefaultLanguage for unknown users
func (r *GormUserRepository) GetLanguage(ctx context.Context, externalID int64) (identity.Language, error) {
	var lang string
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Select("language").
		Where("external_id = ?", externalID).
		Limit(1).
		Scan(&lang).Error
	if err != nil {
		return identity.DefaultLanguage, err
	}
	if l := identity.Language(lang); l.IsValid() {
		return l, nil
	}
	return identity.DefaultLanguage, nil
}

// UpdateLanguage sets the interface language of a user
func (r *GormUserRepository) UpdateLanguage(ctx context.Context, externalID int64, lang identity.Language) error {
	if !lang.IsValid() {
		return shared.InvalidInput("unsupported language " + lang.String())
	}
	return r.updateColumn(ctx, externalID, "language", lang.String())
}

// UpdateNickname sets the display nickname of a user
func (r *GormUserRepository) UpdateNickname(ctx context.Context, externalID int64, nickname string) error {
	return r.updateColumn(ctx, externalID, "nickname", nickname)
}

// UpdateSubscription toggles the newsletter flag of a user
func (r *GormUserRepository) UpdateSubscription(ctx context.Context, externalID int64, subscribed bool) error {
	return r.updateColumn(ctx, externalID, "subscribed", subscribed)
}

func (r *GormUserRepository) updateColumn(ctx context.Context, externalID int64, column string, value any) error {
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("external_id = ?", externalID).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns a page of users, newest first, and the total count
func (r *GormUserRepository) List(ctx context.Context, filter shared.Filter) ([]identity.User, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.UserModel{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("handle LIKE ? OR nickname LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.UserModel
	if err := query.Order("created_at DESC, id DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	users := make([]identity.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain()
	}
	return users, total, nil
}

// Count returns the number of registered users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&total).Error
	return total, err
}

// countSince returns users created at or after since
func (r *GormUserRepository) countSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("created_at >= ?", since).
		Count(&total).Error
	return total, err
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
