package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// maxCategoryDepth bounds Path walks over a corrupted parent chain
const maxCategoryDepth = 64

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// ListChildren returns direct children of parentID ordered by name, or the roots when nil
func (r *GormCategoryRepository) ListChildren(ctx context.Context, parentID *int64) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := whereParent(r.db.WithContext(ctx), parentID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Category, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// GetByID finds a category by its ID
func (r *GormCategoryRepository) GetByID(ctx context.Context, id int64) (*catalog.Category, error) {
	return getCategory(r.db.WithContext(ctx), id)
}

// Path returns the chain from the root down to id
func (r *GormCategoryRepository) Path(ctx context.Context, id int64) ([]catalog.Category, error) {
	db := r.db.WithContext(ctx)
	var chain []catalog.Category
	next := &id
	for next != nil {
		if len(chain) >= maxCategoryDepth {
			return nil, shared.InvalidState(fmt.Sprintf("category %d has a cyclic parent chain", id))
		}
		c, err := getCategory(db, *next)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *c)
		next = c.ParentID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Create inserts a new category and sets its ID
func (r *GormCategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	model := &models.CategoryModel{}
	model.FromDomain(category)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	category.ID = model.ID
	return nil
}

// Update renames or moves a category
func (r *GormCategoryRepository) Update(ctx context.Context, category *catalog.Category) error {
	result := r.db.WithContext(ctx).Model(&models.CategoryModel{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"name":      category.Name,
			"parent_id": category.ParentID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a leaf category and detaches its products
func (r *GormCategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var children int64
		if err := tx.Model(&models.CategoryModel{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return shared.InvalidState(fmt.Sprintf("category %d has %d subcategories", id, children))
		}
		if err := tx.Model(&models.ProductModel{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CategoryModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// EnsurePath creates any missing levels of names, matching by (name, parent),
// and returns the leaf id. An empty path returns nil.
func (r *GormCategoryRepository) EnsurePath(ctx context.Context, names []string) (*int64, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var leaf *int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent *int64
		for _, name := range names {
			var model models.CategoryModel
			err := whereParent(tx, parent).Where("name = ?", name).Order("id ASC").First(&model).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				category, cerr := catalog.NewCategory(name, parent)
				if cerr != nil {
					return cerr
				}
				model.FromDomain(category)
				if err := tx.Create(&model).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			}
			id := model.ID
			parent = &id
		}
		leaf = parent
		return nil
	})
	if err != nil {
		return nil, err
	}
	return leaf, nil
}

func getCategory(db *gorm.DB, id int64) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func whereParent(db *gorm.DB, parentID *int64) *gorm.DB {
	if parentID == nil {
		return db.Where("parent_id IS NULL")
	}
	return db.Where("parent_id = ?", *parentID)
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
