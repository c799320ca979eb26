package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/domain/trade"
	"github.com/shopbot/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db, now: time.Now}
}

// Upsert adds quantity to the user's active cart line for the product, creating it if needed
func (r *GormCartRepository) Upsert(ctx context.Context, userID, productID int64, quantity int) (*trade.Cart, error) {
	if quantity < 1 {
		return nil, shared.InvalidInput("quantity must be at least 1")
	}
	var model models.CartModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.ProductModel
		if err := tx.Select("id").First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NotFound(fmt.Sprintf("product %d not found", productID))
			}
			return err
		}

		now := r.now()
		err := tx.Where("user_id = ? AND product_id = ? AND status = ?", userID, productID, trade.CartStatusActive).
			First(&model).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model = models.CartModel{
				UserID:      userID,
				ProductID:   productID,
				Quantity:    quantity,
				Status:      string(trade.CartStatusActive),
				LastUpdated: now,
			}
			return tx.Create(&model).Error
		case err != nil:
			return err
		}

		model.Quantity += quantity
		model.LastUpdated = now
		return tx.Model(&models.CartModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]any{"quantity": model.Quantity, "last_updated": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByID finds a cart by its ID
func (r *GormCartRepository) GetByID(ctx context.Context, id int64) (*trade.Cart, error) {
	var model models.CartModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

type abandonedCartRow struct {
	ID             int64
	UserID         int64
	ProductID      int64
	Quantity       int
	Status         string
	LastUpdated    time.Time
	RemindedAt     *time.Time
	ProductName    string
	Price          decimal.Decimal
	UserExternalID int64
	UserLanguage   string
}

// ListAbandoned returns active carts whose last update is strictly older than now-idle
func (r *GormCartRepository) ListAbandoned(ctx context.Context, now time.Time, idle time.Duration) ([]trade.AbandonedCart, error) {
	var rows []abandonedCartRow
	err := r.db.WithContext(ctx).Table("carts").
		Select(`carts.id, carts.user_id, carts.product_id, carts.quantity, carts.status,
			carts.last_updated, carts.reminded_at,
			products.name AS product_name, products.price AS price,
			users.external_id AS user_external_id,
			COALESCE(users.language, '') AS user_language`).
		Joins("JOIN products ON products.id = carts.product_id").
		Joins("JOIN users ON users.id = carts.user_id").
		Where("carts.status = ? AND carts.last_updated < ?", trade.CartStatusActive, now.Add(-idle)).
		Order("carts.last_updated ASC, carts.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]trade.AbandonedCart, len(rows))
	for i, row := range rows {
		out[i] = trade.AbandonedCart{
			Cart: trade.Cart{
				ID:          row.ID,
				UserID:      row.UserID,
				ProductID:   row.ProductID,
				Quantity:    row.Quantity,
				Status:      trade.CartStatus(row.Status),
				LastUpdated: row.LastUpdated,
				RemindedAt:  row.RemindedAt,
			},
			ProductName:    row.ProductName,
			Price:          row.Price,
			UserExternalID: row.UserExternalID,
			UserLanguage:   row.UserLanguage,
		}
	}
	return out, nil
}

// Abandon marks an active cart as abandoned
func (r *GormCartRepository) Abandon(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&models.CartModel{}).
		Where("id = ? AND status = ?", id, trade.CartStatusActive).
		Updates(map[string]any{"status": string(trade.CartStatusAbandoned), "last_updated": r.now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	cart, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return shared.InvalidState(fmt.Sprintf("cart %d is %s", id, cart.Status))
}

// MarkReminded records when the owner was last reminded about the cart
func (r *GormCartRepository) MarkReminded(ctx context.Context, id int64, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.CartModel{}).
		Where("id = ?", id).
		Update("reminded_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ trade.CartRepository = (*GormCartRepository)(nil)
