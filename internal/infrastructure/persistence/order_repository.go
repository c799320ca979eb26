package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/domain/trade"
	"github.com/shopbot/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentTypeTransfer is the only payment method the shop accepts
const PaymentTypeTransfer = "transfer"

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create places a single-product order at the product's current price
func (r *GormOrderRepository) Create(ctx context.Context, userID, productID int64, delivery trade.DeliveryType) (int64, error) {
	if !delivery.IsValid() {
		return 0, shared.InvalidInput(fmt.Sprintf("unknown delivery type %q", delivery))
	}
	var orderID int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		price, err := productPrice(tx, productID)
		if err != nil {
			return err
		}
		order := newOrderModel(userID, productID, 1, price, delivery, trade.OrderStatusPending)
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// CreateFromCart converts an active cart into an order and completes the cart
func (r *GormOrderRepository) CreateFromCart(ctx context.Context, cartID int64) (int64, error) {
	var orderID int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.CartModel
		if err := tx.First(&cart, "id = ?", cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NotFound(fmt.Sprintf("cart %d not found", cartID))
			}
			return err
		}
		if trade.CartStatus(cart.Status) != trade.CartStatusActive {
			return shared.InvalidState(fmt.Sprintf("cart %d is %s", cartID, cart.Status))
		}

		price, err := productPrice(tx, cart.ProductID)
		if err != nil {
			return err
		}
		order := newOrderModel(cart.UserID, cart.ProductID, cart.Quantity, price, trade.DeliveryPoint1, trade.OrderStatusCreated)
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		result := tx.Model(&models.CartModel{}).
			Where("id = ? AND status = ?", cartID, trade.CartStatusActive).
			Updates(map[string]any{"status": string(trade.CartStatusCompleted), "last_updated": time.Now()})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.InvalidState(fmt.Sprintf("cart %d changed concurrently", cartID))
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

func productPrice(tx *gorm.DB, productID int64) (decimal.Decimal, error) {
	var product models.ProductModel
	if err := tx.Select("id", "price").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, shared.NotFound(fmt.Sprintf("product %d not found", productID))
		}
		return decimal.Zero, err
	}
	return product.Price, nil
}

func newOrderModel(userID, productID int64, quantity int, price decimal.Decimal, delivery trade.DeliveryType, status trade.OrderStatus) *models.OrderModel {
	pid := productID
	return &models.OrderModel{
		UserID:       userID,
		TotalAmount:  price.Mul(decimal.NewFromInt(int64(quantity))),
		DeliveryType: string(delivery),
		PaymentType:  PaymentTypeTransfer,
		Status:       status.String(),
		Items: []models.OrderItemModel{{
			ProductID: &pid,
			Quantity:  quantity,
			Price:     price,
		}},
	}
}

// UpdateStatus overwrites the status without checking the current one
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status trade.OrderStatus) (bool, error) {
	if !status.IsValid() {
		return false, shared.InvalidInput(fmt.Sprintf("unknown order status %q", status))
	}
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"status": status.String(), "updated_at": time.Now()})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// TransitionStatus sets to only while the stored status is from
func (r *GormOrderRepository) TransitionStatus(ctx context.Context, orderID int64, from, to trade.OrderStatus) (bool, error) {
	if !to.IsValid() {
		return false, shared.InvalidInput(fmt.Sprintf("unknown order status %q", to))
	}
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", orderID, from.String()).
		Updates(map[string]any{"status": to.String(), "updated_at": time.Now()})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByID returns one order joined with its customer and items
func (r *GormOrderRepository) GetByID(ctx context.Context, orderID int64) (*trade.OrderSummary, error) {
	summaries, err := r.summaries(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("orders.id = ?", orderID)
	})
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, shared.NotFound(fmt.Sprintf("order %d not found", orderID))
	}
	return &summaries[0], nil
}

// ListByUser returns a user's orders, newest first
func (r *GormOrderRepository) ListByUser(ctx context.Context, userID int64) ([]trade.OrderSummary, error) {
	return r.summaries(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("orders.user_id = ?", userID)
	})
}

// CountByUser returns how many orders a user has placed
func (r *GormOrderRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

// ListPending returns orders awaiting admin attention, newest first
func (r *GormOrderRepository) ListPending(ctx context.Context) ([]trade.OrderSummary, error) {
	return r.summaries(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("orders.status IN ?", statusStrings(trade.PendingOrderStatuses))
	})
}

// List returns a page of all orders, optionally narrowed to one status
func (r *GormOrderRepository) List(ctx context.Context, filter trade.OrderFilter) ([]trade.OrderSummary, int64, error) {
	page := filter.Filter.Normalize()
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			q = q.Where("orders.status = ?", filter.Status.String())
		}
		return q
	}

	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&models.OrderModel{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	summaries, err := r.summaries(ctx, func(q *gorm.DB) *gorm.DB {
		return scope(q).Offset(page.Offset()).Limit(page.PageSize)
	})
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

type orderSummaryRow struct {
	ID             int64
	UserID         int64
	TotalAmount    decimal.Decimal
	DeliveryType   string
	PaymentType    string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UserExternalID int64
	UserHandle     string
	UserLanguage   string
}

type orderItemRow struct {
	ID          int64
	OrderID     int64
	ProductID   *int64
	Quantity    int
	Price       decimal.Decimal
	ProductName string
}

// summaries loads orders newest first with their customer, then their items in
// a second query, and renders the display strings in Go so the query stays
// portable across postgres, mysql and sqlite.
func (r *GormOrderRepository) summaries(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]trade.OrderSummary, error) {
	db := r.db.WithContext(ctx)

	var rows []orderSummaryRow
	query := db.Table("orders").
		Select(`orders.id, orders.user_id, orders.total_amount, orders.delivery_type,
			COALESCE(orders.payment_type, '') AS payment_type, orders.status,
			orders.created_at, orders.updated_at,
			users.external_id AS user_external_id,
			COALESCE(users.handle, '') AS user_handle,
			COALESCE(users.language, '') AS user_language`).
		Joins("JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC, orders.id DESC")
	if err := scope(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []trade.OrderSummary{}, nil
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	var items []orderItemRow
	if err := db.Table("order_items").
		Select(`order_items.id, order_items.order_id, order_items.product_id,
			order_items.quantity, order_items.price,
			COALESCE(products.name, '') AS product_name`).
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id IN ?", ids).
		Order("order_items.id ASC").
		Scan(&items).Error; err != nil {
		return nil, err
	}
	byOrder := make(map[int64][]orderItemRow, len(rows))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	out := make([]trade.OrderSummary, len(rows))
	for i, row := range rows {
		out[i] = buildSummary(row, byOrder[row.ID])
	}
	return out, nil
}

func buildSummary(row orderSummaryRow, items []orderItemRow) trade.OrderSummary {
	summary := trade.OrderSummary{
		Order: trade.Order{
			ID:           row.ID,
			UserID:       row.UserID,
			TotalAmount:  row.TotalAmount,
			DeliveryType: trade.DeliveryType(row.DeliveryType),
			PaymentType:  row.PaymentType,
			Status:       trade.OrderStatus(row.Status),
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
			Items:        make([]trade.OrderItem, len(items)),
		},
		UserExternalID: row.UserExternalID,
		UserHandle:     row.UserHandle,
		UserLanguage:   row.UserLanguage,
	}
	names := make([]string, len(items))
	quantities := make([]string, len(items))
	for i, item := range items {
		summary.Items[i] = trade.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		names[i] = item.ProductName
		quantities[i] = strconv.Itoa(item.Quantity)
	}
	summary.ProductNames = strings.Join(names, ", ")
	summary.Quantities = strings.Join(quantities, ", ")
	return summary
}

func statusStrings(statuses []trade.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
