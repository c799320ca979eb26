package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/shopbot/backend/internal/domain/report"
	"github.com/shopbot/backend/internal/domain/trade"
	"github.com/shopbot/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const salesDateLayout = "2006-01-02"

// GormStatisticsRepository implements report.StatisticsRepository using GORM
type GormStatisticsRepository struct {
	db    *gorm.DB
	users *GormUserRepository
}

// NewGormStatisticsRepository creates a new GormStatisticsRepository
func NewGormStatisticsRepository(db *gorm.DB) *GormStatisticsRepository {
	return &GormStatisticsRepository{db: db, users: NewGormUserRepository(db)}
}

// soldOrderRow is the projection used for sales aggregation
type soldOrderRow struct {
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// topProductResult is the result of the best seller query
type topProductResult struct {
	Name  string
	Count int64
}

// Get computes the statistics for the period ending at now
func (r *GormStatisticsRepository) Get(ctx context.Context, period report.Period, now time.Time) (*report.Statistics, error) {
	since := period.Since(now)
	db := r.db.WithContext(ctx)
	sold := statusStrings(trade.SoldOrderStatuses)

	stats := &report.Statistics{
		Period:      period,
		From:        since,
		To:          now,
		TotalSales:  decimal.Zero,
		TopProducts: []report.TopProduct{},
		SalesByDay:  []report.DailySales{},
	}

	if err := db.Model(&models.OrderModel{}).
		Where("created_at >= ?", since).
		Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	var soldRows []soldOrderRow
	if err := db.Model(&models.OrderModel{}).
		Select("total_amount, created_at").
		Where("created_at >= ? AND status IN ?", since, sold).
		Scan(&soldRows).Error; err != nil {
		return nil, err
	}
	stats.SoldOrders = int64(len(soldRows))
	stats.SalesByDay = groupSalesByDay(soldRows, now.Location())
	for _, row := range soldRows {
		stats.TotalSales = stats.TotalSales.Add(row.TotalAmount)
	}
	stats.MaxDailySales = report.MaxDaily(stats.SalesByDay)

	var err error
	if stats.TotalUsers, err = r.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.NewUsers24h, err = r.users.countSince(ctx, now.Add(-24*time.Hour)); err != nil {
		return nil, err
	}

	var top []topProductResult
	if err := db.Table("order_items").
		Select("products.name AS name, COUNT(*) AS count").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.status IN ?", since, sold).
		Group("products.id, products.name").
		Order("count DESC, products.name ASC").
		Limit(report.TopProductsLimit).
		Scan(&top).Error; err != nil {
		return nil, err
	}
	for _, t := range top {
		stats.TopProducts = append(stats.TopProducts, report.TopProduct{Name: t.Name, Count: t.Count})
	}

	return stats, nil
}

// groupSalesByDay buckets sold orders by calendar day in loc, newest day first
func groupSalesByDay(rows []soldOrderRow, loc *time.Location) []report.DailySales {
	byDay := make(map[string]*report.DailySales)
	for _, row := range rows {
		key := row.CreatedAt.In(loc).Format(salesDateLayout)
		day, ok := byDay[key]
		if !ok {
			day = &report.DailySales{Date: key, Amount: decimal.Zero}
			byDay[key] = day
		}
		day.Orders++
		day.Amount = day.Amount.Add(row.TotalAmount)
	}

	out := make([]report.DailySales, 0, len(byDay))
	for _, day := range byDay {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

var _ report.StatisticsRepository = (*GormStatisticsRepository)(nil)
