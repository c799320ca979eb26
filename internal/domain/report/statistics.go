package report

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TopProductsLimit is how many best sellers a statistics report carries
const TopProductsLimit = 5

// Period is the reporting window of a statistics query
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// DefaultPeriod is used whenever a period is missing or unknown
const DefaultPeriod = PeriodWeek

// ParsePeriod converts a raw string into a Period, falling back to DefaultPeriod
func ParsePeriod(s string) Period {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p
	}
	return DefaultPeriod
}

// Days returns the length of the period in days
func (p Period) Days() int {
	switch p {
	case PeriodDay:
		return 1
	case PeriodMonth:
		return 30
	}
	return 7
}

// Since returns the start of the window ending at now
func (p Period) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.Days())
}

// TopProduct is a best seller within the period
type TopProduct struct {
	Name  string
	Count int64
}

// DailySales aggregates sold orders for one calendar day
type DailySales struct {
	Date   string
	Orders int64
	Amount decimal.Decimal
}

// Statistics is a read-side sales summary for one period
type Statistics struct {
	Period          Period
	From            time.Time
	To              time.Time
	TotalOrders     int64
	// SoldOrders counts paid, confirmed and completed orders
	SoldOrders      int64
	TotalSales      decimal.Decimal
	TotalUsers      int64
	NewUsers24h     int64
	TopProducts     []TopProduct
	SalesByDay      []DailySales
	MaxDailySales   decimal.Decimal
}

// MaxDaily returns the highest day amount in days, zero when empty
func MaxDaily(days []DailySales) decimal.Decimal {
	max := decimal.Zero
	for _, d := range days {
		if d.Amount.GreaterThan(max) {
			max = d.Amount
		}
	}
	return max
}

// StatisticsRepository computes statistics from stored orders and users
type StatisticsRepository interface {
	Get(ctx context.Context, period Period, now time.Time) (*Statistics, error)
}
