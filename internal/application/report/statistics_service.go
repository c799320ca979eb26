package report

import (
	"context"
	"time"

	"github.com/shopbot/backend/internal/domain/report"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TopProductResponse is one entry of the best sellers list
type TopProductResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DailySalesResponse is one day of the sales chart. Ratio is the day's amount
// relative to the best day, in [0, 1].
type DailySalesResponse struct {
	Date   string          `json:"date"`
	Orders int64           `json:"orders"`
	Amount decimal.Decimal `json:"amount"`
	Ratio  float64         `json:"ratio"`
}

// StatisticsResponse represents the shop statistics for a period
type StatisticsResponse struct {
	Period          string               `json:"period"`
	From            time.Time            `json:"from"`
	To              time.Time            `json:"to"`
	TotalOrders     int64                `json:"total_orders"`
	SoldOrders      int64                `json:"sold_orders"`
	TotalSales      decimal.Decimal      `json:"total_sales"`
	AverageOrder    decimal.Decimal      `json:"average_order"`
	TotalUsers      int64                `json:"total_users"`
	NewUsers24h     int64                `json:"new_users_24h"`
	TopProducts     []TopProductResponse `json:"top_products"`
	SalesByDay      []DailySalesResponse `json:"sales_by_day"`
	MaxDailySales   decimal.Decimal      `json:"max_daily_sales"`
}

// StatisticsService computes shop statistics by period
type StatisticsService struct {
	repo   report.StatisticsRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewStatisticsService creates a new StatisticsService
func NewStatisticsService(repo report.StatisticsRepository, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{repo: repo, logger: logger, now: time.Now}
}

// Statistics returns statistics for the named period; unknown names fall back to a week
func (s *StatisticsService) Statistics(ctx context.Context, period string) (*StatisticsResponse, error) {
	p := report.ParsePeriod(period)
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "statistics", "period", string(p))
	defer span.End()

	stats, err := s.repo.Get(ctx, p, s.now())
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to compute statistics", zap.String("period", string(p)), zap.Error(err))
		return nil, err
	}
	telemetry.SetOK(span)
	return toStatisticsResponse(stats), nil
}

func toStatisticsResponse(s *report.Statistics) *StatisticsResponse {
	resp := &StatisticsResponse{
		Period:          string(s.Period),
		From:            s.From,
		To:              s.To,
		TotalOrders:     s.TotalOrders,
		SoldOrders:      s.SoldOrders,
		TotalSales:      s.TotalSales,
		AverageOrder:    decimal.Zero,
		TotalUsers:      s.TotalUsers,
		NewUsers24h:     s.NewUsers24h,
		TopProducts:     make([]TopProductResponse, len(s.TopProducts)),
		SalesByDay:      make([]DailySalesResponse, len(s.SalesByDay)),
		MaxDailySales:   s.MaxDailySales,
	}
	if s.SoldOrders > 0 {
		resp.AverageOrder = s.TotalSales.DivRound(decimal.NewFromInt(s.SoldOrders), 2)
	}
	for i, p := range s.TopProducts {
		resp.TopProducts[i] = TopProductResponse{Name: p.Name, Count: p.Count}
	}
	for i, d := range s.SalesByDay {
		day := DailySalesResponse{Date: d.Date, Orders: d.Orders, Amount: d.Amount}
		if s.MaxDailySales.IsPositive() {
			day.Ratio = d.Amount.Div(s.MaxDailySales).Round(4).InexactFloat64()
		}
		resp.SalesByDay[i] = day
	}
	return resp
}
