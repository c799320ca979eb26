package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, PeriodDay, ParsePeriod("day"))
	assert.Equal(t, PeriodMonth, ParsePeriod(" MONTH "))
	assert.Equal(t, PeriodWeek, ParsePeriod("week"))
	assert.Equal(t, PeriodWeek, ParsePeriod(""))
	assert.Equal(t, PeriodWeek, ParsePeriod("year"))
}

func TestPeriod_Since(t *testing.T) {
	now := time.Date(2026, 5, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, now.AddDate(0, 0, -1), PeriodDay.Since(now))
	assert.Equal(t, now.AddDate(0, 0, -7), PeriodWeek.Since(now))
	assert.Equal(t, now.AddDate(0, 0, -30), PeriodMonth.Since(now))
}

func TestMaxDaily(t *testing.T) {
	assert.True(t, MaxDaily(nil).IsZero())
	days := []DailySales{
		{Date: "2026-05-01", Amount: decimal.RequireFromString("10.5")},
		{Date: "2026-05-02", Amount: decimal.RequireFromString("42")},
		{Date: "2026-05-03", Amount: decimal.RequireFromString("7")},
	}
	assert.True(t, MaxDaily(days).Equal(decimal.NewFromInt(42)))
}
