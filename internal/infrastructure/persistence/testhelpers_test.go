package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database with every table migrated
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// each new connection would get its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newMockDB creates a gorm DB backed by sqlmock using the postgres dialector
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func seedUser(t *testing.T, db *gorm.DB, externalID int64, handle string) int64 {
	t.Helper()
	u := &models.UserModel{ExternalID: externalID, Handle: handle, Language: "ru", CreatedAt: time.Now()}
	require.NoError(t, db.Create(u).Error)
	return u.ID
}

func seedProduct(t *testing.T, db *gorm.DB, code, name, price string) int64 {
	t.Helper()
	p, err := catalog.NewSyncedProduct(code, catalog.SyncFields{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: 10,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Create(context.Background(), p))
	return p.ID
}

func seedOrder(t *testing.T, db *gorm.DB, userID, productID int64, status string, total string, createdAt time.Time) int64 {
	t.Helper()
	pid := productID
	o := &models.OrderModel{
		UserID:       userID,
		TotalAmount:  decimal.RequireFromString(total),
		DeliveryType: "point1",
		PaymentType:  PaymentTypeTransfer,
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
		Items: []models.OrderItemModel{{
			ProductID: &pid,
			Quantity:  1,
			Price:     decimal.RequireFromString(total),
		}},
	}
	require.NoError(t, db.Create(o).Error)
	return o.ID
}
