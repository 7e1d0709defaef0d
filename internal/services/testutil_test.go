// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hargapangan/pangan-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Region{},
		&models.Commodity{},
		&models.CustomCommodity{},
		&models.PricePoint{},
		&models.PriceHistory{},
		&models.PriceOverride{},
		&models.MarketPriceReport{},
		&models.AuditLog{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Password123!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCommodity(t *testing.T, db *gorm.DB, name string, externalID int64) *models.Commodity {
	t.Helper()

	commodity := &models.Commodity{
		ExternalID: &externalID,
		Name:       name,
		Unit:       "Rp./Kg",
		Category:   ClassifyCategory(name),
		IsActive:   true,
	}
	require.NoError(t, db.Create(commodity).Error)
	return commodity
}

func createTestPricePoint(t *testing.T, db *gorm.DB, commodity *models.Commodity, date string, price int64, level models.PriceLevel) *models.PricePoint {
	t.Helper()

	point := &models.PricePoint{
		CommodityID: commodity.ID,
		Price:       decimal.NewFromInt(price),
		Date:        mustDate(t, date),
		Source:      models.PriceSourceAPI,
		Level:       level,
	}
	require.NoError(t, db.Create(point).Error)
	return point
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return models.DateOnly(parsed)
}
