// internal/services/price_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

func newPriceServiceForTest(t *testing.T) (*PriceService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewPriceService(db, nil), db
}

func markManual(t *testing.T, db *gorm.DB, point *models.PricePoint) {
	t.Helper()
	require.NoError(t, db.Model(point).Updates(map[string]interface{}{
		"source":        models.PriceSourceManual,
		"is_overridden": true,
	}).Error)
}

func TestCompareDayManualWins(t *testing.T) {
	svc, db := newPriceServiceForTest(t)

	beras := createTestCommodity(t, db, "Beras Premium", 27)
	cabai := createTestCommodity(t, db, "Cabai Merah", 31)

	createTestPricePoint(t, db, beras, "2026-08-20", 15000, models.PriceLevelRetail)
	manual := createTestPricePoint(t, db, beras, "2026-08-20", 16500, models.PriceLevelRetail)
	markManual(t, db, manual)

	createTestPricePoint(t, db, cabai, "2026-08-20", 42000, models.PriceLevelRetail)

	comparisons, err := svc.CompareDay(context.Background(), mustDate(t, "2026-08-20"), models.PriceLevelRetail)
	require.NoError(t, err)
	require.Len(t, comparisons, 2)

	// Sorted by commodity name.
	assert.Equal(t, "Beras Premium", comparisons[0].Commodity.Name)
	assert.Equal(t, "Cabai Merah", comparisons[1].Commodity.Name)

	row := comparisons[0]
	require.NotNil(t, row.APIPrice)
	require.NotNil(t, row.ManualPrice)
	assert.True(t, row.ActivePrice.Equal(decimal.NewFromInt(16500)), "manual price is the active one")
	assert.True(t, row.Delta.Equal(decimal.NewFromInt(1500)))
	assert.InDelta(t, 10.0, row.DeltaPct, 0.01)

	apiOnly := comparisons[1]
	assert.Nil(t, apiOnly.ManualPrice)
	assert.True(t, apiOnly.ActivePrice.Equal(decimal.NewFromInt(42000)))
	assert.Zero(t, apiOnly.DeltaPct)
}

func TestCompareDayIgnoresOtherLevels(t *testing.T) {
	svc, db := newPriceServiceForTest(t)

	beras := createTestCommodity(t, db, "Beras Premium", 27)
	createTestPricePoint(t, db, beras, "2026-08-20", 15000, models.PriceLevelRetail)
	createTestPricePoint(t, db, beras, "2026-08-20", 13000, models.PriceLevelWholesale)

	comparisons, err := svc.CompareDay(context.Background(), mustDate(t, "2026-08-20"), models.PriceLevelWholesale)
	require.NoError(t, err)
	require.Len(t, comparisons, 1)
	assert.True(t, comparisons[0].ActivePrice.Equal(decimal.NewFromInt(13000)))
}

func TestDayOverDayStats(t *testing.T) {
	svc, db := newPriceServiceForTest(t)

	beras := createTestCommodity(t, db, "Beras Premium", 27)
	createTestPricePoint(t, db, beras, "2026-08-18", 10000, models.PriceLevelRetail)
	createTestPricePoint(t, db, beras, "2026-08-19", 12000, models.PriceLevelRetail)
	createTestPricePoint(t, db, beras, "2026-08-20", 11000, models.PriceLevelRetail)

	series, err := svc.DayOverDay(beras.ID, models.PriceLevelRetail, mustDate(t, "2026-08-18"), mustDate(t, "2026-08-20"))
	require.NoError(t, err)
	require.Len(t, series.Points, 3)

	assert.True(t, series.Stats.Min.Equal(decimal.NewFromInt(10000)))
	assert.True(t, series.Stats.Max.Equal(decimal.NewFromInt(12000)))
	assert.True(t, series.Stats.Avg.Equal(decimal.NewFromInt(11000)))
	assert.True(t, series.Stats.Current.Equal(decimal.NewFromInt(11000)))
	assert.InDelta(t, 10.0, series.Stats.ChangePct, 0.01)
}

func TestDayOverDayManualWinsPerDay(t *testing.T) {
	svc, db := newPriceServiceForTest(t)

	beras := createTestCommodity(t, db, "Beras Premium", 27)
	createTestPricePoint(t, db, beras, "2026-08-19", 10000, models.PriceLevelRetail)
	createTestPricePoint(t, db, beras, "2026-08-20", 10500, models.PriceLevelRetail)
	manual := createTestPricePoint(t, db, beras, "2026-08-20", 12000, models.PriceLevelRetail)
	markManual(t, db, manual)

	series, err := svc.DayOverDay(beras.ID, models.PriceLevelRetail, mustDate(t, "2026-08-19"), mustDate(t, "2026-08-20"))
	require.NoError(t, err)
	require.Len(t, series.Points, 2)

	assert.Equal(t, models.PriceSourceAPI, series.Points[0].Source)
	assert.Equal(t, models.PriceSourceManual, series.Points[1].Source)
	assert.True(t, series.Points[1].Price.Equal(decimal.NewFromInt(12000)))
}

func TestDayOverDayFiltersByLevel(t *testing.T) {
	svc, db := newPriceServiceForTest(t)

	// The ledger carries every level per day. A near-flat retail price next
	// to a much lower producer price must not read as a price jump.
	beras := createTestCommodity(t, db, "Beras Premium", 27)
	createTestPricePoint(t, db, beras, "2026-08-19", 5000, models.PriceLevelProducer)
	createTestPricePoint(t, db, beras, "2026-08-19", 10000, models.PriceLevelRetail)
	createTestPricePoint(t, db, beras, "2026-08-20", 10100, models.PriceLevelRetail)
	createTestPricePoint(t, db, beras, "2026-08-20", 5100, models.PriceLevelProducer)

	retail, err := svc.DayOverDay(beras.ID, models.PriceLevelRetail, mustDate(t, "2026-08-19"), mustDate(t, "2026-08-20"))
	require.NoError(t, err)
	require.Len(t, retail.Points, 2)
	assert.True(t, retail.Points[0].Price.Equal(decimal.NewFromInt(10000)))
	assert.True(t, retail.Points[1].Price.Equal(decimal.NewFromInt(10100)))
	assert.InDelta(t, 1.0, retail.Stats.ChangePct, 0.01)

	producer, err := svc.DayOverDay(beras.ID, models.PriceLevelProducer, mustDate(t, "2026-08-19"), mustDate(t, "2026-08-20"))
	require.NoError(t, err)
	require.Len(t, producer.Points, 2)
	assert.InDelta(t, 2.0, producer.Stats.ChangePct, 0.01)
}

func TestDayOverDayUnknownCommodity(t *testing.T) {
	svc, _ := newPriceServiceForTest(t)

	_, err := svc.DayOverDay(uuid.New(), models.PriceLevelRetail, mustDate(t, "2026-08-18"), mustDate(t, "2026-08-20"))
	assert.ErrorIs(t, err, ErrCommodityNotFound)
}

func TestDayOverDayEmptyWindow(t *testing.T) {
	svc, db := newPriceServiceForTest(t)

	beras := createTestCommodity(t, db, "Beras Premium", 27)

	series, err := svc.DayOverDay(beras.ID, models.PriceLevelRetail, mustDate(t, "2026-08-18"), mustDate(t, "2026-08-20"))
	require.NoError(t, err)
	assert.Empty(t, series.Points)
	assert.True(t, series.Stats.Current.IsZero())
}

func TestTopMoversRanksByAbsoluteChange(t *testing.T) {
	svc, db := newPriceServiceForTest(t)

	beras := createTestCommodity(t, db, "Beras Premium", 27)
	createTestPricePoint(t, db, beras, "2026-08-18", 10000, models.PriceLevelRetail)
	createTestPricePoint(t, db, beras, "2026-08-20", 12000, models.PriceLevelRetail)

	cabai := createTestCommodity(t, db, "Cabai Merah", 31)
	createTestPricePoint(t, db, cabai, "2026-08-18", 40000, models.PriceLevelRetail)
	createTestPricePoint(t, db, cabai, "2026-08-20", 20000, models.PriceLevelRetail)

	// A single data point never qualifies as a mover.
	telur := createTestCommodity(t, db, "Telur Ayam", 5)
	createTestPricePoint(t, db, telur, "2026-08-20", 28000, models.PriceLevelRetail)

	movers, err := svc.TopMovers(models.PriceLevelRetail, mustDate(t, "2026-08-18"), mustDate(t, "2026-08-20"), 10)
	require.NoError(t, err)
	require.Len(t, movers, 2)

	assert.Equal(t, "Cabai Merah", movers[0].Commodity.Name)
	assert.InDelta(t, -50.0, movers[0].ChangePct, 0.01)
	assert.Equal(t, "Beras Premium", movers[1].Commodity.Name)
	assert.InDelta(t, 20.0, movers[1].ChangePct, 0.01)

	movers, err = svc.TopMovers(models.PriceLevelRetail, mustDate(t, "2026-08-18"), mustDate(t, "2026-08-20"), 1)
	require.NoError(t, err)
	require.Len(t, movers, 1)
	assert.Equal(t, "Cabai Merah", movers[0].Commodity.Name)
}

func TestTopMoversFiltersByLevel(t *testing.T) {
	svc, db := newPriceServiceForTest(t)

	beras := createTestCommodity(t, db, "Beras Premium", 27)
	createTestPricePoint(t, db, beras, "2026-08-19", 5000, models.PriceLevelProducer)
	createTestPricePoint(t, db, beras, "2026-08-19", 10000, models.PriceLevelRetail)
	createTestPricePoint(t, db, beras, "2026-08-20", 10000, models.PriceLevelRetail)
	createTestPricePoint(t, db, beras, "2026-08-20", 5000, models.PriceLevelProducer)

	cabai := createTestCommodity(t, db, "Cabai Merah", 31)
	createTestPricePoint(t, db, cabai, "2026-08-19", 40000, models.PriceLevelRetail)
	createTestPricePoint(t, db, cabai, "2026-08-20", 44000, models.PriceLevelRetail)

	movers, err := svc.TopMovers(models.PriceLevelRetail, mustDate(t, "2026-08-19"), mustDate(t, "2026-08-20"), 10)
	require.NoError(t, err)
	require.Len(t, movers, 2)

	// Flat at retail stays flat even though producer rows sit far lower.
	assert.Equal(t, "Cabai Merah", movers[0].Commodity.Name)
	assert.InDelta(t, 10.0, movers[0].ChangePct, 0.01)
	assert.Equal(t, "Beras Premium", movers[1].Commodity.Name)
	assert.Zero(t, movers[1].ChangePct)
}

func TestHistoryPagination(t *testing.T) {
	svc, db := newPriceServiceForTest(t)

	beras := createTestCommodity(t, db, "Beras Premium", 27)
	point := createTestPricePoint(t, db, beras, "2026-08-20", 15000, models.PriceLevelRetail)

	for i := int64(0); i < 5; i++ {
		require.NoError(t, db.Create(&models.PriceHistory{
			PricePointID: point.ID,
			CommodityID:  beras.ID,
			OldPrice:     decimal.NewFromInt(15000 + i*100),
			NewPrice:     decimal.NewFromInt(15100 + i*100),
			ChangePct:    0.66,
			Reason:       "panel sync",
			Source:       models.PriceSourceAPI,
		}).Error)
	}

	history, total, err := svc.History(beras.ID, utils.PaginationParams{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, history, 3)

	history, _, err = svc.History(beras.ID, utils.PaginationParams{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
