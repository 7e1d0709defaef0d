// internal/services/price_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/cache"
	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

type PriceService struct {
	db         *gorm.DB
	priceCache *cache.PriceCache
}

func NewPriceService(db *gorm.DB, priceCache *cache.PriceCache) *PriceService {
	return &PriceService{db: db, priceCache: priceCache}
}

// DayComparison lines up the synced and manual prices of one commodity for
// a single day. The active price is the manual override when one stands,
// else the synced value.
type DayComparison struct {
	Commodity   models.Commodity `json:"commodity"`
	APIPrice    *decimal.Decimal `json:"api_price,omitempty"`
	ManualPrice *decimal.Decimal `json:"manual_price,omitempty"`
	ActivePrice decimal.Decimal  `json:"active_price"`
	Delta       decimal.Decimal  `json:"delta"`
	DeltaPct    float64          `json:"delta_pct"`
}

func (s *PriceService) CompareDay(ctx context.Context, date time.Time, level models.PriceLevel) ([]DayComparison, error) {
	date = models.DateOnly(date)
	key := cache.CompareKey(date, string(level))

	var cached []DayComparison
	if s.priceCache.Get(ctx, key, &cached) {
		return cached, nil
	}

	var points []models.PricePoint
	if err := s.db.Preload("Commodity").
		Where("date = ? AND region_id IS NULL AND level = ?", date, level).
		Find(&points).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch price points: %w", err)
	}

	type pair struct {
		commodity models.Commodity
		api       *decimal.Decimal
		manual    *decimal.Decimal
	}
	byCommodity := make(map[uuid.UUID]*pair)
	order := make([]uuid.UUID, 0, len(points))

	for i := range points {
		p := &points[i]
		entry, ok := byCommodity[p.CommodityID]
		if !ok {
			entry = &pair{commodity: p.Commodity}
			byCommodity[p.CommodityID] = entry
			order = append(order, p.CommodityID)
		}
		price := p.Price
		if p.Source == models.PriceSourceManual || p.IsOverridden {
			entry.manual = &price
		} else {
			entry.api = &price
		}
	}

	comparisons := make([]DayComparison, 0, len(order))
	for _, id := range order {
		entry := byCommodity[id]

		comparison := DayComparison{
			Commodity:   entry.commodity,
			APIPrice:    entry.api,
			ManualPrice: entry.manual,
		}

		switch {
		case entry.manual != nil:
			comparison.ActivePrice = *entry.manual
		case entry.api != nil:
			comparison.ActivePrice = *entry.api
		}

		if entry.api != nil && !entry.api.IsZero() {
			comparison.Delta = comparison.ActivePrice.Sub(*entry.api)
			pct, _ := comparison.Delta.Div(*entry.api).Mul(decimal.NewFromInt(100)).Float64()
			comparison.DeltaPct = pct
		}

		comparisons = append(comparisons, comparison)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].Commodity.Name < comparisons[j].Commodity.Name
	})

	s.priceCache.Set(ctx, key, comparisons)

	return comparisons, nil
}

type SeriesPoint struct {
	Date   time.Time          `json:"date"`
	Price  decimal.Decimal    `json:"price"`
	Source models.PriceSource `json:"source"`
}

type SeriesStats struct {
	Min       decimal.Decimal `json:"min"`
	Max       decimal.Decimal `json:"max"`
	Avg       decimal.Decimal `json:"avg"`
	Current   decimal.Decimal `json:"current"`
	ChangePct float64         `json:"change_pct"` // first point to last
}

type PriceSeries struct {
	Commodity models.Commodity `json:"commodity"`
	Points    []SeriesPoint    `json:"points"`
	Stats     SeriesStats      `json:"stats"`
}

// DayOverDay returns the active price series of one commodity at one price
// level between two dates, with summary statistics. The ledger holds all
// four levels per day, so an unfiltered series would mix them.
func (s *PriceService) DayOverDay(commodityID uuid.UUID, level models.PriceLevel, from, to time.Time) (*PriceSeries, error) {
	var commodity models.Commodity
	if err := s.db.First(&commodity, "id = ?", commodityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommodityNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	points, err := s.activeSeries(commodityID, level, models.DateOnly(from), models.DateOnly(to))
	if err != nil {
		return nil, err
	}

	series := &PriceSeries{
		Commodity: commodity,
		Points:    points,
	}

	if len(points) == 0 {
		return series, nil
	}

	sum := decimal.Zero
	series.Stats.Min = points[0].Price
	series.Stats.Max = points[0].Price
	for _, p := range points {
		if p.Price.LessThan(series.Stats.Min) {
			series.Stats.Min = p.Price
		}
		if p.Price.GreaterThan(series.Stats.Max) {
			series.Stats.Max = p.Price
		}
		sum = sum.Add(p.Price)
	}
	series.Stats.Avg = sum.Div(decimal.NewFromInt(int64(len(points)))).Round(2)
	series.Stats.Current = points[len(points)-1].Price
	series.Stats.ChangePct = relativeChangePct(points[0].Price, points[len(points)-1].Price)

	return series, nil
}

// activeSeries collapses the ledger to one active price per day at the given
// level: the manual override when present, else the synced value.
func (s *PriceService) activeSeries(commodityID uuid.UUID, level models.PriceLevel, from, to time.Time) ([]SeriesPoint, error) {
	var rows []models.PricePoint
	if err := s.db.
		Where("commodity_id = ? AND region_id IS NULL AND level = ? AND date >= ? AND date <= ?",
			commodityID, level, from, to).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch price series: %w", err)
	}

	byDate := make(map[time.Time]SeriesPoint)
	var dates []time.Time
	for _, row := range rows {
		day := models.DateOnly(row.Date)
		existing, ok := byDate[day]
		if !ok {
			byDate[day] = SeriesPoint{Date: day, Price: row.Price, Source: row.Source}
			dates = append(dates, day)
			continue
		}
		// Manual wins over api for the same day.
		if existing.Source != models.PriceSourceManual && (row.Source == models.PriceSourceManual || row.IsOverridden) {
			byDate[day] = SeriesPoint{Date: day, Price: row.Price, Source: models.PriceSourceManual}
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	points := make([]SeriesPoint, 0, len(dates))
	for _, d := range dates {
		points = append(points, byDate[d])
	}
	return points, nil
}

type Mover struct {
	Commodity  models.Commodity `json:"commodity"`
	FirstPrice decimal.Decimal  `json:"first_price"`
	LastPrice  decimal.Decimal  `json:"last_price"`
	ChangePct  float64          `json:"change_pct"`
}

// TopMovers ranks commodities by absolute percentage change between their
// first and last active price at one level inside the window, descending.
func (s *PriceService) TopMovers(level models.PriceLevel, start, end time.Time, limit int) ([]Mover, error) {
	if limit <= 0 {
		limit = 10
	}
	start = models.DateOnly(start)
	end = models.DateOnly(end)

	var commodities []models.Commodity
	if err := s.db.Where("is_active = ?", true).Find(&commodities).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch commodities: %w", err)
	}

	var movers []Mover
	for _, commodity := range commodities {
		points, err := s.activeSeries(commodity.ID, level, start, end)
		if err != nil {
			return nil, err
		}
		if len(points) < 2 {
			continue
		}

		first := points[0].Price
		last := points[len(points)-1].Price
		if first.IsZero() {
			continue
		}

		movers = append(movers, Mover{
			Commodity:  commodity,
			FirstPrice: first,
			LastPrice:  last,
			ChangePct:  relativeChangePct(first, last),
		})
	}

	sort.Slice(movers, func(i, j int) bool {
		return absFloat(movers[i].ChangePct) > absFloat(movers[j].ChangePct)
	})

	if len(movers) > limit {
		movers = movers[:limit]
	}
	return movers, nil
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// History lists raw ledger mutations for one commodity, newest first.
func (s *PriceService) History(commodityID uuid.UUID, params utils.PaginationParams) ([]models.PriceHistory, int64, error) {
	query := s.db.Model(&models.PriceHistory{}).Where("commodity_id = ?", commodityID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count price history: %w", err)
	}

	query = utils.ApplyPagination(query.Order("created_at DESC"), params)

	var history []models.PriceHistory
	if err := query.Find(&history).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch price history: %w", err)
	}

	return history, total, nil
}
