// internal/services/sync_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hargapangan/pangan-backend/internal/cache"
	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/panelharga"
)

// Override-flagged ledger rows that stop receiving corrections are treated
// as expired and purged after this long.
const staleOverrideAge = 48 * time.Hour

// Relative change above this fraction is logged as a notable move.
const notableChangeThreshold = 0.05

// PriceFetcher is the slice of the panel client the sync engine needs.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, provinceID, cityID int, level models.PriceLevel) ([]panelharga.Snapshot, error)
}

type SyncService struct {
	db          *gorm.DB
	fetcher     PriceFetcher
	commodities *CommodityService
	priceCache  *cache.PriceCache
	provinceID  int
	cityID      int

	// Best-effort, in-process guard: overlapping runs are skipped, not
	// queued. Does not survive restarts or coordinate across instances.
	mu      sync.Mutex
	running bool

	lastRunAt  *time.Time
	lastResult *CycleResult
	lastError  string
}

// SyncResult summarizes one reconcile batch.
type SyncResult struct {
	Saved   int      `json:"saved"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// CycleResult aggregates a full sync cycle across all price levels.
type CycleResult struct {
	Date            time.Time                        `json:"date"`
	Levels          map[models.PriceLevel]SyncResult `json:"levels"`
	TotalSaved      int                              `json:"total_saved"`
	TotalSkipped    int                              `json:"total_skipped"`
	PurgedOverrides int64                            `json:"purged_overrides"`
}

type SyncStatus struct {
	Running    bool         `json:"running"`
	LastRunAt  *time.Time   `json:"last_run_at"`
	LastResult *CycleResult `json:"last_result,omitempty"`
	LastError  string       `json:"last_error,omitempty"`
}

func NewSyncService(db *gorm.DB, fetcher PriceFetcher, commodities *CommodityService, priceCache *cache.PriceCache, provinceID, cityID int) *SyncService {
	return &SyncService{
		db:          db,
		fetcher:     fetcher,
		commodities: commodities,
		priceCache:  priceCache,
		provinceID:  provinceID,
		cityID:      cityID,
	}
}

// RunCycle fetches and reconciles all price levels for today, then purges
// stale overrides. Returns ErrSyncAlreadyRunning when a cycle is in flight.
func (s *SyncService) RunCycle(ctx context.Context) (*CycleResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrSyncAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	date := models.DateOnly(time.Now())
	result := &CycleResult{
		Date:   date,
		Levels: make(map[models.PriceLevel]SyncResult),
	}

	for _, level := range models.AllPriceLevels() {
		snapshots, err := s.fetcher.FetchPrices(ctx, s.provinceID, s.cityID, level)
		if err != nil {
			// A failed fetch aborts the whole cycle; the scheduler retries
			// on its next tick and stored prices are untouched.
			s.recordOutcome(result, err)
			return nil, err
		}

		levelResult, err := s.Reconcile(ctx, date, level, snapshots)
		if err != nil {
			s.recordOutcome(result, err)
			return nil, err
		}

		result.Levels[level] = levelResult
		result.TotalSaved += levelResult.Saved
		result.TotalSkipped += levelResult.Skipped
	}

	purged, err := s.PurgeStaleOverrides()
	if err != nil {
		logrus.WithError(err).Error("Stale override purge failed")
	}
	result.PurgedOverrides = purged

	for _, level := range models.AllPriceLevels() {
		s.priceCache.Invalidate(ctx, cache.CompareKey(date, string(level)))
	}

	s.recordOutcome(result, nil)

	logrus.WithFields(logrus.Fields{
		"date":    date.Format("2006-01-02"),
		"saved":   result.TotalSaved,
		"skipped": result.TotalSkipped,
		"purged":  result.PurgedOverrides,
	}).Info("Sync cycle completed")

	return result, nil
}

func (s *SyncService) recordOutcome(result *CycleResult, err error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRunAt = &now
	if err != nil {
		s.lastError = err.Error()
		return
	}
	s.lastError = ""
	s.lastResult = result
}

func (s *SyncService) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SyncStatus{
		Running:    s.running,
		LastRunAt:  s.lastRunAt,
		LastResult: s.lastResult,
		LastError:  s.lastError,
	}
}

// Reconcile merges one batch of snapshots into the price ledger. Per-row
// failures are accumulated and never abort the batch. Running the same
// batch twice is a no-op on the second pass.
func (s *SyncService) Reconcile(ctx context.Context, date time.Time, level models.PriceLevel, snapshots []panelharga.Snapshot) (SyncResult, error) {
	date = models.DateOnly(date)
	var result SyncResult

	for i := range snapshots {
		saved, err := s.reconcileOne(date, level, &snapshots[i])
		if err != nil {
			result.Skipped++
			if len(result.Errors) < 10 {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", snapshots[i].Name, err))
			}
			continue
		}
		if saved {
			result.Saved++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

func (s *SyncService) reconcileOne(date time.Time, level models.PriceLevel, snapshot *panelharga.Snapshot) (bool, error) {
	commodity, err := s.commodities.Resolve(snapshot)
	if err != nil {
		return false, err
	}

	effective := snapshot.EffectivePrice()
	if effective == nil {
		return false, nil
	}
	price := decimal.NewFromFloat(*effective)

	// Manual data wins: an override on this commodity/date, at any level,
	// suppresses the automatic write entirely. The sync engine never clears
	// or contests the override flag.
	var overridden int64
	if err := s.db.Model(&models.PricePoint{}).
		Where("commodity_id = ? AND date = ? AND region_id IS NULL AND is_overridden = ?", commodity.ID, date, true).
		Count(&overridden).Error; err != nil {
		return false, fmt.Errorf("override lookup failed: %w", err)
	}
	if overridden > 0 {
		return false, nil
	}

	var row models.PricePoint
	err = s.db.Where(
		"commodity_id = ? AND date = ? AND region_id IS NULL AND source = ? AND level = ?",
		commodity.ID, date, models.PriceSourceAPI, level,
	).First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.PricePoint{
			CommodityID: commodity.ID,
			Price:       price,
			Date:        date,
			Source:      models.PriceSourceAPI,
			Level:       level,
		}
		createErr := s.db.Create(&row).Error
		if createErr == nil {
			return true, nil
		}
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return false, fmt.Errorf("failed to insert price point: %w", createErr)
		}
		// A concurrent run inserted the row first; fall through to update.
		if err := s.db.Where(
			"commodity_id = ? AND date = ? AND region_id IS NULL AND source = ? AND level = ?",
			commodity.ID, date, models.PriceSourceAPI, level,
		).First(&row).Error; err != nil {
			return false, fmt.Errorf("failed to re-fetch price point: %w", err)
		}
	} else if err != nil {
		return false, fmt.Errorf("price point lookup failed: %w", err)
	}

	if row.Price.Equal(price) {
		return false, nil
	}

	oldPrice := row.Price
	changePct := relativeChangePct(oldPrice, price)

	if err := s.db.Model(&row).Update("price", price).Error; err != nil {
		return false, fmt.Errorf("failed to update price point: %w", err)
	}

	history := models.PriceHistory{
		PricePointID: row.ID,
		CommodityID:  commodity.ID,
		OldPrice:     oldPrice,
		NewPrice:     price,
		ChangePct:    changePct,
		Reason:       "panel sync",
		Source:       models.PriceSourceAPI,
	}
	if err := s.db.Create(&history).Error; err != nil {
		logrus.WithError(err).WithField("commodity", commodity.Name).Error("Failed to write price history")
	}

	if changePct > notableChangeThreshold*100 || changePct < -notableChangeThreshold*100 {
		logrus.WithFields(logrus.Fields{
			"commodity":  commodity.Name,
			"old_price":  oldPrice.String(),
			"new_price":  price.String(),
			"change_pct": changePct,
			"level":      level,
		}).Warn("Notable price change")
	}

	return true, nil
}

func relativeChangePct(old, current decimal.Decimal) float64 {
	if old.IsZero() {
		return 0
	}
	pct, _ := current.Sub(old).Div(old).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// PurgeStaleOverrides hard-deletes override-flagged ledger rows that have
// not been touched for 48 hours. Hard, not soft: a lingering soft-deleted
// row would still block re-insertion through the uniqueness constraint.
func (s *SyncService) PurgeStaleOverrides() (int64, error) {
	cutoff := time.Now().Add(-staleOverrideAge)

	res := s.db.Unscoped().
		Where("is_overridden = ? AND updated_at < ?", true, cutoff).
		Delete(&models.PricePoint{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge stale overrides: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		logrus.WithField("purged", res.RowsAffected).Info("Purged stale manual overrides")
	}

	return res.RowsAffected, nil
}
