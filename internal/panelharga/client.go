// internal/panelharga/client.go
package panelharga

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hargapangan/pangan-backend/internal/config"
	"github.com/hargapangan/pangan-backend/internal/models"
)

// ErrUpstreamUnavailable is returned once the retry budget is exhausted or
// the upstream keeps answering with a malformed envelope. A failed fetch
// aborts only the current sync cycle; previously stored prices stand.
var ErrUpstreamUnavailable = errors.New("price panel upstream unavailable")

// Plausibility band for upstream prices, in rupiah. Values outside the band
// are treated as "no data" by callers, never as an error.
const (
	MinPlausiblePrice = 100
	MaxPlausiblePrice = 1_000_000
)

// Snapshot is one commodity's price record as returned by the panel API
// for the current sync cycle.
type Snapshot struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Unit      string   `json:"satuan"`
	Today     *float64 `json:"today"`
	Yesterday *float64 `json:"yesterday"`
	IconURL   string   `json:"background"`
}

type envelope struct {
	Status string     `json:"status"`
	Data   []Snapshot `json:"data"`
}

// PlausiblePrice reports whether p falls inside the accepted band.
// Both bounds are inclusive.
func PlausiblePrice(p float64) bool {
	return p >= MinPlausiblePrice && p <= MaxPlausiblePrice
}

// EffectivePrice picks today's price when present and plausible, falling
// back to yesterday's. Returns nil when the snapshot carries no usable data.
func (s *Snapshot) EffectivePrice() *float64 {
	if s.Today != nil && PlausiblePrice(*s.Today) {
		return s.Today
	}
	if s.Yesterday != nil && PlausiblePrice(*s.Yesterday) {
		return s.Yesterday
	}
	return nil
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

func NewClient(cfg config.PanelHargaConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		maxRetries: cfg.MaxRetries,
		backoff:    2 * time.Second,
	}
}

// FetchPrices fetches the current snapshots for one province/city/level.
// It is a pure fetch: persistence is the caller's concern.
func (c *Client) FetchPrices(ctx context.Context, provinceID, cityID int, level models.PriceLevel) ([]Snapshot, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			// Exponential backoff: 2s, 4s, 8s...
			wait := c.backoff << (attempt - 2)
			logrus.WithFields(logrus.Fields{
				"attempt": attempt,
				"wait":    wait.String(),
			}).Warn("Retrying price panel fetch")

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
			}
		}

		snapshots, err := c.fetchOnce(ctx, provinceID, cityID, level)
		if err == nil {
			return snapshots, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, provinceID, cityID int, level models.PriceLevel) ([]Snapshot, error) {
	query := url.Values{}
	query.Set("province_id", strconv.Itoa(provinceID))
	query.Set("city_id", strconv.Itoa(cityID))
	query.Set("level_harga_id", strconv.Itoa(level.LevelID()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if env.Status != "success" {
		return nil, fmt.Errorf("malformed response envelope: status %q", env.Status)
	}

	return env.Data, nil
}
