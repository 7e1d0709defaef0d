// internal/panelharga/client_test.go
package panelharga

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargapangan/pangan-backend/internal/models"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Second},
		maxRetries: 3,
		backoff:    time.Millisecond,
	}
}

func TestFetchPricesSuccess(t *testing.T) {
	var gotQuery atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"data": [
				{"id": 27, "name": "Beras Premium", "satuan": "Rp./Kg", "today": 15000, "yesterday": 14800, "background": "https://example.com/beras.png"},
				{"id": 31, "name": "Cabai Merah Keriting", "satuan": "Rp./Kg", "today": null, "yesterday": 42000}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	snapshots, err := client.FetchPrices(context.Background(), 12, 163, models.PriceLevelRetail)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	assert.Equal(t, int64(27), snapshots[0].ID)
	assert.Equal(t, "Beras Premium", snapshots[0].Name)
	assert.Equal(t, "Rp./Kg", snapshots[0].Unit)
	require.NotNil(t, snapshots[0].Today)
	assert.Equal(t, 15000.0, *snapshots[0].Today)

	assert.Nil(t, snapshots[1].Today)
	require.NotNil(t, snapshots[1].Yesterday)
	assert.Equal(t, 42000.0, *snapshots[1].Yesterday)

	query := gotQuery.Load().(string)
	assert.Contains(t, query, "province_id=12")
	assert.Contains(t, query, "city_id=163")
	assert.Contains(t, query, "level_harga_id=3")
}

func TestFetchPricesMalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "data": []}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.FetchPrices(context.Background(), 12, 163, models.PriceLevelRetail)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetchPricesRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status": "success", "data": [{"id": 1, "name": "Beras", "satuan": "Rp./Kg", "today": 12000}]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	snapshots, err := client.FetchPrices(context.Background(), 12, 163, models.PriceLevelProducer)
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPricesExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.FetchPrices(context.Background(), 12, 163, models.PriceLevelRetail)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPricesContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)
	client.backoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchPrices(ctx, 12, 163, models.PriceLevelRetail)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestPlausiblePriceBounds(t *testing.T) {
	assert.False(t, PlausiblePrice(99))
	assert.True(t, PlausiblePrice(100))
	assert.True(t, PlausiblePrice(1_000_000))
	assert.False(t, PlausiblePrice(1_000_001))
	assert.False(t, PlausiblePrice(0))
	assert.False(t, PlausiblePrice(-15000))
}

func TestEffectivePrice(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	today := Snapshot{Today: f(15000), Yesterday: f(14000)}
	require.NotNil(t, today.EffectivePrice())
	assert.Equal(t, 15000.0, *today.EffectivePrice())

	fallback := Snapshot{Yesterday: f(14000)}
	require.NotNil(t, fallback.EffectivePrice())
	assert.Equal(t, 14000.0, *fallback.EffectivePrice())

	implausibleToday := Snapshot{Today: f(5), Yesterday: f(14000)}
	require.NotNil(t, implausibleToday.EffectivePrice())
	assert.Equal(t, 14000.0, *implausibleToday.EffectivePrice())

	empty := Snapshot{}
	assert.Nil(t, empty.EffectivePrice())

	allImplausible := Snapshot{Today: f(2), Yesterday: f(9_999_999)}
	assert.Nil(t, allImplausible.EffectivePrice())
}
