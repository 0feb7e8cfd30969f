package pricecache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/firetrack/internal/model"
	"github.com/theirongolddev/firetrack/internal/store"
)

var symbols = []model.Symbol{"VTI", "QQQ", "VXUS"}

func ptr(f float64) *float64 { return &f }

type countingFetcher struct {
	calls  int
	prices map[model.Symbol]*float64
	err    error
}

func (f *countingFetcher) FetchPrices(_ context.Context, syms []model.Symbol) (map[model.Symbol]*float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

type statusErr struct{ code int }

func (e statusErr) Error() string   { return "upstream said no" }
func (e statusErr) HTTPStatus() int { return e.code }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(f Fetcher, kv KV, c *clock) *Cache {
	return New(f, kv, symbols, WithClock(c.now))
}

func TestGet_FetchesOnceWithinWindow(t *testing.T) {
	f := &countingFetcher{prices: map[model.Symbol]*float64{"VTI": ptr(250), "QQQ": ptr(480), "VXUS": ptr(61)}}
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cache := newTestCache(f, store.NewMemory(), c)

	first, err := cache.Get(context.Background(), false)
	require.NoError(t, err)

	c.t = c.t.Add(6 * 24 * time.Hour)
	second, err := cache.Get(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CapturedAt.UnixMilli(), second.CapturedAt.UnixMilli())
	require.NotNil(t, second.Price("QQQ"))
	assert.Equal(t, 480.0, *second.Price("QQQ"))
}

func TestGet_StaleSnapshotRefetches(t *testing.T) {
	f := &countingFetcher{prices: map[model.Symbol]*float64{"VTI": ptr(1)}}
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cache := newTestCache(f, store.NewMemory(), c)

	_, err := cache.Get(context.Background(), false)
	require.NoError(t, err)

	c.t = c.t.Add(FreshnessWindow)
	snap, err := cache.Get(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, f.calls, "a snapshot exactly one window old is stale")
	assert.Equal(t, c.t.UnixMilli(), snap.CapturedAt.UnixMilli())
}

func TestGet_ForceRefreshAlwaysFetches(t *testing.T) {
	f := &countingFetcher{prices: map[model.Symbol]*float64{"VTI": ptr(1)}}
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cache := newTestCache(f, store.NewMemory(), c)

	_, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, f.calls)
}

func TestGet_ReplacesSnapshotWholesale(t *testing.T) {
	f := &countingFetcher{prices: map[model.Symbol]*float64{"VTI": ptr(100), "QQQ": ptr(200)}}
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	kv := store.NewMemory()
	cache := newTestCache(f, kv, c)

	_, err := cache.Get(context.Background(), true)
	require.NoError(t, err)

	f.prices = map[model.Symbol]*float64{"VXUS": ptr(60)}
	snap, err := cache.Get(context.Background(), true)
	require.NoError(t, err)

	assert.Nil(t, snap.Price("VTI"), "old prices must not be merged in")
	assert.Nil(t, snap.Price("QQQ"))
	require.NotNil(t, snap.Price("VXUS"))

	stored, ok := cache.Stored()
	require.True(t, ok)
	assert.Equal(t, snap.ID, stored.ID)
	assert.Nil(t, stored.Price("VTI"))
}

func TestGet_MissingSymbolsAreNull(t *testing.T) {
	f := &countingFetcher{prices: map[model.Symbol]*float64{"VTI": ptr(100)}}
	kv := store.NewMemory()
	cache := newTestCache(f, kv, &clock{t: time.UnixMilli(1_700_000_000_000)})

	snap, err := cache.Get(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, snap.Prices, 3)
	assert.Contains(t, snap.Prices, model.Symbol("QQQ"))
	assert.Nil(t, snap.Prices["QQQ"])

	raw, ok, _ := kv.Get(SnapshotKey)
	require.True(t, ok)
	assert.Contains(t, raw, `"QQQ":null`)
	assert.Contains(t, raw, `"savedAt":1700000000000`)
}

func TestGet_FetchErrorLeavesSlotIntact(t *testing.T) {
	kv := store.NewMemory()
	const existing = `{"prices":{"VTI":99},"savedAt":1}`
	require.NoError(t, kv.Set(SnapshotKey, existing))

	f := &countingFetcher{err: fmt.Errorf("marketstack: %w", statusErr{code: 429})}
	cache := newTestCache(f, kv, &clock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)})

	_, err := cache.Get(context.Background(), false)
	require.Error(t, err)

	var pfe *PriceFetchError
	require.True(t, errors.As(err, &pfe))
	assert.Equal(t, 429, pfe.Status)
	assert.Contains(t, pfe.Error(), "status 429")
	var se statusErr
	assert.True(t, errors.As(err, &se), "upstream error stays reachable")

	raw, _, _ := kv.Get(SnapshotKey)
	assert.Equal(t, existing, raw)
}

func TestGet_TransportErrorHasNoStatus(t *testing.T) {
	f := &countingFetcher{err: errors.New("dial tcp: connection refused")}
	cache := newTestCache(f, store.NewMemory(), &clock{t: time.Now()})

	_, err := cache.Get(context.Background(), true)
	var pfe *PriceFetchError
	require.True(t, errors.As(err, &pfe))
	assert.Equal(t, 0, pfe.Status)
	assert.Equal(t, "price fetch failed: dial tcp: connection refused", pfe.Error())
}

func TestGet_CorruptRecordsTriggerFetch(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	recent := strconv.FormatInt(now.Add(-time.Hour).UnixMilli(), 10)

	records := map[string]string{
		"not json":          `{{{`,
		"missing timestamp": `{"prices":{"VTI":1}}`,
		"null timestamp":    `{"prices":{"VTI":1},"savedAt":null}`,
		"string timestamp":  `{"prices":{"VTI":1},"savedAt":"yesterday"}`,
		"zero timestamp":    `{"prices":{"VTI":1},"savedAt":0}`,
		"wrong shape":       `{"prices":["VTI"],"savedAt":` + recent + `}`,
	}

	for name, raw := range records {
		t.Run(name, func(t *testing.T) {
			kv := store.NewMemory()
			require.NoError(t, kv.Set(SnapshotKey, raw))
			f := &countingFetcher{prices: map[model.Symbol]*float64{"VTI": ptr(2)}}
			cache := newTestCache(f, kv, &clock{t: now})

			_, ok := cache.Peek()
			assert.False(t, ok)

			snap, err := cache.Get(context.Background(), false)
			require.NoError(t, err)
			assert.Equal(t, 1, f.calls)
			assert.Equal(t, 2.0, *snap.Price("VTI"))
		})
	}
}

func TestPeek_ServesLegacyRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	kv := store.NewMemory()
	savedAt := now.Add(-48 * time.Hour).UnixMilli()
	require.NoError(t, kv.Set(SnapshotKey, fmt.Sprintf(`{"prices":{"vti":250.5,"QQQ":null},"savedAt":%d}`, savedAt)))

	cache := newTestCache(&countingFetcher{}, kv, &clock{t: now})
	snap, ok := cache.Peek()
	require.True(t, ok)

	require.NotNil(t, snap.Price("VTI"))
	assert.Equal(t, 250.5, *snap.Price("VTI"))
	assert.Nil(t, snap.Price("QQQ"))
	assert.Equal(t, 48*time.Hour, snap.Age(now))
}

type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingKV) Set(string, string) error         { return errors.New("disk gone") }

func TestGet_StoreFailuresDoNotFailFetch(t *testing.T) {
	f := &countingFetcher{prices: map[model.Symbol]*float64{"VTI": ptr(3)}}
	cache := newTestCache(f, failingKV{}, &clock{t: time.Now()})

	snap, err := cache.Get(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3.0, *snap.Price("VTI"))
}
