// Package pricecache serves price snapshots from a single persisted slot,
// fetching a new one only when forced or when the stored one is too old.
package pricecache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/firetrack/internal/model"
)

const (
	// SnapshotKey is the KV key holding the stored snapshot.
	SnapshotKey = "poc_prices"
	// FreshnessWindow is the maximum age of a served snapshot.
	FreshnessWindow = 7 * 24 * time.Hour
)

// Fetcher retrieves the latest prices for symbols. Symbols missing from the
// result are treated as unknown.
type Fetcher interface {
	FetchPrices(ctx context.Context, symbols []model.Symbol) (map[model.Symbol]*float64, error)
}

// KV is the persistent slot the snapshot lives in.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

type snapshotRecord struct {
	ID      string              `json:"id,omitempty"`
	Prices  map[string]*float64 `json:"prices"`
	SavedAt *int64              `json:"savedAt"`
}

// Cache is a TTL-gated read-through cache over a Fetcher.
// Concurrent Get calls are not deduplicated; the last write wins.
type Cache struct {
	fetcher Fetcher
	kv      KV
	symbols []model.Symbol
	log     logrus.FieldLogger
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Cache) {
		c.log = log
	}
}

// New returns a cache for symbols backed by kv.
func New(fetcher Fetcher, kv KV, symbols []model.Symbol, opts ...Option) *Cache {
	silent := logrus.New()
	silent.SetLevel(logrus.PanicLevel)

	c := &Cache{
		fetcher: fetcher,
		kv:      kv,
		symbols: symbols,
		log:     silent,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the stored snapshot if it is younger than FreshnessWindow and
// forceRefresh is false. Otherwise it fetches, persists and returns a new
// snapshot. Fetch failures return a *PriceFetchError and leave the slot as is.
func (c *Cache) Get(ctx context.Context, forceRefresh bool) (model.PriceSnapshot, error) {
	if !forceRefresh {
		if snap, ok := c.Peek(); ok {
			c.log.WithFields(logrus.Fields{
				"snapshot": snap.ID,
				"age":      snap.Age(c.now()).Round(time.Second),
			}).Debug("serving cached prices")
			return snap, nil
		}
	}

	prices, err := c.fetcher.FetchPrices(ctx, c.symbols)
	if err != nil {
		pfe := asFetchError(err)
		c.log.WithError(err).WithField("status", pfe.Status).Warn("price fetch failed")
		return model.PriceSnapshot{}, pfe
	}

	snap := model.PriceSnapshot{
		ID:         uuid.New(),
		Prices:     make(map[model.Symbol]*float64, len(c.symbols)),
		CapturedAt: c.now(),
	}
	for _, sym := range c.symbols {
		snap.Prices[sym] = validPrice(prices[sym])
	}

	if err := c.store(snap); err != nil {
		c.log.WithError(err).Warn("could not persist price snapshot")
	}

	c.log.WithFields(logrus.Fields{
		"snapshot": snap.ID,
		"forced":   forceRefresh,
		"symbols":  len(c.symbols),
	}).Info("fetched prices")
	return snap, nil
}

// Peek returns the stored snapshot when it exists and is fresh. It never
// fetches. Missing, corrupt or stale records report false.
func (c *Cache) Peek() (model.PriceSnapshot, bool) {
	snap, ok := c.load()
	if !ok {
		return model.PriceSnapshot{}, false
	}
	if snap.Age(c.now()) >= FreshnessWindow {
		return model.PriceSnapshot{}, false
	}
	return snap, true
}

// Stored returns whatever snapshot is stored, regardless of age.
func (c *Cache) Stored() (model.PriceSnapshot, bool) {
	return c.load()
}

func (c *Cache) load() (model.PriceSnapshot, bool) {
	raw, ok, err := c.kv.Get(SnapshotKey)
	if err != nil {
		c.log.WithError(err).Warn("reading stored prices")
		return model.PriceSnapshot{}, false
	}
	if !ok {
		return model.PriceSnapshot{}, false
	}

	var rec snapshotRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		c.log.WithError(err).Debug("ignoring corrupt price snapshot")
		return model.PriceSnapshot{}, false
	}
	if rec.SavedAt == nil || *rec.SavedAt <= 0 {
		c.log.Debug("ignoring price snapshot without timestamp")
		return model.PriceSnapshot{}, false
	}

	snap := model.PriceSnapshot{
		Prices:     make(map[model.Symbol]*float64, len(rec.Prices)),
		CapturedAt: time.UnixMilli(*rec.SavedAt),
	}
	if id, err := uuid.Parse(rec.ID); err == nil {
		snap.ID = id
	}
	for sym, p := range rec.Prices {
		snap.Prices[model.NormalizeSymbol(sym)] = validPrice(p)
	}
	return snap, true
}

func (c *Cache) store(snap model.PriceSnapshot) error {
	savedAt := snap.CapturedAt.UnixMilli()
	rec := snapshotRecord{
		ID:      snap.ID.String(),
		Prices:  make(map[string]*float64, len(snap.Prices)),
		SavedAt: &savedAt,
	}
	for sym, p := range snap.Prices {
		rec.Prices[string(sym)] = p
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := c.kv.Set(SnapshotKey, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", SnapshotKey, err)
	}
	return nil
}

// validPrice drops non-finite values so they read as unknown.
func validPrice(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	v := *p
	return &v
}
