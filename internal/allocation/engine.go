package allocation

import (
	"context"
	"fmt"

	"github.com/theirongolddev/firetrack/internal/model"
)

// PriceSource supplies price snapshots. Implemented by pricecache.Cache.
type PriceSource interface {
	Get(ctx context.Context, forceRefresh bool) (model.PriceSnapshot, error)
	Peek() (model.PriceSnapshot, bool)
}

// InputStore persists the user's paycheck profile and share counts.
// Implemented by store.Inputs.
type InputStore interface {
	LoadProfile() (model.PaycheckProfile, bool, error)
	SaveProfile(p model.PaycheckProfile) error
	LoadHoldings() (map[model.Symbol]string, error)
	SaveHoldings(shares map[model.Symbol]string) error
	ClearHoldings() error
}

// Engine owns the current planning state. Every Plan call recomputes from
// scratch; there is no incremental state to invalidate.
// An Engine is not safe for concurrent use.
type Engine struct {
	prices  PriceSource
	inputs  InputStore
	targets model.TargetAllocation

	profile      model.PaycheckProfile
	profileSaved bool
	shares       map[model.Symbol]string
	snapshot     model.PriceSnapshot
}

// New returns an engine with default inputs. Call Load to read saved state.
func New(prices PriceSource, inputs InputStore, targets model.TargetAllocation) *Engine {
	return &Engine{
		prices:  prices,
		inputs:  inputs,
		targets: targets,
		profile: model.DefaultPaycheckProfile(),
		shares:  make(map[model.Symbol]string),
	}
}

// Load reads the saved profile and holdings, and seeds prices from the cache
// when a fresh snapshot is stored. It never fetches.
func (e *Engine) Load() error {
	if e.inputs != nil {
		p, ok, err := e.inputs.LoadProfile()
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		if ok {
			e.profile = p
			e.profileSaved = true
		}

		shares, err := e.inputs.LoadHoldings()
		if err != nil {
			return fmt.Errorf("loading holdings: %w", err)
		}
		for sym, n := range shares {
			e.shares[sym] = n
		}
	}

	if e.prices != nil {
		if snap, ok := e.prices.Peek(); ok {
			e.snapshot = snap
		}
	}
	return nil
}

// RefreshPrices loads prices through the cache. On error the current
// snapshot is kept.
func (e *Engine) RefreshPrices(ctx context.Context, forceRefresh bool) error {
	snap, err := e.FetchSnapshot(ctx, forceRefresh)
	if err != nil {
		return err
	}
	if !snap.IsZero() {
		e.snapshot = snap
	}
	return nil
}

// FetchSnapshot loads prices through the cache without touching engine
// state. It only reads the immutable price source, so it may run on another
// goroutine; apply the result with SetSnapshot.
func (e *Engine) FetchSnapshot(ctx context.Context, forceRefresh bool) (model.PriceSnapshot, error) {
	if e.prices == nil {
		return model.PriceSnapshot{}, nil
	}
	return e.prices.Get(ctx, forceRefresh)
}

// SetSnapshot replaces the current snapshot wholesale.
func (e *Engine) SetSnapshot(snap model.PriceSnapshot) {
	e.snapshot = snap
}

// Snapshot returns the current snapshot (zero if no prices are loaded).
func (e *Engine) Snapshot() model.PriceSnapshot {
	return e.snapshot
}

// SetShares records a raw share count for sym. It is not persisted until
// SaveHoldings is called.
func (e *Engine) SetShares(sym model.Symbol, raw string) {
	e.shares[model.NormalizeSymbol(string(sym))] = raw
}

// Shares returns a copy of the raw share counts.
func (e *Engine) Shares() map[model.Symbol]string {
	out := make(map[model.Symbol]string, len(e.shares))
	for k, v := range e.shares {
		out[k] = v
	}
	return out
}

// SaveHoldings persists the current share counts.
func (e *Engine) SaveHoldings() error {
	if e.inputs == nil {
		return nil
	}
	return e.inputs.SaveHoldings(e.Shares())
}

// ClearHoldings resets every share count to 0 and removes the saved record.
func (e *Engine) ClearHoldings() error {
	e.shares = make(map[model.Symbol]string)
	if e.inputs == nil {
		return nil
	}
	return e.inputs.ClearHoldings()
}

// Profile returns the current paycheck profile.
func (e *Engine) Profile() model.PaycheckProfile {
	return e.profile
}

// HasSavedProfile reports whether the profile came from, or was written to,
// the input store.
func (e *Engine) HasSavedProfile() bool {
	return e.profileSaved
}

// SetProfile replaces and persists the paycheck profile.
func (e *Engine) SetProfile(p model.PaycheckProfile) error {
	e.profile = p
	if e.inputs == nil {
		return nil
	}
	if err := e.inputs.SaveProfile(p); err != nil {
		return err
	}
	e.profileSaved = true
	return nil
}

// Targets returns the configured target table.
func (e *Engine) Targets() model.TargetAllocation {
	return e.targets
}

// Plan computes the plan for the current state.
func (e *Engine) Plan() model.Plan {
	return Compute(Input{
		Profile:  e.profile,
		Shares:   e.shares,
		Snapshot: e.snapshot,
		Targets:  e.targets,
	})
}
