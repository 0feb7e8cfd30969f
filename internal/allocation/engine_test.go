package allocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/firetrack/internal/model"
)

type fakePrices struct {
	stored    *model.PriceSnapshot
	fetched   model.PriceSnapshot
	err       error
	gets      int
	lastForce bool
}

func (f *fakePrices) Get(_ context.Context, force bool) (model.PriceSnapshot, error) {
	f.gets++
	f.lastForce = force
	if f.err != nil {
		return model.PriceSnapshot{}, f.err
	}
	return f.fetched, nil
}

func (f *fakePrices) Peek() (model.PriceSnapshot, bool) {
	if f.stored == nil {
		return model.PriceSnapshot{}, false
	}
	return *f.stored, true
}

type fakeInputs struct {
	profile     *model.PaycheckProfile
	shares      map[model.Symbol]string
	savedShares map[model.Symbol]string
	cleared     bool
}

func (f *fakeInputs) LoadProfile() (model.PaycheckProfile, bool, error) {
	if f.profile == nil {
		return model.PaycheckProfile{}, false, nil
	}
	return *f.profile, true, nil
}

func (f *fakeInputs) SaveProfile(p model.PaycheckProfile) error {
	f.profile = &p
	return nil
}

func (f *fakeInputs) LoadHoldings() (map[model.Symbol]string, error) {
	return f.shares, nil
}

func (f *fakeInputs) SaveHoldings(shares map[model.Symbol]string) error {
	f.savedShares = shares
	return nil
}

func (f *fakeInputs) ClearHoldings() error {
	f.shares = nil
	f.savedShares = nil
	f.cleared = true
	return nil
}

func TestEngine_LoadSeedsFromStores(t *testing.T) {
	stored := snapshotOf(map[model.Symbol]*float64{"VTI": ptr(100), "QQQ": ptr(200), "VXUS": ptr(50)})
	prices := &fakePrices{stored: &stored}
	inputs := &fakeInputs{
		profile: &model.PaycheckProfile{PayAmount: "2000", PayFrequency: model.Biweekly, RentAmount: "700", RentFrequency: model.Monthly},
		shares:  map[model.Symbol]string{"VTI": "10", "QQQ": "5", "VXUS": "8"},
	}

	e := New(prices, inputs, defaultTargets)
	require.NoError(t, e.Load())

	assert.Equal(t, 0, prices.gets, "Load must not fetch")
	plan := e.Plan()
	assert.Equal(t, 2400.0, plan.TotalValue)
	assert.InDelta(t, 1676.92, plan.Leftover, 0.005)
	require.NotNil(t, plan.PricesAsOf)
	assert.Equal(t, stored.CapturedAt, *plan.PricesAsOf)
}

func TestEngine_LoadWithoutSavedState(t *testing.T) {
	e := New(&fakePrices{}, &fakeInputs{}, defaultTargets)
	require.NoError(t, e.Load())

	assert.Equal(t, model.DefaultPaycheckProfile(), e.Profile())
	assert.True(t, e.Snapshot().IsZero())
	plan := e.Plan()
	assert.Equal(t, 0.0, plan.Leftover)
	assert.Len(t, plan.Rows, 3)
}

func TestEngine_RefreshPricesKeepsSnapshotOnError(t *testing.T) {
	stored := snapshotOf(map[model.Symbol]*float64{"VTI": ptr(100)})
	prices := &fakePrices{stored: &stored, err: errors.New("upstream down")}
	e := New(prices, nil, defaultTargets)
	require.NoError(t, e.Load())

	err := e.RefreshPrices(context.Background(), true)
	require.Error(t, err)
	assert.True(t, prices.lastForce)
	assert.Equal(t, stored, e.Snapshot())
}

func TestEngine_RefreshPricesReplacesSnapshot(t *testing.T) {
	fresh := model.PriceSnapshot{
		Prices:     map[model.Symbol]*float64{"VTI": ptr(300)},
		CapturedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	e := New(&fakePrices{fetched: fresh}, nil, defaultTargets)
	e.SetShares("vti", "2")

	require.NoError(t, e.RefreshPrices(context.Background(), false))
	plan := e.Plan()
	assert.Equal(t, 600.0, plan.TotalValue)
	assert.Nil(t, plan.Rows[1].Price, "QQQ missing from the fetch stays unknown")
}

func TestEngine_ClearHoldings(t *testing.T) {
	inputs := &fakeInputs{shares: map[model.Symbol]string{"VTI": "10", "QQQ": "5"}}
	stored := snapshotOf(map[model.Symbol]*float64{"VTI": ptr(100), "QQQ": ptr(200), "VXUS": ptr(50)})
	e := New(&fakePrices{stored: &stored}, inputs, defaultTargets)
	require.NoError(t, e.Load())
	require.Equal(t, 2000.0, e.Plan().TotalValue)

	require.NoError(t, e.ClearHoldings())
	assert.True(t, inputs.cleared)
	assert.Empty(t, e.Shares())
	assert.Equal(t, 0.0, e.Plan().TotalValue)
}

func TestEngine_SettersPersist(t *testing.T) {
	inputs := &fakeInputs{}
	e := New(nil, inputs, defaultTargets)

	e.SetShares(" qqq ", "4")
	require.NoError(t, e.SaveHoldings())
	assert.Equal(t, map[model.Symbol]string{"QQQ": "4"}, inputs.savedShares)

	p := model.PaycheckProfile{PayAmount: "1500", PayFrequency: model.Monthly, RentAmount: "500", RentFrequency: model.Monthly}
	require.NoError(t, e.SetProfile(p))
	require.NotNil(t, inputs.profile)
	assert.Equal(t, p, *inputs.profile)
	assert.Equal(t, 1000.0, e.Plan().Leftover)
}

func TestEngine_PlanIsIdempotent(t *testing.T) {
	stored := snapshotOf(map[model.Symbol]*float64{"VTI": ptr(100), "QQQ": ptr(200), "VXUS": ptr(50)})
	e := New(&fakePrices{stored: &stored}, &fakeInputs{shares: map[model.Symbol]string{"VTI": "1"}}, defaultTargets)
	require.NoError(t, e.Load())

	assert.Equal(t, e.Plan(), e.Plan())
}

func TestEngine_FetchSnapshotLeavesStateAlone(t *testing.T) {
	fresh := model.PriceSnapshot{
		Prices:     map[model.Symbol]*float64{"VTI": ptr(300)},
		CapturedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	prices := &fakePrices{fetched: fresh}
	e := New(prices, nil, defaultTargets)

	snap, err := e.FetchSnapshot(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, fresh, snap)
	assert.True(t, prices.lastForce)
	assert.True(t, e.Snapshot().IsZero(), "fetch must not apply the snapshot")

	e.SetSnapshot(snap)
	assert.Equal(t, fresh, e.Snapshot())
}

func TestEngine_NilPriceSource(t *testing.T) {
	e := New(nil, nil, defaultTargets)
	require.NoError(t, e.Load())
	require.NoError(t, e.RefreshPrices(context.Background(), true))
	assert.True(t, e.Snapshot().IsZero())
}
