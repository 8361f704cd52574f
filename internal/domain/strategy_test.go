package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() StrategyParams {
	return StrategyParams{
		StopInvesting:     1.2,
		SellThreshold:     4,
		DipBuyThreshold:   0.45,
		InvestPercentage:  0.5,
		DailyInvestment:   100,
		WeightCoefficient: 1.0,
		InitialCash:       1000,
	}
}

func TestValidate_DefaultsOK(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*StrategyParams)
	}{
		{"stop_investing zero", func(p *StrategyParams) { p.StopInvesting = 0 }},
		{"sell below stop", func(p *StrategyParams) { p.SellThreshold = 1.0 }},
		{"sell equals stop", func(p *StrategyParams) { p.SellThreshold = p.StopInvesting }},
		{"dip above stop", func(p *StrategyParams) { p.DipBuyThreshold = 2.0 }},
		{"dip negative", func(p *StrategyParams) { p.DipBuyThreshold = -0.1 }},
		{"invest pct zero", func(p *StrategyParams) { p.InvestPercentage = 0 }},
		{"invest pct above one", func(p *StrategyParams) { p.InvestPercentage = 1.5 }},
		{"negative daily", func(p *StrategyParams) { p.DailyInvestment = -1 }},
		{"negative weight", func(p *StrategyParams) { p.WeightCoefficient = -1 }},
		{"negative cash", func(p *StrategyParams) { p.InitialCash = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams()
			tc.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestValidate_ZeroDipBuyDisablesDipBuy(t *testing.T) {
	p := testParams()
	p.DipBuyThreshold = 0
	require.NoError(t, p.Validate())

	// Con el umbral a 0 nunca se dispara el dip-buy: indicador bajo + cash
	// disponible cae en la compra diaria ponderada.
	pf := NewPortfolio(1000)
	d, err := Decide(0.3, 50_000, pf, p)
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, d.Action)
}

func TestDecide_DipBuyUsesInvestPercentage(t *testing.T) {
	p := testParams()
	pf := NewPortfolio(1000)

	// Primer día: 50% del efectivo disponible.
	d, err := Decide(0.3, 50_000, pf, p)
	require.NoError(t, err)
	assert.Equal(t, ActionDipBuy, d.Action)
	assert.InDelta(t, 500, d.Amount, 1e-9)

	pf.Apply(d, 50_000)
	assert.InDelta(t, 500, pf.Cash, 1e-9)
	assert.InDelta(t, 0.01, pf.Holdings, 1e-12)

	// Segundo día: 50% de lo que queda.
	d, err = Decide(0.3, 50_000, pf, p)
	require.NoError(t, err)
	assert.Equal(t, ActionDipBuy, d.Action)
	assert.InDelta(t, 250, d.Amount, 1e-9)
}

func TestDecide_SellLiquidatesEverything(t *testing.T) {
	p := testParams()
	pf := Portfolio{Cash: 100, Holdings: 0.5}

	d, err := Decide(5, 60_000, pf, p)
	require.NoError(t, err)
	assert.Equal(t, ActionSell, d.Action)
	assert.InDelta(t, 0.5, d.Amount, 1e-12)

	pf.Apply(d, 60_000)
	assert.InDelta(t, 100+0.5*60_000, pf.Cash, 1e-9)
	assert.Zero(t, pf.Holdings)
	// Vender no cuenta como inversión.
	assert.Zero(t, pf.CumulativeInvested)
}

func TestDecide_SellTakesPrecedenceOverBuySignals(t *testing.T) {
	// Umbrales artificiales donde el indicador queda a la vez por encima
	// de sell y por debajo de dip: SELL debe ganar siempre.
	p := StrategyParams{
		StopInvesting:     10,
		SellThreshold:     11,
		DipBuyThreshold:   9,
		InvestPercentage:  0.5,
		DailyInvestment:   100,
		WeightCoefficient: 1,
	}
	pf := Portfolio{Cash: 1000, Holdings: 2}

	d, err := Decide(12, 50_000, pf, p)
	require.NoError(t, err)
	assert.Equal(t, ActionSell, d.Action)
}

func TestDecide_SellWithoutHoldingsFallsToHold(t *testing.T) {
	p := testParams()
	pf := NewPortfolio(1000)

	d, err := Decide(5, 60_000, pf, p)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, d.Action)
	// Tras liquidar, la estrategia sigue acumulando efectivo nocional.
	assert.InDelta(t, p.DailyInvestment, d.Accrue, 1e-9)
}

func TestDecide_NeutralBandAccumulates(t *testing.T) {
	p := testParams()
	pf := NewPortfolio(1000)

	for i := 0; i < 3; i++ {
		d, err := Decide(2, 50_000, pf, p)
		require.NoError(t, err)
		assert.Equal(t, ActionHold, d.Action)
		assert.InDelta(t, 100, d.Accrue, 1e-9)
		pf.Apply(d, 50_000)
	}

	assert.InDelta(t, 300, pf.AccumulatedCash, 1e-9)
	assert.InDelta(t, 1000, pf.Cash, 1e-9)
	assert.Zero(t, pf.Holdings)
}

func TestDecide_ReinvestRedeploysReserve(t *testing.T) {
	p := testParams()
	pf := Portfolio{Cash: 1000, AccumulatedCash: 300}

	d, err := Decide(1.0, 50_000, pf, p)
	require.NoError(t, err)
	assert.Equal(t, ActionReinvest, d.Action)
	// base = 100 × 1.0 / 1.0 = 100, más la reserva de 300.
	assert.InDelta(t, 400, d.Amount, 1e-9)
	assert.True(t, d.ResetReserve)

	pf.Apply(d, 50_000)
	assert.Zero(t, pf.AccumulatedCash)
	assert.InDelta(t, 600, pf.Cash, 1e-9)
	assert.InDelta(t, 400, pf.CumulativeInvested, 1e-9)
}

func TestDecide_ReinvestClampedToCash(t *testing.T) {
	p := testParams()
	pf := Portfolio{Cash: 150, AccumulatedCash: 300}

	d, err := Decide(1.0, 50_000, pf, p)
	require.NoError(t, err)
	assert.Equal(t, ActionReinvest, d.Action)
	assert.InDelta(t, 150, d.Amount, 1e-9)

	pf.Apply(d, 50_000)
	assert.Zero(t, pf.Cash)
	assert.Zero(t, pf.AccumulatedCash)
}

func TestDecide_BuyWithoutCashDegradesToHold(t *testing.T) {
	p := testParams()
	pf := Portfolio{Cash: 0}

	d, err := Decide(1.0, 50_000, pf, p)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, d.Action)
	// Hold degradado: sin acumulación, sin mutación de estado.
	assert.Zero(t, d.Accrue)

	before := pf
	pf.Apply(d, 50_000)
	assert.Equal(t, before, pf)
}

func TestDecide_ReinvestWithoutCashKeepsReserve(t *testing.T) {
	p := testParams()
	pf := Portfolio{Cash: 0, AccumulatedCash: 500}

	d, err := Decide(1.0, 50_000, pf, p)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, d.Action)
	assert.Zero(t, d.Accrue)

	pf.Apply(d, 50_000)
	assert.InDelta(t, 500, pf.AccumulatedCash, 1e-9)
}

func TestDecide_WeightedAmountMonotoneInIndicator(t *testing.T) {
	p := testParams()
	pf := NewPortfolio(1_000_000) // cash de sobra para que no recorte

	prev := math.Inf(1)
	for _, indicator := range []float64{0.5, 0.7, 0.9, 1.1} {
		d, err := Decide(indicator, 50_000, pf, p)
		require.NoError(t, err)
		assert.Equal(t, ActionBuy, d.Action)
		assert.LessOrEqual(t, d.Amount, prev,
			"amount must not increase with the indicator")
		prev = d.Amount
	}
}

func TestDecide_InvalidInputs(t *testing.T) {
	p := testParams()
	pf := NewPortfolio(1000)

	cases := []struct {
		name             string
		indicator, price float64
	}{
		{"zero price", 1.0, 0},
		{"negative price", 1.0, -5},
		{"nan price", 1.0, math.NaN()},
		{"inf price", 1.0, math.Inf(1)},
		{"zero indicator", 0, 50_000},
		{"negative indicator", -1, 50_000},
		{"nan indicator", math.NaN(), 50_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decide(tc.indicator, tc.price, pf, p)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDecide_IsPure(t *testing.T) {
	p := testParams()
	pf := Portfolio{Cash: 1000, Holdings: 0.2, AccumulatedCash: 50}

	d1, err1 := Decide(0.8, 42_000, pf, p)
	d2, err2 := Decide(0.8, 42_000, pf, p)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, d1, d2)
	// El engine no toca el portfolio.
	assert.Equal(t, Portfolio{Cash: 1000, Holdings: 0.2, AccumulatedCash: 50}, pf)
}
