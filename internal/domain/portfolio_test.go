package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply_BuyClampedToCash(t *testing.T) {
	pf := NewPortfolio(100)
	pf.Apply(Decision{Action: ActionBuy, Amount: 250}, 50_000)

	assert.Zero(t, pf.Cash)
	assert.InDelta(t, 100.0/50_000, pf.Holdings, 1e-12)
	assert.InDelta(t, 100, pf.CumulativeInvested, 1e-9)
}

func TestApply_SellClampedToHoldings(t *testing.T) {
	pf := Portfolio{Cash: 0, Holdings: 0.1}
	pf.Apply(Decision{Action: ActionSell, Amount: 5}, 40_000)

	assert.Zero(t, pf.Holdings)
	assert.InDelta(t, 0.1*40_000, pf.Cash, 1e-9)
}

func TestApply_HoldOnlyAccrues(t *testing.T) {
	pf := Portfolio{Cash: 500, Holdings: 0.3}
	pf.Apply(Decision{Action: ActionHold, Accrue: 100}, 40_000)

	assert.InDelta(t, 500, pf.Cash, 1e-9)
	assert.InDelta(t, 0.3, pf.Holdings, 1e-12)
	assert.InDelta(t, 100, pf.AccumulatedCash, 1e-9)
}

func TestApply_CumulativeInvestedMonotone(t *testing.T) {
	pf := NewPortfolio(1000)
	prev := 0.0
	steps := []Decision{
		{Action: ActionBuy, Amount: 100},
		{Action: ActionHold, Accrue: 100},
		{Action: ActionDipBuy, Amount: 200},
		{Action: ActionSell, Amount: 1},
		{Action: ActionReinvest, Amount: 150, ResetReserve: true},
	}
	for _, d := range steps {
		pf.Apply(d, 30_000)
		assert.GreaterOrEqual(t, pf.CumulativeInvested, prev)
		prev = pf.CumulativeInvested
	}
}

func TestValue(t *testing.T) {
	pf := Portfolio{Cash: 250, Holdings: 0.5}
	assert.InDelta(t, 250+0.5*40_000, pf.Value(40_000), 1e-9)
}

func TestLedger_FinalAndSkipped(t *testing.T) {
	var empty Ledger
	_, ok := empty.Final()
	assert.False(t, ok)

	l := Ledger{
		{Action: ActionBuy},
		{Action: ActionSkip, Skipped: true},
		{Action: ActionHold},
	}
	final, ok := l.Final()
	assert.True(t, ok)
	assert.Equal(t, ActionHold, final.Action)
	assert.Equal(t, 1, l.SkippedRows())
}
