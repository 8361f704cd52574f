package domain

import (
	"math"
	"time"
)

// Portfolio is the running state of one simulation. The backtest driver is
// its only writer: Decide receives a copy and returns a Decision, the driver
// commits it through Apply.
type Portfolio struct {
	Cash               float64
	Holdings           float64
	AccumulatedCash    float64 // reserva nocional acumulada en días HOLD
	CumulativeInvested float64 // total comprometido en compras, solo reporting
}

// NewPortfolio crea un portfolio con el efectivo inicial y sin posición.
func NewPortfolio(cash float64) Portfolio {
	return Portfolio{Cash: cash}
}

// Apply commits a decision to the portfolio. Amounts are clamped so that
// Cash and Holdings never go negative, whatever the decision says.
func (pf *Portfolio) Apply(d Decision, price float64) {
	switch d.Action {
	case ActionSell:
		qty := math.Min(d.Amount, pf.Holdings)
		pf.Cash += qty * price
		pf.Holdings -= qty
		if pf.Holdings < 0 {
			pf.Holdings = 0
		}

	case ActionBuy, ActionDipBuy, ActionReinvest:
		amount := math.Min(d.Amount, pf.Cash)
		if amount < 0 {
			amount = 0
		}
		pf.Cash -= amount
		pf.Holdings += amount / price
		pf.CumulativeInvested += amount
		if d.ResetReserve {
			pf.AccumulatedCash = 0
		}

	case ActionHold:
		pf.AccumulatedCash += d.Accrue
	}
}

// Value devuelve el valor total del portfolio al precio dado.
func (pf Portfolio) Value(price float64) float64 {
	return pf.Cash + pf.Holdings*price
}

// SeriesRow es una fila de la serie histórica de entrada.
type SeriesRow struct {
	Date      time.Time
	Price     float64
	Indicator float64 // ahr999 precomputado; NaN si falta
}

// LedgerRow es el resultado de un paso de simulación. El ledger es
// append-only: una fila por fila de entrada, nunca se reescribe.
type LedgerRow struct {
	Date               time.Time
	Indicator          float64
	Price              float64
	Action             Action
	Amount             float64
	Cash               float64
	Holdings           float64
	PortfolioValue     float64
	CumulativeInvested float64
	Skipped            bool // fila de entrada inválida, estado sin tocar
}

// Ledger es el registro ordenado y completo de una simulación.
type Ledger []LedgerRow

// Final devuelve la última fila del ledger.
func (l Ledger) Final() (LedgerRow, bool) {
	if len(l) == 0 {
		return LedgerRow{}, false
	}
	return l[len(l)-1], true
}

// SkippedRows cuenta las filas marcadas como saltadas.
func (l Ledger) SkippedRows() int {
	n := 0
	for _, row := range l {
		if row.Skipped {
			n++
		}
	}
	return n
}
