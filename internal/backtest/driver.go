package backtest

// driver.go — el loop día a día de la simulación.
//
// El driver es el único escritor del Portfolio: por cada fila de la serie
// pide una decisión al engine (domain.Decide, puro), la aplica al estado y
// añade una fila al ledger. Una fila de entrada inválida se registra como
// hueco (SKIP) con el estado intacto; nunca aborta el run completo.

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/alejandrodnm/ahrbot/internal/domain"
)

// Driver ejecuta simulaciones con unos parámetros fijos. Cada llamada a Run
// usa un Portfolio propio, así que un mismo Driver sirve para barridos de
// parámetros secuenciales sin interferencias.
type Driver struct {
	params domain.StrategyParams
}

// New valida los parámetros y construye un Driver. Parámetros inválidos son
// fatales aquí: el engine se niega a ejecutarse con umbrales mal ordenados.
func New(params domain.StrategyParams) (*Driver, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("backtest.New: %w", err)
	}
	return &Driver{params: params}, nil
}

// Params devuelve los parámetros del driver.
func (d *Driver) Params() domain.StrategyParams {
	return d.params
}

// Run reproduce la estrategia sobre la serie en orden cronológico y devuelve
// el ledger completo. Determinista: misma serie y mismos parámetros producen
// siempre el mismo ledger.
func (d *Driver) Run(series []domain.SeriesRow) domain.Ledger {
	pf := domain.NewPortfolio(d.params.InitialCash)
	ledger := make(domain.Ledger, 0, len(series))

	for _, row := range series {
		decision, err := domain.Decide(row.Indicator, row.Price, pf, d.params)
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidInput) {
				// Decide solo devuelve errores de entrada, pero si algún
				// día cambia no queremos tragarnos otra cosa en silencio.
				slog.Error("unexpected decide error", "date", row.Date, "err", err)
			}
			slog.Warn("skipping invalid series row",
				"date", row.Date.Format("2006-01-02"),
				"price", row.Price,
				"indicator", row.Indicator,
			)
			ledger = append(ledger, skipRow(row, pf))
			continue
		}

		pf.Apply(decision, row.Price)

		ledger = append(ledger, domain.LedgerRow{
			Date:               row.Date,
			Indicator:          row.Indicator,
			Price:              row.Price,
			Action:             decision.Action,
			Amount:             decision.Amount,
			Cash:               pf.Cash,
			Holdings:           pf.Holdings,
			PortfolioValue:     pf.Value(row.Price),
			CumulativeInvested: pf.CumulativeInvested,
		})
	}

	return ledger
}

// skipRow registra el hueco dejado por una fila inválida: misma fecha, estado
// arrastrado sin cambios.
func skipRow(row domain.SeriesRow, pf domain.Portfolio) domain.LedgerRow {
	// Si el precio de la fila es utilizable se valora la posición con él;
	// si no, solo cuenta el efectivo.
	value := pf.Cash
	if !math.IsNaN(row.Price) && row.Price > 0 {
		value = pf.Value(row.Price)
	}
	return domain.LedgerRow{
		Date:               row.Date,
		Indicator:          row.Indicator,
		Price:              row.Price,
		Action:             domain.ActionSkip,
		Cash:               pf.Cash,
		Holdings:           pf.Holdings,
		PortfolioValue:     value,
		CumulativeInvested: pf.CumulativeInvested,
		Skipped:            true,
	}
}
