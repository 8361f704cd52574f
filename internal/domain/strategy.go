package domain

import (
	"errors"
	"fmt"
	"math"
)

// Action es la decisión tomada por la estrategia en un paso.
type Action string

const (
	ActionBuy      Action = "BUY"      // compra diaria ponderada
	ActionSell     Action = "SELL"     // liquidación total de la posición
	ActionHold     Action = "HOLD"     // banda neutral, no se compra
	ActionDipBuy   Action = "DIP_BUY"  // compra grande en caída profunda
	ActionReinvest Action = "REINVEST" // compra diaria + reserva acumulada
	// ActionSkip solo aparece en el ledger: marca una fila de entrada
	// inválida que se saltó sin tocar el estado.
	ActionSkip Action = "SKIP"
)

var (
	// ErrInvalidParams indica parámetros de estrategia mal construidos.
	ErrInvalidParams = errors.New("invalid strategy params")
	// ErrInvalidInput indica una fila de entrada fuera de dominio (precio
	// o indicador no positivo).
	ErrInvalidInput = errors.New("invalid input")
)

// StrategyParams son los parámetros inmutables de la estrategia active-DCA.
// Se construyen una vez al arrancar y nunca se mutan después.
type StrategyParams struct {
	// StopInvesting: por debajo de este valor del indicador se sigue
	// comprando a diario. Entre StopInvesting y SellThreshold la estrategia
	// acumula efectivo sin comprar.
	StopInvesting float64
	// SellThreshold: por encima de este valor se liquida toda la posición.
	SellThreshold float64
	// DipBuyThreshold: por debajo de este valor se dispara una compra
	// grande con parte del efectivo disponible. 0 la desactiva.
	DipBuyThreshold float64
	// InvestPercentage: fracción del efectivo usada en un dip-buy (0..1].
	InvestPercentage float64
	// DailyInvestment: importe base de la compra diaria.
	DailyInvestment float64
	// WeightCoefficient: escala la compra diaria inversamente al indicador.
	WeightCoefficient float64
	// InitialCash: efectivo con el que arranca cada simulación.
	InitialCash float64
}

// DefaultParams devuelve los parámetros con los que se calibró la estrategia.
func DefaultParams() StrategyParams {
	return StrategyParams{
		StopInvesting:     1.10,
		SellThreshold:     1.85,
		DipBuyThreshold:   0.60,
		InvestPercentage:  0.70,
		DailyInvestment:   100,
		WeightCoefficient: 1.0,
		InitialCash:       10_000,
	}
}

// Validate comprueba el orden de los umbrales y los rangos de cada parámetro.
// Un error aquí es fatal: la estrategia se niega a ejecutarse.
func (p StrategyParams) Validate() error {
	if p.StopInvesting <= 0 {
		return fmt.Errorf("%w: stop_investing must be > 0, got %v", ErrInvalidParams, p.StopInvesting)
	}
	if p.SellThreshold <= p.StopInvesting {
		return fmt.Errorf("%w: sell_threshold (%v) must be > stop_investing (%v)",
			ErrInvalidParams, p.SellThreshold, p.StopInvesting)
	}
	if p.DipBuyThreshold < 0 || p.DipBuyThreshold >= p.StopInvesting {
		return fmt.Errorf("%w: dip_buy_threshold (%v) must be in [0, stop_investing)",
			ErrInvalidParams, p.DipBuyThreshold)
	}
	if p.InvestPercentage <= 0 || p.InvestPercentage > 1 {
		return fmt.Errorf("%w: invest_percentage must be in (0, 1], got %v",
			ErrInvalidParams, p.InvestPercentage)
	}
	if p.DailyInvestment < 0 {
		return fmt.Errorf("%w: daily_investment must be >= 0, got %v", ErrInvalidParams, p.DailyInvestment)
	}
	if p.WeightCoefficient < 0 {
		return fmt.Errorf("%w: weight_coefficient must be >= 0, got %v", ErrInvalidParams, p.WeightCoefficient)
	}
	if p.InitialCash < 0 {
		return fmt.Errorf("%w: initial_cash must be >= 0, got %v", ErrInvalidParams, p.InitialCash)
	}
	return nil
}

// Decision is the delta returned by Decide for a single step. The engine
// never mutates the portfolio itself: the driver applies the decision,
// which keeps a single writer over the state.
type Decision struct {
	Action Action
	// Amount is currency for BUY/DIP_BUY/REINVEST and asset quantity for
	// SELL (always the full position).
	Amount float64
	// Accrue is the notional cash the driver must bank into the
	// accumulated reserve on a neutral-band HOLD. Zero on degraded holds.
	Accrue float64
	// ResetReserve marks that the accumulated reserve was redeployed and
	// must go back to zero (REINVEST only).
	ResetReserve bool
}

// Decide evalúa las reglas de la estrategia para un paso. Es una función
// pura: mismas entradas, misma decisión, sin estado oculto.
//
// Las reglas se evalúan en orden fijo y la primera que aplica gana:
// SELL tiene prioridad sobre cualquier señal de compra, y DIP_BUY sobre
// la compra diaria ponderada.
func Decide(indicator, price float64, pf Portfolio, p StrategyParams) (Decision, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return Decision{}, fmt.Errorf("%w: price %v", ErrInvalidInput, price)
	}
	if math.IsNaN(indicator) || math.IsInf(indicator, 0) || indicator <= 0 {
		return Decision{}, fmt.Errorf("%w: indicator %v", ErrInvalidInput, indicator)
	}

	switch {
	case indicator > p.SellThreshold && pf.Holdings > 0:
		// Mercado sobrevalorado: se vende todo, sin mirar señales de compra.
		return Decision{Action: ActionSell, Amount: pf.Holdings}, nil

	case indicator < p.DipBuyThreshold && pf.Cash > 0:
		// Caída profunda: compra grande con una fracción del efectivo.
		amount := math.Min(pf.Cash*p.InvestPercentage, pf.Cash)
		return Decision{Action: ActionDipBuy, Amount: amount}, nil

	case indicator < p.StopInvesting:
		// Zona de compra: importe diario ponderado inversamente al
		// indicador. Cuanto más infravalorado, más se invierte.
		amount := weightedDailyAmount(indicator, p)
		if pf.AccumulatedCash > 0 {
			amount += pf.AccumulatedCash
			amount = math.Min(amount, pf.Cash)
			if amount <= 0 {
				// Sin efectivo no hay compra; la reserva se conserva.
				return Decision{Action: ActionHold}, nil
			}
			return Decision{Action: ActionReinvest, Amount: amount, ResetReserve: true}, nil
		}
		amount = math.Min(amount, pf.Cash)
		if amount <= 0 {
			return Decision{Action: ActionHold}, nil
		}
		return Decision{Action: ActionBuy, Amount: amount}, nil

	default:
		// Banda neutral (o posición ya liquidada con indicador alto):
		// no se compra, el importe diario se acumula como reserva.
		return Decision{Action: ActionHold, Accrue: p.DailyInvestment}, nil
	}
}

// weightedDailyAmount es la forma cerrada elegida para la compra ponderada:
// DailyInvestment × WeightCoefficient / indicador. Monótona decreciente en
// el indicador; el tope real lo pone siempre el efectivo disponible.
func weightedDailyAmount(indicator float64, p StrategyParams) float64 {
	return p.DailyInvestment * p.WeightCoefficient / indicator
}
