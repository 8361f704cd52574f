package domain

import "time"

// Summary son las métricas agregadas de una simulación completa.
type Summary struct {
	Start              time.Time
	End                time.Time
	Rows               int
	Skipped            int
	ActionCounts       map[Action]int
	FinalCash          float64
	FinalHoldings      float64
	FinalValue         float64
	CumulativeInvested float64
	InitialCash        float64
	ReturnPct          float64 // valor final sobre efectivo inicial
	MaxDrawdownPct     float64 // peor caída del valor del portfolio
}

// Summarize recorre el ledger y calcula las métricas agregadas.
func Summarize(ledger Ledger, params StrategyParams) Summary {
	s := Summary{
		ActionCounts: make(map[Action]int),
		InitialCash:  params.InitialCash,
	}
	if len(ledger) == 0 {
		return s
	}

	s.Start = ledger[0].Date
	s.End = ledger[len(ledger)-1].Date
	s.Rows = len(ledger)

	peak := ledger[0].PortfolioValue
	for _, row := range ledger {
		s.ActionCounts[row.Action]++
		if row.Skipped {
			s.Skipped++
		}
		if row.PortfolioValue > peak {
			peak = row.PortfolioValue
		}
		if peak > 0 {
			dd := (peak - row.PortfolioValue) / peak * 100
			if dd > s.MaxDrawdownPct {
				s.MaxDrawdownPct = dd
			}
		}
	}

	final := ledger[len(ledger)-1]
	s.FinalCash = final.Cash
	s.FinalHoldings = final.Holdings
	s.FinalValue = final.PortfolioValue
	s.CumulativeInvested = final.CumulativeInvested
	if params.InitialCash > 0 {
		s.ReturnPct = (s.FinalValue/params.InitialCash - 1) * 100
	}
	return s
}

// Run identifica una simulación persistida junto a su resumen.
type Run struct {
	ID                 string
	CreatedAt          time.Time
	Params             StrategyParams
	Rows               int
	Skipped            int
	FinalValue         float64
	CumulativeInvested float64
	ReturnPct          float64
}
