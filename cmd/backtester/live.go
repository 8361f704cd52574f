package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alejandrodnm/ahrbot/internal/adapters/notify"
	"github.com/alejandrodnm/ahrbot/internal/domain"
	"github.com/alejandrodnm/ahrbot/internal/ports"
)

// historyDays son los días de histórico pedidos para la MA200 del indicador.
const historyDays = 220

// runLive calcula la decisión de hoy contra el portfolio configurado:
// descarga precio e histórico, computa el ahr999 y ejecuta un único paso
// del engine. No persiste ni muta nada — es una consulta.
func runLive(ctx context.Context, pf domain.Portfolio, md ports.MarketData, params domain.StrategyParams, console *notify.Console) {
	slog.Info("=== LIVE MODE: one-shot decision for today ===")

	price, err := md.FetchCurrentPrice(ctx)
	if err != nil {
		slog.Error("failed to fetch current price", "err", err)
		os.Exit(1)
	}

	history, err := md.FetchDailyHistory(ctx, historyDays)
	if err != nil {
		slog.Error("failed to fetch price history", "err", err)
		os.Exit(1)
	}

	closes := make([]float64, 0, len(history))
	for _, row := range history {
		closes = append(closes, row.Price)
	}

	today := time.Now().UTC()
	indicator, err := domain.Ahr999(today, price, closes)
	if err != nil {
		slog.Error("failed to compute ahr999", "err", err)
		os.Exit(1)
	}

	slog.Info("live snapshot",
		"price", price,
		"ahr999", indicator,
		"cash", pf.Cash,
		"holdings", pf.Holdings,
		"reserve", pf.AccumulatedCash,
	)

	decision, err := domain.Decide(indicator, price, pf, params)
	if err != nil {
		slog.Error("decision failed", "err", err)
		os.Exit(1)
	}

	console.PrintDecision(today, indicator, price, decision)
}
