package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/ahrbot/config"
	"github.com/alejandrodnm/ahrbot/internal/adapters/charts"
	"github.com/alejandrodnm/ahrbot/internal/adapters/csvio"
	"github.com/alejandrodnm/ahrbot/internal/adapters/marketdata"
	"github.com/alejandrodnm/ahrbot/internal/adapters/notify"
	"github.com/alejandrodnm/ahrbot/internal/adapters/storage"
	"github.com/alejandrodnm/ahrbot/internal/backtest"
	"github.com/alejandrodnm/ahrbot/internal/domain"
	"github.com/alejandrodnm/ahrbot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	seriesPath := flag.String("csv", "", "historical series CSV (overrides config)")
	outPath := flag.String("out", "", "ledger CSV export path (overrides config)")
	reportPath := flag.String("report", "", "HTML chart report path (overrides config)")
	live := flag.Bool("live", false, "fetch live data and print today's decision instead of backtesting")
	table := flag.Bool("table", false, "print full table + summary (default: compact 1-line)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if *seriesPath != "" {
		cfg.Data.SeriesCSV = *seriesPath
	}
	if *outPath != "" {
		cfg.Output.LedgerCSV = *outPath
	}
	if *reportPath != "" {
		cfg.Output.Report = *reportPath
	}

	driver, err := backtest.New(cfg.Params())
	if err != nil {
		slog.Error("invalid strategy params", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	console := notify.NewConsole(*table)
	var notifier ports.Notifier = console

	if *live {
		runLive(ctx, cfg.LivePortfolio(), marketdata.NewClient(cfg.Data.CoinGeckoBase), driver.Params(), console)
		return
	}

	slog.Info("ahrbot starting",
		"config", *configPath,
		"series", cfg.Data.SeriesCSV,
		"initial_cash", cfg.Strategy.InitialCash,
	)

	series, err := csvio.LoadSeries(cfg.Data.SeriesCSV)
	if err != nil {
		slog.Error("failed to load series", "err", err)
		os.Exit(1)
	}
	series = domain.EnrichSeries(series)
	slog.Info("series loaded", "rows", len(series))

	start := time.Now()
	ledger := driver.Run(series)
	summary := domain.Summarize(ledger, driver.Params())
	slog.Info("backtest complete",
		"rows", summary.Rows,
		"skipped", summary.Skipped,
		"final_value", summary.FinalValue,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if err := notifier.Notify(ctx, summary, ledger); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if cfg.Output.LedgerCSV != "" {
		if err := csvio.WriteLedger(cfg.Output.LedgerCSV, ledger); err != nil {
			slog.Error("failed to export ledger", "err", err)
			os.Exit(1)
		}
		slog.Info("ledger exported", "path", cfg.Output.LedgerCSV)
	}

	if cfg.Output.Report != "" {
		if err := charts.WriteReport(cfg.Output.Report, ledger); err != nil {
			slog.Error("failed to write chart report", "err", err)
			os.Exit(1)
		}
		slog.Info("chart report written", "path", cfg.Output.Report)
	}

	if cfg.Storage.DSN != "" {
		store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
		if err != nil {
			slog.Warn("failed to open storage, run not persisted", "err", err, "dsn", cfg.Storage.DSN)
			return
		}
		defer store.Close()
		persistRun(ctx, store, driver.Params(), summary, ledger)
	}
}

// persistRun guarda el run en el store. Un fallo aquí no invalida el
// backtest: se loggea y se sigue.
func persistRun(ctx context.Context, store ports.RunStore, params domain.StrategyParams, summary domain.Summary, ledger domain.Ledger) {
	run := domain.Run{
		ID:                 uuid.New().String(),
		CreatedAt:          time.Now().UTC(),
		Params:             params,
		Rows:               summary.Rows,
		Skipped:            summary.Skipped,
		FinalValue:         summary.FinalValue,
		CumulativeInvested: summary.CumulativeInvested,
		ReturnPct:          summary.ReturnPct,
	}
	if err := store.SaveRun(ctx, run, ledger); err != nil {
		slog.Warn("failed to persist run", "err", err)
		return
	}
	slog.Info("run persisted", "id", run.ID)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
