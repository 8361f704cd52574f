package storage

// sqlite.go — persistencia de runs de backtest en SQLite (pure Go, sin CGo).
//
// Dos tablas: `runs` con una fila por simulación (parámetros + resumen) y
// `ledger_rows` con el ledger completo, una fila por día. El ledger se
// inserta en una sola transacción: un run guardado a medias no sirve de nada.

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/alejandrodnm/ahrbot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id                  TEXT PRIMARY KEY,
    created_at          DATETIME NOT NULL,
    stop_investing      REAL NOT NULL,
    sell_threshold      REAL NOT NULL,
    dip_buy_threshold   REAL NOT NULL,
    invest_percentage   REAL NOT NULL,
    daily_investment    REAL NOT NULL,
    weight_coefficient  REAL NOT NULL,
    initial_cash        REAL NOT NULL,
    total_rows          INTEGER NOT NULL DEFAULT 0,
    skipped_rows        INTEGER NOT NULL DEFAULT 0,
    final_value         REAL NOT NULL DEFAULT 0,
    cumulative_invested REAL NOT NULL DEFAULT 0,
    return_pct          REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS ledger_rows (
    run_id              TEXT NOT NULL REFERENCES runs(id),
    seq                 INTEGER NOT NULL,
    date                DATETIME NOT NULL,
    indicator           REAL,
    price               REAL,
    action              TEXT NOT NULL,
    amount              REAL NOT NULL DEFAULT 0,
    cash                REAL NOT NULL,
    holdings            REAL NOT NULL,
    portfolio_value     REAL NOT NULL,
    cumulative_invested REAL NOT NULL,
    skipped             INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
`

// SQLiteStore implementa ports.RunStore usando SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica el
// schema. Acepta ":memory:" para tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveRun guarda el run y todas las filas de su ledger en una transacción.
func (s *SQLiteStore) SaveRun(ctx context.Context, run domain.Run, ledger domain.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin: %w", err)
	}
	defer tx.Rollback()

	p := run.Params
	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, created_at, stop_investing, sell_threshold, dip_buy_threshold,
		 invest_percentage, daily_investment, weight_coefficient, initial_cash,
		 total_rows, skipped_rows, final_value, cumulative_invested, return_pct)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.CreatedAt.UTC(), p.StopInvesting, p.SellThreshold, p.DipBuyThreshold,
		p.InvestPercentage, p.DailyInvestment, p.WeightCoefficient, p.InitialCash,
		run.Rows, run.Skipped, run.FinalValue, run.CumulativeInvested, run.ReturnPct,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ledger_rows
		(run_id, seq, date, indicator, price, action, amount,
		 cash, holdings, portfolio_value, cumulative_invested, skipped)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for seq, row := range ledger {
		_, err := stmt.ExecContext(ctx,
			run.ID, seq, row.Date.UTC(), nullableFloat(row.Indicator), nullableFloat(row.Price),
			string(row.Action), row.Amount, row.Cash, row.Holdings,
			row.PortfolioValue, row.CumulativeInvested, boolToInt(row.Skipped),
		)
		if err != nil {
			return fmt.Errorf("storage.SaveRun: insert ledger row %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// ListRuns devuelve los runs más recientes, hasta limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, created_at, stop_investing, sell_threshold, dip_buy_threshold,
		invest_percentage, daily_investment, weight_coefficient, initial_cash,
		total_rows, skipped_rows, final_value, cumulative_invested, return_pct
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		err := rows.Scan(
			&r.ID, &r.CreatedAt,
			&r.Params.StopInvesting, &r.Params.SellThreshold, &r.Params.DipBuyThreshold,
			&r.Params.InvestPercentage, &r.Params.DailyInvestment,
			&r.Params.WeightCoefficient, &r.Params.InitialCash,
			&r.Rows, &r.Skipped, &r.FinalValue, &r.CumulativeInvested, &r.ReturnPct,
		)
		if err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetLedger devuelve el ledger completo de un run, en orden.
func (s *SQLiteStore) GetLedger(ctx context.Context, runID string) (domain.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		date, indicator, price, action, amount,
		cash, holdings, portfolio_value, cumulative_invested, skipped
		FROM ledger_rows WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetLedger: query: %w", err)
	}
	defer rows.Close()

	var ledger domain.Ledger
	for rows.Next() {
		var (
			row       domain.LedgerRow
			action    string
			indicator sql.NullFloat64
			price     sql.NullFloat64
			skipped   int
		)
		err := rows.Scan(
			&row.Date, &indicator, &price, &action, &row.Amount,
			&row.Cash, &row.Holdings, &row.PortfolioValue,
			&row.CumulativeInvested, &skipped,
		)
		if err != nil {
			return nil, fmt.Errorf("storage.GetLedger: scan: %w", err)
		}
		row.Action = domain.Action(action)
		row.Skipped = skipped != 0
		row.Indicator = nullFloatValue(indicator)
		row.Price = nullFloatValue(price)
		ledger = append(ledger, row)
	}
	return ledger, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullableFloat convierte NaN en NULL: SQLite no tiene NaN y el driver lo
// rechazaría.
func nullableFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloatValue(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
