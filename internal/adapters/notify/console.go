package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/ahrbot/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// tailRows es cuántas filas finales del ledger se muestran en modo tabla.
const tailRows = 15

// Console implementa ports.Notifier escribiendo el resultado del backtest
// a la salida estándar.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el resumen del run en el modo configurado.
func (c *Console) Notify(_ context.Context, summary domain.Summary, ledger domain.Ledger) error {
	if summary.Rows == 0 {
		fmt.Fprintln(c.out, "empty ledger — nothing to report")
		return nil
	}

	if c.table {
		c.printFull(summary, ledger)
	} else {
		c.printCompact(summary)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(s domain.Summary) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s → %s] %d days", s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.Rows)
	if s.Skipped > 0 {
		fmt.Fprintf(&sb, " (%d skipped)", s.Skipped)
	}
	fmt.Fprintf(&sb, " | buys:%d dip:%d reinv:%d sells:%d holds:%d",
		s.ActionCounts[domain.ActionBuy],
		s.ActionCounts[domain.ActionDipBuy],
		s.ActionCounts[domain.ActionReinvest],
		s.ActionCounts[domain.ActionSell],
		s.ActionCounts[domain.ActionHold],
	)
	fmt.Fprintf(&sb, " | invested $%.0f → value $%.0f (%+.1f%%) dd %.1f%%",
		s.CumulativeInvested, s.FinalValue, s.ReturnPct, s.MaxDrawdownPct)

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la cola del ledger como tabla más el bloque de resumen.
func (c *Console) printFull(s domain.Summary, ledger domain.Ledger) {
	fmt.Fprintf(c.out, "\n=== BACKTEST %s → %s (%d days, %d skipped) ===\n",
		s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.Rows, s.Skipped)

	c.printLedgerTail(ledger)
	c.printSummary(s)
}

func (c *Console) printLedgerTail(ledger domain.Ledger) {
	tail := ledger
	if len(tail) > tailRows {
		fmt.Fprintf(c.out, "  ... %d earlier rows omitted\n", len(ledger)-tailRows)
		tail = ledger[len(ledger)-tailRows:]
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "ahr999", "Price", "Action", "Amount", "Cash", "BTC", "Value")

	for _, row := range tail {
		table.Append(
			row.Date.Format("2006-01-02"),
			fmt.Sprintf("%.3f", row.Indicator),
			fmt.Sprintf("%.1f", row.Price),
			string(row.Action),
			fmt.Sprintf("%.2f", row.Amount),
			fmt.Sprintf("%.2f", row.Cash),
			fmt.Sprintf("%.5f", row.Holdings),
			fmt.Sprintf("%.2f", row.PortfolioValue),
		)
	}

	table.Render()
}

func (c *Console) printSummary(s domain.Summary) {
	fmt.Fprintf(c.out, "\n  Actions: BUY:%d DIP_BUY:%d REINVEST:%d SELL:%d HOLD:%d SKIP:%d\n",
		s.ActionCounts[domain.ActionBuy],
		s.ActionCounts[domain.ActionDipBuy],
		s.ActionCounts[domain.ActionReinvest],
		s.ActionCounts[domain.ActionSell],
		s.ActionCounts[domain.ActionHold],
		s.ActionCounts[domain.ActionSkip],
	)
	fmt.Fprintf(c.out, "  ─────────────────────────────────────────────\n")
	fmt.Fprintf(c.out, "  Initial cash:        $%.2f\n", s.InitialCash)
	fmt.Fprintf(c.out, "  Invested:            $%.2f\n", s.CumulativeInvested)
	fmt.Fprintf(c.out, "  Final cash:          $%.2f\n", s.FinalCash)
	fmt.Fprintf(c.out, "  Final holdings:      %.5f BTC\n", s.FinalHoldings)
	fmt.Fprintf(c.out, "  Final value:         $%.2f\n", s.FinalValue)
	fmt.Fprintf(c.out, "  Return vs initial:   %+.2f%%\n", s.ReturnPct)
	fmt.Fprintf(c.out, "  Max drawdown:        %.2f%%\n\n", s.MaxDrawdownPct)
}

// PrintDecision imprime la decisión del modo live en formato legible.
func (c *Console) PrintDecision(date time.Time, indicator, price float64, d domain.Decision) {
	fmt.Fprintf(c.out, "\n[%s] ahr999=%.3f price=$%.1f\n", date.Format("2006-01-02"), indicator, price)
	switch d.Action {
	case domain.ActionSell:
		fmt.Fprintf(c.out, "  → %s %.5f BTC\n\n", d.Action, d.Amount)
	case domain.ActionHold:
		fmt.Fprintf(c.out, "  → %s (accrue $%.2f to reserve)\n\n", d.Action, d.Accrue)
	default:
		fmt.Fprintf(c.out, "  → %s $%.2f\n\n", d.Action, d.Amount)
	}
}
