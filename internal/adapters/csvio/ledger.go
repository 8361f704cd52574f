package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/alejandrodnm/ahrbot/internal/domain"
)

var ledgerHeader = []string{
	"date", "ahr999", "price", "action", "amount",
	"cash", "holdings", "portfolio_value", "cumulative_invested", "skipped",
}

// WriteLedger exporta el ledger completo a un CSV tabular en path.
func WriteLedger(path string, ledger domain.Ledger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvio.WriteLedger: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ledgerHeader); err != nil {
		return fmt.Errorf("csvio.WriteLedger: write header: %w", err)
	}

	for _, row := range ledger {
		record := []string{
			row.Date.Format("2006-01-02"),
			formatFloat(row.Indicator, 3),
			formatFloat(row.Price, 1),
			string(row.Action),
			formatFloat(row.Amount, 2),
			formatFloat(row.Cash, 2),
			formatFloat(row.Holdings, 8),
			formatFloat(row.PortfolioValue, 2),
			formatFloat(row.CumulativeInvested, 2),
			strconv.FormatBool(row.Skipped),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("csvio.WriteLedger: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csvio.WriteLedger: flush: %w", err)
	}
	return nil
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
