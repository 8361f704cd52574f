package charts_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/ahrbot/internal/adapters/charts"
	"github.com/alejandrodnm/ahrbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ledger := domain.Ledger{
		{Date: start, Indicator: 0.3, Price: 50_000, Action: domain.ActionDipBuy,
			Amount: 500, Cash: 500, Holdings: 0.01, PortfolioValue: 1000, CumulativeInvested: 500},
		{Date: start.AddDate(0, 0, 1), Indicator: 5.0, Price: 80_000, Action: domain.ActionSell,
			Amount: 0.01, Cash: 1300, PortfolioValue: 1300, CumulativeInvested: 500},
	}

	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, charts.WriteReport(path, ledger))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "Cumulative investment vs portfolio value")
	assert.Contains(t, html, "Price with buy/sell signals")
	assert.Contains(t, html, "Cash and holdings over time")
}

func TestWriteReport_EmptyLedger(t *testing.T) {
	err := charts.WriteReport(filepath.Join(t.TempDir(), "report.html"), nil)
	assert.Error(t, err)
}
