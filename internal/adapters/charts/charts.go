package charts

// charts.go — informe HTML del backtest con go-echarts.
//
// Tres gráficos en una sola página: inversión acumulada frente a valor del
// portfolio, precio con marcadores de compra/venta, y efectivo + posición a
// lo largo del tiempo. Sustituye al CSV como artefacto visual; el ledger
// sigue siendo la fuente de verdad.

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/alejandrodnm/ahrbot/internal/domain"
)

// WriteReport genera el informe HTML completo del ledger en path.
func WriteReport(path string, ledger domain.Ledger) error {
	if len(ledger) == 0 {
		return fmt.Errorf("charts.WriteReport: empty ledger")
	}

	page := components.NewPage()
	page.PageTitle = "ahrbot backtest report"
	page.AddCharts(
		equityChart(ledger),
		signalsChart(ledger),
		holdingsChart(ledger),
	)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("charts.WriteReport: create %q: %w", path, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("charts.WriteReport: render: %w", err)
	}
	return nil
}

func dates(ledger domain.Ledger) []string {
	out := make([]string, 0, len(ledger))
	for _, row := range ledger {
		out = append(out, row.Date.Format("2006-01-02"))
	}
	return out
}

// equityChart compara lo invertido con lo que vale el portfolio.
func equityChart(ledger domain.Ledger) *charts.Line {
	values := make([]opts.LineData, 0, len(ledger))
	invested := make([]opts.LineData, 0, len(ledger))
	for _, row := range ledger {
		values = append(values, opts.LineData{Value: row.PortfolioValue})
		invested = append(invested, opts.LineData{Value: row.CumulativeInvested})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Cumulative investment vs portfolio value"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "450px"}),
	)
	line.SetXAxis(dates(ledger)).
		AddSeries("Portfolio value", values).
		AddSeries("Cumulative investment", invested)
	return line
}

// signalsChart pinta el precio con los puntos de compra y venta encima.
func signalsChart(ledger domain.Ledger) *charts.Line {
	prices := make([]opts.LineData, 0, len(ledger))
	buys := make([]opts.ScatterData, 0, len(ledger))
	sells := make([]opts.ScatterData, 0, len(ledger))

	for _, row := range ledger {
		prices = append(prices, opts.LineData{Value: row.Price})

		// Los huecos se rellenan con nil para mantener los índices del eje.
		var buy, sell any
		switch row.Action {
		case domain.ActionBuy, domain.ActionDipBuy, domain.ActionReinvest:
			buy = row.Price
		case domain.ActionSell:
			sell = row.Price
		}
		buys = append(buys, opts.ScatterData{Value: buy, SymbolSize: 10})
		sells = append(sells, opts.ScatterData{Value: sell, SymbolSize: 12})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Price with buy/sell signals"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "450px"}),
	)
	line.SetXAxis(dates(ledger)).AddSeries("Price", prices)

	scatter := charts.NewScatter()
	scatter.SetXAxis(dates(ledger)).
		AddSeries("Buys", buys).
		AddSeries("Sells", sells)

	line.Overlap(scatter)
	return line
}

// holdingsChart muestra la evolución del efectivo y de la posición.
func holdingsChart(ledger domain.Ledger) *charts.Line {
	cash := make([]opts.LineData, 0, len(ledger))
	holdings := make([]opts.LineData, 0, len(ledger))
	for _, row := range ledger {
		cash = append(cash, opts.LineData{Value: row.Cash})
		holdings = append(holdings, opts.LineData{Value: row.Holdings})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Cash and holdings over time"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "450px"}),
	)
	line.SetXAxis(dates(ledger)).
		AddSeries("Cash (USD)", cash).
		AddSeries("Holdings (BTC)", holdings)
	return line
}
