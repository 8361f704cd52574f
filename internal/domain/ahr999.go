package domain

import (
	"fmt"
	"math"
	"time"
)

// ahr999.go — cálculo del indicador ahr999 a partir del histórico de precios.
//
// El indicador multiplica dos ratios: precio actual sobre el precio objetivo
// de la curva de crecimiento logarítmico de Bitcoin, y precio actual sobre la
// media móvil de 200 días. Valores bajos = mercado infravalorado.

// GenesisDate es la fecha del bloque génesis de Bitcoin, origen de la curva
// de crecimiento.
var GenesisDate = time.Date(2009, time.January, 3, 0, 0, 0, 0, time.UTC)

// ma200Window es la ventana de la media móvil usada por el indicador.
const ma200Window = 200

// GrowthTargetPrice devuelve el precio objetivo del ajuste logarítmico
// 10^(5.84·log10(edad_en_días) − 17.01) para la fecha dada.
func GrowthTargetPrice(date time.Time) float64 {
	ageDays := date.Sub(GenesisDate).Hours() / 24
	if ageDays <= 0 {
		return 0
	}
	return math.Pow(10, 5.84*math.Log10(ageDays)-17.01)
}

// Ahr999 calcula el indicador para un precio y fecha dados usando los cierres
// diarios previos. Necesita al menos 200 puntos de histórico.
func Ahr999(date time.Time, price float64, trailing []float64) (float64, error) {
	if math.IsNaN(price) || price <= 0 {
		return 0, fmt.Errorf("%w: price %v", ErrInvalidInput, price)
	}
	if len(trailing) < ma200Window {
		return 0, fmt.Errorf("%w: need %d trailing closes, got %d",
			ErrInvalidInput, ma200Window, len(trailing))
	}

	window := trailing[len(trailing)-ma200Window:]
	var sum float64
	for _, p := range window {
		sum += p
	}
	ma200 := sum / float64(len(window))

	target := GrowthTargetPrice(date)
	if target <= 0 || ma200 <= 0 {
		return 0, fmt.Errorf("%w: non-positive target price or MA200", ErrInvalidInput)
	}

	return (price / target) * (price / ma200), nil
}

// EnrichSeries completa los valores de indicador que falten (NaN) en una
// serie usando su propio histórico de precios. Las filas sin indicador que
// no tengan 200 días de precalentamiento se descartan.
func EnrichSeries(series []SeriesRow) []SeriesRow {
	out := make([]SeriesRow, 0, len(series))
	prices := make([]float64, 0, len(series))

	for _, row := range series {
		if !math.IsNaN(row.Indicator) {
			out = append(out, row)
			prices = append(prices, row.Price)
			continue
		}

		value, err := Ahr999(row.Date, row.Price, prices)
		prices = append(prices, row.Price)
		if err != nil {
			continue
		}
		row.Indicator = value
		out = append(out, row)
	}

	return out
}
