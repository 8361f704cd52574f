package ports

import (
	"context"

	"github.com/alejandrodnm/ahrbot/internal/domain"
)

// MarketData obtiene precios de mercado para el modo live.
type MarketData interface {
	// FetchCurrentPrice devuelve el precio spot actual en USD.
	FetchCurrentPrice(ctx context.Context) (float64, error)

	// FetchDailyHistory devuelve los cierres diarios de los últimos days
	// días, en orden cronológico.
	FetchDailyHistory(ctx context.Context, days int) ([]domain.SeriesRow, error)
}
