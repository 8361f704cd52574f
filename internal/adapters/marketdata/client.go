package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/alejandrodnm/ahrbot/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultBase = "https://api.coingecko.com"

	// CoinGecko público: 10-30 req/min según carga. Nos quedamos muy por
	// debajo para no tocar el 429.
	requestsPerMinute = 8

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de CoinGecko con rate limiting y retries.
// Implementa ports.MarketData para el modo live.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client contra el base URL dado. Si base está vacío usa
// la API pública de CoinGecko.
func NewClient(base string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(requestsPerMinute)/60, 2),
	}
}

type simplePriceResponse struct {
	Bitcoin struct {
		USD float64 `json:"usd"`
	} `json:"bitcoin"`
}

// FetchCurrentPrice devuelve el precio spot de Bitcoin en USD.
func (c *Client) FetchCurrentPrice(ctx context.Context) (float64, error) {
	url := c.base + "/api/v3/simple/price?ids=bitcoin&vs_currencies=usd"

	var out simplePriceResponse
	if err := c.get(ctx, url, &out); err != nil {
		return 0, fmt.Errorf("marketdata.FetchCurrentPrice: %w", err)
	}
	if out.Bitcoin.USD <= 0 {
		return 0, fmt.Errorf("marketdata.FetchCurrentPrice: non-positive price %v", out.Bitcoin.USD)
	}
	return out.Bitcoin.USD, nil
}

type marketChartResponse struct {
	// Pares [timestamp_ms, precio].
	Prices [][2]float64 `json:"prices"`
}

// FetchDailyHistory devuelve los cierres diarios de los últimos days días en
// orden cronológico. El indicador de cada fila queda en NaN: lo calcula el
// dominio, no este adapter.
func (c *Client) FetchDailyHistory(ctx context.Context, days int) ([]domain.SeriesRow, error) {
	url := fmt.Sprintf("%s/api/v3/coins/bitcoin/market_chart?vs_currency=usd&days=%d&interval=daily", c.base, days)

	var out marketChartResponse
	if err := c.get(ctx, url, &out); err != nil {
		return nil, fmt.Errorf("marketdata.FetchDailyHistory: %w", err)
	}
	if len(out.Prices) == 0 {
		return nil, fmt.Errorf("marketdata.FetchDailyHistory: empty history")
	}

	series := make([]domain.SeriesRow, 0, len(out.Prices))
	for _, p := range out.Prices {
		series = append(series, domain.SeriesRow{
			Date:      time.UnixMilli(int64(p[0])).UTC(),
			Price:     p[1],
			Indicator: math.NaN(),
		})
	}
	return series, nil
}

// get hace un GET JSON con rate limiting y retries con backoff.
func (c *Client) get(ctx context.Context, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by CoinGecko", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial y jitter, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	wait += time.Duration(rand.Int63n(int64(baseRetryWait)))

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
