package interfaces

import (
	"context"
	"time"

	"github.com/jpariona/cartera/internal/models"
)

// PriceProvider fetches daily closing prices for a symbol from an external
// market-data API. Providers are tried in a fixed priority order; each call
// is independent and its failure is recorded, not retried.
type PriceProvider interface {
	Name() string
	DailyPrices(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error)
}

// FXProvider fetches PEN-per-USD exchange rates for a date range.
type FXProvider interface {
	Name() string
	Rates(ctx context.Context, from, to time.Time) ([]models.FXRate, error)
}

// BenchmarkProvider fetches index levels for a benchmark series.
type BenchmarkProvider interface {
	Name() string
	SeriesPrices(ctx context.Context, series string, from, to time.Time) ([]models.PricePoint, error)
}
