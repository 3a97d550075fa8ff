package interfaces

import (
	"context"
	"time"

	"github.com/jpariona/cartera/internal/models"
)

// ReportOptions selects the window and reporting currency for a performance
// report. Zero From/To means from the first event through yesterday.
type ReportOptions struct {
	Currency string // reporting currency: USD or PEN
	From     time.Time
	To       time.Time
}

// Grouping keys for grouped performance views.
const (
	GroupByPlatform = "platform"
	GroupByType     = "type"
	GroupByExchange = "exchange"
)

// PerformanceService computes period performance reports. All views are
// built on one shared aggregation routine so the geometric-chaining rule
// holds identically everywhere.
type PerformanceService interface {
	Monthly(ctx context.Context, opts ReportOptions) ([]models.PeriodReport, error)
	Annual(ctx context.Context, opts ReportOptions) ([]models.PeriodReport, error)
	Ticker(ctx context.Context, symbol string, period string, opts ReportOptions) ([]models.PeriodReport, error)
	Groups(ctx context.Context, by string, period string, opts ReportOptions) ([]models.GroupPerformance, error)
	Benchmark(ctx context.Context, series string, period string, opts ReportOptions) ([]models.BenchmarkPeriod, error)
	Chart(ctx context.Context, opts ReportOptions) ([]byte, error)
}

// MarketDataService refreshes prices, FX rates, and benchmark series from
// external providers. Refreshes are sequential per ticker with a small delay
// between calls; per-provider failures are recorded and the next provider in
// priority order is tried.
type MarketDataService interface {
	RefreshTicker(ctx context.Context, symbol string) (*models.RefreshEntry, error)
	RefreshAll(ctx context.Context) ([]models.RefreshEntry, error)
	RefreshFX(ctx context.Context, from, to time.Time) (int, error)
	RefreshBenchmark(ctx context.Context, series string, from, to time.Time) (int, error)
}
