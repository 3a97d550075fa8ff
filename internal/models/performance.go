package models

import "time"

// PeriodReport is one row of the performance report: the valuation, flows,
// and returns for a single calendar period (month or year).
//
// Returns are percentages. CumulativeReturnPct is the geometric link of all
// period returns up to and including this one; period returns compound
// multiplicatively, they are never summed.
type PeriodReport struct {
	Period              string    `json:"period"` // "2024-01" for months, "2024" for years
	Start               time.Time `json:"start"`
	End                 time.Time `json:"end"`
	OpeningValue        float64   `json:"opening_value"`
	NetContributions    float64   `json:"net_contributions"` // new-capital flows only
	ClosingValue        float64   `json:"closing_value"`
	Dividends           float64   `json:"dividends"`
	PeriodGain          float64   `json:"period_gain"`
	PriceGain           float64   `json:"price_gain"`
	FXGain              float64   `json:"fx_gain"`
	PeriodReturnPct     float64   `json:"period_return_pct"`
	CumulativeReturnPct float64   `json:"cumulative_return_pct"`
	MaxDrawdownPct      float64   `json:"max_drawdown_pct"`
}

// BenchmarkPeriod aligns a performance period against a benchmark index.
// Pointer fields are nil when the benchmark has no data for the period;
// a missing period never contributes zero to later cumulative figures.
type BenchmarkPeriod struct {
	Period                 string   `json:"period"`
	PortfolioCumulativePct float64  `json:"portfolio_cumulative_pct"`
	BenchmarkReturnPct     *float64 `json:"benchmark_return_pct"`
	BenchmarkCumulativePct *float64 `json:"benchmark_cumulative_pct"`
	AlphaPct               *float64 `json:"alpha_pct"`
}

// GroupPerformance is the period series for one grouping bucket
// (a platform, an investment type, or an exchange).
type GroupPerformance struct {
	Group   string         `json:"group"`
	Periods []PeriodReport `json:"periods"`
}
