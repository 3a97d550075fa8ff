package models

import "time"

// HistoricalPrice is one stored closing price for a ticker on a date.
// At most one row exists per (ticker, date); edits overwrite in place.
type HistoricalPrice struct {
	TickerID  int64     `db:"ticker_id" json:"ticker_id"`
	Date      time.Time `db:"date" json:"date"`
	Price     float64   `db:"price" json:"price"`
	Source    string    `db:"source" json:"source"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FXRate is the PEN-per-USD exchange rate for one date.
type FXRate struct {
	Date   time.Time `db:"date" json:"date"`
	USDPEN float64   `db:"usd_pen" json:"usd_pen"`
	Source string    `db:"source" json:"source"`
}

// Benchmark series identifiers.
const (
	BenchmarkSP500 = "sp500" // S&P 500
	BenchmarkSPBVL = "spbvl" // S&P/BVL Peru General
)

// ValidBenchmarkSeries returns true if s is a known benchmark series.
func ValidBenchmarkSeries(s string) bool {
	return s == BenchmarkSP500 || s == BenchmarkSPBVL
}

// BenchmarkPrice is one stored index level for a benchmark series.
type BenchmarkPrice struct {
	Series string    `db:"series" json:"series"`
	Date   time.Time `db:"date" json:"date"`
	Value  float64   `db:"value" json:"value"`
}

// PricePoint is a (date, price) pair returned by provider clients.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}
