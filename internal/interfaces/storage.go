// Package interfaces defines service contracts for Cartera
package interfaces

import (
	"context"
	"time"

	"github.com/jpariona/cartera/internal/models"
)

// Store coordinates all persistence. Every accessor shares one embedded
// SQLite database; there is a single writer (the application process).
type Store interface {
	Tickers() TickerStore
	Events() EventStore
	Prices() PriceStore
	FX() FXStore
	Dividends() DividendStore
	Reference() ReferenceStore
	Benchmarks() BenchmarkStore
	RefreshLog() RefreshLogStore

	Close() error
}

// TickerStore manages instrument records. Tickers referenced by events are
// never hard-deleted, only deactivated.
type TickerStore interface {
	Create(ctx context.Context, t *models.Ticker) error
	Get(ctx context.Context, id int64) (*models.Ticker, error)
	GetBySymbol(ctx context.Context, symbol string) (*models.Ticker, error)
	List(ctx context.Context, activeOnly bool) ([]models.Ticker, error)
	Update(ctx context.Context, t *models.Ticker) error
	Deactivate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error // fails while referenced
}

// EventStore manages investment/divestment events.
type EventStore interface {
	Create(ctx context.Context, e *models.InvestmentEvent) error
	Get(ctx context.Context, id int64) (*models.InvestmentEvent, error)
	Update(ctx context.Context, e *models.InvestmentEvent) error
	Delete(ctx context.Context, id int64) error
	ListByTicker(ctx context.Context, tickerID int64, from, to time.Time) ([]models.InvestmentEvent, error)
	List(ctx context.Context, from, to time.Time) ([]models.InvestmentEvent, error)

	// NetPositionAsOf returns the cumulative signed quantity for a ticker up
	// to and including date, excluding event excludeID (0 to exclude none).
	NetPositionAsOf(ctx context.Context, tickerID int64, date time.Time, excludeID int64) (float64, error)
}

// PriceStore manages historical closing prices, one row per (ticker, date).
type PriceStore interface {
	Upsert(ctx context.Context, p *models.HistoricalPrice) error
	UpsertBatch(ctx context.Context, prices []models.HistoricalPrice) (int, error)
	List(ctx context.Context, tickerID int64, from, to time.Time) ([]models.HistoricalPrice, error)

	// GetAsOf returns the price on the given date, or the most recent earlier
	// one. Returns nil without error when no price exists at or before date.
	GetAsOf(ctx context.Context, tickerID int64, date time.Time) (*models.HistoricalPrice, error)

	LatestDate(ctx context.Context, tickerID int64) (time.Time, error)
}

// FXStore manages the PEN-per-USD rate series, one row per date.
type FXStore interface {
	Upsert(ctx context.Context, r *models.FXRate) error
	UpsertBatch(ctx context.Context, rates []models.FXRate) (int, error)
	List(ctx context.Context, from, to time.Time) ([]models.FXRate, error)
	GetAsOf(ctx context.Context, date time.Time) (*models.FXRate, error)
}

// DividendStore manages dividend records.
type DividendStore interface {
	Create(ctx context.Context, d *models.Dividend) error
	Get(ctx context.Context, id int64) (*models.Dividend, error)
	Update(ctx context.Context, d *models.Dividend) error
	Delete(ctx context.Context, id int64) error
	ListByTicker(ctx context.Context, tickerID int64, from, to time.Time) ([]models.Dividend, error)
	List(ctx context.Context, from, to time.Time) ([]models.Dividend, error)
}

// ReferenceStore manages the lookup entities (exchanges, platforms,
// investment types). Names are unique; deletes fail while referenced.
type ReferenceStore interface {
	CreateExchange(ctx context.Context, e *models.Exchange) error
	ListExchanges(ctx context.Context) ([]models.Exchange, error)
	UpdateExchange(ctx context.Context, e *models.Exchange) error
	DeleteExchange(ctx context.Context, id int64) error

	CreatePlatform(ctx context.Context, p *models.Platform) error
	ListPlatforms(ctx context.Context) ([]models.Platform, error)
	UpdatePlatform(ctx context.Context, p *models.Platform) error
	DeletePlatform(ctx context.Context, id int64) error

	CreateType(ctx context.Context, t *models.InvestmentType) error
	ListTypes(ctx context.Context) ([]models.InvestmentType, error)
	DeleteType(ctx context.Context, id int64) error
}

// BenchmarkStore manages benchmark index series.
type BenchmarkStore interface {
	UpsertBatch(ctx context.Context, series string, points []models.PricePoint) (int, error)
	List(ctx context.Context, series string, from, to time.Time) ([]models.BenchmarkPrice, error)
}

// RefreshLogStore keeps the provider attempt trail for price refreshes.
type RefreshLogStore interface {
	Append(ctx context.Context, entry *models.RefreshEntry) error
	List(ctx context.Context, limit int) ([]models.RefreshEntry, error)
}
