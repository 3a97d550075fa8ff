package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jpariona/cartera/internal/common"
	"github.com/jpariona/cartera/internal/interfaces"
)

// Store implements interfaces.Store over a single SQLite database.
type Store struct {
	db     *sqlx.DB
	logger *common.Logger

	tickers    *tickerStore
	events     *eventStore
	prices     *priceStore
	fx         *fxStore
	dividends  *dividendStore
	reference  *referenceStore
	benchmarks *benchmarkStore
	refreshLog *refreshLogStore
}

// Compile-time interface check
var _ interfaces.Store = (*Store)(nil)

// NewStore opens (or creates) the database at path and applies the schema.
func NewStore(path string, logger *common.Logger) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, logger: logger}
	s.tickers = &tickerStore{db: db}
	s.events = &eventStore{db: db}
	s.prices = &priceStore{db: db}
	s.fx = &fxStore{db: db}
	s.dividends = &dividendStore{db: db}
	s.reference = &referenceStore{db: db}
	s.benchmarks = &benchmarkStore{db: db}
	s.refreshLog = &refreshLogStore{db: db}

	logger.Info().Str("path", path).Msg("Storage initialized")
	return s, nil
}

func (s *Store) Tickers() interfaces.TickerStore        { return s.tickers }
func (s *Store) Events() interfaces.EventStore          { return s.events }
func (s *Store) Prices() interfaces.PriceStore          { return s.prices }
func (s *Store) FX() interfaces.FXStore                 { return s.fx }
func (s *Store) Dividends() interfaces.DividendStore    { return s.dividends }
func (s *Store) Reference() interfaces.ReferenceStore   { return s.reference }
func (s *Store) Benchmarks() interfaces.BenchmarkStore  { return s.benchmarks }
func (s *Store) RefreshLog() interfaces.RefreshLogStore { return s.refreshLog }

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
