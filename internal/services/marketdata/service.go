// Package marketdata refreshes prices, FX rates, and benchmark series from
// external providers. Providers are tried in a fixed priority order; every
// attempt is recorded so a refresh that finds nothing is a visible result,
// not a silent failure.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jpariona/cartera/internal/common"
	"github.com/jpariona/cartera/internal/interfaces"
	"github.com/jpariona/cartera/internal/models"
)

// defaultLookback is the price history window fetched for a ticker that has
// no stored prices yet.
const defaultLookback = 5 * 365 * 24 * time.Hour

// Service implements MarketDataService.
type Service struct {
	storage           interfaces.Store
	priceProviders    []interfaces.PriceProvider
	fxProvider        interfaces.FXProvider
	benchmarkProvider interfaces.BenchmarkProvider
	logger            *common.Logger
	refreshDelay      time.Duration
}

// NewService creates a new market data service. priceProviders are tried in
// the given order; refreshDelay is the pause between tickers in a bulk
// refresh, keeping free-tier providers happy.
func NewService(
	storage interfaces.Store,
	priceProviders []interfaces.PriceProvider,
	fxProvider interfaces.FXProvider,
	benchmarkProvider interfaces.BenchmarkProvider,
	refreshDelay time.Duration,
	logger *common.Logger,
) *Service {
	return &Service{
		storage:           storage,
		priceProviders:    priceProviders,
		fxProvider:        fxProvider,
		benchmarkProvider: benchmarkProvider,
		logger:            logger,
		refreshDelay:      refreshDelay,
	}
}

// RefreshTicker fetches missing daily prices for one ticker. Each provider
// failure is recorded in the attempt trail and the next provider is tried;
// when every provider fails the outcome is "no_data" and local data stays
// untouched.
func (s *Service) RefreshTicker(ctx context.Context, symbol string) (*models.RefreshEntry, error) {
	ticker, err := s.storage.Tickers().GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	entry := s.refresh(ctx, ticker)
	if err := s.storage.RefreshLog().Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RefreshAll refreshes every active ticker sequentially, pausing between
// tickers. A per-ticker failure never aborts the run.
func (s *Service) RefreshAll(ctx context.Context) ([]models.RefreshEntry, error) {
	tickers, err := s.storage.Tickers().List(ctx, true)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RefreshEntry, 0, len(tickers))
	for i := range tickers {
		if i > 0 && s.refreshDelay > 0 {
			select {
			case <-ctx.Done():
				return entries, ctx.Err()
			case <-time.After(s.refreshDelay):
			}
		}

		entry := s.refresh(ctx, &tickers[i])
		if err := s.storage.RefreshLog().Append(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Str("symbol", tickers[i].Symbol).Msg("Failed to record refresh entry")
		}
		entries = append(entries, *entry)
	}

	s.logger.Info().Int("tickers", len(entries)).Msg("Price refresh completed")
	return entries, nil
}

func (s *Service) refresh(ctx context.Context, ticker *models.Ticker) *models.RefreshEntry {
	entry := &models.RefreshEntry{
		TickerID:  ticker.ID,
		Symbol:    ticker.Symbol,
		StartedAt: time.Now(),
		Outcome:   models.RefreshNoData,
	}

	from, to := s.refreshWindow(ctx, ticker.ID)
	if !from.Before(to) && !from.Equal(to) {
		// Already current; nothing to fetch.
		entry.Outcome = models.RefreshOK
		return entry
	}

	for _, provider := range s.priceProviders {
		attempt := models.ProviderAttempt{Provider: provider.Name()}

		points, err := provider.DailyPrices(ctx, ticker.Symbol, from, to)
		if err != nil {
			attempt.Error = err.Error()
			entry.Attempts = append(entry.Attempts, attempt)
			s.logger.Debug().Err(err).
				Str("symbol", ticker.Symbol).
				Str("provider", provider.Name()).
				Msg("Price provider failed, trying next")
			continue
		}
		if len(points) == 0 {
			attempt.Error = "no data returned"
			entry.Attempts = append(entry.Attempts, attempt)
			continue
		}

		prices := make([]models.HistoricalPrice, len(points))
		for i, p := range points {
			prices[i] = models.HistoricalPrice{
				TickerID: ticker.ID,
				Date:     p.Date,
				Price:    p.Price,
				Source:   provider.Name(),
			}
		}
		stored, err := s.storage.Prices().UpsertBatch(ctx, prices)
		if err != nil {
			attempt.Error = err.Error()
			entry.Attempts = append(entry.Attempts, attempt)
			continue
		}

		attempt.Success = true
		attempt.Rows = stored
		entry.Attempts = append(entry.Attempts, attempt)
		entry.Outcome = models.RefreshOK

		s.logger.Info().
			Str("symbol", ticker.Symbol).
			Str("provider", provider.Name()).
			Int("rows", stored).
			Msg("Prices refreshed")
		return entry
	}

	s.logger.Warn().Str("symbol", ticker.Symbol).Msg("All price providers failed")
	return entry
}

// refreshWindow returns the fetch range: the day after the last stored
// price through today, or a multi-year backfill for a fresh ticker.
func (s *Service) refreshWindow(ctx context.Context, tickerID int64) (time.Time, time.Time) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	latest, err := s.storage.Prices().LatestDate(ctx, tickerID)
	if err != nil || latest.IsZero() {
		return today.Add(-defaultLookback), today
	}
	return latest.AddDate(0, 0, 1), today
}

// RefreshFX fetches USD/PEN rates for the window and stores them. Zero
// bounds default to the last 30 days.
func (s *Service) RefreshFX(ctx context.Context, from, to time.Time) (int, error) {
	if s.fxProvider == nil {
		return 0, fmt.Errorf("no FX provider configured")
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if to.IsZero() {
		to = today
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}

	rates, err := s.fxProvider.Rates(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("FX refresh failed: %w", err)
	}

	stored, err := s.storage.FX().UpsertBatch(ctx, rates)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int("rows", stored).Msg("FX rates refreshed")
	return stored, nil
}

// RefreshBenchmark fetches index levels for a benchmark series. Zero bounds
// default to a multi-year backfill ending today.
func (s *Service) RefreshBenchmark(ctx context.Context, series string, from, to time.Time) (int, error) {
	if s.benchmarkProvider == nil {
		return 0, fmt.Errorf("no benchmark provider configured")
	}
	if !models.ValidBenchmarkSeries(series) {
		return 0, fmt.Errorf("unknown benchmark series %q", series)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if to.IsZero() {
		to = today
	}
	if from.IsZero() {
		from = to.Add(-defaultLookback)
	}

	points, err := s.benchmarkProvider.SeriesPrices(ctx, series, from, to)
	if err != nil {
		return 0, fmt.Errorf("benchmark refresh failed: %w", err)
	}

	stored, err := s.storage.Benchmarks().UpsertBatch(ctx, series, points)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("series", series).Int("rows", stored).Msg("Benchmark refreshed")
	return stored, nil
}

// Ensure Service implements MarketDataService
var _ interfaces.MarketDataService = (*Service)(nil)
