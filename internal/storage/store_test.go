package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpariona/cartera/internal/common"
	"github.com/jpariona/cartera/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"), common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func createTicker(t *testing.T, store *Store, symbol, currency string) *models.Ticker {
	t.Helper()
	tk := &models.Ticker{Symbol: symbol, Name: symbol + " Inc", Currency: currency}
	require.NoError(t, store.Tickers().Create(context.Background(), tk))
	return tk
}

func TestTickerCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tk := createTicker(t, store, "aapl", models.CurrencyUSD)
	assert.Equal(t, "AAPL", tk.Symbol, "symbols are stored uppercase")
	assert.True(t, tk.Active)
	assert.NotZero(t, tk.ID)

	got, err := store.Tickers().GetBySymbol(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)
	assert.Equal(t, models.CurrencyUSD, got.Currency)
}

func TestTickerSymbolUniqueWhileActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tk := createTicker(t, store, "AAPL", models.CurrencyUSD)

	dup := &models.Ticker{Symbol: "AAPL", Name: "Duplicate", Currency: models.CurrencyUSD}
	err := store.Tickers().Create(ctx, dup)
	require.ErrorIs(t, err, ErrConflict)

	// Deactivating the first ticker frees the symbol.
	require.NoError(t, store.Tickers().Deactivate(ctx, tk.ID))
	require.NoError(t, store.Tickers().Create(ctx, dup))
}

func TestTickerUpdatePersistsActiveFlag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tk := createTicker(t, store, "AAPL", models.CurrencyUSD)

	tk.Active = false
	require.NoError(t, store.Tickers().Update(ctx, tk))

	got, err := store.Tickers().Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, got.Active, "deactivation through Update must reach the row")

	// The symbol is freed once the row is inactive.
	other := &models.Ticker{Symbol: "AAPL", Name: "Apple again", Currency: models.CurrencyUSD}
	require.NoError(t, store.Tickers().Create(ctx, other))

	// Reactivating now collides with the new active holder of the symbol.
	tk.Active = true
	err = store.Tickers().Update(ctx, tk)
	require.ErrorIs(t, err, ErrConflict)
}

func TestTickerDeleteRefusedWhileReferenced(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tk := createTicker(t, store, "VOO", models.CurrencyUSD)
	event := &models.InvestmentEvent{
		TickerID:  tk.ID,
		Date:      day("2024-01-15"),
		Amount:    1000,
		Quantity:  2.5,
		Operation: models.OpInvestment,
	}
	require.NoError(t, store.Events().Create(ctx, event))

	err := store.Tickers().Delete(ctx, tk.ID)
	require.ErrorIs(t, err, ErrConflict)

	require.NoError(t, store.Events().Delete(ctx, event.ID))
	require.NoError(t, store.Tickers().Delete(ctx, tk.ID))
}

func TestTickerInvalidCurrency(t *testing.T) {
	store := newTestStore(t)
	err := store.Tickers().Create(context.Background(),
		&models.Ticker{Symbol: "BAD", Currency: "EUR"})
	require.Error(t, err)
}

func TestEventRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tk := createTicker(t, store, "AAPL", models.CurrencyUSD)

	e := &models.InvestmentEvent{
		TickerID:      tk.ID,
		Date:          day("2024-03-10"),
		Amount:        500.25,
		Quantity:      3,
		Operation:     models.OpInvestment,
		CapitalOrigin: models.OriginFreshCash,
	}
	require.NoError(t, store.Events().Create(ctx, e))

	got, err := store.Events().Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.25, got.Amount)
	assert.Equal(t, day("2024-03-10"), got.Date)
	assert.Equal(t, models.OpInvestment, got.Operation)

	got.Amount = 600
	require.NoError(t, store.Events().Update(ctx, got))
	again, err := store.Events().Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 600.0, again.Amount)
}

func TestNetPositionAsOf(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tk := createTicker(t, store, "VOO", models.CurrencyUSD)

	buy := func(date string, qty float64) *models.InvestmentEvent {
		e := &models.InvestmentEvent{
			TickerID: tk.ID, Date: day(date),
			Amount: qty * 100, Quantity: qty,
			Operation: models.OpInvestment,
		}
		require.NoError(t, store.Events().Create(ctx, e))
		return e
	}

	buy("2024-01-10", 5)
	buy("2024-02-10", 3)
	sell := &models.InvestmentEvent{
		TickerID: tk.ID, Date: day("2024-03-01"),
		Amount: -200, Quantity: -2,
		Operation: models.OpDivestment,
	}
	require.NoError(t, store.Events().Create(ctx, sell))

	pos, err := store.Events().NetPositionAsOf(ctx, tk.ID, day("2024-01-31"), 0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, pos)

	pos, err = store.Events().NetPositionAsOf(ctx, tk.ID, day("2024-12-31"), 0)
	require.NoError(t, err)
	assert.Equal(t, 6.0, pos)

	// Excluding the sell restores the gross position, which is how the
	// transaction handler re-validates an edited divestment.
	pos, err = store.Events().NetPositionAsOf(ctx, tk.ID, day("2024-12-31"), sell.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, pos)

	// Ticker with no events has a zero position, not an error.
	pos, err = store.Events().NetPositionAsOf(ctx, tk.ID+100, day("2024-12-31"), 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pos)
}

func TestPriceOverwriteInPlace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tk := createTicker(t, store, "AAPL", models.CurrencyUSD)

	p := &models.HistoricalPrice{TickerID: tk.ID, Date: day("2024-05-01"), Price: 180.5, Source: "polygon"}
	require.NoError(t, store.Prices().Upsert(ctx, p))

	p.Price = 181.25
	p.Source = "manual"
	require.NoError(t, store.Prices().Upsert(ctx, p))

	list, err := store.Prices().List(ctx, tk.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, list, 1, "same (ticker, date) must overwrite, never duplicate")
	assert.Equal(t, 181.25, list[0].Price)
	assert.Equal(t, "manual", list[0].Source)
}

func TestPriceGetAsOfCarriesForward(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tk := createTicker(t, store, "AAPL", models.CurrencyUSD)

	n, err := store.Prices().UpsertBatch(ctx, []models.HistoricalPrice{
		{TickerID: tk.ID, Date: day("2024-05-01"), Price: 100},
		{TickerID: tk.ID, Date: day("2024-05-03"), Price: 104},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Weekend/holiday gap: the most recent earlier price applies.
	got, err := store.Prices().GetAsOf(ctx, tk.ID, day("2024-05-02"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 100.0, got.Price)

	got, err = store.Prices().GetAsOf(ctx, tk.ID, day("2024-06-15"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 104.0, got.Price)

	// Before the first observation there is nothing to carry.
	got, err = store.Prices().GetAsOf(ctx, tk.ID, day("2024-04-30"))
	require.NoError(t, err)
	assert.Nil(t, got)

	latest, err := store.Prices().LatestDate(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, day("2024-05-03"), latest)
}

func TestPriceRejectsNonPositive(t *testing.T) {
	store := newTestStore(t)
	tk := createTicker(t, store, "AAPL", models.CurrencyUSD)
	err := store.Prices().Upsert(context.Background(),
		&models.HistoricalPrice{TickerID: tk.ID, Date: day("2024-05-01"), Price: 0})
	require.Error(t, err)
}

func TestFXGetAsOf(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.FX().UpsertBatch(ctx, []models.FXRate{
		{Date: day("2024-01-02"), USDPEN: 3.70, Source: "sbs"},
		{Date: day("2024-01-05"), USDPEN: 3.74, Source: "sbs"},
	})
	require.NoError(t, err)

	rate, err := store.FX().GetAsOf(ctx, day("2024-01-04"))
	require.NoError(t, err)
	require.NotNil(t, rate)
	assert.Equal(t, 3.70, rate.USDPEN)

	rate, err = store.FX().GetAsOf(ctx, day("2024-01-01"))
	require.NoError(t, err)
	assert.Nil(t, rate)

	// Re-upserting the same date overwrites, so repeated refreshes are
	// idempotent.
	require.NoError(t, store.FX().Upsert(ctx, &models.FXRate{Date: day("2024-01-05"), USDPEN: 3.75, Source: "manual"}))
	rate, err = store.FX().GetAsOf(ctx, day("2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, 3.75, rate.USDPEN)
}

func TestDividendCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tk := createTicker(t, store, "VOO", models.CurrencyUSD)

	d := &models.Dividend{TickerID: tk.ID, Date: day("2024-06-20"), Amount: 12.40, Currency: models.CurrencyUSD}
	require.NoError(t, store.Dividends().Create(ctx, d))
	require.NotZero(t, d.ID)

	list, err := store.Dividends().ListByTicker(ctx, tk.ID, day("2024-01-01"), day("2024-12-31"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 12.40, list[0].Amount)

	require.NoError(t, store.Dividends().Delete(ctx, d.ID))
	_, err = store.Dividends().Get(ctx, d.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReferenceUniquenessAndDeletes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := &models.Platform{Name: "Interactive Brokers", Country: "US", Currency: models.CurrencyUSD}
	require.NoError(t, store.Reference().CreatePlatform(ctx, p))
	err := store.Reference().CreatePlatform(ctx, &models.Platform{Name: "Interactive Brokers"})
	require.ErrorIs(t, err, ErrConflict)

	tk := createTicker(t, store, "AAPL", models.CurrencyUSD)
	e := &models.InvestmentEvent{
		TickerID: tk.ID, Date: day("2024-01-15"),
		Amount: 100, Quantity: 1,
		PlatformID: p.ID,
		Operation:  models.OpInvestment,
	}
	require.NoError(t, store.Events().Create(ctx, e))

	err = store.Reference().DeletePlatform(ctx, p.ID)
	require.ErrorIs(t, err, ErrConflict)

	require.NoError(t, store.Events().Delete(ctx, e.ID))
	require.NoError(t, store.Reference().DeletePlatform(ctx, p.ID))
}

func TestInvestmentTypeDeleteRefusedWhileUsed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	typ := &models.InvestmentType{Name: "ETF"}
	require.NoError(t, store.Reference().CreateType(ctx, typ))

	tk := &models.Ticker{Symbol: "VOO", Name: "Vanguard S&P 500", Currency: models.CurrencyUSD, TypeID: typ.ID}
	require.NoError(t, store.Tickers().Create(ctx, tk))

	err := store.Reference().DeleteType(ctx, typ.ID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestBenchmarkUpsertAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.Benchmarks().UpsertBatch(ctx, models.BenchmarkSP500, []models.PricePoint{
		{Date: day("2024-01-31"), Price: 4845.65},
		{Date: day("2024-02-29"), Price: 5096.27},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.Benchmarks().UpsertBatch(ctx, "nasdaq", nil)
	require.Error(t, err, "unknown series is rejected")

	list, err := store.Benchmarks().List(ctx, models.BenchmarkSP500, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 4845.65, list[0].Value)
}

func TestRefreshLogRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := &models.RefreshEntry{
		TickerID:  1,
		Symbol:    "AAPL",
		StartedAt: time.Now(),
		Outcome:   models.RefreshOK,
		Attempts: []models.ProviderAttempt{
			{Provider: "polygon", Success: false, Error: "rate limited"},
			{Provider: "alphavantage", Success: true, Rows: 30},
		},
	}
	require.NoError(t, store.RefreshLog().Append(ctx, entry))

	list, err := store.RefreshLog().List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.RefreshOK, list[0].Outcome)
	require.Len(t, list[0].Attempts, 2)
	assert.Equal(t, "polygon", list[0].Attempts[0].Provider)
	assert.True(t, list[0].Attempts[1].Success)
}
