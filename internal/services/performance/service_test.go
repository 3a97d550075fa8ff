package performance

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpariona/cartera/internal/common"
	"github.com/jpariona/cartera/internal/interfaces"
	"github.com/jpariona/cartera/internal/models"
	"github.com/jpariona/cartera/internal/storage"
)

func newTestService(t *testing.T) (*Service, interfaces.Store) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "perf.db"), common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(store, models.CurrencyUSD, common.NewSilentLogger()), store
}

func seedTicker(t *testing.T, store interfaces.Store, symbol, currency string) *models.Ticker {
	t.Helper()
	tk := &models.Ticker{Symbol: symbol, Name: symbol, Currency: currency}
	require.NoError(t, store.Tickers().Create(context.Background(), tk))
	return tk
}

func seedEvent(t *testing.T, store interfaces.Store, tickerID int64, date string, amount, qty float64, origin models.CapitalOrigin) {
	t.Helper()
	op := models.OpInvestment
	if amount < 0 {
		op = models.OpDivestment
	}
	e := &models.InvestmentEvent{
		TickerID: tickerID, Date: day(date),
		Amount: amount, Quantity: qty,
		Operation: op, CapitalOrigin: origin,
	}
	require.NoError(t, store.Events().Create(context.Background(), e))
}

func seedPrice(t *testing.T, store interfaces.Store, tickerID int64, date string, price float64) {
	t.Helper()
	require.NoError(t, store.Prices().Upsert(context.Background(),
		&models.HistoricalPrice{TickerID: tickerID, Date: day(date), Price: price, Source: "test"}))
}

func TestMonthlyReportEndToEnd(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tk := seedTicker(t, store, "VOO", models.CurrencyUSD)
	seedEvent(t, store, tk.ID, "2024-01-15", 1000, 10, models.OriginFreshCash)
	seedPrice(t, store, tk.ID, "2024-01-31", 110)
	seedPrice(t, store, tk.ID, "2024-02-29", 104.5)

	reports, err := svc.Monthly(ctx, interfaces.ReportOptions{
		From: day("2024-01-01"), To: day("2024-02-29"),
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	jan := reports[0]
	assert.Equal(t, 0.0, jan.OpeningValue)
	assert.Equal(t, 1000.0, jan.NetContributions)
	assert.InDelta(t, 1100.0, jan.ClosingValue, 1e-9)
	assert.InDelta(t, 10.0, jan.PeriodReturnPct, 1e-9)

	feb := reports[1]
	assert.InDelta(t, 1100.0, feb.OpeningValue, 1e-9)
	assert.InDelta(t, 1045.0, feb.ClosingValue, 1e-9)
	assert.InDelta(t, -5.0, feb.PeriodReturnPct, 1e-9)
	assert.InDelta(t, 4.5, feb.CumulativeReturnPct, 1e-9)
}

func TestMonthlyReportConvertsPENHoldings(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tk := seedTicker(t, store, "CPACASC1", models.CurrencyPEN)
	seedEvent(t, store, tk.ID, "2024-01-10", 3700, 100, models.OriginFreshCash)
	seedPrice(t, store, tk.ID, "2024-01-31", 37)
	require.NoError(t, store.FX().Upsert(ctx, &models.FXRate{Date: day("2024-01-02"), USDPEN: 3.70, Source: "test"}))

	reports, err := svc.Monthly(ctx, interfaces.ReportOptions{
		Currency: models.CurrencyUSD,
		From:     day("2024-01-01"), To: day("2024-01-31"),
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)

	// 3700 PEN at 3.70 = 1000 USD, both for the flow and the valuation.
	assert.InDelta(t, 1000.0, reports[0].NetContributions, 1e-9)
	assert.InDelta(t, 1000.0, reports[0].ClosingValue, 1e-9)
	assert.InDelta(t, 0.0, reports[0].PeriodReturnPct, 1e-9)
}

func TestTickerReportUsesOnlyThatTicker(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	voo := seedTicker(t, store, "VOO", models.CurrencyUSD)
	aapl := seedTicker(t, store, "AAPL", models.CurrencyUSD)
	seedEvent(t, store, voo.ID, "2024-01-10", 1000, 10, models.OriginFreshCash)
	seedEvent(t, store, aapl.ID, "2024-01-10", 5000, 25, models.OriginFreshCash)
	seedPrice(t, store, voo.ID, "2024-01-31", 110)
	seedPrice(t, store, aapl.ID, "2024-01-31", 200)

	reports, err := svc.Ticker(ctx, "VOO", PeriodMonth, interfaces.ReportOptions{
		From: day("2024-01-01"), To: day("2024-01-31"),
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.InDelta(t, 1100.0, reports[0].ClosingValue, 1e-9)
	assert.Equal(t, 1000.0, reports[0].NetContributions)
}

func TestGroupsByPlatform(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	ib := &models.Platform{Name: "Interactive Brokers"}
	require.NoError(t, store.Reference().CreatePlatform(ctx, ib))

	tk := seedTicker(t, store, "VOO", models.CurrencyUSD)
	e := &models.InvestmentEvent{
		TickerID: tk.ID, Date: day("2024-01-10"),
		Amount: 1000, Quantity: 10, PlatformID: ib.ID,
		Operation: models.OpInvestment, CapitalOrigin: models.OriginFreshCash,
	}
	require.NoError(t, store.Events().Create(ctx, e))
	seedPrice(t, store, tk.ID, "2024-01-31", 110)

	groups, err := svc.Groups(ctx, interfaces.GroupByPlatform, PeriodMonth, interfaces.ReportOptions{
		From: day("2024-01-01"), To: day("2024-01-31"),
	})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Interactive Brokers", groups[0].Group)
	assert.InDelta(t, 1100.0, groups[0].Periods[0].ClosingValue, 1e-9)
}

func TestGroupsInvalidKey(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Groups(context.Background(), "sector", PeriodMonth, interfaces.ReportOptions{})
	require.Error(t, err)
}

func TestBenchmarkViewNilAlphaWithoutData(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tk := seedTicker(t, store, "VOO", models.CurrencyUSD)
	seedEvent(t, store, tk.ID, "2024-01-10", 1000, 10, models.OriginFreshCash)
	seedPrice(t, store, tk.ID, "2024-01-31", 110)

	out, err := svc.Benchmark(ctx, models.BenchmarkSP500, PeriodMonth, interfaces.ReportOptions{
		From: day("2024-01-01"), To: day("2024-01-31"),
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].AlphaPct, "no benchmark rows means nil alpha, not zero")
	assert.InDelta(t, 10.0, out[0].PortfolioCumulativePct, 1e-9)
}

func TestChartRendersPNG(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tk := seedTicker(t, store, "VOO", models.CurrencyUSD)
	seedEvent(t, store, tk.ID, "2024-01-10", 1000, 10, models.OriginFreshCash)
	seedPrice(t, store, tk.ID, "2024-01-31", 110)
	seedPrice(t, store, tk.ID, "2024-02-29", 120)

	png, err := svc.Chart(ctx, interfaces.ReportOptions{
		From: day("2024-01-01"), To: day("2024-02-29"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
