package performance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jpariona/cartera/internal/common"
	"github.com/jpariona/cartera/internal/interfaces"
	"github.com/jpariona/cartera/internal/models"
)

// Service implements PerformanceService over the storage layer.
type Service struct {
	storage           interfaces.Store
	logger            *common.Logger
	reportingCurrency string
}

// NewService creates a new performance service. defaultCurrency is the
// reporting currency used when a request does not name one.
func NewService(storage interfaces.Store, defaultCurrency string, logger *common.Logger) *Service {
	return &Service{
		storage:           storage,
		logger:            logger,
		reportingCurrency: defaultCurrency,
	}
}

// position is one ticker's preloaded flows and price series, ready for
// valuation lookups.
type position struct {
	ticker models.Ticker
	flows  []FlowEvent // local-currency amounts, sorted ascending
	prices []models.HistoricalPrice
}

// priceAsOf returns the closing price at or before date; zero when the
// series has no observation that early.
func (p *position) priceAsOf(date time.Time) float64 {
	idx := sort.Search(len(p.prices), func(i int) bool { return p.prices[i].Date.After(date) })
	if idx == 0 {
		return 0
	}
	return p.prices[idx-1].Price
}

// quantityAsOf returns the net held quantity at the end of date.
func (p *position) quantityAsOf(date time.Time) float64 {
	var qty float64
	for _, f := range p.flows {
		if f.Date.After(date) {
			break
		}
		qty += f.Quantity
	}
	return qty
}

// localValueAsOf returns the position value in its own currency.
func (p *position) localValueAsOf(date time.Time) float64 {
	qty := p.quantityAsOf(date)
	if qty == 0 {
		return 0
	}
	return qty * p.priceAsOf(date)
}

func (s *Service) Monthly(ctx context.Context, opts interfaces.ReportOptions) ([]models.PeriodReport, error) {
	return s.portfolioReport(ctx, PeriodMonth, opts)
}

func (s *Service) Annual(ctx context.Context, opts interfaces.ReportOptions) ([]models.PeriodReport, error) {
	return s.portfolioReport(ctx, PeriodYear, opts)
}

func (s *Service) portfolioReport(ctx context.Context, period string, opts interfaces.ReportOptions) ([]models.PeriodReport, error) {
	tickers, err := s.storage.Tickers().List(ctx, false)
	if err != nil {
		return nil, err
	}
	in, err := s.buildInputs(ctx, tickers, nil, opts)
	if err != nil {
		return nil, err
	}
	return Aggregate(in, Options{Period: period, From: opts.From, To: opts.To})
}

func (s *Service) Ticker(ctx context.Context, symbol string, period string, opts interfaces.ReportOptions) ([]models.PeriodReport, error) {
	t, err := s.storage.Tickers().GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	in, err := s.buildInputs(ctx, []models.Ticker{*t}, nil, opts)
	if err != nil {
		return nil, err
	}
	return Aggregate(in, Options{Period: period, From: opts.From, To: opts.To})
}

func (s *Service) Groups(ctx context.Context, by string, period string, opts interfaces.ReportOptions) ([]models.GroupPerformance, error) {
	tickers, err := s.storage.Tickers().List(ctx, false)
	if err != nil {
		return nil, err
	}

	buckets, err := s.groupTickers(ctx, by, tickers)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.GroupPerformance, 0, len(names))
	for _, name := range names {
		in, err := s.buildInputs(ctx, buckets[name].tickers, buckets[name].eventFilter, opts)
		if err != nil {
			return nil, err
		}
		if len(in.Flows) == 0 {
			continue
		}
		reports, err := Aggregate(in, Options{Period: period, From: opts.From, To: opts.To})
		if err != nil {
			return nil, err
		}
		if len(reports) == 0 {
			continue
		}
		out = append(out, models.GroupPerformance{Group: name, Periods: reports})
	}
	return out, nil
}

func (s *Service) Benchmark(ctx context.Context, series string, period string, opts interfaces.ReportOptions) ([]models.BenchmarkPeriod, error) {
	if !models.ValidBenchmarkSeries(series) {
		return nil, fmt.Errorf("unknown benchmark series %q", series)
	}

	reports, err := s.portfolioReport(ctx, period, opts)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}

	levels, err := s.storage.Benchmarks().List(ctx, series, time.Time{}, reports[len(reports)-1].End)
	if err != nil {
		return nil, err
	}
	return MergeBenchmark(reports, levels), nil
}

func (s *Service) Chart(ctx context.Context, opts interfaces.ReportOptions) ([]byte, error) {
	reports, err := s.portfolioReport(ctx, PeriodMonth, opts)
	if err != nil {
		return nil, err
	}
	return RenderEvolutionChart(reports)
}

// eventFilter restricts grouped views to the events belonging to the bucket;
// nil keeps every event.
type eventFilter func(models.InvestmentEvent) bool

type groupBucket struct {
	tickers     []models.Ticker
	eventFilter eventFilter
}

func (s *Service) groupTickers(ctx context.Context, by string, tickers []models.Ticker) (map[string]groupBucket, error) {
	buckets := map[string]groupBucket{}

	switch by {
	case interfaces.GroupByType:
		types, err := s.storage.Reference().ListTypes(ctx)
		if err != nil {
			return nil, err
		}
		typeNames := map[int64]string{}
		for _, t := range types {
			typeNames[t.ID] = t.Name
		}
		for _, t := range tickers {
			name := typeNames[t.TypeID]
			if name == "" {
				name = "unassigned"
			}
			b := buckets[name]
			b.tickers = append(b.tickers, t)
			buckets[name] = b
		}

	case interfaces.GroupByExchange:
		for _, t := range tickers {
			name := t.Exchange
			if name == "" {
				name = "unassigned"
			}
			b := buckets[name]
			b.tickers = append(b.tickers, t)
			buckets[name] = b
		}

	case interfaces.GroupByPlatform:
		platforms, err := s.storage.Reference().ListPlatforms(ctx)
		if err != nil {
			return nil, err
		}
		// Platform lives on the event, not the ticker: every bucket sees all
		// tickers but only its own events.
		for _, p := range platforms {
			id := p.ID
			buckets[p.Name] = groupBucket{
				tickers:     tickers,
				eventFilter: func(e models.InvestmentEvent) bool { return e.PlatformID == id },
			}
		}
		buckets["unassigned"] = groupBucket{
			tickers:     tickers,
			eventFilter: func(e models.InvestmentEvent) bool { return e.PlatformID == 0 },
		}

	default:
		return nil, fmt.Errorf("invalid grouping %q; must be platform, type, or exchange", by)
	}

	return buckets, nil
}

// buildInputs loads and normalizes everything the aggregator needs for the
// given tickers. Flow amounts are converted into the reporting currency as
// of the flow date; valuations convert as of the valuation date.
func (s *Service) buildInputs(ctx context.Context, tickers []models.Ticker, filter eventFilter, opts interfaces.ReportOptions) (Inputs, error) {
	currency := opts.Currency
	if currency == "" {
		currency = s.reportingCurrency
	}
	if !models.ValidCurrency(currency) {
		return Inputs{}, fmt.Errorf("invalid reporting currency %q", currency)
	}

	fxRates, err := s.storage.FX().List(ctx, time.Time{}, time.Time{})
	if err != nil {
		return Inputs{}, err
	}
	converter := NewConverter(fxRates)

	var (
		positions []*position
		allFlows  []FlowEvent
		allDivs   []DividendEvent
	)

	for i := range tickers {
		t := tickers[i]

		events, err := s.storage.Events().ListByTicker(ctx, t.ID, time.Time{}, time.Time{})
		if err != nil {
			return Inputs{}, err
		}
		if filter != nil {
			kept := events[:0:0]
			for _, e := range events {
				if filter(e) {
					kept = append(kept, e)
				}
			}
			events = kept
		}
		if len(events) == 0 {
			continue
		}

		flows := ExtractFlows(events, t.Currency)
		for j := range flows {
			flows[j].Amount = converter.ConvertOrKeep(flows[j].LocalAmount, t.Currency, currency, flows[j].Date)
		}

		divs, err := s.storage.Dividends().ListByTicker(ctx, t.ID, time.Time{}, time.Time{})
		if err != nil {
			return Inputs{}, err
		}
		allDivs = append(allDivs, ExtractDividends(divs, func(amount float64, ccy string, date time.Time) float64 {
			return converter.ConvertOrKeep(amount, ccy, currency, date)
		})...)

		prices, err := s.storage.Prices().List(ctx, t.ID, time.Time{}, time.Time{})
		if err != nil {
			return Inputs{}, err
		}

		positions = append(positions, &position{ticker: t, flows: flows, prices: prices})
		allFlows = append(allFlows, flows...)
	}

	sort.SliceStable(allFlows, func(i, j int) bool { return allFlows[i].Date.Before(allFlows[j].Date) })
	sort.SliceStable(allDivs, func(i, j int) bool { return allDivs[i].Date.Before(allDivs[j].Date) })

	in := Inputs{
		Flows:     allFlows,
		Dividends: allDivs,
		ValueAt: func(date time.Time) float64 {
			var total float64
			for _, p := range positions {
				total += converter.ConvertOrKeep(p.localValueAsOf(date), p.ticker.Currency, currency, date)
			}
			return total
		},
		LocalValueAt: func(date time.Time) map[string]float64 {
			out := map[string]float64{}
			for _, p := range positions {
				if v := p.localValueAsOf(date); v != 0 {
					out[p.ticker.Currency] += v
				}
			}
			return out
		},
		ConvertAt: func(amount float64, ccy string, date time.Time) (float64, bool) {
			return converter.Convert(amount, ccy, currency, date)
		},
	}
	return in, nil
}

// Ensure Service implements PerformanceService
var _ interfaces.PerformanceService = (*Service)(nil)
