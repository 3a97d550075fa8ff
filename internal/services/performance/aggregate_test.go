package performance

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpariona/cartera/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// stepValue builds a valuation function from dated observations: the value
// at any date is the most recent observation at or before it, zero before
// the first. This mirrors how as-of price lookups behave.
func stepValue(obs map[string]float64) func(time.Time) float64 {
	dates := make([]time.Time, 0, len(obs))
	for d := range obs {
		dates = append(dates, day(d))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return func(date time.Time) float64 {
		var v float64
		for _, d := range dates {
			if d.After(date) {
				break
			}
			v = obs[d.Format("2006-01-02")]
		}
		return v
	}
}

func TestAggregateGeometricChaining(t *testing.T) {
	// Monthly returns of +10%, -5%, +20% must chain to +25.4%, the
	// geometric product, not the 25% a naive sum would give.
	in := Inputs{
		Flows: []FlowEvent{
			{Date: day("2024-01-02"), Amount: 1000, Quantity: 10, NewCapital: true},
		},
		ValueAt: stepValue(map[string]float64{
			"2024-01-31": 1100,
			"2024-02-29": 1045,
			"2024-03-31": 1254,
		}),
	}

	reports, err := Aggregate(in, Options{Period: PeriodMonth, From: day("2024-01-01"), To: day("2024-03-31")})
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.InDelta(t, 10.0, reports[0].PeriodReturnPct, 1e-9)
	assert.InDelta(t, -5.0, reports[1].PeriodReturnPct, 1e-9)
	assert.InDelta(t, 20.0, reports[2].PeriodReturnPct, 1e-9)
	assert.InDelta(t, 25.4, reports[2].CumulativeReturnPct, 1e-9)
}

func TestAggregateFirstPeriodUsesContributions(t *testing.T) {
	// $1,000 invested mid-January buying 10 units at $100; month closes at
	// $110/unit. Vi = 0, F = 1000, Vf = 1100, so Rn = Rm/F = 10%.
	in := Inputs{
		Flows: []FlowEvent{
			{Date: day("2024-01-15"), Amount: 1000, Quantity: 10, NewCapital: true},
		},
		ValueAt: stepValue(map[string]float64{
			"2024-01-31": 1100,
		}),
	}

	reports, err := Aggregate(in, Options{Period: PeriodMonth, From: day("2024-01-01"), To: day("2024-01-31")})
	require.NoError(t, err)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "2024-01", r.Period)
	assert.Equal(t, 0.0, r.OpeningValue)
	assert.Equal(t, 1000.0, r.NetContributions)
	assert.Equal(t, 1100.0, r.ClosingValue)
	assert.InDelta(t, 100.0, r.PeriodGain, 1e-9)
	assert.InDelta(t, 10.0, r.PeriodReturnPct, 1e-9)
}

func TestAggregateZeroBaseZeroFlowsIsZeroReturn(t *testing.T) {
	// A period with Vi = 0 and F = 0 reports zero return, never NaN or Inf.
	in := Inputs{
		Flows: []FlowEvent{
			{Date: day("2024-02-10"), Amount: 500, Quantity: 5, NewCapital: true},
		},
		ValueAt: stepValue(map[string]float64{
			"2024-02-29": 550,
		}),
	}

	reports, err := Aggregate(in, Options{Period: PeriodMonth, From: day("2024-01-01"), To: day("2024-02-29")})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	jan := reports[0]
	assert.Equal(t, 0.0, jan.PeriodReturnPct)
	assert.Equal(t, 0.0, jan.CumulativeReturnPct)
}

func TestAggregateReinvestmentExcludedFromContributions(t *testing.T) {
	// A reinvested purchase grows the position but not the contribution
	// total; the dividend that funded it is credited to period gain.
	in := Inputs{
		Flows: []FlowEvent{
			{Date: day("2024-01-05"), Amount: 1000, Quantity: 10, NewCapital: true},
			{Date: day("2024-02-10"), Amount: 100, Quantity: 1, NewCapital: false},
		},
		Dividends: []DividendEvent{
			{Date: day("2024-02-08"), Amount: 100},
		},
		ValueAt: stepValue(map[string]float64{
			"2024-01-31": 1000,
			"2024-02-29": 1100,
		}),
	}

	reports, err := Aggregate(in, Options{Period: PeriodMonth, From: day("2024-01-01"), To: day("2024-02-29")})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	feb := reports[1]
	assert.Equal(t, 0.0, feb.NetContributions, "reinvestment is not new capital")
	assert.Equal(t, 100.0, feb.Dividends)
	assert.Equal(t, 1100.0, feb.ClosingValue, "reinvested units still count in valuation")
}

func TestAggregateCarriesForwardQuietPeriods(t *testing.T) {
	// A month with no price observations is still emitted, carrying the
	// last known valuation with zero return.
	in := Inputs{
		Flows: []FlowEvent{
			{Date: day("2024-01-05"), Amount: 1000, Quantity: 10, NewCapital: true},
		},
		ValueAt: stepValue(map[string]float64{
			"2024-01-31": 1100,
			"2024-03-20": 1210,
		}),
	}

	reports, err := Aggregate(in, Options{Period: PeriodMonth, From: day("2024-01-01"), To: day("2024-03-31")})
	require.NoError(t, err)
	require.Len(t, reports, 3)

	feb := reports[1]
	assert.Equal(t, "2024-02", feb.Period)
	assert.Equal(t, 1100.0, feb.OpeningValue)
	assert.Equal(t, 1100.0, feb.ClosingValue)
	assert.Equal(t, 0.0, feb.PeriodReturnPct)

	mar := reports[2]
	assert.InDelta(t, 10.0, mar.PeriodReturnPct, 1e-9)
	assert.InDelta(t, 21.0, mar.CumulativeReturnPct, 1e-9)
}

func TestAggregateMaxDrawdown(t *testing.T) {
	// Peak 1200 in February, trough 900 in March: drawdown -25%, retained
	// through the recovery.
	in := Inputs{
		Flows: []FlowEvent{
			{Date: day("2024-01-02"), Amount: 1000, Quantity: 10, NewCapital: true},
		},
		ValueAt: stepValue(map[string]float64{
			"2024-01-31": 1000,
			"2024-02-29": 1200,
			"2024-03-31": 900,
			"2024-04-30": 1250,
		}),
	}

	reports, err := Aggregate(in, Options{Period: PeriodMonth, From: day("2024-01-01"), To: day("2024-04-30")})
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Equal(t, 0.0, reports[1].MaxDrawdownPct)
	assert.InDelta(t, -25.0, reports[2].MaxDrawdownPct, 1e-9)
	assert.InDelta(t, -25.0, reports[3].MaxDrawdownPct, 1e-9, "drawdown persists past recovery")
}

func TestAggregateAnnualPeriods(t *testing.T) {
	in := Inputs{
		Flows: []FlowEvent{
			{Date: day("2023-06-15"), Amount: 1000, Quantity: 10, NewCapital: true},
		},
		ValueAt: stepValue(map[string]float64{
			"2023-12-31": 1100,
			"2024-12-31": 1320,
		}),
	}

	reports, err := Aggregate(in, Options{Period: PeriodYear, From: day("2023-01-01"), To: day("2024-12-31")})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "2023", reports[0].Period)
	assert.Equal(t, "2024", reports[1].Period)
	assert.InDelta(t, 10.0, reports[0].PeriodReturnPct, 1e-9)
	assert.InDelta(t, 20.0, reports[1].PeriodReturnPct, 1e-9)
	assert.InDelta(t, 32.0, reports[1].CumulativeReturnPct, 1e-9)
}

func TestAggregateDivestment(t *testing.T) {
	// Selling removes value and counts as a negative contribution; the
	// period return reflects only the market movement.
	in := Inputs{
		Flows: []FlowEvent{
			{Date: day("2024-01-02"), Amount: 1000, Quantity: 10, NewCapital: true},
			{Date: day("2024-02-15"), Amount: -550, Quantity: -5, NewCapital: true},
		},
		ValueAt: stepValue(map[string]float64{
			"2024-01-31": 1100,
			"2024-02-29": 550,
		}),
	}

	reports, err := Aggregate(in, Options{Period: PeriodMonth, From: day("2024-01-01"), To: day("2024-02-29")})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	feb := reports[1]
	assert.Equal(t, -550.0, feb.NetContributions)
	// Rm = 550 - 1100 - (-550) = 0: the position halved by sale, not by loss.
	assert.InDelta(t, 0.0, feb.PeriodGain, 1e-9)
	assert.InDelta(t, 0.0, feb.PeriodReturnPct, 1e-9)
}

func TestAggregateInvalidPeriod(t *testing.T) {
	_, err := Aggregate(Inputs{ValueAt: func(time.Time) float64 { return 0 }}, Options{Period: "week"})
	require.Error(t, err)
}

func TestAggregateEmptyWindow(t *testing.T) {
	reports, err := Aggregate(Inputs{ValueAt: func(time.Time) float64 { return 0 }}, Options{Period: PeriodMonth})
	require.NoError(t, err)
	assert.Empty(t, reports, "no flows and no explicit window yields no periods")
}

func TestExtractFlowsSortsAndSigns(t *testing.T) {
	events := []models.InvestmentEvent{
		{Date: day("2024-03-01"), Amount: -500, Quantity: -5, Operation: models.OpDivestment, CapitalOrigin: models.OriginFreshCash},
		{Date: day("2024-01-10"), Amount: 1000, Quantity: 10, Operation: models.OpInvestment, CapitalOrigin: models.OriginFreshCash},
		{Date: day("2024-02-10"), Amount: 100, Quantity: 1, Operation: models.OpInvestment, CapitalOrigin: models.OriginReinvestment},
	}

	flows := ExtractFlows(events, "USD")
	require.Len(t, flows, 3)
	assert.True(t, flows[0].Date.Before(flows[1].Date))
	assert.True(t, flows[1].Date.Before(flows[2].Date))
	assert.False(t, flows[1].NewCapital, "reinvestment flagged")
	assert.Equal(t, -500.0, flows[2].Amount)
	assert.Equal(t, "USD", flows[0].Currency)
}

func TestExtractDividendsSorts(t *testing.T) {
	divs := []models.Dividend{
		{Date: day("2024-06-01"), Amount: 20, Currency: models.CurrencyUSD},
		{Date: day("2024-03-01"), Amount: 10, Currency: models.CurrencyUSD},
	}

	out := ExtractDividends(divs, nil)
	require.Len(t, out, 2)
	assert.Equal(t, 10.0, out[0].Amount)
	assert.Equal(t, 20.0, out[1].Amount)
}

func TestExtractDividendsConverts(t *testing.T) {
	divs := []models.Dividend{
		{Date: day("2024-03-01"), Amount: 37, Currency: models.CurrencyPEN},
	}

	out := ExtractDividends(divs, func(amount float64, currency string, date time.Time) float64 {
		if currency == models.CurrencyPEN {
			return amount / 3.7
		}
		return amount
	})
	require.Len(t, out, 1)
	assert.InDelta(t, 10.0, out[0].Amount, 1e-9)
}
