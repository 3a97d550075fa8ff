package performance

import (
	"fmt"
	"time"

	"github.com/jpariona/cartera/internal/models"
)

// Period granularities.
const (
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// ValidPeriod returns true if p is a supported period granularity.
func ValidPeriod(p string) bool {
	return p == PeriodMonth || p == PeriodYear
}

// Inputs is everything the aggregator needs, already normalized to the
// reporting currency. ValueAt must be total-portfolio value as of the end of
// the given day; as-of price lookups give it natural carry-forward across
// days with no observations.
type Inputs struct {
	Flows     []FlowEvent
	Dividends []DividendEvent
	ValueAt   func(date time.Time) float64

	// LocalValueAt and ConvertAt enable the price/FX gain decomposition.
	// LocalValueAt reports value per original currency; ConvertAt translates
	// a local-currency amount into the reporting currency as of a date.
	// When either is nil the whole gain is attributed to price.
	LocalValueAt func(date time.Time) map[string]float64
	ConvertAt    func(amount float64, currency string, date time.Time) (float64, bool)
}

// Options selects the granularity and window of an aggregation.
// Zero From/To default to the first flow date and yesterday.
type Options struct {
	Period string
	From   time.Time
	To     time.Time
}

// Aggregate builds the period report series. Per period it produces the
// opening value Vi, net new-capital contributions F, closing value Vf,
// dividends D, the gain Rm = Vf - Vi - F + D, the return
// Rn = Rm/Vi when Vi > 0, else Rm/F when F != 0, else 0, and the
// cumulative return chained geometrically as the product of (1 + Rn).
// Period returns compound multiplicatively; they are never summed.
//
// Periods with no price observations carry the last known valuation forward
// and report zero return; they are emitted, never omitted.
func Aggregate(in Inputs, opts Options) ([]models.PeriodReport, error) {
	if !ValidPeriod(opts.Period) {
		return nil, fmt.Errorf("invalid period %q; must be month or year", opts.Period)
	}
	if in.ValueAt == nil {
		return nil, fmt.Errorf("valuation function is required")
	}

	start, end, ok := window(in.Flows, opts)
	if !ok {
		return nil, nil
	}

	var (
		reports     []models.PeriodReport
		cumFactor   = 1.0
		peak        = 0.0
		maxDrawdown = 0.0
	)

	for ps := periodStart(start, opts.Period); !ps.After(end); ps = nextPeriod(ps, opts.Period) {
		pe := periodEnd(ps, opts.Period)
		if pe.After(end) {
			pe = end
		}

		vi := in.ValueAt(ps.AddDate(0, 0, -1))
		vf := in.ValueAt(pe)

		var contributions, allFlows float64
		localFlows := map[string]float64{}
		for _, f := range in.Flows {
			if f.Date.Before(ps) || f.Date.After(pe) {
				continue
			}
			allFlows += f.Amount
			localFlows[f.Currency] += f.LocalAmount
			if f.NewCapital {
				contributions += f.Amount
			}
		}

		var dividends float64
		for _, d := range in.Dividends {
			if d.Date.Before(ps) || d.Date.After(pe) {
				continue
			}
			dividends += d.Amount
		}

		gain := vf - vi - contributions + dividends
		priceGain, fxGain := splitGain(in, ps, pe, vf-vi-contributions, localFlows)

		var rn float64
		switch {
		case vi > 0:
			rn = gain / vi
		case contributions != 0:
			rn = gain / contributions
		}

		cumFactor *= 1 + rn

		if vf > peak {
			peak = vf
		}
		if peak > 0 {
			if dd := (vf - peak) / peak * 100; dd < maxDrawdown {
				maxDrawdown = dd
			}
		}

		reports = append(reports, models.PeriodReport{
			Period:              periodLabel(ps, opts.Period),
			Start:               ps,
			End:                 pe,
			OpeningValue:        vi,
			NetContributions:    contributions,
			ClosingValue:        vf,
			Dividends:           dividends,
			PeriodGain:          gain,
			PriceGain:           priceGain,
			FXGain:              fxGain,
			PeriodReturnPct:     rn * 100,
			CumulativeReturnPct: (cumFactor - 1) * 100,
			MaxDrawdownPct:      maxDrawdown,
		})
	}

	return reports, nil
}

// splitGain decomposes the capital-flow-adjusted value change into a
// price-driven and an FX-driven component. The local-currency change of each
// leg, converted at the period-end rate, is the price component; whatever
// remains of the reporting-currency change is attributed to FX movement.
func splitGain(in Inputs, ps, pe time.Time, totalChange float64, localFlows map[string]float64) (price, fx float64) {
	if in.LocalValueAt == nil || in.ConvertAt == nil {
		return totalChange, 0
	}

	before := in.LocalValueAt(ps.AddDate(0, 0, -1))
	after := in.LocalValueAt(pe)

	currencies := map[string]bool{}
	for c := range before {
		currencies[c] = true
	}
	for c := range after {
		currencies[c] = true
	}
	for c := range localFlows {
		currencies[c] = true
	}

	for c := range currencies {
		localChange := after[c] - before[c] - localFlows[c]
		converted, ok := in.ConvertAt(localChange, c, pe)
		if !ok {
			converted = localChange
		}
		price += converted
	}
	return price, totalChange - price
}

// window resolves the reporting window. Returns false when there is nothing
// to report (no flows and no explicit From).
func window(flows []FlowEvent, opts Options) (start, end time.Time, ok bool) {
	start = opts.From
	if start.IsZero() {
		if len(flows) == 0 {
			return time.Time{}, time.Time{}, false
		}
		start = flows[0].Date
	}

	end = opts.To
	if end.IsZero() {
		end = time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func periodStart(t time.Time, period string) time.Time {
	if period == PeriodYear {
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func nextPeriod(start time.Time, period string) time.Time {
	if period == PeriodYear {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

func periodEnd(start time.Time, period string) time.Time {
	return nextPeriod(start, period).AddDate(0, 0, -1)
}

func periodLabel(start time.Time, period string) string {
	if period == PeriodYear {
		return start.Format("2006")
	}
	return start.Format("2006-01")
}
