package performance

import (
	"sort"
	"time"

	"github.com/jpariona/cartera/internal/models"
)

// MergeBenchmark aligns a portfolio report series against a benchmark index
// series. The benchmark return for a period is the change of the index level
// from the last close before the period to the last close inside it, chained
// geometrically across periods exactly like portfolio returns. A period with
// no index observation of its own gets nil benchmark fields; a missing
// period never contributes zero to later cumulative figures.
func MergeBenchmark(portfolio []models.PeriodReport, levels []models.BenchmarkPrice) []models.BenchmarkPeriod {
	sorted := make([]models.BenchmarkPrice, len(levels))
	copy(sorted, levels)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make([]models.BenchmarkPeriod, 0, len(portfolio))
	benchFactor := 1.0

	for _, p := range portfolio {
		bp := models.BenchmarkPeriod{
			Period:                 p.Period,
			PortfolioCumulativePct: p.CumulativeReturnPct,
		}

		closeLevel, closeDate, closeOK := levelAsOf(sorted, p.End)
		// The close must come from inside the period; a stale carry-over
		// means the benchmark has no observation for this period.
		if closeOK && !closeDate.Before(p.Start) {
			open, _, openOK := levelAsOf(sorted, p.Start.AddDate(0, 0, -1))
			if !openOK {
				// First covered period: measure from its first level.
				open, _, openOK = firstLevelIn(sorted, p.Start, p.End)
			}
			if openOK && open > 0 {
				ret := (closeLevel - open) / open
				benchFactor *= 1 + ret

				retPct := ret * 100
				cumPct := (benchFactor - 1) * 100
				alpha := p.CumulativeReturnPct - cumPct

				bp.BenchmarkReturnPct = &retPct
				bp.BenchmarkCumulativePct = &cumPct
				bp.AlphaPct = &alpha
			}
		}

		out = append(out, bp)
	}

	return out
}

// levelAsOf returns the last index level at or before date.
func levelAsOf(levels []models.BenchmarkPrice, date time.Time) (float64, time.Time, bool) {
	idx := sort.Search(len(levels), func(i int) bool { return levels[i].Date.After(date) })
	if idx == 0 {
		return 0, time.Time{}, false
	}
	return levels[idx-1].Value, levels[idx-1].Date, true
}

// firstLevelIn returns the first index level inside [from, to].
func firstLevelIn(levels []models.BenchmarkPrice, from, to time.Time) (float64, time.Time, bool) {
	for _, l := range levels {
		if l.Date.Before(from) {
			continue
		}
		if l.Date.After(to) {
			break
		}
		return l.Value, l.Date, true
	}
	return 0, time.Time{}, false
}
