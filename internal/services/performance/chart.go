package performance

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jpariona/cartera/internal/models"
)

// RenderEvolutionChart renders a PNG line chart of the period report series.
// Two series: Closing Value (blue solid) and cumulative Net Contributions
// (gray dashed), so the gap between the lines is the accumulated gain.
// Returns raw PNG bytes.
func RenderEvolutionChart(reports []models.PeriodReport) ([]byte, error) {
	if len(reports) < 2 {
		return nil, fmt.Errorf("need at least 2 periods, got %d", len(reports))
	}

	xValues := make([]time.Time, len(reports))
	valueY := make([]float64, len(reports))
	contribY := make([]float64, len(reports))

	contributed := 0.0
	for i, r := range reports {
		contributed += r.NetContributions
		xValues[i] = r.End
		valueY[i] = r.ClosingValue
		contribY[i] = contributed
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	contribSeries := chart.TimeSeries{
		Name: "Net Contributions",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: contribY,
	}

	graph := chart.Chart{
		Title:  "Portfolio Evolution",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			contribSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
