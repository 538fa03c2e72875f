package export

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/verte-zerg/greenfly/internal/model"
)

const (
	chartWidth  = 1024
	chartHeight = 480
)

// WriteChartPNG renders stage and total populations (in thousands) per generation as a PNG.
func WriteChartPNG(w io.Writer, generations []model.Generation) error {
	if len(generations) == 0 {
		return fmt.Errorf("no generations to chart")
	}
	xs := make([]float64, len(generations))
	juveniles := make([]float64, len(generations))
	adults := make([]float64, len(generations))
	seniles := make([]float64, len(generations))
	totals := make([]float64, len(generations))
	peak := 0.0
	for i, g := range generations {
		xs[i] = float64(i)
		juveniles[i] = g.JuvenilesInThousands
		adults[i] = g.AdultsInThousands
		seniles[i] = g.SenilesInThousands
		totals[i] = g.TotalInThousands
		if g.TotalInThousands > peak {
			peak = g.TotalInThousands
		}
	}
	if peak <= 0 {
		peak = 1
	}
	xMax := float64(len(generations) - 1)
	if xMax < 1 {
		xMax = 1
	}

	graph := chart.Chart{
		Title:  "Population by generation",
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Generation",
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
			Ticks: generationTicks(len(generations)),
		},
		YAxis: chart.YAxis{
			Name:  "Population (thousands)",
			Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Juveniles",
				XValues: xs,
				YValues: juveniles,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Adults",
				XValues: xs,
				YValues: adults,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Seniles",
				XValues: xs,
				YValues: seniles,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 255, G: 165, B: 0, A: 255}, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Total",
				XValues: xs,
				YValues: totals,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 3.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteChartFile renders the chart to path.
func WriteChartFile(path string, generations []model.Generation, overwrite bool) error {
	return writeFile(path, overwrite, func(w io.Writer) error {
		return WriteChartPNG(w, generations)
	})
}

func generationTicks(count int) []chart.Tick {
	step := 1
	if count > 20 {
		step = count / 10
	}
	ticks := make([]chart.Tick, 0, count/step+1)
	for i := 0; i < count; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: fmt.Sprintf("%d", i)})
	}
	if len(ticks) == 1 {
		ticks = append(ticks, chart.Tick{Value: 1, Label: "1"})
	}
	return ticks
}
