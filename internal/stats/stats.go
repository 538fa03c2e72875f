package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/greenfly/internal/model"
)

// OptionLine is a labelled option value.
type OptionLine struct {
	Label string
	Value string
}

// OptionLines lists the options in display order.
func OptionLines(opts model.Options) []OptionLine {
	return []OptionLine{
		{"Starting juvenile population", strconv.Itoa(opts.StartingJuveniles)},
		{"Starting adult population", strconv.Itoa(opts.StartingAdults)},
		{"Starting senile population", strconv.Itoa(opts.StartingSeniles)},
		{"No. of generations", strconv.Itoa(opts.Generations)},
		{"Disease population trigger", strconv.Itoa(opts.DiseaseTrigger)},
		{"Adult birth rate", formatRate(opts.AdultBirthRate)},
		{"Juvenile survival rate", formatRate(opts.JuvenileSurvivalRate)},
		{"Adult survival rate", formatRate(opts.AdultSurvivalRate)},
		{"Senile survival rate", formatRate(opts.SenileSurvivalRate)},
	}
}

// RenderOptions prints the options as a label/value listing.
func RenderOptions(w io.Writer, opts model.Options) error {
	lines := OptionLines(opts)
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{l.Label, l.Value})
	}
	for _, line := range formatTable(nil, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// GenerationRows formats raw counts per generation.
func GenerationRows(generations []model.Generation) [][]string {
	rows := make([][]string, 0, len(generations))
	for i, g := range generations {
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.Itoa(g.Juveniles),
			strconv.Itoa(g.Adults),
			strconv.Itoa(g.Seniles),
			strconv.Itoa(g.Total()),
			FormatDiseaseRate(g.DiseaseRate),
		})
	}
	return rows
}

// GenerationHeaders are the column titles for GenerationRows.
var GenerationHeaders = []string{"Generation", "Juveniles", "Adults", "Seniles", "Total", "Disease"}

// RenderGenerations prints one row of raw counts per generation.
func RenderGenerations(w io.Writer, generations []model.Generation) error {
	if len(generations) == 0 {
		_, err := fmt.Fprintln(w, "No generations.")
		return err
	}
	return writeTable(w, GenerationHeaders, GenerationRows(generations))
}

// RenderGenerationsInThousands prints the thousands-scaled view of each generation.
func RenderGenerationsInThousands(w io.Writer, generations []model.Generation) error {
	if len(generations) == 0 {
		_, err := fmt.Fprintln(w, "No generations.")
		return err
	}
	headers := []string{"Generation", "Juveniles (k)", "Adults (k)", "Seniles (k)", "Total (k)", "Disease"}
	rows := make([][]string, 0, len(generations))
	for i, g := range generations {
		rows = append(rows, []string{
			strconv.Itoa(i),
			formatThousands(g.JuvenilesInThousands),
			formatThousands(g.AdultsInThousands),
			formatThousands(g.SenilesInThousands),
			formatThousands(g.TotalInThousands),
			FormatDiseaseRate(g.DiseaseRate),
		})
	}
	return writeTable(w, headers, rows)
}

// RenderCurves prints stage populations over generations.
func RenderCurves(w io.Writer, generations []model.Generation) error {
	return RenderCurvesWithSize(w, generations, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints stage populations sized to a given total width.
func RenderCurvesWithSize(w io.Writer, generations []model.Generation, totalWidth, height int, useColor bool) error {
	if len(generations) == 0 {
		return nil
	}
	juveniles := make([]float64, len(generations))
	adults := make([]float64, len(generations))
	seniles := make([]float64, len(generations))
	for i, g := range generations {
		juveniles[i] = float64(g.Juveniles)
		adults[i] = float64(g.Adults)
		seniles[i] = float64(g.Seniles)
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Population by generation", []Series{
		{Name: "Juveniles", Values: juveniles},
		{Name: "Adults", Values: adults},
		{Name: "Seniles", Values: seniles},
	}, width, height, useColor)
}

// FormatDiseaseRate renders a disease rate, "-" when no disease struck.
func FormatDiseaseRate(rate int) string {
	if rate <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d%%", rate)
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatThousands(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	rightAlign := make(map[int]bool, len(headers))
	for i := range headers {
		rightAlign[i] = true
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
