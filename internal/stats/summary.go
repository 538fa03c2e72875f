package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/greenfly/internal/model"
)

// Summary condenses a run history.
type Summary struct {
	Generations        int
	InitialTotal       int
	FinalTotal         int
	PeakTotal          int
	PeakGeneration     int
	DiseaseGenerations int
	MeanDiseaseRate    float64
}

// Summarize computes a Summary. The seed generation counts toward the peak
// but never as a disease generation.
func Summarize(generations []model.Generation) Summary {
	if len(generations) == 0 {
		return Summary{}
	}
	s := Summary{
		Generations:  len(generations) - 1,
		InitialTotal: generations[0].Total(),
		FinalTotal:   generations[len(generations)-1].Total(),
	}
	rateSum := 0
	for i, g := range generations {
		if total := g.Total(); total > s.PeakTotal {
			s.PeakTotal = total
			s.PeakGeneration = i
		}
		if g.Diseased() {
			s.DiseaseGenerations++
			rateSum += g.DiseaseRate
		}
	}
	if s.DiseaseGenerations > 0 {
		s.MeanDiseaseRate = float64(rateSum) / float64(s.DiseaseGenerations)
	}
	return s
}

// GrowthPct is the change from the initial to the final total in percent.
func (s Summary) GrowthPct() float64 {
	if s.InitialTotal == 0 {
		return 0
	}
	return float64(s.FinalTotal-s.InitialTotal) / float64(s.InitialTotal) * 100
}

// RenderSummary prints a short summary of the run.
func RenderSummary(w io.Writer, s Summary) error {
	lines := []string{
		"Summary",
		fmt.Sprintf("Generations: %d", s.Generations),
		fmt.Sprintf("Initial population: %d", s.InitialTotal),
		fmt.Sprintf("Final population: %d (%+.1f%%)", s.FinalTotal, s.GrowthPct()),
		fmt.Sprintf("Peak population: %d (generation %d)", s.PeakTotal, s.PeakGeneration),
		fmt.Sprintf("Disease generations: %d", s.DiseaseGenerations),
	}
	if s.DiseaseGenerations > 0 {
		lines = append(lines, fmt.Sprintf("Mean disease rate: %.1f%%", s.MeanDiseaseRate))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
