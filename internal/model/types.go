// Package model defines shared data structures.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Options defines the inputs of a single model run.
type Options struct {
	StartingJuveniles    int     `yaml:"starting_juveniles"`
	StartingAdults       int     `yaml:"starting_adults"`
	StartingSeniles      int     `yaml:"starting_seniles"`
	Generations          int     `yaml:"generations"`
	JuvenileSurvivalRate float64 `yaml:"juvenile_survival_rate"`
	AdultSurvivalRate    float64 `yaml:"adult_survival_rate"`
	SenileSurvivalRate   float64 `yaml:"senile_survival_rate"`
	AdultBirthRate       float64 `yaml:"adult_birth_rate"`
	DiseaseTrigger       int     `yaml:"disease_trigger"`
}

// Generation is a snapshot of the population after one generation.
// The thousands-scaled fields are computed once by NewGeneration.
type Generation struct {
	Juveniles   int `yaml:"juveniles"`
	Adults      int `yaml:"adults"`
	Seniles     int `yaml:"seniles"`
	DiseaseRate int `yaml:"disease_rate"`

	JuvenilesInThousands float64 `yaml:"juveniles_in_thousands"`
	AdultsInThousands    float64 `yaml:"adults_in_thousands"`
	SenilesInThousands   float64 `yaml:"seniles_in_thousands"`
	TotalInThousands     float64 `yaml:"total_in_thousands"`
}

// NewGeneration builds a Generation from raw counts and the disease rate applied to produce them.
func NewGeneration(juveniles, adults, seniles, diseaseRate int) Generation {
	return Generation{
		Juveniles:            juveniles,
		Adults:               adults,
		Seniles:              seniles,
		DiseaseRate:          diseaseRate,
		JuvenilesInThousands: InThousands(juveniles),
		AdultsInThousands:    InThousands(adults),
		SenilesInThousands:   InThousands(seniles),
		TotalInThousands:     InThousands(SumCounts(juveniles, adults, seniles)),
	}
}

// Total returns the raw population of the generation.
func (g Generation) Total() int {
	return SumCounts(g.Juveniles, g.Adults, g.Seniles)
}

// SumCounts adds non-negative counts, saturating at math.MaxInt.
func SumCounts(counts ...int) int {
	total := 0
	for _, c := range counts {
		if c > math.MaxInt-total {
			return math.MaxInt
		}
		total += c
	}
	return total
}

// Diseased reports whether disease struck during the generation.
func (g Generation) Diseased() bool {
	return g.DiseaseRate > 0
}

// InThousands scales a raw count to thousands.
func InThousands(value int) float64 {
	return float64(value) / 1000
}

// Stage is a population cohort.
type Stage int

const (
	Juvenile Stage = iota
	Adult
	Senile
)

// Stages lists every stage in lifecycle order.
var Stages = []Stage{Juvenile, Adult, Senile}

func (s Stage) String() string {
	switch s {
	case Juvenile:
		return "juvenile"
	case Adult:
		return "adult"
	case Senile:
		return "senile"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ParseStage maps a stage name to a Stage.
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "juvenile", "juveniles":
		return Juvenile, nil
	case "adult", "adults":
		return Adult, nil
	case "senile", "seniles":
		return Senile, nil
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// RunSummary describes an archived run for listings.
type RunSummary struct {
	ID                 int64
	CreatedAt          time.Time
	Options            Options
	GenerationCount    int
	PeakTotal          int
	DiseaseGenerations int
}

// RunRecord is an archived run with its full history.
type RunRecord struct {
	RunSummary
	Generations []Generation
}
