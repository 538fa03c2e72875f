// Package sim runs the three-stage population model.
package sim

import (
	"math"

	"github.com/verte-zerg/greenfly/internal/model"
)

// Population holds the current stage counts of a run.
type Population struct {
	juveniles int
	adults    int
	seniles   int
}

// NewPopulation returns a population with the given starting counts.
func NewPopulation(juveniles, adults, seniles int) *Population {
	return &Population{juveniles: juveniles, adults: adults, seniles: seniles}
}

// Snapshot records the current counts together with a disease rate.
func (p *Population) Snapshot(diseaseRate int) model.Generation {
	return model.NewGeneration(p.juveniles, p.adults, p.seniles, diseaseRate)
}

// TotalPopulation returns the sum of all stages.
func (p *Population) TotalPopulation() int {
	return model.SumCounts(p.juveniles, p.adults, p.seniles)
}

// Count returns the current count for a stage.
func (p *Population) Count(stage model.Stage) int {
	switch stage {
	case model.Juvenile:
		return p.juveniles
	case model.Adult:
		return p.adults
	case model.Senile:
		return p.seniles
	default:
		return 0
	}
}

// Advance moves the population forward one generation and returns the new snapshot.
//
// Juveniles that survive become adults, surviving adults join the seniles and
// newborns replace the juveniles. Disease only reduces juvenile and senile
// survival. Every term is derived from the counts before the update,
// truncated toward zero and capped at math.MaxInt.
func (p *Population) Advance(opts model.Options, diseaseRate int) model.Generation {
	born := p.bornJuveniles(opts.AdultBirthRate)
	survivingJuveniles := diseased(p.juveniles, opts.JuvenileSurvivalRate, diseaseRate)
	survivingAdults := toCount(float64(p.adults) * opts.AdultSurvivalRate)
	survivingSeniles := diseased(p.seniles, opts.SenileSurvivalRate, diseaseRate)

	p.juveniles = born
	p.adults = survivingJuveniles
	p.seniles = model.SumCounts(survivingAdults, survivingSeniles)

	return p.Snapshot(diseaseRate)
}

func (p *Population) bornJuveniles(birthRate float64) int {
	return toCount(float64(p.adults) * birthRate)
}

func diseased(count int, survivalRate float64, diseaseRate int) int {
	return toCount(float64(count) * survivalRate * float64(100-diseaseRate) / 100)
}

// toCount truncates v toward zero, clamping it to [0, math.MaxInt].
// float64(math.MaxInt) rounds up to 2^63, so the upper check is inclusive.
func toCount(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= float64(math.MaxInt):
		return math.MaxInt
	default:
		return int(v)
	}
}
