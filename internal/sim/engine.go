package sim

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/verte-zerg/greenfly/internal/model"
)

const (
	minDiseaseRate = 20
	maxDiseaseRate = 50 // exclusive
)

// ErrIndexOutOfRange is returned when a generation index is outside the history.
var ErrIndexOutOfRange = errors.New("generation index out of range")

// Engine drives a population through the configured number of generations
// and keeps the history of every snapshot.
type Engine struct {
	opts        model.Options
	population  *Population
	generations []model.Generation
	rnd         Source
	logger      *slog.Logger
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithSource sets the random source used for disease rates.
func WithSource(src Source) EngineOption {
	return func(e *Engine) {
		if src != nil {
			e.rnd = src
		}
	}
}

// WithLogger sets the logger for per-generation debug output.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine from validated options and records the seed
// generation with a disease rate of 0.
func NewEngine(opts model.Options, options ...EngineOption) *Engine {
	e := &Engine{
		opts:       opts,
		population: NewPopulation(opts.StartingJuveniles, opts.StartingAdults, opts.StartingSeniles),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.rnd == nil {
		e.rnd = NewSource()
	}
	e.generations = []model.Generation{e.population.Snapshot(0)}
	return e
}

// Options returns the options the engine was created with.
func (e *Engine) Options() model.Options {
	return e.opts
}

// GenerationCount returns the number of recorded generations, seed included.
func (e *Engine) GenerationCount() int {
	return len(e.generations)
}

// GenerationAt returns the generation at index.
func (e *Engine) GenerationAt(index int) (model.Generation, error) {
	if index < 0 || index >= len(e.generations) {
		return model.Generation{}, fmt.Errorf("%w: %d (count %d)", ErrIndexOutOfRange, index, len(e.generations))
	}
	return e.generations[index], nil
}

// Generations returns a copy of the history in creation order.
func (e *Engine) Generations() []model.Generation {
	out := make([]model.Generation, len(e.generations))
	copy(out, e.generations)
	return out
}

// RunAllGenerations advances the population Options.Generations times.
// It continues from the current state on every call; it never resets the history.
func (e *Engine) RunAllGenerations() {
	for i := 0; i < e.opts.Generations; i++ {
		diseaseRate := e.DecideDiseaseRate()
		next := e.population.Advance(e.opts, diseaseRate)
		e.generations = append(e.generations, next)
		e.logger.Debug("generation advanced",
			"generation", len(e.generations)-1,
			"disease_rate", diseaseRate,
			"juveniles", next.Juveniles,
			"adults", next.Adults,
			"seniles", next.Seniles,
		)
	}
}

// DecideDiseaseRate returns a random rate in [20, 50) once the total
// population reaches the disease trigger, and 0 otherwise.
func (e *Engine) DecideDiseaseRate() int {
	if e.population.TotalPopulation() >= e.opts.DiseaseTrigger {
		return minDiseaseRate + e.rnd.Intn(maxDiseaseRate-minDiseaseRate)
	}
	return 0
}
