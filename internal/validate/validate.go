// Package validate checks model options before a run.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/greenfly/internal/model"
)

// Default generation bounds.
const (
	DefaultMinGenerations = 5
	DefaultMaxGenerations = 25
)

// ErrInvalid matches any options validation failure.
var ErrInvalid = errors.New("invalid options")

// Kind is the type of value a rule expects.
type Kind int

const (
	Integer Kind = iota
	Number
)

func (k Kind) String() string {
	if k == Integer {
		return "integer"
	}
	return "number"
}

// Field identifies an options field.
type Field string

const (
	StartingJuveniles    Field = "starting-juveniles"
	StartingAdults       Field = "starting-adults"
	StartingSeniles      Field = "starting-seniles"
	Generations          Field = "generations"
	DiseaseTrigger       Field = "disease-trigger"
	AdultBirthRate       Field = "adult-birth-rate"
	JuvenileSurvivalRate Field = "juvenile-survival-rate"
	AdultSurvivalRate    Field = "adult-survival-rate"
	SenileSurvivalRate   Field = "senile-survival-rate"
)

// Rule is a named check for a single field. Check returns "" for a valid value.
type Rule struct {
	Field  Field
	Prompt string
	Kind   Kind
	Check  func(value float64) string
}

// Validation holds the configurable bounds.
type Validation struct {
	MinGenerations int
	MaxGenerations int
}

// New returns a Validation with the given generation bounds.
func New(minGenerations, maxGenerations int) Validation {
	return Validation{MinGenerations: minGenerations, MaxGenerations: maxGenerations}
}

// Default returns a Validation using the default generation bounds.
func Default() Validation {
	return New(DefaultMinGenerations, DefaultMaxGenerations)
}

// Rules returns one rule per options field in prompt order.
func (v Validation) Rules() []Rule {
	return []Rule{
		{Field: StartingJuveniles, Prompt: "Enter starting juvenile population", Kind: Integer, Check: nonNegative},
		{Field: StartingAdults, Prompt: "Enter starting adult population", Kind: Integer, Check: nonNegative},
		{Field: StartingSeniles, Prompt: "Enter starting senile population", Kind: Integer, Check: nonNegative},
		{Field: Generations, Prompt: "Enter number of generations", Kind: Integer, Check: v.generations},
		{Field: DiseaseTrigger, Prompt: "Enter total population to trigger disease", Kind: Integer, Check: positive},
		{Field: AdultBirthRate, Prompt: "Enter adult birth rate", Kind: Number, Check: nonNegative},
		{Field: JuvenileSurvivalRate, Prompt: "Enter juvenile survival rate", Kind: Number, Check: unitInterval},
		{Field: AdultSurvivalRate, Prompt: "Enter adult survival rate", Kind: Number, Check: unitInterval},
		{Field: SenileSurvivalRate, Prompt: "Enter senile survival rate", Kind: Number, Check: unitInterval},
	}
}

// Rule returns the rule for a field.
func (v Validation) Rule(field Field) (Rule, bool) {
	for _, r := range v.Rules() {
		if r.Field == field {
			return r, true
		}
	}
	return Rule{}, false
}

const notFinite = "Must be a finite number"

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func nonNegative(value float64) string {
	if !finite(value) {
		return notFinite
	}
	if value < 0 {
		return "Must be 0 or greater"
	}
	return ""
}

func positive(value float64) string {
	if !finite(value) {
		return notFinite
	}
	if value <= 0 {
		return "Must be greater than 0"
	}
	return ""
}

func unitInterval(value float64) string {
	if !finite(value) {
		return notFinite
	}
	if value < 0 {
		return "Must be 0 or greater"
	}
	if value > 1 {
		return "Must be 1 or less"
	}
	return ""
}

func (v Validation) generations(value float64) string {
	if value < float64(v.MinGenerations) {
		return fmt.Sprintf("Must be equal to or greater than %d", v.MinGenerations)
	}
	if value > float64(v.MaxGenerations) {
		return fmt.Sprintf("Must be equal to or less than %d", v.MaxGenerations)
	}
	return ""
}

// ParseInput converts raw text for a rule into a value, returning a message
// when the text is empty, not a number, or fails the rule.
func ParseInput(rule Rule, input string) (float64, string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Sprintf("Please enter %s %s", article(rule.Kind), rule.Kind)
	}
	var value float64
	switch rule.Kind {
	case Integer:
		parsed, err := strconv.Atoi(input)
		if err != nil {
			return 0, fmt.Sprintf("Please enter a valid %s", rule.Kind)
		}
		value = float64(parsed)
	default:
		parsed, err := strconv.ParseFloat(input, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, fmt.Sprintf("Please enter a valid %s", rule.Kind)
		}
		value = parsed
	}
	if msg := rule.Check(value); msg != "" {
		return 0, msg
	}
	return value, ""
}

func article(k Kind) string {
	if k == Integer {
		return "an"
	}
	return "a"
}

// FieldError is a rule failure for one field.
type FieldError struct {
	Field   Field
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidError lists every failing field.
type InvalidError struct {
	Fields []FieldError
}

func (e *InvalidError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(parts, "; "))
}

// Is reports whether target is ErrInvalid.
func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalid
}

// Options checks every field of opts and returns an *InvalidError on failure.
func (v Validation) Options(opts model.Options) error {
	var failures []FieldError
	for _, r := range v.Rules() {
		if msg := r.Check(FieldValue(opts, r.Field)); msg != "" {
			failures = append(failures, FieldError{Field: r.Field, Message: msg})
		}
	}
	if len(failures) > 0 {
		return &InvalidError{Fields: failures}
	}
	return nil
}

// FieldValue reads a field from opts as a float.
func FieldValue(opts model.Options, field Field) float64 {
	switch field {
	case StartingJuveniles:
		return float64(opts.StartingJuveniles)
	case StartingAdults:
		return float64(opts.StartingAdults)
	case StartingSeniles:
		return float64(opts.StartingSeniles)
	case Generations:
		return float64(opts.Generations)
	case DiseaseTrigger:
		return float64(opts.DiseaseTrigger)
	case AdultBirthRate:
		return opts.AdultBirthRate
	case JuvenileSurvivalRate:
		return opts.JuvenileSurvivalRate
	case AdultSurvivalRate:
		return opts.AdultSurvivalRate
	case SenileSurvivalRate:
		return opts.SenileSurvivalRate
	}
	return 0
}

// SetField writes a parsed value into opts.
func SetField(opts *model.Options, field Field, value float64) {
	switch field {
	case StartingJuveniles:
		opts.StartingJuveniles = int(value)
	case StartingAdults:
		opts.StartingAdults = int(value)
	case StartingSeniles:
		opts.StartingSeniles = int(value)
	case Generations:
		opts.Generations = int(value)
	case DiseaseTrigger:
		opts.DiseaseTrigger = int(value)
	case AdultBirthRate:
		opts.AdultBirthRate = value
	case JuvenileSurvivalRate:
		opts.JuvenileSurvivalRate = value
	case AdultSurvivalRate:
		opts.AdultSurvivalRate = value
	case SenileSurvivalRate:
		opts.SenileSurvivalRate = value
	}
}

// FormatValue renders a field value the way it is typed in.
func FormatValue(opts model.Options, field Field, kind Kind) string {
	value := FieldValue(opts, field)
	if kind == Integer {
		return strconv.Itoa(int(value))
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
