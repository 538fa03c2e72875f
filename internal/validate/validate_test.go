package validate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/greenfly/internal/model"
)

func validOptions() model.Options {
	return model.Options{
		StartingJuveniles:    10,
		StartingAdults:       10,
		StartingSeniles:      10,
		Generations:          10,
		JuvenileSurvivalRate: 0.5,
		AdultSurvivalRate:    0.5,
		SenileSurvivalRate:   0.5,
		AdultBirthRate:       1.5,
		DiseaseTrigger:       1000,
	}
}

func TestRuleMessages(t *testing.T) {
	v := New(1, 100)
	tests := []struct {
		field Field
		value float64
		want  string
	}{
		{StartingJuveniles, -1, "Must be 0 or greater"},
		{StartingJuveniles, 0, ""},
		{StartingJuveniles, 1, ""},
		{StartingAdults, -1, "Must be 0 or greater"},
		{StartingAdults, 0, ""},
		{StartingSeniles, -1, "Must be 0 or greater"},
		{StartingSeniles, 1, ""},
		{Generations, 0, "Must be equal to or greater than 1"},
		{Generations, 1, ""},
		{Generations, 100, ""},
		{Generations, 101, "Must be equal to or less than 100"},
		{DiseaseTrigger, 0, "Must be greater than 0"},
		{DiseaseTrigger, -1, "Must be greater than 0"},
		{DiseaseTrigger, 1, ""},
		{AdultBirthRate, -0.1, "Must be 0 or greater"},
		{AdultBirthRate, 0, ""},
		{AdultBirthRate, 12.5, ""},
		{JuvenileSurvivalRate, -0.1, "Must be 0 or greater"},
		{JuvenileSurvivalRate, 1, ""},
		{JuvenileSurvivalRate, 1.1, "Must be 1 or less"},
		{AdultSurvivalRate, 0, ""},
		{AdultSurvivalRate, 1.1, "Must be 1 or less"},
		{SenileSurvivalRate, -1, "Must be 0 or greater"},
		{SenileSurvivalRate, 2, "Must be 1 or less"},
	}
	for _, tt := range tests {
		rule, ok := v.Rule(tt.field)
		require.True(t, ok, "rule for %s", tt.field)
		require.Equal(t, tt.want, rule.Check(tt.value), "%s(%v)", tt.field, tt.value)
	}
}

func TestRulesCoverEveryField(t *testing.T) {
	rules := Default().Rules()
	require.Len(t, rules, 9)
	seen := map[Field]bool{}
	for _, r := range rules {
		require.NotEmpty(t, r.Prompt)
		seen[r.Field] = true
	}
	require.Len(t, seen, 9)
}

func TestParseInput(t *testing.T) {
	v := Default()
	gens, _ := v.Rule(Generations)
	birth, _ := v.Rule(AdultBirthRate)

	_, msg := ParseInput(gens, "")
	require.Equal(t, "Please enter an integer", msg)
	_, msg = ParseInput(gens, "1.5")
	require.Equal(t, "Please enter a valid integer", msg)
	_, msg = ParseInput(gens, "3")
	require.Equal(t, "Must be equal to or greater than 5", msg)
	value, msg := ParseInput(gens, " 12 ")
	require.Empty(t, msg)
	require.Equal(t, 12.0, value)

	_, msg = ParseInput(birth, "")
	require.Equal(t, "Please enter a number", msg)
	_, msg = ParseInput(birth, "abc")
	require.Equal(t, "Please enter a valid number", msg)
	value, msg = ParseInput(birth, "1.26")
	require.Empty(t, msg)
	require.Equal(t, 1.26, value)
}

func TestOptions(t *testing.T) {
	v := Default()
	require.NoError(t, v.Options(validOptions()))

	opts := validOptions()
	opts.Generations = 30
	opts.SenileSurvivalRate = 1.5
	err := v.Options(opts)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalid))

	var invalid *InvalidError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, []FieldError{
		{Field: Generations, Message: "Must be equal to or less than 25"},
		{Field: SenileSurvivalRate, Message: "Must be 1 or less"},
	}, invalid.Fields)
}

func TestOptionsRejectsNonFiniteRates(t *testing.T) {
	v := Default()
	tests := []struct {
		name  string
		field Field
		value float64
	}{
		{"nan birth rate", AdultBirthRate, math.NaN()},
		{"infinite birth rate", AdultBirthRate, math.Inf(1)},
		{"negative infinite birth rate", AdultBirthRate, math.Inf(-1)},
		{"nan juvenile survival", JuvenileSurvivalRate, math.NaN()},
		{"infinite adult survival", AdultSurvivalRate, math.Inf(1)},
		{"negative infinite senile survival", SenileSurvivalRate, math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			SetField(&opts, tt.field, tt.value)
			err := v.Options(opts)
			require.True(t, errors.Is(err, ErrInvalid))

			var invalid *InvalidError
			require.ErrorAs(t, err, &invalid)
			require.Equal(t, []FieldError{{Field: tt.field, Message: "Must be a finite number"}}, invalid.Fields)
		})
	}
}

func TestRuleChecksRejectNonFinite(t *testing.T) {
	for _, check := range []func(float64) string{nonNegative, positive, unitInterval} {
		require.Equal(t, "Must be a finite number", check(math.NaN()))
		require.Equal(t, "Must be a finite number", check(math.Inf(1)))
		require.Equal(t, "Must be a finite number", check(math.Inf(-1)))
	}
}

func TestSetFieldRoundTrip(t *testing.T) {
	v := Default()
	src := validOptions()
	var dst model.Options
	for _, r := range v.Rules() {
		SetField(&dst, r.Field, FieldValue(src, r.Field))
	}
	require.Equal(t, src, dst)
	require.Equal(t, "1.5", FormatValue(src, AdultBirthRate, Number))
	require.Equal(t, "1000", FormatValue(src, DiseaseTrigger, Integer))
}
