package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGenerationDerivedFields(t *testing.T) {
	g := NewGeneration(1, 2, 3, 4)
	require.Equal(t, Generation{
		Juveniles:            1,
		Adults:               2,
		Seniles:              3,
		DiseaseRate:          4,
		JuvenilesInThousands: 0.001,
		AdultsInThousands:    0.002,
		SenilesInThousands:   0.003,
		TotalInThousands:     0.006,
	}, g)
	require.Equal(t, 6, g.Total())
}

func TestSumCountsSaturates(t *testing.T) {
	tests := []struct {
		name     string
		counts   []int
		expected int
	}{
		{"empty", nil, 0},
		{"small", []int{1, 2, 3}, 6},
		{"exact max", []int{math.MaxInt - 1, 1}, math.MaxInt},
		{"overflow", []int{math.MaxInt, 1}, math.MaxInt},
		{"three large", []int{math.MaxInt / 2, math.MaxInt / 2, math.MaxInt / 2}, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, SumCounts(tt.counts...))
		})
	}
}

func TestGenerationTotalSaturates(t *testing.T) {
	g := NewGeneration(math.MaxInt, math.MaxInt, 1, 0)
	require.Equal(t, math.MaxInt, g.Total())
	require.Equal(t, InThousands(math.MaxInt), g.TotalInThousands)
}

func TestParseStage(t *testing.T) {
	for _, stage := range Stages {
		parsed, err := ParseStage(stage.String())
		require.NoError(t, err, "parse %s", stage)
		require.Equal(t, stage, parsed)
	}
	_, err := ParseStage("larva")
	require.Error(t, err)
}
