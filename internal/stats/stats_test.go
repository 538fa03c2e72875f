package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/greenfly/internal/model"
)

func sampleRun() []model.Generation {
	return []model.Generation{
		model.NewGeneration(10, 10, 10, 0),
		model.NewGeneration(20, 10, 10, 0),
		model.NewGeneration(20, 20, 10, 30),
		model.NewGeneration(15, 14, 12, 40),
	}
}

func TestRenderGenerations(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderGenerations(&buf, sampleRun()))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2+4)
	require.True(t, strings.HasPrefix(lines[0], "Generation | Juveniles"), "header: %q", lines[0])
	require.True(t, strings.HasSuffix(lines[4], "30%"), "disease rate on row 2: %q", lines[4])
	require.True(t, strings.HasSuffix(lines[2], "-"), "no disease on seed row: %q", lines[2])
}

func TestRenderGenerationsInThousands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderGenerationsInThousands(&buf, sampleRun()[:1]))
	require.Contains(t, buf.String(), "0.010 |      0.010")
	require.Contains(t, buf.String(), "0.030")
}

func TestRenderOptions(t *testing.T) {
	var buf bytes.Buffer
	opts := model.Options{StartingJuveniles: 5, Generations: 10, AdultBirthRate: 1.26, DiseaseTrigger: 500}
	require.NoError(t, RenderOptions(&buf, opts))
	out := buf.String()
	for _, want := range []string{"Starting juvenile population | 5", "Adult birth rate", "1.26", "Disease population trigger   | 500"} {
		require.Contains(t, out, want)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRun())
	require.Equal(t, 3, s.Generations)
	require.Equal(t, 50, s.PeakTotal)
	require.Equal(t, 2, s.PeakGeneration)
	require.Equal(t, 2, s.DiseaseGenerations)
	require.Equal(t, 35.0, s.MeanDiseaseRate)
	require.Equal(t, 30, s.InitialTotal)
	require.Equal(t, 41, s.FinalTotal)

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, s))
	require.Contains(t, buf.String(), "Mean disease rate: 35.0%")
	require.Equal(t, Summary{}, Summarize(nil))
}

func TestRenderCurves(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCurvesWithSize(&buf, sampleRun(), 60, 6, false))
	out := buf.String()
	require.Contains(t, out, "Population by generation")
	require.Contains(t, out, "Seniles")
}
