package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/greenfly/internal/model"
)

func sampleGenerations() []model.Generation {
	return []model.Generation{
		model.NewGeneration(1, 2, 3, 4),
		model.NewGeneration(2, 3, 4, 5),
		model.NewGeneration(3, 4, 5, 6),
	}
}

func TestCSVLines(t *testing.T) {
	lines := CSVLines(sampleGenerations())
	require.Equal(t, []string{
		"Generation,Juveniles,Adults,Seniles",
		"0,0.001,0.002,0.003",
		"1,0.002,0.003,0.004",
		"2,0.003,0.004,0.005",
	}, lines)
}

func TestWriteCSVMatchesLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleGenerations()))
	want := strings.Join(CSVLines(sampleGenerations()), "\n") + "\n"
	require.Equal(t, want, buf.String())
}

func TestFormatThousands(t *testing.T) {
	tests := map[float64]string{
		0:      "0.0",
		0.012:  "0.012",
		1:      "1.0",
		12.345: "12.345",
		80:     "80.0",
	}
	for in, want := range tests {
		require.Equal(t, want, FormatThousands(in), "FormatThousands(%v)", in)
	}
}

func TestWriteCSVFileOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "generations.csv")
	require.NoError(t, WriteCSVFile(path, sampleGenerations(), false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "Generation,Juveniles,Adults,Seniles\n"))

	err = WriteCSVFile(path, sampleGenerations()[:1], false)
	require.True(t, errors.Is(err, ErrFileExists))

	require.NoError(t, WriteCSVFile(path, sampleGenerations()[:1], true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Generation,Juveniles,Adults,Seniles\n0,0.001,0.002,0.003\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files are cleaned up")
}

func TestWriteChartPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChartPNG(&buf, sampleGenerations()))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	buf.Reset()
	require.NoError(t, WriteChartPNG(&buf, []model.Generation{model.NewGeneration(0, 0, 0, 0)}))

	require.Error(t, WriteChartPNG(&buf, nil))
}

func TestWriteYAML(t *testing.T) {
	opts := model.Options{StartingJuveniles: 1, Generations: 5, AdultBirthRate: 1.5, DiseaseTrigger: 10}
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, opts, sampleGenerations()))

	var doc runDocument
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, opts, doc.Options)
	require.Equal(t, sampleGenerations(), doc.Generations)
	require.Contains(t, buf.String(), "disease_trigger: 10")
}
