package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/greenfly/internal/model"
	"github.com/verte-zerg/greenfly/internal/sim"
	"github.com/verte-zerg/greenfly/internal/validate"
)

type fakeArchive struct {
	calls       int
	generations int
	err         error
}

func (f *fakeArchive) InsertRun(_ context.Context, _ model.Options, generations []model.Generation) (int64, error) {
	f.calls++
	f.generations = len(generations)
	if f.err != nil {
		return 0, f.err
	}
	return int64(f.calls), nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func send(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func noDiseaseOptions() model.Options {
	return model.Options{
		StartingJuveniles:    10,
		StartingAdults:       10,
		StartingSeniles:      10,
		Generations:          5,
		JuvenileSurvivalRate: 1,
		AdultSurvivalRate:    1,
		SenileSurvivalRate:   0,
		AdultBirthRate:       2,
		DiseaseTrigger:       1000000,
	}
}

func newTestModel(defaults *model.Options, archive Archiver) *Model {
	cfg := Config{
		Validation: validate.Default(),
		Defaults:   defaults,
		NewSource:  func() sim.Source { return sim.NewSeededSource(1) },
	}
	if archive != nil {
		cfg.Archive = archive
	}
	return NewModel(cfg)
}

func TestMenuRequiresOptions(t *testing.T) {
	m := newTestModel(nil, nil)

	send(m, keyRunes("2"))
	require.Equal(t, screenMenu, m.screen)
	require.True(t, m.status.isErr)
	require.Equal(t, "No options have been configured", m.status.text)

	send(m, keyRunes("3"))
	require.Equal(t, "No options have been configured", m.status.text)

	send(m, keyRunes("4"))
	require.Equal(t, "No model has been created", m.status.text)
	require.Contains(t, m.renderFooter(), "ERROR: No model has been created")
}

func TestMenuNavigation(t *testing.T) {
	m := newTestModel(nil, nil)
	send(m, key(tea.KeyUp))
	require.Equal(t, len(menuItems)-1, m.menuIndex, "wraps to the last item")
	send(m, key(tea.KeyDown))
	require.Equal(t, 0, m.menuIndex)
	_, cmd := m.Update(keyRunes("0"))
	require.NotNil(t, cmd, "quit command")
}

func TestOptionsFormCollectsEveryField(t *testing.T) {
	m := newTestModel(nil, nil)
	send(m, keyRunes("1"))
	require.Equal(t, screenOptionsForm, m.screen)

	send(m, key(tea.KeyEnter))
	require.Equal(t, "Please enter an integer", m.formError)
	require.Equal(t, 0, m.formIndex)

	inputs := []string{"10", "10", "10", "5", "1000000", "2", "1", "1", "0"}
	for i, value := range inputs {
		if i == 3 {
			send(m, keyRunes("3"), key(tea.KeyEnter))
			require.Equal(t, "Must be equal to or greater than 5", m.formError)
			send(m, key(tea.KeyBackspace))
		}
		send(m, keyRunes(value), key(tea.KeyEnter))
	}

	require.Equal(t, screenMenu, m.screen)
	require.True(t, m.hasOptions)
	require.Equal(t, noDiseaseOptions(), m.options)

	send(m, keyRunes("1"))
	require.Equal(t, "5", m.formInputs[3].Value(), "prefilled generations")
	send(m, key(tea.KeyEsc))
	require.Equal(t, screenMenu, m.screen)
}

func TestOptionsFormRejectsNonFiniteRate(t *testing.T) {
	m := newTestModel(nil, nil)
	send(m, keyRunes("1"))
	for _, value := range []string{"10", "10", "10", "5", "1000000"} {
		send(m, keyRunes(value), key(tea.KeyEnter))
	}
	send(m, keyRunes("Inf"), key(tea.KeyEnter))
	require.Equal(t, "Please enter a valid number", m.formError)
	require.Equal(t, 5, m.formIndex)
}

func TestDisplayOptions(t *testing.T) {
	opts := noDiseaseOptions()
	m := newTestModel(&opts, nil)
	send(m, keyRunes("2"))
	require.Equal(t, screenOptionsView, m.screen)
	view := m.renderOptionsView()
	for _, want := range []string{"Starting juvenile population", "No. of generations", "1000000"} {
		require.Contains(t, view, want)
	}
	send(m, keyRunes("x"))
	require.Equal(t, screenMenu, m.screen, "any key returns to the menu")
}

func TestRunModelArchivesAndShowsResults(t *testing.T) {
	opts := noDiseaseOptions()
	archive := &fakeArchive{}
	m := newTestModel(&opts, archive)
	send(m, tea.WindowSizeMsg{Width: 100, Height: 40}, keyRunes("3"))

	require.Equal(t, screenResults, m.screen)
	require.NotNil(t, m.engine)
	require.Equal(t, 6, m.engine.GenerationCount())
	require.Equal(t, 1, archive.calls)
	require.Equal(t, 6, archive.generations)
	rows := m.resultsTable.Rows()
	require.Len(t, rows, 6)
	require.Equal(t, "20", rows[1][1])
	require.Contains(t, m.View(), "Generations")

	send(m, key(tea.KeyRight))
	require.Equal(t, tabThousands, m.activeTab)
	require.Contains(t, m.View(), "Juveniles (k)")
	send(m, key(tea.KeyRight))
	require.Equal(t, tabOverview, m.activeTab)
	require.Contains(t, m.View(), "Peak total")
	send(m, key(tea.KeyEsc))
	require.Equal(t, screenMenu, m.screen)
}

func TestRunModelArchiveFailureIsReported(t *testing.T) {
	opts := noDiseaseOptions()
	m := newTestModel(&opts, &fakeArchive{err: errors.New("disk full")})
	send(m, keyRunes("3"))
	require.True(t, m.status.isErr)
	require.Contains(t, m.status.text, "disk full")
	require.Equal(t, screenResults, m.screen, "results are still shown")
}

func TestExportFlow(t *testing.T) {
	opts := noDiseaseOptions()
	m := newTestModel(&opts, nil)
	send(m, keyRunes("3"), key(tea.KeyEsc), keyRunes("4"))
	require.Equal(t, screenExportPath, m.screen)

	send(m, key(tea.KeyEnter))
	require.Equal(t, "Please enter a path", m.exportError)

	path := filepath.Join(t.TempDir(), "out.csv")
	send(m, keyRunes(path), key(tea.KeyEnter))
	require.Equal(t, screenMenu, m.screen)
	require.Equal(t, "Generations data written to "+path, m.status.text)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "Generation,Juveniles,Adults,Seniles\n0,0.01,0.01,0.01\n"), "csv: %q", data)

	send(m, keyRunes("4"), keyRunes(path), key(tea.KeyEnter))
	require.Equal(t, screenExportConfirm, m.screen)
	require.Contains(t, m.renderExportConfirm(), "overwrite (Y/N)")

	send(m, keyRunes("x"))
	require.Equal(t, "Please enter a Y or N", m.exportError)
	send(m, keyRunes("n"))
	require.Equal(t, screenExportPath, m.screen)
	send(m, key(tea.KeyEnter), keyRunes("Y"))
	require.Equal(t, screenMenu, m.screen)
	require.False(t, m.status.isErr)
}
