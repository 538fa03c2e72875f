package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/greenfly/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "greenfly.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndGetRun(t *testing.T) {
	st := openTestStore(t)
	st.now = func() time.Time { return time.Unix(100, 0) }
	ctx := context.Background()

	opts := model.Options{
		StartingJuveniles:    10,
		StartingAdults:       10,
		StartingSeniles:      10,
		Generations:          2,
		JuvenileSurvivalRate: 1,
		AdultSurvivalRate:    1,
		AdultBirthRate:       2,
		DiseaseTrigger:       35,
	}
	generations := []model.Generation{
		model.NewGeneration(10, 10, 10, 0),
		model.NewGeneration(20, 10, 10, 0),
		model.NewGeneration(20, 14, 10, 30),
	}
	id, err := st.InsertRun(ctx, opts, generations)
	require.NoError(t, err)

	record, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	require.Equal(t, opts, record.Options)
	require.Equal(t, generations, record.Generations)
	require.Equal(t, 44, record.PeakTotal)
	require.Equal(t, 1, record.DiseaseGenerations)
	require.Equal(t, 3, record.GenerationCount)
	require.True(t, record.CreatedAt.Equal(time.Unix(100, 0)), "created_at: %v", record.CreatedAt)
}

func TestInsertRunKeepsSaturatedCounts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	generations := []model.Generation{
		model.NewGeneration(10, 10, 10, 0),
		model.NewGeneration(math.MaxInt, math.MaxInt, math.MaxInt, 25),
	}
	id, err := st.InsertRun(ctx, model.Options{Generations: 1, DiseaseTrigger: 1}, generations)
	require.NoError(t, err)

	record, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	require.Equal(t, math.MaxInt, record.PeakTotal)
	require.Equal(t, math.MaxInt, record.Generations[1].Seniles)
}

func TestListRunsNewestFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		at := time.Unix(int64(i*60), 0)
		st.now = func() time.Time { return at }
		id, err := st.InsertRun(ctx, model.Options{Generations: 5, DiseaseTrigger: 1}, []model.Generation{model.NewGeneration(i, 0, 0, 0)})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, ids[2], runs[0].ID)
	require.Equal(t, ids[1], runs[1].ID)

	all, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestDeleteRun(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id, err := st.InsertRun(ctx, model.Options{Generations: 5, DiseaseTrigger: 1}, []model.Generation{model.NewGeneration(1, 1, 1, 0)})
	require.NoError(t, err)
	require.NoError(t, st.DeleteRun(ctx, id))

	_, err = st.GetRun(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, st.DeleteRun(ctx, id), ErrNotFound)
}
