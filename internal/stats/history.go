package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/greenfly/internal/model"
)

var runHeaders = []string{"ID", "Created", "Generations", "Trigger", "Peak total", "Disease gens"}

// RenderRuns prints archived run summaries, one row per run.
func RenderRuns(w io.Writer, runs []model.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs archived.")
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.Options.Generations),
			strconv.Itoa(r.Options.DiseaseTrigger),
			strconv.Itoa(r.PeakTotal),
			strconv.Itoa(r.DiseaseGenerations),
		})
	}
	right := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(runHeaders, rows, right) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
