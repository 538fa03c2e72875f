// Package export writes model results to files.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/greenfly/internal/model"
)

// ErrFileExists is returned when the target exists and overwrite is not allowed.
var ErrFileExists = errors.New("file already exists")

var csvHeader = []string{"Generation", "Juveniles", "Adults", "Seniles"}

// CSVRecords returns the header and one record per generation, values in thousands.
func CSVRecords(generations []model.Generation) [][]string {
	records := make([][]string, 0, len(generations)+1)
	records = append(records, append([]string(nil), csvHeader...))
	for i, g := range generations {
		records = append(records, []string{
			strconv.Itoa(i),
			FormatThousands(g.JuvenilesInThousands),
			FormatThousands(g.AdultsInThousands),
			FormatThousands(g.SenilesInThousands),
		})
	}
	return records
}

// CSVLines returns the CSV output as lines without terminators.
func CSVLines(generations []model.Generation) []string {
	records := CSVRecords(generations)
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, strings.Join(r, ","))
	}
	return lines
}

// WriteCSV writes the generations as CSV.
func WriteCSV(w io.Writer, generations []model.Generation) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(CSVRecords(generations)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the generations to path. An existing file is only
// replaced when overwrite is set.
func WriteCSVFile(path string, generations []model.Generation, overwrite bool) error {
	return writeFile(path, overwrite, func(w io.Writer) error {
		return WriteCSV(w, generations)
	})
}

// FormatThousands prints a thousands-scaled value in shortest form, always
// keeping a decimal point (1 -> "1.0").
func FormatThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Exists reports whether path exists.
func Exists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return true, nil
}

func writeFile(path string, overwrite bool, write func(io.Writer) error) error {
	if path == "" {
		return fmt.Errorf("export path is empty")
	}
	if !overwrite {
		exists, err := Exists(path)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrFileExists, path)
		}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "greenfly-export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := write(writer); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
