// Package store handles SQLite persistence of completed runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/greenfly/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Store wraps SQLite access for archived runs.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			starting_juveniles INTEGER NOT NULL,
			starting_adults INTEGER NOT NULL,
			starting_seniles INTEGER NOT NULL,
			generations INTEGER NOT NULL,
			juvenile_survival_rate REAL NOT NULL,
			adult_survival_rate REAL NOT NULL,
			senile_survival_rate REAL NOT NULL,
			adult_birth_rate REAL NOT NULL,
			disease_trigger INTEGER NOT NULL,
			generation_count INTEGER NOT NULL,
			peak_total INTEGER NOT NULL,
			disease_generations INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_generations (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			juveniles INTEGER NOT NULL,
			adults INTEGER NOT NULL,
			seniles INTEGER NOT NULL,
			disease_rate INTEGER NOT NULL,
			PRIMARY KEY (run_id, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun archives a completed run and its generations.
func (s *Store) InsertRun(ctx context.Context, opts model.Options, generations []model.Generation) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	peak, diseased := 0, 0
	for _, g := range generations {
		if g.Total() > peak {
			peak = g.Total()
		}
		if g.Diseased() {
			diseased++
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, starting_juveniles, starting_adults, starting_seniles, generations,
			juvenile_survival_rate, adult_survival_rate, senile_survival_rate, adult_birth_rate, disease_trigger,
			generation_count, peak_total, disease_generations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.now().UTC().Format(time.RFC3339Nano),
		opts.StartingJuveniles,
		opts.StartingAdults,
		opts.StartingSeniles,
		opts.Generations,
		opts.JuvenileSurvivalRate,
		opts.AdultSurvivalRate,
		opts.SenileSurvivalRate,
		opts.AdultBirthRate,
		opts.DiseaseTrigger,
		len(generations),
		peak,
		diseased,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(generations) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_generations (run_id, idx, juveniles, adults, seniles, disease_rate)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, g := range generations {
			if _, err := stmt.ExecContext(ctx, id, i, g.Juveniles, g.Adults, g.Seniles, g.DiseaseRate); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const runColumns = `id, created_at, starting_juveniles, starting_adults, starting_seniles, generations,
	juvenile_survival_rate, adult_survival_rate, senile_survival_rate, adult_birth_rate, disease_trigger,
	generation_count, peak_total, disease_generations`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (model.RunSummary, error) {
	var r model.RunSummary
	var createdAt string
	if err := row.Scan(
		&r.ID,
		&createdAt,
		&r.Options.StartingJuveniles,
		&r.Options.StartingAdults,
		&r.Options.StartingSeniles,
		&r.Options.Generations,
		&r.Options.JuvenileSurvivalRate,
		&r.Options.AdultSurvivalRate,
		&r.Options.SenileSurvivalRate,
		&r.Options.AdultBirthRate,
		&r.Options.DiseaseTrigger,
		&r.GenerationCount,
		&r.PeakTotal,
		&r.DiseaseGenerations,
	); err != nil {
		return model.RunSummary{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.RunSummary{}, err
	}
	r.CreatedAt = parsed
	return r, nil
}

// ListRuns returns archived runs, newest first. A limit of 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	query := fmt.Sprintf(`SELECT %s FROM runs ORDER BY created_at DESC, id DESC`, runColumns)
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns an archived run with its generations in order.
func (s *Store) GetRun(ctx context.Context, id int64) (model.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM runs WHERE id = ?`, runColumns), id)
	summary, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RunRecord{}, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return model.RunRecord{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT juveniles, adults, seniles, disease_rate
		 FROM run_generations
		 WHERE run_id = ?
		 ORDER BY idx ASC`, id)
	if err != nil {
		return model.RunRecord{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	record := model.RunRecord{RunSummary: summary}
	for rows.Next() {
		var j, a, sn, rate int
		if err := rows.Scan(&j, &a, &sn, &rate); err != nil {
			return model.RunRecord{}, err
		}
		record.Generations = append(record.Generations, model.NewGeneration(j, a, sn, rate))
	}
	if err := rows.Err(); err != nil {
		return model.RunRecord{}, err
	}
	return record, nil
}

// DeleteRun removes an archived run.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_generations WHERE run_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return tx.Commit()
}
