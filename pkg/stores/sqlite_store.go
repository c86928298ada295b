// Package stores persists deploy-run history in a local SQLite database
// so past deployments can be audited with the history command.
package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/saleor/configurator-sub007/pkg/engine"
	"github.com/saleor/configurator-sub007/pkg/schema"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrRunNotFound is returned when no run exists for the requested ID.
var ErrRunNotFound = errors.New("deploy run not found")

// RunStore records deploy runs in SQLite. It implements
// engine.RunRecorder.
type RunStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and runs
// pending migrations.
func Open(ctx context.Context, path string) (*RunStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is required")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging history database: %w", err)
	}

	store := &RunStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// SaveRun records one deploy run and its per-stage outcomes.
func (s *RunStore) SaveRun(ctx context.Context, run engine.DeployRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO deploy_runs (id, dry_run, status, applied, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.DryRun, run.Status, run.Applied, run.Error, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting deploy run: %w", err)
	}

	for i, stage := range run.Stages {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO deploy_run_stages (run_id, position, name, section, succeeded, failed)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, stage.Name, string(stage.Section), stage.Succeeded, stage.Failed,
		)
		if err != nil {
			return fmt.Errorf("inserting stage outcome: %w", err)
		}
	}

	return tx.Commit()
}

// RunRecord is a persisted deploy run with its recorded timestamp.
type RunRecord struct {
	engine.DeployRun
	CreatedAt time.Time
}

// GetRun loads one run with its stage outcomes.
func (s *RunStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var rec RunRecord
	row := s.db.QueryRowContext(ctx, `
		SELECT id, dry_run, status, applied, error, created_at
		FROM deploy_runs WHERE id = ?`, id)
	if err := row.Scan(&rec.ID, &rec.DryRun, &rec.Status, &rec.Applied, &rec.Error, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("loading deploy run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, section, succeeded, failed
		FROM deploy_run_stages WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading stage outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stage engine.StageOutcome
		var section string
		if err := rows.Scan(&stage.Name, &section, &stage.Succeeded, &stage.Failed); err != nil {
			return nil, fmt.Errorf("scanning stage outcome: %w", err)
		}
		stage.Section = schema.Section(section)
		rec.Stages = append(rec.Stages, stage)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRuns returns the most recent runs, newest first, without their
// stage detail.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dry_run, status, applied, error, created_at
		FROM deploy_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing deploy runs: %w", err)
	}
	defer rows.Close()

	records := make([]RunRecord, 0, limit)
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.DryRun, &rec.Status, &rec.Applied, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning deploy run: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
