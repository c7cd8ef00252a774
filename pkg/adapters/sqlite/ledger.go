// Package sqlite records solver attempts in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/fieldsweep/internal/logging"
	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Ledger implements ports.Ledger on SQLite.
type Ledger struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures the Ledger.
type Option func(*Ledger)

// WithLogger configures a logger for the Ledger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// Open opens the database at path and migrates it to the latest schema.
func Open(path string, opts ...Option) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.migrateUp(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) migrateUp() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(l.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	// Not closed: that would close the shared *sql.DB.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, _, err := m.Version()
	if err == nil {
		l.logger.Debug("ledger schema ready", "version", version)
	}
	return nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores one attempt. An empty ID is filled with a fresh UUID.
func (l *Ledger) Record(ctx context.Context, a domain.Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO attempts (
			attempt_id, sweep_id, point_index, field_x, field_y, field_z, dir,
			outcome, exit_code, duration_ns, verdict, started_at, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SweepID, a.Index, a.Field[0], a.Field[1], a.Field[2], a.Dir,
		string(a.Outcome), a.ExitCode, int64(a.Duration), string(a.Verdict), a.StartedAt.UnixNano(), a.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Attempts returns the attempts of a sweep, oldest first.
// A positive limit keeps only the most recent ones.
func (l *Ledger) Attempts(ctx context.Context, sweepID string, limit int) ([]domain.Attempt, error) {
	query := `
		SELECT attempt_id, sweep_id, point_index, field_x, field_y, field_z, dir,
			outcome, exit_code, duration_ns, verdict, started_at, error
		FROM attempts WHERE sweep_id = ?
		ORDER BY started_at DESC, rowid DESC`
	args := []any{sweepID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.Attempt
	for rows.Next() {
		var (
			a        domain.Attempt
			outcome  string
			verdict  string
			duration int64
			started  int64
		)
		if err := rows.Scan(&a.ID, &a.SweepID, &a.Index, &a.Field[0], &a.Field[1], &a.Field[2], &a.Dir,
			&outcome, &a.ExitCode, &duration, &verdict, &started, &a.Error); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.Outcome = domain.Outcome(outcome)
		a.Verdict = domain.Verdict(verdict)
		a.Duration = time.Duration(duration)
		a.StartedAt = time.Unix(0, started).UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}
