// Package runstore provides persistent storage of vocabulary build runs in
// PostgreSQL, so operators can audit which artifact was produced from which
// configuration and input volume.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/feature-prep/vocab-builder/internal/vocab"
	"github.com/feature-prep/vocab-builder/pkg/logger"
	"github.com/feature-prep/vocab-builder/pkg/postgres"
)

// Store persists build-run summaries in PostgreSQL.
//
// It requires a `vocab_runs` table:
//
//	CREATE TABLE vocab_runs (
//	    id          BIGSERIAL PRIMARY KEY,
//	    output_path TEXT NOT NULL,
//	    stats       JSONB NOT NULL,
//	    finished_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// Run is one persisted build summary.
type Run struct {
	OutputPath string      `json:"output_path"`
	Stats      vocab.Stats `json:"stats"`
	FinishedAt time.Time   `json:"finished_at"`
}

// NewStore creates a run store backed by the given PostgreSQL client.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: logger.WithComponent("run-store"),
	}
}

// SaveRun persists the summary of a completed build.
func (s *Store) SaveRun(ctx context.Context, result *vocab.Result) error {
	stats, err := json.Marshal(result.Stats)
	if err != nil {
		return fmt.Errorf("marshaling run stats: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO vocab_runs (output_path, stats, finished_at) VALUES ($1, $2, $3)`,
		result.Path, stats, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving vocab run: %w", err)
	}
	s.logger.Info("run saved",
		"output_path", result.Path,
		"standard_arm", result.Stats.StandardArm,
		"coverage_arm", result.Stats.CoverageArm,
	)
	return nil
}

// LatestRun loads the most recent run summary. Returns nil, nil when no
// runs exist yet.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	var run Run
	var stats []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT output_path, stats, finished_at FROM vocab_runs ORDER BY finished_at DESC LIMIT 1`,
	).Scan(&run.OutputPath, &stats, &run.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest run: %w", err)
	}
	if err := json.Unmarshal(stats, &run.Stats); err != nil {
		return nil, fmt.Errorf("unmarshaling run stats: %w", err)
	}
	return &run, nil
}

// ListRuns returns the last N runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT output_path, stats, finished_at FROM vocab_runs ORDER BY finished_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var stats []byte
		if err := rows.Scan(&run.OutputPath, &stats, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		if err := json.Unmarshal(stats, &run.Stats); err != nil {
			s.logger.Warn("skipping corrupt run row", "error", err)
			continue
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
