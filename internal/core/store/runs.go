package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ccdaniele/name-finder/internal/core"
)

// RunSummary is the listing view of a saved run.
type RunSummary struct {
	ID          string
	Industry    string
	Requested   int
	PassedCount int
	FailedCount int
	Rounds      int
	Cancelled   bool
	CreatedAt   time.Time
}

// SaveRun persists a run snapshot, replacing any earlier snapshot with the same id.
func (s *Store) SaveRun(ctx context.Context, industry string, run core.RunResult) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(run.RunID) == "" {
		return errors.New("run id is required")
	}

	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO runs (id, industry, requested, passed_count, failed_count, rounds, cancelled, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			industry = excluded.industry,
			requested = excluded.requested,
			passed_count = excluded.passed_count,
			failed_count = excluded.failed_count,
			rounds = excluded.rounds,
			cancelled = excluded.cancelled,
			result_json = excluded.result_json
	`, run.RunID, industry, run.Requested, len(run.Passed), len(run.Failed), run.Rounds, boolToInt(run.Cancelled), string(payload), s.now().Unix())
	if err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	return nil
}

// GetRun loads a saved run. It returns nil when the id is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*core.RunResult, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	var payload string
	row := s.DB.QueryRowContext(ctx, `SELECT result_json FROM runs WHERE id = ?`, strings.TrimSpace(id))
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch run: %w", err)
	}

	var run core.RunResult
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, industry, requested, passed_count, failed_count, rounds, cancelled, created_at
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	out := []RunSummary{}
	for rows.Next() {
		var (
			summary   RunSummary
			industry  sql.NullString
			cancelled int
			createdAt int64
		)
		if err := rows.Scan(&summary.ID, &industry, &summary.Requested, &summary.PassedCount, &summary.FailedCount, &summary.Rounds, &cancelled, &createdAt); err != nil {
			return nil, fmt.Errorf("scan runs: %w", err)
		}
		summary.Industry = industry.String
		summary.Cancelled = cancelled != 0
		summary.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}
