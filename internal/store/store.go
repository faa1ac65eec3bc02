// Package store persists batch runs and their ranked windows to
// Postgres, so a run's results can be queried after the process exits.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/clipforge/engine/internal/model"
)

// Store wraps a Postgres connection pool.
type Store struct {
	db *sql.DB
}

// New opens a connection pool to databaseURL and verifies connectivity.
func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one batch-coordinator invocation over a single source video.
type Run struct {
	ID         string
	SourcePath string
	Status     string
	CreatedAt  time.Time
	FinishedAt sql.NullTime
	Error      sql.NullString
}

// CreateRun inserts a new run row in "running" status.
func (s *Store) CreateRun(ctx context.Context, runID, sourcePath string) error {
	query := `
		INSERT INTO runs (id, source_path, status, created_at)
		VALUES ($1, $2, 'running', now())
	`
	_, err := s.db.ExecContext(ctx, query, runID, sourcePath)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	return nil
}

// FinishRun marks a run as completed or failed.
func (s *Store) FinishRun(ctx context.Context, runID string, runErr error) error {
	status := "completed"
	var errMsg sql.NullString
	if runErr != nil {
		status = "failed"
		errMsg = sql.NullString{String: runErr.Error(), Valid: true}
	}
	query := `UPDATE runs SET status = $1, error_message = $2, finished_at = now() WHERE id = $3`
	_, err := s.db.ExecContext(ctx, query, status, errMsg, runID)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	return nil
}

// GetRun fetches a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	query := `SELECT id, source_path, status, created_at, finished_at, error_message FROM runs WHERE id = $1`
	r := &Run{}
	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&r.ID, &r.SourcePath, &r.Status, &r.CreatedAt, &r.FinishedAt, &r.Error,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", runID, err)
	}
	return r, nil
}

// SaveRankedWindow persists one scored window for a run.
func (s *Store) SaveRankedWindow(ctx context.Context, runID string, rw model.RankedWindow) error {
	query := `
		INSERT INTO scored_windows (
			run_id, window_id, start_s, end_s, final_score,
			keyphrase_score, density_score, cogency_score,
			quote_bonus, scene_penalty, filler_penalty
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		runID, rw.Window.ID, rw.Window.Range.Start, rw.Window.Range.End, rw.Score.Final,
		rw.Score.KeyphraseScore, rw.Score.DensityScore, rw.Score.CogencyScore,
		rw.Score.QuoteBonus, rw.Score.ScenePenalty, rw.Score.FillerPenalty,
	)
	if err != nil {
		return fmt.Errorf("saving scored window %s: %w", rw.Window.ID, err)
	}
	return nil
}

// ScoredWindowRow is one persisted window score as read back from the database.
type ScoredWindowRow struct {
	WindowID   string
	StartS     float64
	EndS       float64
	FinalScore float64
}

// ListRankedWindows returns every scored window for a run, ordered by
// final score descending.
func (s *Store) ListRankedWindows(ctx context.Context, runID string) ([]ScoredWindowRow, error) {
	query := `
		SELECT window_id, start_s, end_s, final_score
		FROM scored_windows
		WHERE run_id = $1
		ORDER BY final_score DESC
	`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("listing scored windows for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []ScoredWindowRow
	for rows.Next() {
		var row ScoredWindowRow
		if err := rows.Scan(&row.WindowID, &row.StartS, &row.EndS, &row.FinalScore); err != nil {
			return nil, fmt.Errorf("scanning scored window row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
