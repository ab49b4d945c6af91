package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

const runColumns = "id, run_key, url, status, final_text, audio_path, error, started_at, finished_at, duration"

// CreateRun creates a new run record in the pending state
func (s *Storage) CreateRun(url string) (*Run, error) {
	now := time.Now()
	key := uuid.NewString()
	result, err := s.db.Exec(
		"INSERT INTO runs (run_key, url, status, started_at) VALUES (?, ?, ?, ?)",
		key, url, "pending", now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get run ID: %w", err)
	}

	return &Run{
		ID:        int(id),
		RunKey:    key,
		URL:       url,
		Status:    "pending",
		StartedAt: now,
	}, nil
}

// UpdateRunStatus moves an unfinished run to a new status
func (s *Storage) UpdateRunStatus(runID int, status string) error {
	_, err := s.db.Exec("UPDATE runs SET status = ? WHERE id = ?", status, runID)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	return nil
}

// FinishRun stores the terminal state of a run. Empty text fields keep their stored value.
func (s *Storage) FinishRun(runID int, u RunUpdate) error {
	now := time.Now()
	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ?, duration = ?,
			final_text = COALESCE(NULLIF(?, ''), final_text),
			audio_path = COALESCE(NULLIF(?, ''), audio_path),
			error = COALESCE(NULLIF(?, ''), error)
		WHERE id = ?`,
		u.Status, now, u.Duration.String(), u.FinalText, u.AudioPath, u.Error, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	return nil
}

// GetRuns retrieves runs, ordered by most recent first
func (s *Storage) GetRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query("SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRun retrieves a single run by ID
func (s *Storage) GetRun(runID int) (*Run, error) {
	row := s.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var finalText, audioPath, runErr, duration sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(&r.ID, &r.RunKey, &r.URL, &r.Status, &finalText, &audioPath, &runErr, &r.StartedAt, &finishedAt, &duration)
	if err != nil {
		return nil, err
	}

	r.FinalText = finalText.String
	r.AudioPath = audioPath.String
	r.Error = runErr.String
	if finishedAt.Valid {
		r.FinishedAt = &finishedAt.Time
	}
	if duration.Valid {
		durationStr := duration.String
		r.Duration = &durationStr
	}
	return &r, nil
}
