package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateStepExecution creates a new step execution record
func (s *Storage) CreateStepExecution(runID int, name, kind, input string) (*StepExecution, error) {
	now := time.Now()
	result, err := s.db.Exec(
		`INSERT INTO step_executions (run_id, name, kind, status, input, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, name, kind, "running", input, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create step execution: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get step execution ID: %w", err)
	}

	return &StepExecution{
		ID:        int(id),
		RunID:     runID,
		Name:      name,
		Kind:      kind,
		Status:    "running",
		Input:     input,
		StartedAt: now,
	}, nil
}

// UpdateStepExecution updates step execution with output, status, and finish time
func (s *Storage) UpdateStepExecution(stepID int, status, output, stepErr string, duration time.Duration) error {
	now := time.Now()
	_, err := s.db.Exec(
		"UPDATE step_executions SET status = ?, output = ?, error = NULLIF(?, ''), finished_at = ?, duration = ? WHERE id = ?",
		status, output, stepErr, now, duration.String(), stepID,
	)
	if err != nil {
		return fmt.Errorf("failed to update step execution: %w", err)
	}
	return nil
}

// GetStepExecutions retrieves all step executions for a run
func (s *Storage) GetStepExecutions(runID int) ([]*StepExecution, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, name, kind, status, input, output, error, started_at, finished_at, duration FROM step_executions WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query step executions: %w", err)
	}
	defer rows.Close()

	steps := make([]*StepExecution, 0)
	for rows.Next() {
		var step StepExecution
		var input, output, stepErr sql.NullString
		var finishedAt sql.NullTime
		var duration sql.NullString

		err := rows.Scan(&step.ID, &step.RunID, &step.Name, &step.Kind, &step.Status, &input, &output, &stepErr, &step.StartedAt, &finishedAt, &duration)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step execution: %w", err)
		}

		step.Input = input.String
		step.Output = output.String
		step.Error = stepErr.String
		if finishedAt.Valid {
			step.FinishedAt = &finishedAt.Time
		}
		if duration.Valid {
			durationStr := duration.String
			step.Duration = &durationStr
		}

		steps = append(steps, &step)
	}

	return steps, rows.Err()
}
