package storage

import (
	"database/sql"
	"fmt"
)

// StageStats summarizes executions of one stage across all runs
type StageStats struct {
	Name         string  `json:"name"`
	Executions   int     `json:"executions"`
	Succeeded    int     `json:"succeeded"`
	Failed       int     `json:"failed"`
	LastStatus   string  `json:"last_status"`
	LastDuration *string `json:"last_duration,omitempty"`
}

// GetStageStats returns per-stage counters, ordered by first appearance
func (s *Storage) GetStageStats() ([]StageStats, error) {
	query := `
		SELECT
			se.name,
			COUNT(*) AS executions,
			SUM(CASE WHEN se.status = 'success' THEN 1 ELSE 0 END) AS succeeded,
			SUM(CASE WHEN se.status = 'failed' THEN 1 ELSE 0 END) AS failed,
			(SELECT l.status FROM step_executions l WHERE l.name = se.name ORDER BY l.id DESC LIMIT 1),
			(SELECT l.duration FROM step_executions l WHERE l.name = se.name ORDER BY l.id DESC LIMIT 1)
		FROM step_executions se
		GROUP BY se.name
		ORDER BY MIN(se.id)
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage stats: %w", err)
	}
	defer rows.Close()

	stats := make([]StageStats, 0)
	for rows.Next() {
		var stat StageStats
		var duration sql.NullString

		err := rows.Scan(&stat.Name, &stat.Executions, &stat.Succeeded, &stat.Failed, &stat.LastStatus, &duration)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage stats: %w", err)
		}
		if duration.Valid {
			durationStr := duration.String
			stat.LastDuration = &durationStr
		}

		stats = append(stats, stat)
	}

	return stats, rows.Err()
}
