package storage

import "time"

// Run represents one pipeline execution for a URL
type Run struct {
	ID         int        `json:"id"`
	RunKey     string     `json:"run_key"`
	URL        string     `json:"url"`
	Status     string     `json:"status"` // "pending", "running", "success", "failed"
	FinalText  string     `json:"final_text,omitempty"`
	AudioPath  string     `json:"audio_path,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Duration   *string    `json:"duration,omitempty"`
}

// StepExecution represents execution of a single stage
type StepExecution struct {
	ID         int        `json:"id"`
	RunID      int        `json:"run_id"`
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"` // "running", "success", "failed"
	Input      string     `json:"input"`
	Output     string     `json:"output"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Duration   *string    `json:"duration,omitempty"`
}

// RunUpdate holds the terminal fields of a run
type RunUpdate struct {
	Status    string
	FinalText string
	AudioPath string
	Error     string
	Duration  time.Duration
}
