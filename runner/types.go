package runner

import (
	"context"
	"time"

	"blogcast/events"
	"blogcast/runner/storage"
)

// Run and stage statuses
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// StageKind selects which collaborator a stage talks to
type StageKind string

const (
	KindExtract  StageKind = "extract"
	KindGenerate StageKind = "generate"
)

// PipelineRequest is the validated input of a single run
type PipelineRequest struct {
	URL string `json:"url"`
}

// Stage is one static step of the pipeline
type Stage struct {
	Name           string    `yaml:"name" json:"name"`
	Kind           StageKind `yaml:"kind" json:"kind"`
	Role           string    `yaml:"role" json:"role"`
	Goal           string    `yaml:"goal" json:"goal"`
	Backstory      string    `yaml:"backstory" json:"backstory,omitempty"`
	Instructions   string    `yaml:"instructions" json:"instructions"`
	ExpectedOutput string    `yaml:"expected_output" json:"expected_output"`
	Upstream       string    `yaml:"upstream,omitempty" json:"upstream,omitempty"`
	Refine         bool      `yaml:"refine,omitempty" json:"refine,omitempty"` // extract only: clean the scraped text with the generator
	MinLength      int       `yaml:"min_length,omitempty" json:"min_length,omitempty"`
}

// StageResult is the output of one executed stage
type StageResult struct {
	StageName string        `json:"stage_name"`
	Text      string        `json:"text"`
	Status    string        `json:"status"` // "success" or "failed"
	Duration  time.Duration `json:"duration"`
}

// PipelineResult represents the result of running the pipeline
type PipelineResult struct {
	RunID     int           `json:"run_id"`
	Status    string        `json:"status"`
	FinalText string        `json:"final_text"`
	Stages    []StageResult `json:"stages"`
	Duration  time.Duration `json:"duration"`
}

// GenerateRequest is a single prompt sent to the text-generation collaborator
type GenerateRequest struct {
	System       string
	Instructions string
	Context      string
}

// Extractor turns a URL into clean article text
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Generator answers a prompt with text
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// StyleChecker inspects the final stage output. A non-nil error fails the run.
type StyleChecker func(stage Stage, text string) error

// Options configures how the pipeline should be executed
type Options struct {
	Storage          *storage.Storage    // Optional storage for run history
	Events           *events.EventBroker // Optional broker for progress events
	StreamToTerminal bool                // If true, print stage progress to stdout
	StyleChecker     StyleChecker        // Optional check on the last stage output
	HoldRun          bool                // Leave the stored run open for a caller that appends steps
}
