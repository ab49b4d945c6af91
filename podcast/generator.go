// Package podcast turns a blog URL into a spoken episode: the text pipeline
// produces the script, the synthesizer voices it and the audio replaces the
// episode file.
package podcast

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"blogcast/events"
	"blogcast/runner"
	"blogcast/runner/storage"
	"blogcast/script"
	"blogcast/tts"
)

// SynthesisStage names the speech step in run history and errors
const SynthesisStage = "synthesis"

// Episode is the outcome of a successful generation
type Episode struct {
	RunID      int           `json:"run_id"`
	Script     string        `json:"script"`
	AudioPath  string        `json:"audio_path"`
	AudioBytes int64         `json:"audio_bytes"`
	Style      script.Report `json:"style"`
	Duration   time.Duration `json:"duration"`
}

// Options configures a Generator
type Options struct {
	AudioPath        string
	MaxChars         int
	EnforceStyle     bool
	Rules            *script.Rules
	Storage          *storage.Storage
	Events           *events.EventBroker
	StreamToTerminal bool
}

// Generator runs the text pipeline and the speech synthesis for one URL at a time
type Generator struct {
	runner *runner.Runner
	synth  tts.Synthesizer
	rules  script.Rules
	opts   Options
}

// New wires the pipeline stages to their collaborators
func New(def *runner.Definition, extractor runner.Extractor, generator runner.Generator, synth tts.Synthesizer, opts Options) (*Generator, error) {
	if synth == nil {
		return nil, errors.New("synthesizer is required")
	}
	if opts.AudioPath == "" {
		return nil, errors.New("audio path is required")
	}
	if opts.MaxChars == 0 {
		opts.MaxChars = tts.DefaultMaxChars
	}

	rules := script.DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}

	runOpts := runner.Options{
		Storage:          opts.Storage,
		Events:           opts.Events,
		StreamToTerminal: opts.StreamToTerminal,
		HoldRun:          true,
	}
	if opts.EnforceStyle {
		runOpts.StyleChecker = func(_ runner.Stage, text string) error {
			return script.Check(text, rules).Err()
		}
	}

	r, err := runner.NewRunner(def, extractor, generator, runOpts)
	if err != nil {
		return nil, err
	}

	return &Generator{runner: r, synth: synth, rules: rules, opts: opts}, nil
}

// Stages returns the text pipeline stages in execution order
func (g *Generator) Stages() []runner.Stage {
	return g.runner.Stages()
}

// AudioPath is the fixed episode file
func (g *Generator) AudioPath() string {
	return g.opts.AudioPath
}

// Generate validates the URL, runs every stage, synthesizes the script and replaces the audio file.
// The file is only touched after all stages and the synthesis call succeed.
func (g *Generator) Generate(ctx context.Context, rawURL string) (*Episode, error) {
	start := time.Now()

	req, err := runner.ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	log.Printf("🎯 Starting podcast generation for: %s", req.URL)

	result, err := g.runner.Run(ctx, req)
	if err != nil {
		log.Printf("❌ Pipeline failed for %s: %v", req.URL, err)
		return nil, err
	}

	report := script.Check(result.FinalText, g.rules)
	if !report.OK() {
		log.Printf("⚠️  Script for %s breaks style rules: %v", req.URL, report.Violations)
	}

	text := tts.Truncate(result.FinalText, g.opts.MaxChars)
	written, err := g.synthesize(ctx, result.RunID, text)
	if err != nil {
		stageErr := &runner.StageError{Stage: SynthesisStage, Kind: runner.KindCollaborator, Err: err}
		g.finish(result.RunID, storage.RunUpdate{
			Status:   runner.StatusFailed,
			Error:    stageErr.Error(),
			Duration: time.Since(start),
		})
		log.Printf("❌ Synthesis failed for %s: %v", req.URL, err)
		return nil, stageErr
	}

	episode := &Episode{
		RunID:      result.RunID,
		Script:     result.FinalText,
		AudioPath:  g.opts.AudioPath,
		AudioBytes: written,
		Style:      report,
		Duration:   time.Since(start),
	}

	g.finish(result.RunID, storage.RunUpdate{
		Status:    runner.StatusSuccess,
		AudioPath: episode.AudioPath,
		Duration:  episode.Duration,
	})
	log.Printf("✅ Podcast generated for %s (%d characters, %d audio bytes)", req.URL, len(episode.Script), written)

	return episode, nil
}

// synthesize streams speech for text into the episode file and records the step
func (g *Generator) synthesize(ctx context.Context, runID int, text string) (int64, error) {
	stepStart := time.Now()
	g.broadcast(events.StageStarted, map[string]interface{}{"run_id": runID, "stage": SynthesisStage})

	var stepID int
	if g.opts.Storage != nil {
		step, err := g.opts.Storage.CreateStepExecution(runID, SynthesisStage, "synthesize", text)
		if err != nil {
			return 0, fmt.Errorf("failed to create step execution: %w", err)
		}
		stepID = step.ID
	}

	written, err := g.writeAudio(ctx, text)
	duration := time.Since(stepStart)

	status, output, errText := runner.StatusSuccess, fmt.Sprintf("%d bytes written to %s", written, g.opts.AudioPath), ""
	if err != nil {
		status, output, errText = runner.StatusFailed, "", err.Error()
	}
	if g.opts.Storage != nil {
		_ = g.opts.Storage.UpdateStepExecution(stepID, status, output, errText, duration)
	}
	g.broadcast(events.StageFinished, map[string]interface{}{
		"run_id": runID,
		"stage":  SynthesisStage,
		"status": status,
		"error":  errText,
	})

	return written, err
}

func (g *Generator) writeAudio(ctx context.Context, text string) (int64, error) {
	stream, err := g.synth.SynthesizeStream(ctx, text)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	return tts.WriteAtomic(g.opts.AudioPath, stream)
}

func (g *Generator) finish(runID int, u storage.RunUpdate) {
	if g.opts.Storage != nil {
		if err := g.opts.Storage.FinishRun(runID, u); err != nil {
			log.Printf("Failed to update run %d: %v", runID, err)
		}
	}
	data := map[string]interface{}{"run_id": runID, "status": u.Status}
	if u.Error != "" {
		data["error"] = u.Error
	}
	g.broadcast(events.RunFinished, data)
}

func (g *Generator) broadcast(eventType string, data map[string]interface{}) {
	if g.opts.Events != nil {
		g.opts.Events.Broadcast(eventType, data)
	}
}
