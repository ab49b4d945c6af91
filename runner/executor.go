package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blogcast/events"
	"blogcast/runner/storage"
)

// Runner executes the ordered stages of a Definition
type Runner struct {
	stages         []Stage
	minFinalLength int
	extractor      Extractor
	generator      Generator
	opts           Options
}

// NewRunner orders the stages and binds them to their collaborators
func NewRunner(def *Definition, extractor Extractor, generator Generator, opts Options) (*Runner, error) {
	if def == nil {
		return nil, errors.New("stage definition is required")
	}
	if extractor == nil || generator == nil {
		return nil, errors.New("extractor and generator are required")
	}

	stages, err := def.Ordered()
	if err != nil {
		return nil, fmt.Errorf("invalid stage definition: %w", err)
	}

	return &Runner{
		stages:         stages,
		minFinalLength: def.MinFinalLength,
		extractor:      extractor,
		generator:      generator,
		opts:           opts,
	}, nil
}

// Stages returns the stages in execution order
func (r *Runner) Stages() []Stage {
	return append([]Stage(nil), r.stages...)
}

// Run executes every stage in order and returns the last stage's text.
// The first failure aborts the run and only the error is returned.
func (r *Runner) Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	req, err := ValidateURL(req.URL)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	result := &PipelineResult{
		Status: StatusPending,
		Stages: make([]StageResult, 0, len(r.stages)),
	}

	if r.opts.Storage != nil {
		run, err := r.opts.Storage.CreateRun(req.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
		result.RunID = run.ID

		if err := r.opts.Storage.UpdateRunStatus(run.ID, StatusRunning); err != nil {
			return nil, err
		}
	}
	result.Status = StatusRunning

	r.broadcast(events.RunStarted, map[string]interface{}{
		"run_id": result.RunID,
		"url":    req.URL,
	})

	if r.opts.StreamToTerminal {
		fmt.Printf("\n🎙️  Run for %s\n", req.URL)
	}

	upstream := ""
	last := len(r.stages) - 1
	for i, stage := range r.stages {
		stageResult, err := r.executeStage(ctx, stage, req, upstream, result.RunID, i == last)
		result.Stages = append(result.Stages, stageResult)

		if err != nil {
			if r.opts.Storage != nil {
				_ = r.opts.Storage.FinishRun(result.RunID, storage.RunUpdate{
					Status:   StatusFailed,
					Error:    err.Error(),
					Duration: time.Since(startTime),
				})
			}
			r.broadcast(events.RunFinished, map[string]interface{}{
				"run_id": result.RunID,
				"status": StatusFailed,
				"error":  err.Error(),
			})

			// no partial result: the stored run keeps the failed stage for inspection
			return nil, err
		}

		upstream = stageResult.Text
	}

	result.Status = StatusSuccess
	result.FinalText = upstream
	result.Duration = time.Since(startTime)

	if r.opts.Storage != nil {
		status := StatusSuccess
		if r.opts.HoldRun {
			status = StatusRunning
		}
		err := r.opts.Storage.FinishRun(result.RunID, storage.RunUpdate{
			Status:    status,
			FinalText: result.FinalText,
			Duration:  result.Duration,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to update run status: %w", err)
		}
	}

	if !r.opts.HoldRun {
		r.broadcast(events.RunFinished, map[string]interface{}{
			"run_id": result.RunID,
			"status": StatusSuccess,
		})
	}

	if r.opts.StreamToTerminal {
		fmt.Println("🏁 All stages finished successfully.")
	}

	return result, nil
}

// executeStage runs a single stage and records it
func (r *Runner) executeStage(ctx context.Context, stage Stage, req PipelineRequest, upstream string, runID int, final bool) (StageResult, error) {
	stepStart := time.Now()

	if r.opts.StreamToTerminal {
		fmt.Println("→", stage.Name)
	}
	r.broadcast(events.StageStarted, map[string]interface{}{
		"run_id": runID,
		"stage":  stage.Name,
	})

	input := upstream
	if stage.Kind == KindExtract {
		input = req.URL
	}

	var stepExec *storage.StepExecution
	if r.opts.Storage != nil {
		var err error
		stepExec, err = r.opts.Storage.CreateStepExecution(runID, stage.Name, string(stage.Kind), input)
		if err != nil {
			return StageResult{StageName: stage.Name, Status: StatusFailed}, fmt.Errorf("failed to create step execution: %w", err)
		}
	}

	text, err := r.invoke(ctx, stage, req, upstream)
	if err == nil {
		err = r.checkStageOutput(stage, text, final)
	}
	stepDuration := time.Since(stepStart)

	stageResult := StageResult{
		StageName: stage.Name,
		Duration:  stepDuration,
	}

	if err != nil {
		stageResult.Status = StatusFailed

		if r.opts.StreamToTerminal {
			fmt.Println("❌ Stage failed:", err)
		}
		if stepExec != nil {
			_ = r.opts.Storage.UpdateStepExecution(stepExec.ID, StatusFailed, text, err.Error(), stepDuration)
		}
		r.broadcast(events.StageFinished, map[string]interface{}{
			"run_id": runID,
			"stage":  stage.Name,
			"status": StatusFailed,
			"error":  err.Error(),
		})

		return stageResult, err
	}

	stageResult.Status = StatusSuccess
	stageResult.Text = text

	if r.opts.StreamToTerminal {
		fmt.Printf("✅ Done: %s (%d chars, %s)\n", stage.Name, len(text), stepDuration.Round(time.Millisecond))
	}
	if stepExec != nil {
		err = r.opts.Storage.UpdateStepExecution(stepExec.ID, StatusSuccess, text, "", stepDuration)
		if err != nil {
			return stageResult, fmt.Errorf("failed to update step execution: %w", err)
		}
	}
	r.broadcast(events.StageFinished, map[string]interface{}{
		"run_id":   runID,
		"stage":    stage.Name,
		"status":   StatusSuccess,
		"duration": stepDuration.String(),
	})

	return stageResult, nil
}

// invoke sends the stage to its collaborator
func (r *Runner) invoke(ctx context.Context, stage Stage, req PipelineRequest, upstream string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", collaboratorError(stage.Name, err)
	}

	switch stage.Kind {
	case KindExtract:
		text, err := r.extractor.Extract(ctx, req.URL)
		if err != nil {
			return "", collaboratorError(stage.Name, fmt.Errorf("extraction: %w", err))
		}
		if !stage.Refine {
			return text, nil
		}
		if strings.TrimSpace(text) == "" {
			return "", collaboratorError(stage.Name, fmt.Errorf("%w: extraction returned no text", ErrOutputTooShort))
		}
		upstream = text
	case KindGenerate:
	default:
		return "", collaboratorError(stage.Name, fmt.Errorf("unknown stage kind '%s'", stage.Kind))
	}

	instructions, err := userPrompt(stage, req)
	if err != nil {
		return "", collaboratorError(stage.Name, err)
	}

	text, err := r.generator.Generate(ctx, GenerateRequest{
		System:       systemPrompt(stage),
		Instructions: instructions,
		Context:      upstream,
	})
	if err != nil {
		return "", collaboratorError(stage.Name, fmt.Errorf("generation: %w", err))
	}
	return text, nil
}

// checkStageOutput applies the length guards and, for the last stage, the style check
func (r *Runner) checkStageOutput(stage Stage, text string, final bool) error {
	if strings.TrimSpace(text) == "" {
		return collaboratorError(stage.Name, fmt.Errorf("%w: empty response", ErrOutputTooShort))
	}

	minLength := stage.MinLength
	if final && r.minFinalLength > minLength {
		minLength = r.minFinalLength
	}
	if err := checkOutput(text, minLength); err != nil {
		return qualityError(stage.Name, err)
	}

	if final && r.opts.StyleChecker != nil {
		if err := r.opts.StyleChecker(stage, text); err != nil {
			return qualityError(stage.Name, err)
		}
	}
	return nil
}

func (r *Runner) broadcast(eventType string, data map[string]interface{}) {
	if r.opts.Events != nil {
		r.opts.Events.Broadcast(eventType, data)
	}
}
