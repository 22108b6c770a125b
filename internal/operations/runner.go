package operations

import (
	"context"
	"fmt"
	"log/slog"

	"marketruns/internal/infrastructure"
)

// Runner executes a registered pipeline once, in dependency order.
type Runner struct {
	registry *Registry
	logger   *slog.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(registry *Registry, logger *slog.Logger) *Runner {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{registry: registry, logger: logger}
}

// Register adds a step to the runner's registry.
func (r *Runner) Register(step Step) error {
	return r.registry.Register(step)
}

// Run executes every registered step in dependency order. The first failing
// step aborts the run; the returned state carries per-step status either way.
func (r *Runner) Run(ctx context.Context) (*RunState, error) {
	steps, err := r.registry.DependencyOrder()
	if err != nil {
		return nil, fmt.Errorf("resolving step order: %w", err)
	}

	state := NewRunState()
	ctx = infrastructure.WithRunID(ctx, state.ID)
	for _, step := range steps {
		state.SetStepState(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	r.logger.InfoContext(ctx, "pipeline run starting",
		slog.String("run_id", state.ID),
		slog.Int("step_count", len(steps)))

	state.Start()
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			state.Fail(err)
			return state, fmt.Errorf("run cancelled before step %s: %w", step.ID(), err)
		}

		stepState := state.StepState(step.ID())
		if err := step.Validate(state); err != nil {
			stepState.Fail(err)
			state.Fail(err)
			return state, fmt.Errorf("step %s precondition: %w", step.ID(), err)
		}
		stepState.Start()
		r.logger.InfoContext(ctx, "step starting",
			slog.String("step_id", step.ID()),
			slog.String("step_name", step.Name()))

		if err := step.Execute(ctx, state); err != nil {
			stepState.Fail(err)
			state.Fail(err)
			r.logger.ErrorContext(ctx, "step failed",
				slog.String("step_id", step.ID()),
				slog.Duration("duration", stepState.Duration()),
				slog.String("error", err.Error()))
			return state, fmt.Errorf("step %s: %w", step.ID(), err)
		}

		stepState.Complete()
		r.logger.InfoContext(ctx, "step completed",
			slog.String("step_id", step.ID()),
			slog.Duration("duration", stepState.Duration()))
	}

	state.Complete()
	r.logger.InfoContext(ctx, "pipeline run completed",
		slog.String("run_id", state.ID),
		slog.Duration("duration", state.Duration()))
	return state, nil
}
