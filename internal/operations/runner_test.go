package operations

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketruns/internal/infrastructure"
)

func TestRunnerRun_ExecutesInDependencyOrder(t *testing.T) {
	runner := NewRunner(NewRegistry(), nil)

	var executed []string
	record := func(id string) func(context.Context, *RunState) error {
		return func(context.Context, *RunState) error {
			executed = append(executed, id)
			return nil
		}
	}
	require.NoError(t, runner.Register(newFakeStep("export", []string{"build"}, record("export"))))
	require.NoError(t, runner.Register(newFakeStep("load", nil, record("load"))))
	require.NoError(t, runner.Register(newFakeStep("build", []string{"load"}, record("build"))))

	state, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"load", "build", "export"}, executed)
	assert.Equal(t, RunStatusCompleted, state.Status)
	assert.NotEmpty(t, state.ID)
	for _, id := range executed {
		assert.Equal(t, StepStatusCompleted, state.StepState(id).CurrentStatus())
	}
}

func TestRunnerRun_FailureAborts(t *testing.T) {
	runner := NewRunner(NewRegistry(), nil)

	var ran []string
	require.NoError(t, runner.Register(newFakeStep("first", nil,
		func(context.Context, *RunState) error {
			ran = append(ran, "first")
			return fmt.Errorf("datastore unreadable")
		})))
	require.NoError(t, runner.Register(newFakeStep("second", []string{"first"},
		func(context.Context, *RunState) error {
			ran = append(ran, "second")
			return nil
		})))

	state, err := runner.Run(context.Background())
	require.ErrorContains(t, err, "step first")
	require.ErrorContains(t, err, "datastore unreadable")

	assert.Equal(t, []string{"first"}, ran)
	assert.Equal(t, RunStatusFailed, state.Status)
	assert.Equal(t, StepStatusFailed, state.StepState("first").CurrentStatus())
	assert.Equal(t, StepStatusPending, state.StepState("second").CurrentStatus())
}

func TestRunnerRun_CancelledContext(t *testing.T) {
	runner := NewRunner(NewRegistry(), nil)
	require.NoError(t, runner.Register(newFakeStep("only", nil, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, RunStatusFailed, state.Status)
}

func TestRunnerRun_InjectsRunID(t *testing.T) {
	runner := NewRunner(NewRegistry(), nil)

	var seen string
	require.NoError(t, runner.Register(newFakeStep("only", nil,
		func(ctx context.Context, state *RunState) error {
			seen = infrastructure.GetRunID(ctx)
			return nil
		})))

	state, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state.ID, seen)
}

type guardedStep struct {
	fakeStep
	precondition error
}

func (g *guardedStep) Validate(state *RunState) error { return g.precondition }

func TestRunnerRun_ValidateFailureAborts(t *testing.T) {
	runner := NewRunner(NewRegistry(), nil)

	executed := false
	step := &guardedStep{
		fakeStep: *newFakeStep("guarded", nil,
			func(context.Context, *RunState) error {
				executed = true
				return nil
			}),
		precondition: fmt.Errorf("inputs not staged"),
	}
	require.NoError(t, runner.Register(step))

	state, err := runner.Run(context.Background())
	require.ErrorContains(t, err, "step guarded precondition")
	assert.False(t, executed)
	assert.Equal(t, RunStatusFailed, state.Status)
}

func TestRunnerRun_CycleFailsBeforeExecution(t *testing.T) {
	runner := NewRunner(NewRegistry(), nil)
	require.NoError(t, runner.Register(newFakeStep("a", []string{"b"}, nil)))
	require.NoError(t, runner.Register(newFakeStep("b", []string{"a"}, nil)))

	_, err := runner.Run(context.Background())
	assert.ErrorContains(t, err, "resolving step order")
}
