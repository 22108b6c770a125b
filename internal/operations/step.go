package operations

import (
	"context"
	"sync"
	"time"
)

// Step is a single unit of pipeline work.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() string

	// Name returns the human-readable name for this step.
	Name() string

	// Dependencies returns the IDs of steps that must complete before this
	// step runs.
	Dependencies() []string

	// Validate checks whether the step can run against the current state.
	Validate(state *RunState) error

	// Execute runs the step against the shared run state.
	Execute(ctx context.Context, state *RunState) error
}

// StepStatus represents the current status of a step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// StepState is the runtime state of one step within a run.
type StepState struct {
	mu        sync.RWMutex
	ID        string
	Name      string
	Status    StepStatus
	StartTime *time.Time
	EndTime   *time.Time
	Error     error
}

// NewStepState creates a pending step state.
func NewStepState(id, name string) *StepState {
	return &StepState{ID: id, Name: name, Status: StepStatusPending}
}

// Start marks the step as active.
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the step as completed.
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the step as failed with the given error.
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Duration returns how long the step has been (or was) running.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// CurrentStatus returns the step status under lock.
func (s *StepState) CurrentStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// BaseStep carries the identity shared by all step implementations.
type BaseStep struct {
	id   string
	name string
	deps []string
}

// NewBaseStep creates a base step.
func NewBaseStep(id, name string, deps []string) BaseStep {
	if deps == nil {
		deps = []string{}
	}
	return BaseStep{id: id, name: name, deps: deps}
}

// ID returns the step ID.
func (b *BaseStep) ID() string { return b.id }

// Name returns the step name.
func (b *BaseStep) Name() string { return b.name }

// Dependencies returns the step dependencies.
func (b *BaseStep) Dependencies() []string { return b.deps }

// Validate passes by default; steps with preconditions override it.
func (b *BaseStep) Validate(state *RunState) error { return nil }
