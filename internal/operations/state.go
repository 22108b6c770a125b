package operations

import (
	"sync"
	"time"

	"marketruns/internal/chatactivity"
	"marketruns/internal/dataset"
	"marketruns/internal/exporter"
	"marketruns/internal/infrastructure"
	"marketruns/internal/sessiondata"
	"marketruns/pkg/contracts/domain"
)

// RunStatus represents the overall status of a pipeline run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Artifacts holds the data passed between steps of one run. Loader steps
// fill the raw slices, builder steps fill the derived ones, and the export
// step serializes whatever is present.
type Artifacts struct {
	Segments []*sessiondata.Segment
	Emotions []domain.EmotionRecord
	Traits   []domain.TraitRecord
	Messages map[string][]chatactivity.Message

	PlayerPeriods    []domain.PlayerPeriodRecord
	PlayerRounds     []domain.PlayerRoundRecord
	FirstSellerRound []domain.FirstSellerRecord
	GroupRoundTiming []domain.GroupRoundTimingRecord
	FirstSales       []domain.FirstSaleRecord
	ChatActivity     []domain.ChatActivityRecord

	EmotionsTraits      []dataset.EmotionTraitRow
	FirstSellerAnalysis []dataset.FirstSellerAnalysisRow
	OrdinalPositions    []dataset.OrdinalRow

	ExportedDatasets []exporter.DatasetCount
}

// RunState is the complete state of one pipeline run.
type RunState struct {
	mu sync.RWMutex

	ID        string
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time
	Steps     map[string]*StepState
	Error     error

	// Artifacts is only written by the step currently executing; the runner
	// never runs two steps at once, so steps may access it directly.
	Artifacts Artifacts
}

// NewRunState creates a pending run state with a fresh run ID.
func NewRunState() *RunState {
	return &RunState{
		ID:        infrastructure.GenerateRunID(),
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running.
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed.
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed.
func (r *RunState) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Error = err
}

// StepState returns the state of one step, nil when unknown.
func (r *RunState) StepState(id string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Steps[id]
}

// SetStepState registers the state of one step.
func (r *RunState) SetStepState(id string, state *StepState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Steps[id] = state
}

// Duration returns the total run duration.
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}
