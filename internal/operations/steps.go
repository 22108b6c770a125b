package operations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marketruns/internal/chatactivity"
	"marketruns/internal/config"
	"marketruns/internal/dataset"
	apperrors "marketruns/internal/errors"
	"marketruns/internal/exporter"
	"marketruns/internal/sessiondata"
	"marketruns/internal/survey"
	"marketruns/internal/telemetry"
	"marketruns/internal/validation"
)

// Step IDs of the derivation pipeline.
const (
	StepLoadSessions  = "load_sessions"
	StepLoadTelemetry = "load_telemetry"
	StepLoadSurvey    = "load_survey"
	StepLoadChat      = "load_chat"
	StepBuildCore     = "build_core_datasets"
	StepBuildMerged   = "build_merged_datasets"
	StepBuildChat     = "build_chat_dataset"
	StepExport        = "export_datasets"
)

// NewDerivePipeline registers the full derivation pipeline on a fresh
// registry.
func NewDerivePipeline(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := NewRegistry()
	steps := []Step{
		NewLoadSessionsStep(cfg, paths, logger),
		NewLoadTelemetryStep(paths, logger),
		NewLoadSurveyStep(cfg, paths, logger),
		NewLoadChatStep(cfg, paths, logger),
		NewBuildCoreDatasetsStep(),
		NewBuildMergedDatasetsStep(logger),
		NewBuildChatDatasetStep(),
		NewExportDatasetsStep(paths),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	if err := registry.ValidateDependencies(); err != nil {
		return nil, err
	}
	return registry, nil
}

// LoadSessionsStep loads every registered session's raw segment exports.
type LoadSessionsStep struct {
	BaseStep
	cfg    *config.Config
	loader *sessiondata.Loader
}

// NewLoadSessionsStep creates the session-loading step.
func NewLoadSessionsStep(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *LoadSessionsStep {
	return &LoadSessionsStep{
		BaseStep: NewBaseStep(StepLoadSessions, "Load session exports", nil),
		cfg:      cfg,
		loader:   sessiondata.NewLoader(paths, logger),
	}
}

// Validate requires a non-empty session registry and segment list.
func (s *LoadSessionsStep) Validate(state *RunState) error {
	if len(s.cfg.Sessions) == 0 {
		return fmt.Errorf("no sessions registered")
	}
	if len(s.cfg.Segments) == 0 {
		return fmt.Errorf("no segments configured")
	}
	return nil
}

// Execute loads all sessions into the run state. Every segment's round and
// period indices are checked against its declared round table before any
// derivation sees them.
func (s *LoadSessionsStep) Execute(ctx context.Context, state *RunState) error {
	var segments []*sessiondata.Segment
	for _, session := range s.cfg.Sessions {
		loaded, err := s.loader.LoadSession(session.ID, session.Treatment, s.cfg.Segments)
		if err != nil {
			return fmt.Errorf("session %s: %w", session.ID, err)
		}
		for _, seg := range loaded {
			table := sessiondata.DeriveTable(seg)
			if len(table) > config.MaxRounds {
				return apperrors.NewIntegrityError(
					"session %s segment %d declares %d rounds, cap is %d",
					seg.SessionID, seg.SegmentNum, len(table), config.MaxRounds)
			}
			if err := sessiondata.ValidatePeriods(seg, table); err != nil {
				return fmt.Errorf("session %s: %w", session.ID, err)
			}
		}
		segments = append(segments, loaded...)
	}
	if len(segments) == 0 {
		return fmt.Errorf("no segment exports found for any registered session")
	}
	state.Artifacts.Segments = segments
	return nil
}

// LoadTelemetryStep loads the iMotions facial telemetry aggregates.
type LoadTelemetryStep struct {
	BaseStep
	reader *telemetry.Reader
}

// NewLoadTelemetryStep creates the telemetry-loading step.
func NewLoadTelemetryStep(paths *config.Paths, logger *slog.Logger) *LoadTelemetryStep {
	return &LoadTelemetryStep{
		BaseStep: NewBaseStep(StepLoadTelemetry, "Load facial telemetry", nil),
		reader:   telemetry.NewReader(paths, logger),
	}
}

// Execute aggregates all telemetry recordings into the run state.
func (s *LoadTelemetryStep) Execute(ctx context.Context, state *RunState) error {
	emotions, err := s.reader.LoadAll(ctx)
	if err != nil {
		return err
	}
	state.Artifacts.Emotions = emotions
	return nil
}

// LoadSurveyStep loads and scores the post-experiment survey exports.
type LoadSurveyStep struct {
	BaseStep
	cfg    *config.Config
	loader *survey.Loader
}

// NewLoadSurveyStep creates the survey-loading step.
func NewLoadSurveyStep(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *LoadSurveyStep {
	return &LoadSurveyStep{
		BaseStep: NewBaseStep(StepLoadSurvey, "Load survey traits", nil),
		cfg:      cfg,
		loader:   survey.NewLoader(paths, logger),
	}
}

// Execute scores every session's survey export into the run state.
func (s *LoadSurveyStep) Execute(ctx context.Context, state *RunState) error {
	traits, err := s.loader.LoadAll(s.cfg.Sessions)
	if err != nil {
		return err
	}
	state.Artifacts.Traits = traits
	return nil
}

// LoadChatStep loads the raw chat message exports per session.
type LoadChatStep struct {
	BaseStep
	cfg    *config.Config
	reader *chatactivity.Reader
}

// NewLoadChatStep creates the chat-loading step.
func NewLoadChatStep(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *LoadChatStep {
	return &LoadChatStep{
		BaseStep: NewBaseStep(StepLoadChat, "Load chat messages", nil),
		cfg:      cfg,
		reader:   chatactivity.NewReader(paths, logger),
	}
}

// Execute loads every session's chat export into the run state.
func (s *LoadChatStep) Execute(ctx context.Context, state *RunState) error {
	messages := make(map[string][]chatactivity.Message, len(s.cfg.Sessions))
	for _, session := range s.cfg.Sessions {
		loaded, err := s.reader.LoadSession(session.ID)
		if err != nil {
			return fmt.Errorf("session %s: %w", session.ID, err)
		}
		messages[session.ID] = loaded
	}
	state.Artifacts.Messages = messages
	return nil
}

// BuildCoreDatasetsStep derives the timing datasets from the raw segments.
type BuildCoreDatasetsStep struct {
	BaseStep
}

// NewBuildCoreDatasetsStep creates the core dataset builder step.
func NewBuildCoreDatasetsStep() *BuildCoreDatasetsStep {
	return &BuildCoreDatasetsStep{
		BaseStep: NewBaseStep(StepBuildCore, "Build timing datasets",
			[]string{StepLoadSessions}),
	}
}

// Validate requires loaded segments.
func (s *BuildCoreDatasetsStep) Validate(state *RunState) error {
	if len(state.Artifacts.Segments) == 0 {
		return fmt.Errorf("no segments loaded")
	}
	return nil
}

// Execute builds every dataset derivable from session data alone.
func (s *BuildCoreDatasetsStep) Execute(ctx context.Context, state *RunState) error {
	segments := state.Artifacts.Segments

	periods, err := dataset.BuildPlayerPeriods(segments)
	if err != nil {
		return err
	}
	rounds, err := dataset.BuildPlayerRounds(segments)
	if err != nil {
		return err
	}
	firstSellers, err := dataset.BuildFirstSellerRounds(segments)
	if err != nil {
		return err
	}
	timing, err := dataset.BuildGroupRoundTiming(segments)
	if err != nil {
		return err
	}
	firstSales, err := dataset.BuildFirstSales(segments)
	if err != nil {
		return err
	}

	state.Artifacts.PlayerPeriods = periods
	state.Artifacts.PlayerRounds = rounds
	state.Artifacts.FirstSellerRound = firstSellers
	state.Artifacts.GroupRoundTiming = timing
	state.Artifacts.FirstSales = firstSales
	return nil
}

// BuildMergedDatasetsStep joins timing datasets with traits and telemetry.
type BuildMergedDatasetsStep struct {
	BaseStep
	logger *slog.Logger
}

// NewBuildMergedDatasetsStep creates the merged dataset builder step.
func NewBuildMergedDatasetsStep(logger *slog.Logger) *BuildMergedDatasetsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildMergedDatasetsStep{
		BaseStep: NewBaseStep(StepBuildMerged, "Build merged datasets",
			[]string{StepBuildCore, StepLoadTelemetry, StepLoadSurvey}),
		logger: logger,
	}
}

// Execute builds the three merged datasets and logs their merge reports.
func (s *BuildMergedDatasetsStep) Execute(ctx context.Context, state *RunState) error {
	a := &state.Artifacts

	emotionsTraits, report := dataset.BuildEmotionsTraitsSelling(a.PlayerPeriods, a.Traits, a.Emotions)
	s.logMergeReport(ctx, exporter.FileEmotionsTraitsSelling, report)
	if !report.RowCountPreserved() {
		return fmt.Errorf("emotions/traits merge changed row count: %d before, %d after",
			report.RowsBefore, report.RowsAfter)
	}
	a.EmotionsTraits = emotionsTraits

	analysis, report := dataset.BuildFirstSellerAnalysis(a.FirstSellerRound, a.Traits)
	s.logMergeReport(ctx, exporter.FileFirstSellerAnalysis, report)
	if !report.RowCountPreserved() {
		return fmt.Errorf("first-seller analysis merge changed row count: %d before, %d after",
			report.RowsBefore, report.RowsAfter)
	}
	a.FirstSellerAnalysis = analysis

	ordinal, report := dataset.BuildOrdinalPositions(a.PlayerRounds, a.PlayerPeriods, a.Emotions, a.Traits)
	s.logMergeReport(ctx, exporter.FileOrdinalPositions, report)
	if !report.RowCountPreserved() {
		return fmt.Errorf("ordinal positions merge changed row count: %d before, %d after",
			report.RowsBefore, report.RowsAfter)
	}
	a.OrdinalPositions = ordinal
	return nil
}

func (s *BuildMergedDatasetsStep) logMergeReport(ctx context.Context, name string, report *apperrors.MergeReport) {
	if report.Unmatched() == 0 {
		return
	}
	s.logger.WarnContext(ctx, "players without trait or telemetry match",
		slog.String("dataset", name),
		slog.Int("unmatched_count", report.Unmatched()),
		slog.String("players", strings.Join(report.UnmatchedPlayers, ",")))
}

// BuildChatDatasetStep replicates segment chat counts onto player-periods.
type BuildChatDatasetStep struct {
	BaseStep
}

// NewBuildChatDatasetStep creates the chat dataset builder step.
func NewBuildChatDatasetStep() *BuildChatDatasetStep {
	return &BuildChatDatasetStep{
		BaseStep: NewBaseStep(StepBuildChat, "Build chat activity dataset",
			[]string{StepLoadSessions, StepLoadChat}),
	}
}

// Execute builds the chat activity dataset.
func (s *BuildChatDatasetStep) Execute(ctx context.Context, state *RunState) error {
	state.Artifacts.ChatActivity = dataset.BuildChatActivity(
		state.Artifacts.Segments, state.Artifacts.Messages)
	return nil
}

// ExportDatasetsStep serializes every built dataset to the derived
// directory.
type ExportDatasetsStep struct {
	BaseStep
	exporter  *exporter.DatasetExporter
	validator *validation.RecordValidator
}

// NewExportDatasetsStep creates the export step.
func NewExportDatasetsStep(paths *config.Paths) *ExportDatasetsStep {
	return &ExportDatasetsStep{
		BaseStep: NewBaseStep(StepExport, "Export derived datasets",
			[]string{StepBuildMerged, StepBuildChat}),
		exporter:  exporter.NewDatasetExporter(paths),
		validator: validation.NewRecordValidator(),
	}
}

// Execute writes all derived CSVs and records their row counts. The panel
// datasets are validated against their declared bounds first; a violation
// means a derivation bug and aborts the export.
func (s *ExportDatasetsStep) Execute(ctx context.Context, state *RunState) error {
	a := &state.Artifacts

	if err := validation.ValidateAll(s.validator, a.PlayerPeriods); err != nil {
		return fmt.Errorf("player periods: %w", err)
	}
	if err := validation.ValidateAll(s.validator, a.PlayerRounds); err != nil {
		return fmt.Errorf("player rounds: %w", err)
	}
	if err := validation.ValidateAll(s.validator, a.Traits); err != nil {
		return fmt.Errorf("survey traits: %w", err)
	}

	writes := []struct {
		name  string
		rows  int
		write func() error
	}{
		{exporter.FilePlayerPeriods, len(a.PlayerPeriods),
			func() error { return s.exporter.WritePlayerPeriods(a.PlayerPeriods) }},
		{exporter.FilePlayerRounds, len(a.PlayerRounds),
			func() error { return s.exporter.WritePlayerRounds(a.PlayerRounds) }},
		{exporter.FileFirstSellerRounds, len(a.FirstSellerRound),
			func() error { return s.exporter.WriteFirstSellerRounds(a.FirstSellerRound) }},
		{exporter.FileFirstSales, len(a.FirstSales),
			func() error { return s.exporter.WriteFirstSales(a.FirstSales) }},
		{exporter.FileGroupRoundTiming, len(a.GroupRoundTiming),
			func() error { return s.exporter.WriteGroupRoundTiming(a.GroupRoundTiming) }},
		{exporter.FileSurveyTraits, len(a.Traits),
			func() error { return s.exporter.WriteTraits(a.Traits) }},
		{exporter.FileEmotions, len(a.Emotions),
			func() error { return s.exporter.WriteEmotions(a.Emotions) }},
		{exporter.FileEmotionsExtended, len(a.Emotions),
			func() error { return s.exporter.WriteEmotionsExtended(a.Emotions) }},
		{exporter.FileEmotionsTraitsSelling, len(a.EmotionsTraits),
			func() error { return s.exporter.WriteEmotionsTraitsSelling(a.EmotionsTraits) }},
		{exporter.FileFirstSellerAnalysis, len(a.FirstSellerAnalysis),
			func() error { return s.exporter.WriteFirstSellerAnalysis(a.FirstSellerAnalysis) }},
		{exporter.FileOrdinalPositions, len(a.OrdinalPositions),
			func() error { return s.exporter.WriteOrdinalPositions(a.OrdinalPositions) }},
		{exporter.FileChatActivity, len(a.ChatActivity),
			func() error { return s.exporter.WriteChatActivity(a.ChatActivity) }},
	}

	counts := make([]exporter.DatasetCount, 0, len(writes))
	for _, w := range writes {
		if err := w.write(); err != nil {
			return fmt.Errorf("writing %s: %w", w.name, err)
		}
		counts = append(counts, exporter.DatasetCount{Name: w.name, Rows: w.rows})
	}
	a.ExportedDatasets = counts
	return nil
}
