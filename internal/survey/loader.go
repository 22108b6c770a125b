package survey

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"marketruns/internal/config"
	apperrors "marketruns/internal/errors"
	"marketruns/pkg/contracts/domain"
)

// scoredQuestions is how many leading questions must be answered for a
// participant to be scored. q25 (age) and q26 (gender) are demographics and
// may be missing without dropping the row.
const scoredQuestions = 24

// Loader reads post-experiment survey exports from the datastore.
type Loader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewLoader creates a survey loader.
func NewLoader(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{paths: paths, logger: logger}
}

// LoadAll loads and scores the survey of every registered session.
func (l *Loader) LoadAll(sessions []config.Session) ([]domain.TraitRecord, error) {
	var records []domain.TraitRecord
	for _, session := range sessions {
		sessionRecords, err := l.LoadSession(session.ID)
		if err != nil {
			return nil, fmt.Errorf("loading survey for %s: %w", session.ID, err)
		}
		records = append(records, sessionRecords...)
	}
	return records, nil
}

// LoadSession loads one session's survey export and scores each participant.
// A session without a survey export is skipped; a participant with any
// unanswered scored question is dropped with a warning rather than scored
// on partial data.
func (l *Loader) LoadSession(sessionID string) ([]domain.TraitRecord, error) {
	sessionDir := l.paths.SessionDir(sessionID)
	matches, err := filepath.Glob(filepath.Join(sessionDir, "survey_*.csv"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		l.logger.Warn("survey export not found, skipping session",
			slog.String("session_id", sessionID))
		return nil, nil
	}
	sort.Strings(matches)
	path := matches[0]

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns() {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(filepath.Base(path), missing)
	}

	var records []domain.TraitRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		cell := func(col string) string {
			idx := colIdx[col]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		label := cell("participant.label")
		if label == "" {
			continue
		}

		resp, complete := buildResponse(cell)
		if !complete {
			l.logger.Warn("participant skipped, incomplete survey",
				slog.String("session_id", sessionID),
				slog.String("player", label))
			continue
		}

		scores, err := Score(resp)
		if err != nil {
			return nil, fmt.Errorf("scoring %s/%s: %w", sessionID, label, err)
		}

		trait := domain.TraitRecord{
			SessionID:         sessionID,
			Player:            label,
			Extraversion:      scores.Extraversion,
			Agreeableness:     scores.Agreeableness,
			Conscientiousness: scores.Conscientiousness,
			Neuroticism:       scores.Neuroticism,
			Openness:          scores.Openness,
			Impulsivity:       scores.Impulsivity,
			StateAnxiety:      scores.StateAnxiety,
			Gender:            resp["q26"],
		}
		if raw := resp["q25"]; raw != "" {
			age, err := parseAge(raw)
			if err != nil {
				return nil, fmt.Errorf("scoring %s/%s: %w", sessionID, label, err)
			}
			trait.Age = age
		}
		records = append(records, trait)
	}

	l.logger.Info("survey loaded",
		slog.String("session_id", sessionID),
		slog.Int("participants", len(records)))
	return records, nil
}

// buildResponse collects the per-question answers of one row and reports
// whether all scored questions are answered.
func buildResponse(cell func(string) string) (Response, bool) {
	resp := make(Response, 26)
	complete := true
	for i := 1; i <= 26; i++ {
		q := fmt.Sprintf("q%d", i)
		raw := cell("player." + q)
		resp[q] = raw
		if i <= scoredQuestions && raw == "" {
			complete = false
		}
	}
	return resp, complete
}

func requiredColumns() []string {
	cols := []string{"participant.label"}
	for i := 1; i <= 26; i++ {
		cols = append(cols, fmt.Sprintf("player.q%d", i))
	}
	return cols
}

func parseAge(raw string) (int, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewIntegrityError("question q25 holds %q, expected age", raw)
	}
	return int(v), nil
}
