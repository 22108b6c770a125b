package sessiondata

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

// Row is one participant-period observation from a raw segment export.
// Sold carries the cumulative per-round flag exactly as exported; the
// decision-moment flag is derived later by the sale-timing pass.
type Row struct {
	Label  string
	GroupID int
	Round  int
	Period int
	Sold   int
	Signal *float64
	Price  *float64
	State  int
}

// Segment holds all rows of one session-segment export.
type Segment struct {
	SessionID  string
	Treatment  string
	SegmentNum int
	Name       string
	Rows       []Row
}

// GroupRoundKey identifies one group-round within a segment.
type GroupRoundKey struct {
	GroupID int
	Round   int
}

// requiredColumns are the raw export columns every segment file must carry.
var requiredColumns = []string{
	domain.RawColParticipantLabel,
	domain.RawColGroupID,
	domain.RawColRoundNumber,
	domain.RawColPeriodInRound,
	domain.RawColSold,
	domain.RawColSignal,
	domain.RawColPrice,
	domain.RawColState,
}

// Loader reads raw session exports from the datastore.
type Loader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewLoader creates a session data loader.
func NewLoader(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{paths: paths, logger: logger}
}

// LoadSession loads every segment export of one session. A missing segment
// file is logged and skipped; any present file that fails to parse aborts
// the load.
func (l *Loader) LoadSession(sessionID, treatment string, segments []string) ([]*Segment, error) {
	sessionDir := l.paths.SessionDir(sessionID)
	var loaded []*Segment

	for idx, name := range segments {
		path, err := findSegmentFile(sessionDir, name)
		if err != nil {
			l.logger.Warn("segment export not found, skipping",
				slog.String("session_id", sessionID),
				slog.String("segment", name),
				slog.String("error", err.Error()))
			continue
		}

		seg, err := LoadSegmentFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		seg.SessionID = sessionID
		seg.Treatment = treatment
		seg.SegmentNum = idx + 1
		seg.Name = name
		loaded = append(loaded, seg)

		l.logger.Info("segment loaded",
			slog.String("session_id", sessionID),
			slog.String("segment", name),
			slog.Int("rows", len(seg.Rows)))
	}

	return loaded, nil
}

// findSegmentFile locates the single CSV export for a segment. Exactly one
// matching file must exist.
func findSegmentFile(sessionDir, segment string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(sessionDir, segment+"_*.csv"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no CSV found for %s in %s", segment, sessionDir)
	}
	if len(matches) > 1 {
		sort.Strings(matches)
		return "", fmt.Errorf("multiple CSVs found for %s in %s: %v, expected exactly one",
			segment, sessionDir, matches)
	}
	return matches[0], nil
}

// LoadSegmentFile reads one raw segment CSV into typed rows. Session
// metadata (ID, treatment, segment number) is filled in by the caller.
func LoadSegmentFile(path string) (*Segment, error) {
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
	stripBOM(header)

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(filepath.Base(path), missing)
	}

	seg := &Segment{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record at line %d: %w", line+1, err)
		}
		line++

		row, ok, err := parseRow(record, colIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if ok {
			seg.Rows = append(seg.Rows, row)
		}
	}

	return seg, nil
}

// parseRow converts one CSV record. Rows without a participant label (e.g.
// dropped-out slots) are skipped, not errors.
func parseRow(record []string, colIdx map[string]int) (Row, bool, error) {
	get := func(col string) string {
		idx := colIdx[col]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	label := get(domain.RawColParticipantLabel)
	if label == "" {
		return Row{}, false, nil
	}

	groupID, err := parseRequiredInt(get(domain.RawColGroupID), domain.RawColGroupID)
	if err != nil {
		return Row{}, false, err
	}
	round, err := parseRequiredInt(get(domain.RawColRoundNumber), domain.RawColRoundNumber)
	if err != nil {
		return Row{}, false, err
	}
	period, err := parseRequiredInt(get(domain.RawColPeriodInRound), domain.RawColPeriodInRound)
	if err != nil {
		return Row{}, false, err
	}
	state, err := parseRequiredInt(get(domain.RawColState), domain.RawColState)
	if err != nil {
		return Row{}, false, err
	}

	// A blank sold cell means the participant had no decision recorded,
	// which counts as not having sold.
	sold := 0
	if raw := get(domain.RawColSold); raw != "" {
		sold, err = parseRequiredInt(raw, domain.RawColSold)
		if err != nil {
			return Row{}, false, err
		}
		if sold != 0 && sold != 1 {
			return Row{}, false, apperrors.NewIntegrityError(
				"column %s holds %d, expected 0 or 1", domain.RawColSold, sold)
		}
	}

	signal, err := parseOptionalFloat(get(domain.RawColSignal), domain.RawColSignal)
	if err != nil {
		return Row{}, false, err
	}
	price, err := parseOptionalFloat(get(domain.RawColPrice), domain.RawColPrice)
	if err != nil {
		return Row{}, false, err
	}

	return Row{
		Label:   label,
		GroupID: groupID,
		Round:   round,
		Period:  period,
		Sold:    sold,
		Signal:  signal,
		Price:   price,
		State:   state,
	}, true, nil
}

func parseRequiredInt(raw, col string) (int, error) {
	if raw == "" {
		return 0, apperrors.NewIntegrityError("column %s is empty", col)
	}
	// oTree exports integers as floats ("3.0") in some columns.
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewIntegrityError("column %s holds %q, expected integer", col, raw)
	}
	n := int(v)
	if float64(n) != v {
		return 0, apperrors.NewIntegrityError("column %s holds %q, expected integer", col, raw)
	}
	return n, nil
}

func parseOptionalFloat(raw, col string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewIntegrityError("column %s holds %q, expected number", col, raw)
	}
	return &v, nil
}

// stripBOM removes a UTF-8 byte order mark from the first header cell.
func stripBOM(header []string) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
}

// GroupRounds partitions a segment's rows into group-rounds, each sorted by
// period then label. The stable sort key is what makes the lag and running
// sum operations downstream well defined.
func (s *Segment) GroupRounds() map[GroupRoundKey][]Row {
	byKey := make(map[GroupRoundKey][]Row)
	for _, row := range s.Rows {
		key := GroupRoundKey{GroupID: row.GroupID, Round: row.Round}
		byKey[key] = append(byKey[key], row)
	}
	for key := range byKey {
		rows := byKey[key]
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].Period != rows[j].Period {
				return rows[i].Period < rows[j].Period
			}
			return rows[i].Label < rows[j].Label
		})
		byKey[key] = rows
	}
	return byKey
}

// SortedKeys returns group-round keys in deterministic order.
func SortedKeys(byKey map[GroupRoundKey][]Row) []GroupRoundKey {
	keys := make([]GroupRoundKey, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].GroupID != keys[j].GroupID {
			return keys[i].GroupID < keys[j].GroupID
		}
		return keys[i].Round < keys[j].Round
	})
	return keys
}

// Players returns the distinct participant labels of a group-round, sorted.
func Players(rows []Row) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, row := range rows {
		if !seen[row.Label] {
			seen[row.Label] = true
			labels = append(labels, row.Label)
		}
	}
	sort.Strings(labels)
	return labels
}
