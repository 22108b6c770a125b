package telemetry

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"marketruns/internal/config"
	apperrors "marketruns/internal/errors"
	"marketruns/pkg/contracts/domain"
)

// annotationColumn is the export column holding the active phase marker.
const annotationColumn = "Respondent Annotations active"

// mergeExportName is the combined export the recording tool writes next to
// the per-participant files. It duplicates their content and is skipped.
const mergeExportName = "ExportMerge.csv"

// loadConcurrency bounds parallel participant file loads per session.
const loadConcurrency = 4

// channelHeader maps a canonical channel name to its export column.
func channelHeader(channel string) string {
	return strings.ToUpper(channel[:1]) + channel[1:]
}

// Reader loads raw telemetry exports from the datastore.
type Reader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewReader creates a telemetry reader.
func NewReader(paths *config.Paths, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{paths: paths, logger: logger}
}

// LoadAll loads every recording session listed in the session map. Sessions
// without a telemetry directory are skipped with a warning; telemetry
// coverage is inherently partial.
func (r *Reader) LoadAll(ctx context.Context) ([]domain.EmotionRecord, error) {
	folders := make([]string, 0, len(config.TelemetrySessionMap))
	for folder := range config.TelemetrySessionMap {
		folders = append(folders, folder)
	}
	sort.Strings(folders)

	var records []domain.EmotionRecord
	for _, folder := range folders {
		sessionID := config.TelemetrySessionMap[folder]
		dir := r.paths.TelemetrySessionDir(folder)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			r.logger.Warn("telemetry directory missing, skipping session",
				slog.String("session_id", sessionID),
				slog.String("dir", dir))
			continue
		}

		sessionRecords, err := r.LoadSessionDir(ctx, dir, sessionID)
		if err != nil {
			return nil, fmt.Errorf("loading telemetry for %s: %w", sessionID, err)
		}
		records = append(records, sessionRecords...)
	}
	return records, nil
}

// LoadSessionDir loads every participant export of one recording session.
// Files load in parallel; the merged result is ordered by filename so the
// output is deterministic regardless of completion order.
func (r *Reader) LoadSessionDir(ctx context.Context, dir, sessionID string) ([]domain.EmotionRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	type job struct {
		path   string
		player string
	}
	var jobs []job
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") || name == mergeExportName {
			continue
		}
		player, ok := PlayerLabelFromFilename(name)
		if !ok {
			r.logger.Warn("unrecognized telemetry filename, skipping",
				slog.String("session_id", sessionID),
				slog.String("file", name))
			continue
		}
		jobs = append(jobs, job{path: filepath.Join(dir, name), player: player})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].path < jobs[j].path })

	results := make([][]domain.EmotionRecord, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := LoadParticipantFile(j.path, sessionID, j.player)
			if err != nil {
				return fmt.Errorf("loading %s: %w", j.path, err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []domain.EmotionRecord
	for i := range results {
		records = append(records, results[i]...)
		r.logger.Info("telemetry file loaded",
			slog.String("session_id", sessionID),
			slog.String("file", filepath.Base(jobs[i].path)),
			slog.Int("periods", len(results[i])))
	}
	return records, nil
}

// LoadParticipantFile reads one raw export and aggregates its MarketPeriod
// frames into per-period emotion records.
func LoadParticipantFile(path, sessionID, player string) ([]domain.EmotionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	buf := bufio.NewReader(f)
	if err := skipPreamble(buf, config.TelemetryPreambleRows); err != nil {
		return nil, err
	}

	reader := csv.NewReader(buf)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	var missing []string
	if _, ok := colIdx[annotationColumn]; !ok {
		missing = append(missing, annotationColumn)
	}
	for _, channel := range domain.EmotionChannels {
		if _, ok := colIdx[channelHeader(channel)]; !ok {
			missing = append(missing, channelHeader(channel))
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(filepath.Base(path), missing)
	}

	type windowKey struct {
		segment int
		round   int
		period  int
	}
	windows := make(map[windowKey]*periodFrames)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		cell := func(idx int) string {
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		ann, ok := ParseAnnotation(cell(colIdx[annotationColumn]))
		if !ok {
			continue
		}
		key := windowKey{segment: ann.Segment, round: ann.Round, period: ann.Period}
		pf := windows[key]
		if pf == nil {
			pf = newPeriodFrames()
			windows[key] = pf
		}
		pf.count++

		// A frame where the face was not detected leaves the channel cells
		// blank; those frames still count toward n_frames but contribute no
		// values.
		for _, channel := range domain.EmotionChannels {
			raw := cell(colIdx[channelHeader(channel)])
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			pf.values[channel] = append(pf.values[channel], v)
		}
	}

	keys := make([]windowKey, 0, len(windows))
	for key := range windows {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].segment != keys[j].segment {
			return keys[i].segment < keys[j].segment
		}
		if keys[i].round != keys[j].round {
			return keys[i].round < keys[j].round
		}
		return keys[i].period < keys[j].period
	})

	records := make([]domain.EmotionRecord, 0, len(keys))
	for _, key := range keys {
		channels, nFrames := windows[key].aggregate()
		records = append(records, domain.EmotionRecord{
			SessionID: sessionID,
			Segment:   key.segment,
			Round:     key.round,
			Period:    key.period,
			Player:    player,
			Channels:  channels,
			NFrames:   nFrames,
		})
	}
	return records, nil
}

// skipPreamble discards the metadata rows before the CSV header, including a
// leading UTF-8 BOM if present.
func skipPreamble(buf *bufio.Reader, rows int) error {
	if bom, err := buf.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		if _, err := buf.Discard(3); err != nil {
			return err
		}
	}
	for i := 0; i < rows; i++ {
		if _, err := buf.ReadString('\n'); err != nil {
			return fmt.Errorf("preamble shorter than %d rows: %w", rows, err)
		}
	}
	return nil
}
