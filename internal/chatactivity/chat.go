package chatactivity

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"marketruns/internal/config"
	apperrors "marketruns/internal/errors"
	"marketruns/internal/sessiondata"
)

// channelPattern matches chat channel identifiers of the form
// 1-{segment name}-{channel number}.
var channelPattern = regexp.MustCompile(`^1-([^-]+)-(\d+)$`)

// Message is one chat message with its routing resolved.
type Message struct {
	SegmentName string
	Channel     int
	Nickname    string
}

// Counts holds the chat activity of one segment: messages sent per player
// and totals per group. Received counts derive as group total minus sent.
type Counts struct {
	Sent        map[string]int
	GroupTotals map[int]int
}

// Received returns the messages a player received from the other members of
// their group.
func (c Counts) Received(player string, groupID int) int {
	return c.GroupTotals[groupID] - c.Sent[player]
}

// Reader loads per-session chat exports.
type Reader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewReader creates a chat reader.
func NewReader(paths *config.Paths, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{paths: paths, logger: logger}
}

// LoadSession loads the chat export of one session. Sessions without a chat
// file return no messages; the no-chat treatment segments legitimately have
// nothing to load.
func (r *Reader) LoadSession(sessionID string) ([]Message, error) {
	path := filepath.Join(r.paths.SessionDir(sessionID), sessionID+"_chat.csv")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		r.logger.Warn("chat export not found, skipping session",
			slog.String("session_id", sessionID))
		return nil, nil
	}

	messages, err := LoadMessages(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	r.logger.Info("chat export loaded",
		slog.String("session_id", sessionID),
		slog.Int("messages", len(messages)))
	return messages, nil
}

// LoadMessages reads one chat CSV. Rows whose channel does not follow the
// expected format are dropped.
func LoadMessages(path string) ([]Message, error) {
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
	for _, col := range []string{"channel", "nickname"} {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(filepath.Base(path), missing)
	}

	var messages []Message
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

		m := channelPattern.FindStringSubmatch(cell("channel"))
		if m == nil {
			continue
		}
		channel, _ := strconv.Atoi(m[2])
		messages = append(messages, Message{
			SegmentName: m[1],
			Channel:     channel,
			Nickname:    cell("nickname"),
		})
	}
	return messages, nil
}

// CountSegment tallies the chat activity of one segment. Only messages from
// players present in the segment count; the segment's group assignment
// attributes each message to its group. Segments without chat enabled get
// zero counts for every player so downstream joins never produce gaps.
func CountSegment(messages []Message, seg *sessiondata.Segment) Counts {
	counts := Counts{
		Sent:        make(map[string]int),
		GroupTotals: make(map[int]int),
	}

	groupOf := make(map[string]int)
	for _, row := range seg.Rows {
		if _, ok := groupOf[row.Label]; !ok {
			groupOf[row.Label] = row.GroupID
			counts.Sent[row.Label] = 0
		}
	}

	if !config.SegmentHasChat(seg.SegmentNum) {
		return counts
	}

	for _, msg := range messages {
		if msg.SegmentName != seg.Name {
			continue
		}
		groupID, ok := groupOf[msg.Nickname]
		if !ok {
			continue
		}
		counts.Sent[msg.Nickname]++
		counts.GroupTotals[groupID]++
	}
	return counts
}
