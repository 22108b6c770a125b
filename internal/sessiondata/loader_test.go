package sessiondata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketruns/internal/config"
	apperrors "marketruns/internal/errors"
)

const segmentHeader = "participant.label,group.id_in_subsession,player.round_number_in_segment," +
	"player.period_in_round,player.sold,player.signal,player.price,player.state\n"

func writeSegmentCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSegmentFile(t *testing.T) {
	dir := t.TempDir()
	content := segmentHeader +
		"A,1,1,1,0,0.5,8,1\n" +
		"B,1,1,1,1,0.5,8,1\n" +
		"A,1,1,2,0,0.675,6,1\n" +
		"C,2,1,1,0,,,0\n"
	path := writeSegmentCSV(t, dir, "chat_noavg_2024.csv", content)

	seg, err := LoadSegmentFile(path)
	require.NoError(t, err)
	require.Len(t, seg.Rows, 4)

	first := seg.Rows[0]
	assert.Equal(t, "A", first.Label)
	assert.Equal(t, 1, first.GroupID)
	assert.Equal(t, 1, first.Round)
	assert.Equal(t, 1, first.Period)
	assert.Equal(t, 0, first.Sold)
	require.NotNil(t, first.Signal)
	assert.InDelta(t, 0.5, *first.Signal, 1e-9)
	require.NotNil(t, first.Price)
	assert.InDelta(t, 8.0, *first.Price, 1e-9)
	assert.Equal(t, 1, first.State)

	// Blank signal and price stay absent, not zero.
	last := seg.Rows[3]
	assert.Nil(t, last.Signal)
	assert.Nil(t, last.Price)
}

func TestLoadSegmentFile_MissingColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeSegmentCSV(t, dir, "chat_noavg_2024.csv",
		"participant.label,player.period_in_round\nA,1\n")

	_, err := LoadSegmentFile(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsSchemaError(err))
	// All missing columns must be listed, not just the first.
	assert.Contains(t, err.Error(), "group.id_in_subsession")
	assert.Contains(t, err.Error(), "player.state")
}

func TestLoadSegmentFile_FloatEncodedInt(t *testing.T) {
	dir := t.TempDir()
	path := writeSegmentCSV(t, dir, "chat_noavg_2024.csv",
		segmentHeader+"A,1.0,2.0,3.0,1.0,0.675,4,0\n")

	seg, err := LoadSegmentFile(path)
	require.NoError(t, err)
	require.Len(t, seg.Rows, 1)
	assert.Equal(t, 2, seg.Rows[0].Round)
	assert.Equal(t, 3, seg.Rows[0].Period)
	assert.Equal(t, 1, seg.Rows[0].Sold)
}

func TestLoadSegmentFile_GarbageValue(t *testing.T) {
	dir := t.TempDir()
	path := writeSegmentCSV(t, dir, "chat_noavg_2024.csv",
		segmentHeader+"A,1,1,abc,0,0.5,8,1\n")

	_, err := LoadSegmentFile(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsIntegrityError(err))
}

func TestLoadSegmentFile_SkipsUnlabeledRows(t *testing.T) {
	dir := t.TempDir()
	path := writeSegmentCSV(t, dir, "chat_noavg_2024.csv",
		segmentHeader+",1,1,1,0,0.5,8,1\nA,1,1,1,0,0.5,8,1\n")

	seg, err := LoadSegmentFile(path)
	require.NoError(t, err)
	assert.Len(t, seg.Rows, 1)
}

func TestLoader_LoadSession(t *testing.T) {
	base := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{DatastoreDir: base})
	sessionDir := filepath.Join(base, "1_11-7-tr1")
	require.NoError(t, os.MkdirAll(sessionDir, 0755))

	writeSegmentCSV(t, sessionDir, "chat_noavg_2024-11-07.csv",
		segmentHeader+"A,1,1,1,0,0.5,8,1\n")
	writeSegmentCSV(t, sessionDir, "chat_noavg2_2024-11-07.csv",
		segmentHeader+"A,1,1,1,1,0.5,8,0\n")

	loader := NewLoader(paths, nil)
	segments := []string{"chat_noavg", "chat_noavg2", "chat_noavg3"}
	loaded, err := loader.LoadSession("1_11-7-tr1", "tr1", segments)
	require.NoError(t, err)

	// chat_noavg3 has no export and is skipped with a warning.
	require.Len(t, loaded, 2)
	assert.Equal(t, 1, loaded[0].SegmentNum)
	assert.Equal(t, "chat_noavg", loaded[0].Name)
	assert.Equal(t, "tr1", loaded[0].Treatment)
	assert.Equal(t, 2, loaded[1].SegmentNum)
}

func TestFindSegmentFile_Multiple(t *testing.T) {
	dir := t.TempDir()
	writeSegmentCSV(t, dir, "chat_noavg_a.csv", segmentHeader)
	writeSegmentCSV(t, dir, "chat_noavg_b.csv", segmentHeader)

	_, err := findSegmentFile(dir, "chat_noavg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected exactly one")
}

func TestSegment_GroupRounds(t *testing.T) {
	seg := &Segment{Rows: []Row{
		{Label: "B", GroupID: 1, Round: 1, Period: 2},
		{Label: "A", GroupID: 1, Round: 1, Period: 1},
		{Label: "A", GroupID: 2, Round: 1, Period: 1},
		{Label: "B", GroupID: 1, Round: 1, Period: 1},
	}}

	byKey := seg.GroupRounds()
	require.Len(t, byKey, 2)

	rows := byKey[GroupRoundKey{GroupID: 1, Round: 1}]
	require.Len(t, rows, 3)
	// Sorted by period, then label.
	assert.Equal(t, "A", rows[0].Label)
	assert.Equal(t, "B", rows[1].Label)
	assert.Equal(t, 2, rows[2].Period)

	keys := SortedKeys(byKey)
	assert.Equal(t, GroupRoundKey{GroupID: 1, Round: 1}, keys[0])
	assert.Equal(t, GroupRoundKey{GroupID: 2, Round: 1}, keys[1])
}

func TestPlayers(t *testing.T) {
	rows := []Row{
		{Label: "C"}, {Label: "A"}, {Label: "C"}, {Label: "B"},
	}
	assert.Equal(t, []string{"A", "B", "C"}, Players(rows))
}
