package survey

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketruns/internal/config"
)

// surveyCSV builds a survey export with the given participant rows. Each row
// maps question columns to answers; unspecified questions get a sensible
// complete default.
func surveyCSV(t *testing.T, dir, sessionID string, rows []map[string]string) {
	t.Helper()
	cols := []string{"participant.label"}
	for i := 1; i <= 26; i++ {
		cols = append(cols, fmt.Sprintf("player.q%d", i))
	}

	var b strings.Builder
	b.WriteString(strings.Join(cols, ",") + "\n")
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			if v, ok := row[col]; ok {
				cells[i] = v
			}
		}
		b.WriteString(strings.Join(cells, ",") + "\n")
	}

	sessionDir := filepath.Join(dir, sessionID)
	require.NoError(t, os.MkdirAll(sessionDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(sessionDir, "survey_2024-11-07.csv"),
		[]byte(b.String()), 0644))
}

// completeRow answers everything neutrally for one participant.
func completeRow(label string) map[string]string {
	row := map[string]string{"participant.label": label}
	for i := 1; i <= 6; i++ {
		row[fmt.Sprintf("player.q%d", i)] = "Somewhat"
	}
	for i := 7; i <= 24; i++ {
		row[fmt.Sprintf("player.q%d", i)] = "Neither agree nor disagree"
	}
	row["player.q25"] = "21.0"
	row["player.q26"] = "Female"
	return row
}

func TestLoader_LoadSession(t *testing.T) {
	base := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{DatastoreDir: base})

	incomplete := completeRow("B")
	delete(incomplete, "player.q14")
	surveyCSV(t, base, "1_11-7-tr1", []map[string]string{
		completeRow("A"),
		incomplete,
	})

	loader := NewLoader(paths, nil)
	records, err := loader.LoadSession("1_11-7-tr1")
	require.NoError(t, err)

	// B has an unanswered scored question and is dropped, not half-scored.
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "A", rec.Player)
	assert.Equal(t, "1_11-7-tr1", rec.SessionID)
	assert.InDelta(t, 4.0, rec.Openness, 1e-9)
	assert.Equal(t, 21, rec.Age)
	assert.Equal(t, "Female", rec.Gender)
}

func TestLoader_LoadSession_MissingDemographicsKept(t *testing.T) {
	base := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{DatastoreDir: base})

	row := completeRow("C")
	delete(row, "player.q25")
	delete(row, "player.q26")
	surveyCSV(t, base, "1_11-7-tr1", []map[string]string{row})

	loader := NewLoader(paths, nil)
	records, err := loader.LoadSession("1_11-7-tr1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].Age)
	assert.Equal(t, "", records[0].Gender)
}

func TestLoader_LoadSession_NoExport(t *testing.T) {
	base := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{DatastoreDir: base})

	loader := NewLoader(paths, nil)
	records, err := loader.LoadSession("1_11-7-tr1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoader_LoadSession_MissingColumns(t *testing.T) {
	base := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{DatastoreDir: base})
	sessionDir := filepath.Join(base, "1_11-7-tr1")
	require.NoError(t, os.MkdirAll(sessionDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(sessionDir, "survey_x.csv"),
		[]byte("participant.label,player.q1\nA,Somewhat\n"), 0644))

	loader := NewLoader(paths, nil)
	_, err := loader.LoadSession("1_11-7-tr1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player.q26")
}
