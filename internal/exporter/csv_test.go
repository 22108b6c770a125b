package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketruns/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	return config.NewPaths(config.PathsConfig{
		DatastoreDir: base,
		TablesDir:    filepath.Join(base, "tables"),
		PlotsDir:     filepath.Join(base, "plots"),
	})
}

func TestWriteSimpleCSV(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths)

	err := w.WriteSimpleCSV("out.csv", []string{"a", "b"}, [][]string{
		{"1", "x"},
		{"2", ""},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(paths.DerivedPath("out.csv"))
	require.NoError(t, err)

	// BOM prefix, then header and records.
	assert.Equal(t, "\ufeffa,b\n1,x\n2,\n", string(data))
}

func TestWriteCSV_Append(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths)

	require.NoError(t, w.WriteSimpleCSV("out.csv", []string{"a"}, [][]string{{"1"}}))
	require.NoError(t, w.WriteCSV("out.csv", WriteOptions{
		Records: [][]string{{"2"}},
		Append:  true,
	}))

	data, err := os.ReadFile(paths.DerivedPath("out.csv"))
	require.NoError(t, err)
	assert.Equal(t, "\ufeffa\n1\n2\n", string(data))
}

func TestWriteCSV_AbsolutePath(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths)

	target := filepath.Join(t.TempDir(), "elsewhere", "out.csv")
	require.NoError(t, w.WriteCSV(target, WriteOptions{
		Headers: []string{"a"},
		Records: [][]string{{"1"}},
	}))

	_, err := os.Stat(target)
	assert.NoError(t, err)
}

func TestStreamWriter(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths)

	sw, err := w.CreateStreamWriter("stream.csv", []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"1", "x"}))
	require.NoError(t, sw.WriteRecord([]string{"2", "y"}))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(paths.DerivedPath("stream.csv"))
	require.NoError(t, err)
	assert.Equal(t, "\ufeffa,b\n1,x\n2,y\n", string(data))
}
