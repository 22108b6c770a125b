package exporter

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketruns/pkg/contracts/domain"
)

func TestWriteFirstSaleHistogram(t *testing.T) {
	paths := testPaths(t)
	w := NewPlotWriter(paths)

	records := []domain.FirstSaleRecord{
		{FirstSalePeriod: intPtr(3)},
		{FirstSalePeriod: intPtr(3)},
		{FirstSalePeriod: intPtr(5)},
		{},
	}
	require.NoError(t, w.WriteFirstSaleHistogram(records))

	data, err := os.ReadFile(paths.PlotPath(FileFirstSalePlot))
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "<?xml"))
	assert.Contains(t, content, "<svg")
	assert.Contains(t, content, "</svg>")
	assert.Contains(t, content, "First-sale period distribution")
	// Two occupied bins, two bars.
	assert.Equal(t, 2, strings.Count(content, barStyle))
}

func TestWriteFirstSaleHistogram_NoSales(t *testing.T) {
	paths := testPaths(t)
	w := NewPlotWriter(paths)

	require.NoError(t, w.WriteFirstSaleHistogram([]domain.FirstSaleRecord{{}}))

	data, err := os.ReadFile(paths.PlotPath(FileFirstSalePlot))
	require.NoError(t, err)
	assert.Contains(t, string(data), "</svg>")
}

func TestWriteCascadeCurve(t *testing.T) {
	paths := testPaths(t)
	w := NewPlotWriter(paths)

	points := []CascadePoint{
		{PriorSales: 0, Observed: 10, Sold: 2},
		{PriorSales: 1, Observed: 8, Sold: 4},
		{PriorSales: 2, Observed: 4, Sold: 3},
	}
	require.NoError(t, w.WriteCascadeCurve(points))

	data, err := os.ReadFile(paths.PlotPath(FileCascadePlot))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "Sale rate by prior group sales")
	assert.Contains(t, content, "<polyline")
	assert.Equal(t, 3, strings.Count(content, "<circle"))
}
