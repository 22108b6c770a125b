package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteSummaryWorkbook(t *testing.T) {
	paths := testPaths(t)
	w := NewWorkbookWriter(paths)

	err := w.WriteSummary(
		[]DatasetCount{
			{Name: FilePlayerPeriods, Rows: 960},
			{Name: FileFirstSales, Rows: 48},
		},
		[]FirstSaleSummary{
			{Treatment: "tr1", Rounds: 24, RoundsWithSale: 20,
				FirstSalePeriod: Stat{Mean: 4.5}},
		},
		[]TraitSummary{
			{Trait: "extraversion", Stat: Stat{N: 16, Mean: 4.2}},
		},
		[]CascadePoint{
			{PriorSales: 0, Observed: 100, Sold: 10},
		},
	)
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.TablePath(FileSummaryWorkbook))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.ElementsMatch(t, []string{"Datasets", "First Sales", "Traits", "Cascade"}, sheets)

	name, err := f.GetCellValue("Datasets", "A2")
	require.NoError(t, err)
	assert.Equal(t, FilePlayerPeriods, name)

	rowCount, err := f.GetCellValue("Datasets", "B2")
	require.NoError(t, err)
	assert.Equal(t, "960", rowCount)

	treatment, err := f.GetCellValue("First Sales", "A2")
	require.NoError(t, err)
	assert.Equal(t, "tr1", treatment)

	rate, err := f.GetCellValue("Cascade", "D2")
	require.NoError(t, err)
	assert.Equal(t, "0.1", rate)
}
