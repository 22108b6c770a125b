package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"marketruns/internal/config"
)

// FileSummaryWorkbook is the Excel summary workbook filename.
const FileSummaryWorkbook = "summary_workbook.xlsx"

// DatasetCount is one dataset name with its exported row count, shown on the
// workbook overview sheet.
type DatasetCount struct {
	Name string
	Rows int
}

// WorkbookWriter renders the Excel summary workbook. The workbook carries
// the same summaries as the LaTeX tables in a form collaborators can browse
// without a TeX toolchain.
type WorkbookWriter struct {
	paths *config.Paths
}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter(paths *config.Paths) *WorkbookWriter {
	return &WorkbookWriter{paths: paths}
}

// WriteSummary writes the workbook with one sheet per summary plus an
// overview of exported dataset row counts.
func (w *WorkbookWriter) WriteSummary(
	datasets []DatasetCount,
	firstSales []FirstSaleSummary,
	traits []TraitSummary,
	cascade []CascadePoint,
) error {
	fullPath := w.paths.TablePath(FileSummaryWorkbook)

	slog.Info("Writing summary workbook",
		slog.String("file_path", FileSummaryWorkbook),
		slog.Int("dataset_count", len(datasets)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Datasets"); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	datasetRows := make([][]interface{}, 0, len(datasets))
	for _, d := range datasets {
		datasetRows = append(datasetRows, []interface{}{d.Name, d.Rows})
	}
	if err := writeSheet(f, "Datasets", []string{"Dataset", "Rows"}, datasetRows); err != nil {
		return err
	}

	saleRows := make([][]interface{}, 0, len(firstSales))
	for _, s := range firstSales {
		saleRows = append(saleRows, []interface{}{
			s.Treatment, s.Rounds, s.RoundsWithSale,
			s.FirstSalePeriod.Mean, s.FirstSalePeriod.StdDev, s.SignalAtSale.Mean,
		})
	}
	if err := addSheet(f, "First Sales", []string{
		"Treatment", "Rounds", "Rounds with sale",
		"Mean first-sale period", "SD", "Mean signal at sale",
	}, saleRows); err != nil {
		return err
	}

	traitRows := make([][]interface{}, 0, len(traits))
	for _, t := range traits {
		traitRows = append(traitRows, []interface{}{
			t.Trait, t.Stat.N, t.Stat.Mean, t.Stat.StdDev, t.Stat.Min, t.Stat.Max,
		})
	}
	if err := addSheet(f, "Traits", []string{
		"Trait", "N", "Mean", "SD", "Min", "Max",
	}, traitRows); err != nil {
		return err
	}

	cascadeRows := make([][]interface{}, 0, len(cascade))
	for _, p := range cascade {
		cascadeRows = append(cascadeRows, []interface{}{
			p.PriorSales, p.Observed, p.Sold, p.Rate(),
		})
	}
	if err := addSheet(f, "Cascade", []string{
		"Prior group sales", "At-risk obs", "Sales", "Sale rate",
	}, cascadeRows); err != nil {
		return err
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	return writeSheet(f, name, headers, rows)
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return fmt.Errorf("failed to write header %s: %w", header, err)
		}
	}
	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s!%s: %w", name, cell, err)
			}
		}
	}
	return nil
}
