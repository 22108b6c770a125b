package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"marketruns/internal/config"
)

// LaTeX table fragment filenames.
const (
	FileFirstSaleTable = "first_sale_summary.tex"
	FileTraitTable     = "survey_trait_summary.tex"
	FileCascadeTable   = "cascade_sale_rates.tex"
)

// LaTeXWriter renders summary tables as tabular fragments meant to be
// \input into a document. Fragments carry no table environment or caption.
type LaTeXWriter struct {
	paths *config.Paths
}

// NewLaTeXWriter creates a LaTeX table writer rooted at the configured
// tables directory.
func NewLaTeXWriter(paths *config.Paths) *LaTeXWriter {
	return &LaTeXWriter{paths: paths}
}

// WriteTabular writes a tabular fragment with the given column alignment
// string (e.g. "lrrr"), header cells and body rows.
func (w *LaTeXWriter) WriteTabular(filename, alignment string, headers []string, rows [][]string) error {
	fullPath := w.paths.TablePath(filename)

	slog.Info("Writing LaTeX table",
		slog.String("file_path", filename),
		slog.Int("row_count", len(rows)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\\begin{tabular}{%s}\n\\toprule\n", alignment)
	b.WriteString(latexRow(headers))
	b.WriteString("\\midrule\n")
	for _, row := range rows {
		b.WriteString(latexRow(row))
	}
	b.WriteString("\\bottomrule\n\\end{tabular}\n")

	if err := os.WriteFile(fullPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write table %s: %w", filename, err)
	}
	return nil
}

// WriteFirstSaleSummary renders the per-treatment first-sale table.
func (w *LaTeXWriter) WriteFirstSaleSummary(summaries []FirstSaleSummary) error {
	headers := []string{
		"Treatment", "Rounds", "Rounds w/ sale",
		"Mean first-sale period", "SD", "Mean signal at sale",
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			EscapeLaTeX(s.Treatment),
			formatInt(s.Rounds),
			formatInt(s.RoundsWithSale),
			fmt.Sprintf("%.2f", s.FirstSalePeriod.Mean),
			fmt.Sprintf("%.2f", s.FirstSalePeriod.StdDev),
			fmt.Sprintf("%.3f", s.SignalAtSale.Mean),
		})
	}
	return w.WriteTabular(FileFirstSaleTable, "lrrrrr", headers, rows)
}

// WriteTraitSummary renders the survey trait statistics table.
func (w *LaTeXWriter) WriteTraitSummary(summaries []TraitSummary) error {
	headers := []string{"Trait", "N", "Mean", "SD", "Min", "Max"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			EscapeLaTeX(strings.ReplaceAll(s.Trait, "_", " ")),
			formatInt(s.Stat.N),
			fmt.Sprintf("%.2f", s.Stat.Mean),
			fmt.Sprintf("%.2f", s.Stat.StdDev),
			fmt.Sprintf("%.2f", s.Stat.Min),
			fmt.Sprintf("%.2f", s.Stat.Max),
		})
	}
	return w.WriteTabular(FileTraitTable, "lrrrrr", headers, rows)
}

// WriteCascadeTable renders the sale rate per prior-group-sales level.
func (w *LaTeXWriter) WriteCascadeTable(points []CascadePoint) error {
	headers := []string{"Prior group sales", "At-risk obs.", "Sales", "Sale rate"}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			formatInt(p.PriorSales),
			formatInt(p.Observed),
			formatInt(p.Sold),
			fmt.Sprintf("%.3f", p.Rate()),
		})
	}
	return w.WriteTabular(FileCascadeTable, "lrrr", headers, rows)
}

func latexRow(cells []string) string {
	return strings.Join(cells, " & ") + " \\\\\n"
}

var latexReplacer = strings.NewReplacer(
	"\\", "\\textbackslash{}",
	"&", "\\&",
	"%", "\\%",
	"$", "\\$",
	"#", "\\#",
	"_", "\\_",
	"{", "\\{",
	"}", "\\}",
	"~", "\\textasciitilde{}",
	"^", "\\textasciicircum{}",
)

// EscapeLaTeX escapes LaTeX special characters in free-form cell text.
func EscapeLaTeX(s string) string {
	return latexReplacer.Replace(s)
}
