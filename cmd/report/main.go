// Command report renders the reporting artifacts from the derived datasets:
// LaTeX table fragments, SVG plots and the Excel summary workbook. It never
// touches the raw exports; run derive first.
package main

import (
	"bufio"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"marketruns/internal/config"
	"marketruns/internal/dataset"
	"marketruns/internal/exporter"
	"marketruns/internal/infrastructure"
)

func main() {
	configFile := flag.String("config", "", "path to config file (defaults to config.yaml)")
	flag.Parse()

	if *configFile != "" {
		os.Setenv("MARKETRUNS_CONFIG_FILE", *configFile)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureOutputDirs(); err != nil {
		logger.Error("Failed to create output directories", "error", err)
		os.Exit(1)
	}

	if err := run(paths, logger); err != nil {
		logger.Error("Report generation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("report generation finished",
		slog.String("tables_dir", paths.TablesDir),
		slog.String("plots_dir", paths.PlotsDir))
}

func run(paths *config.Paths, logger *slog.Logger) error {
	firstSales, err := dataset.ReadFirstSales(paths.DerivedPath(exporter.FileFirstSales))
	if err != nil {
		return err
	}
	periods, err := dataset.ReadPlayerPeriods(paths.DerivedPath(exporter.FilePlayerPeriods))
	if err != nil {
		return err
	}
	traits, err := dataset.ReadTraits(paths.DerivedPath(exporter.FileSurveyTraits))
	if err != nil {
		return err
	}

	saleSummaries := exporter.SummarizeFirstSales(firstSales)
	traitSummaries := exporter.SummarizeTraits(traits)
	cascade := exporter.CascadeCurve(periods)

	latex := exporter.NewLaTeXWriter(paths)
	if err := latex.WriteFirstSaleSummary(saleSummaries); err != nil {
		return err
	}
	if err := latex.WriteTraitSummary(traitSummaries); err != nil {
		return err
	}
	if err := latex.WriteCascadeTable(cascade); err != nil {
		return err
	}

	plots := exporter.NewPlotWriter(paths)
	if err := plots.WriteFirstSaleHistogram(firstSales); err != nil {
		return err
	}
	if err := plots.WriteCascadeCurve(cascade); err != nil {
		return err
	}

	counts, err := derivedRowCounts(paths.DerivedDir)
	if err != nil {
		return err
	}
	workbook := exporter.NewWorkbookWriter(paths)
	if err := workbook.WriteSummary(counts, saleSummaries, traitSummaries, cascade); err != nil {
		return err
	}

	logger.Info("reporting inputs summarized",
		slog.Int("first_sale_rounds", len(firstSales)),
		slog.Int("player_periods", len(periods)),
		slog.Int("scored_participants", len(traits)))
	return nil
}

// derivedRowCounts counts the data rows of every derived CSV for the
// workbook overview sheet.
func derivedRowCounts(dir string) ([]exporter.DatasetCount, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var counts []exporter.DatasetCount
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		rows, err := countDataRows(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		counts = append(counts, exporter.DatasetCount{Name: entry.Name(), Rows: rows})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Name < counts[j].Name })
	return counts, nil
}

func countDataRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			lines++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if lines == 0 {
		return 0, nil
	}
	return lines - 1, nil
}
