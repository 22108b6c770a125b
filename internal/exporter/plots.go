package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"

	"marketruns/internal/config"
	"marketruns/pkg/contracts/domain"
)

// SVG plot filenames.
const (
	FileFirstSalePlot = "first_sale_period_histogram.svg"
	FileCascadePlot   = "cascade_sale_rates.svg"
)

const (
	plotWidth    = 720
	plotHeight   = 480
	plotMargin   = 60
	axisStyle    = "stroke:#333;stroke-width:1"
	barStyle     = "fill:#4878a8"
	labelStyle   = `text-anchor:middle;font-size:12px;font-family:Helvetica Neue`
	titleStyle   = `text-anchor:middle;font-size:16px;font-family:Helvetica Neue`
	yLabelStyle  = `text-anchor:end;font-size:12px;font-family:Helvetica Neue`
	cascadeStyle = "stroke:#a84848;stroke-width:2;fill:none"
	pointStyle   = "fill:#a84848"
)

// PlotWriter renders SVG figures into the configured plots directory.
type PlotWriter struct {
	paths *config.Paths
}

// NewPlotWriter creates a plot writer.
func NewPlotWriter(paths *config.Paths) *PlotWriter {
	return &PlotWriter{paths: paths}
}

// WriteFirstSaleHistogram renders the distribution of first-sale periods
// across all group-rounds. Rounds without a sale are excluded.
func (w *PlotWriter) WriteFirstSaleHistogram(records []domain.FirstSaleRecord) error {
	counts := make(map[int]int)
	maxPeriod := 0
	for _, r := range records {
		if r.FirstSalePeriod == nil {
			continue
		}
		counts[*r.FirstSalePeriod]++
		if *r.FirstSalePeriod > maxPeriod {
			maxPeriod = *r.FirstSalePeriod
		}
	}

	return w.render(FileFirstSalePlot, func(s *svg.SVG) {
		s.Text(plotWidth/2, plotMargin/2, "First-sale period distribution", titleStyle)
		drawAxes(s)

		maxCount := 0
		for _, c := range counts {
			if c > maxCount {
				maxCount = c
			}
		}
		if maxCount == 0 {
			return
		}

		innerW := plotWidth - 2*plotMargin
		innerH := plotHeight - 2*plotMargin
		barW := innerW / maxPeriod
		for period := 1; period <= maxPeriod; period++ {
			c := counts[period]
			h := c * innerH / maxCount
			x := plotMargin + (period-1)*barW
			y := plotHeight - plotMargin - h
			if c > 0 {
				s.Rect(x+2, y, barW-4, h, barStyle)
			}
			s.Text(x+barW/2, plotHeight-plotMargin+18, formatInt(period), labelStyle)
			if c > 0 {
				s.Text(x+barW/2, y-6, formatInt(c), labelStyle)
			}
		}
	})
}

// WriteCascadeCurve renders the sale rate against the prior-group-sales
// level, the observable cascade signature.
func (w *PlotWriter) WriteCascadeCurve(points []CascadePoint) error {
	return w.render(FileCascadePlot, func(s *svg.SVG) {
		s.Text(plotWidth/2, plotMargin/2, "Sale rate by prior group sales", titleStyle)
		drawAxes(s)
		if len(points) == 0 {
			return
		}

		innerW := plotWidth - 2*plotMargin
		innerH := plotHeight - 2*plotMargin
		maxLevel := points[len(points)-1].PriorSales
		if maxLevel == 0 {
			maxLevel = 1
		}

		xs := make([]int, len(points))
		ys := make([]int, len(points))
		for i, p := range points {
			xs[i] = plotMargin + p.PriorSales*innerW/maxLevel
			ys[i] = plotHeight - plotMargin - int(p.Rate()*float64(innerH))
		}
		s.Polyline(xs, ys, cascadeStyle)
		for i, p := range points {
			s.Circle(xs[i], ys[i], 4, pointStyle)
			s.Text(xs[i], plotHeight-plotMargin+18, formatInt(p.PriorSales), labelStyle)
			s.Text(xs[i], ys[i]-10, fmt.Sprintf("%.2f", p.Rate()), labelStyle)
		}
		for _, tick := range []float64{0, 0.25, 0.5, 0.75, 1} {
			y := plotHeight - plotMargin - int(tick*float64(innerH))
			s.Text(plotMargin-8, y+4, fmt.Sprintf("%.2f", tick), yLabelStyle)
		}
	})
}

func (w *PlotWriter) render(filename string, draw func(*svg.SVG)) error {
	fullPath := w.paths.PlotPath(filename)

	slog.Info("Writing SVG plot", slog.String("file_path", filename))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create plot %s: %w", filename, err)
	}
	defer f.Close()

	s := svg.New(f)
	s.Start(plotWidth, plotHeight)
	draw(s)
	s.End()
	return nil
}

func drawAxes(s *svg.SVG) {
	s.Line(plotMargin, plotHeight-plotMargin, plotWidth-plotMargin, plotHeight-plotMargin, axisStyle)
	s.Line(plotMargin, plotMargin, plotMargin, plotHeight-plotMargin, axisStyle)
}
