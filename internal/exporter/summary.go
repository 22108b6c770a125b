package exporter

import (
	"sort"

	"github.com/GaryBoone/GoStats/stats"

	"marketruns/pkg/contracts/domain"
)

// Stat summarizes one numeric series.
type Stat struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	N      int
}

// NewStat computes summary statistics over data. Zero-valued for empty input.
func NewStat(data []float64) Stat {
	if len(data) == 0 {
		return Stat{}
	}
	return Stat{
		Min:    stats.StatsMin(data),
		Max:    stats.StatsMax(data),
		Mean:   stats.StatsMean(data),
		StdDev: stats.StatsPopulationStandardDeviation(data),
		N:      len(data),
	}
}

// FirstSaleSummary aggregates first-sale outcomes for one treatment arm.
type FirstSaleSummary struct {
	Treatment       string
	Rounds          int
	RoundsWithSale  int
	FirstSalePeriod Stat
	SignalAtSale    Stat
}

// SummarizeFirstSales groups first-sale records by treatment, sorted by
// treatment name.
func SummarizeFirstSales(records []domain.FirstSaleRecord) []FirstSaleSummary {
	byTreatment := make(map[string]*FirstSaleSummary)
	periods := make(map[string][]float64)
	signals := make(map[string][]float64)

	for _, r := range records {
		s, ok := byTreatment[r.Treatment]
		if !ok {
			s = &FirstSaleSummary{Treatment: r.Treatment}
			byTreatment[r.Treatment] = s
		}
		s.Rounds++
		if r.FirstSalePeriod != nil {
			s.RoundsWithSale++
			periods[r.Treatment] = append(periods[r.Treatment], float64(*r.FirstSalePeriod))
		}
		if r.SignalAtFirstSale != nil {
			signals[r.Treatment] = append(signals[r.Treatment], *r.SignalAtFirstSale)
		}
	}

	names := make([]string, 0, len(byTreatment))
	for name := range byTreatment {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]FirstSaleSummary, 0, len(names))
	for _, name := range names {
		s := byTreatment[name]
		s.FirstSalePeriod = NewStat(periods[name])
		s.SignalAtSale = NewStat(signals[name])
		out = append(out, *s)
	}
	return out
}

// TraitSummary holds summary statistics for one survey trait across all
// scored participants.
type TraitSummary struct {
	Trait string
	Stat  Stat
}

// SummarizeTraits computes per-trait statistics in canonical trait order.
func SummarizeTraits(records []domain.TraitRecord) []TraitSummary {
	extract := []struct {
		name string
		get  func(*domain.TraitRecord) float64
	}{
		{"extraversion", func(t *domain.TraitRecord) float64 { return t.Extraversion }},
		{"agreeableness", func(t *domain.TraitRecord) float64 { return t.Agreeableness }},
		{"conscientiousness", func(t *domain.TraitRecord) float64 { return t.Conscientiousness }},
		{"neuroticism", func(t *domain.TraitRecord) float64 { return t.Neuroticism }},
		{"openness", func(t *domain.TraitRecord) float64 { return t.Openness }},
		{"impulsivity", func(t *domain.TraitRecord) float64 { return t.Impulsivity }},
		{"state_anxiety", func(t *domain.TraitRecord) float64 { return t.StateAnxiety }},
	}

	out := make([]TraitSummary, 0, len(extract))
	for _, e := range extract {
		values := make([]float64, 0, len(records))
		for i := range records {
			values = append(values, e.get(&records[i]))
		}
		out = append(out, TraitSummary{Trait: e.name, Stat: NewStat(values)})
	}
	return out
}

// CascadePoint is one observed prior-sales level with its realized sale rate.
type CascadePoint struct {
	PriorSales int
	Observed   int
	Sold       int
}

// Rate returns the share of observations at this prior-sales level that
// ended in a sale.
func (p CascadePoint) Rate() float64 {
	if p.Observed == 0 {
		return 0
	}
	return float64(p.Sold) / float64(p.Observed)
}

// CascadeCurve computes the sale rate per prior-group-sales level over all
// at-risk player-periods (players that have not sold yet).
func CascadeCurve(records []domain.PlayerPeriodRecord) []CascadePoint {
	byLevel := make(map[int]*CascadePoint)
	for _, r := range records {
		if r.AlreadySold == 1 {
			continue
		}
		p, ok := byLevel[r.PriorGroupSales]
		if !ok {
			p = &CascadePoint{PriorSales: r.PriorGroupSales}
			byLevel[r.PriorGroupSales] = p
		}
		p.Observed++
		if r.Sold == 1 {
			p.Sold++
		}
	}

	levels := make([]int, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	out := make([]CascadePoint, 0, len(levels))
	for _, level := range levels {
		out = append(out, *byLevel[level])
	}
	return out
}
