package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketruns/pkg/contracts/domain"
)

func TestSummarizeFirstSales(t *testing.T) {
	records := []domain.FirstSaleRecord{
		{Treatment: "tr1", FirstSalePeriod: intPtr(3), SignalAtFirstSale: floatPtr(0.6)},
		{Treatment: "tr1", FirstSalePeriod: intPtr(5), SignalAtFirstSale: floatPtr(0.7)},
		{Treatment: "tr1"},
		{Treatment: "tr2", FirstSalePeriod: intPtr(4), SignalAtFirstSale: floatPtr(0.65)},
	}

	summaries := SummarizeFirstSales(records)
	require.Len(t, summaries, 2)

	tr1 := summaries[0]
	assert.Equal(t, "tr1", tr1.Treatment)
	assert.Equal(t, 3, tr1.Rounds)
	assert.Equal(t, 2, tr1.RoundsWithSale)
	assert.InDelta(t, 4.0, tr1.FirstSalePeriod.Mean, 1e-9)
	assert.InDelta(t, 0.65, tr1.SignalAtSale.Mean, 1e-9)

	tr2 := summaries[1]
	assert.Equal(t, "tr2", tr2.Treatment)
	assert.Equal(t, 1, tr2.Rounds)
	assert.Equal(t, 1, tr2.RoundsWithSale)
	assert.InDelta(t, 4.0, tr2.FirstSalePeriod.Mean, 1e-9)
}

func TestSummarizeTraits(t *testing.T) {
	records := []domain.TraitRecord{
		{Extraversion: 3, StateAnxiety: 2},
		{Extraversion: 5, StateAnxiety: 3},
	}

	summaries := SummarizeTraits(records)
	require.Len(t, summaries, 7)

	assert.Equal(t, "extraversion", summaries[0].Trait)
	assert.InDelta(t, 4.0, summaries[0].Stat.Mean, 1e-9)
	assert.Equal(t, 2, summaries[0].Stat.N)
	assert.InDelta(t, 3.0, summaries[0].Stat.Min, 1e-9)
	assert.InDelta(t, 5.0, summaries[0].Stat.Max, 1e-9)

	assert.Equal(t, "state_anxiety", summaries[6].Trait)
	assert.InDelta(t, 2.5, summaries[6].Stat.Mean, 1e-9)
}

func TestNewStat_Empty(t *testing.T) {
	s := NewStat(nil)
	assert.Zero(t, s.N)
	assert.Zero(t, s.Mean)
}

func TestCascadeCurve(t *testing.T) {
	records := []domain.PlayerPeriodRecord{
		// At-risk observations at prior-sales 0.
		{PriorGroupSales: 0, Sold: 0},
		{PriorGroupSales: 0, Sold: 0},
		{PriorGroupSales: 0, Sold: 1},
		// At prior-sales 2 the sale rate doubles.
		{PriorGroupSales: 2, Sold: 1},
		{PriorGroupSales: 2, Sold: 1},
		{PriorGroupSales: 2, Sold: 0},
		// Players already out of the market never count.
		{PriorGroupSales: 2, AlreadySold: 1},
	}

	points := CascadeCurve(records)
	require.Len(t, points, 2)

	assert.Equal(t, 0, points[0].PriorSales)
	assert.Equal(t, 3, points[0].Observed)
	assert.Equal(t, 1, points[0].Sold)
	assert.InDelta(t, 1.0/3.0, points[0].Rate(), 1e-9)

	assert.Equal(t, 2, points[1].PriorSales)
	assert.Equal(t, 3, points[1].Observed)
	assert.InDelta(t, 2.0/3.0, points[1].Rate(), 1e-9)
}

func TestCascadePoint_RateEmpty(t *testing.T) {
	assert.Zero(t, CascadePoint{}.Rate())
}
