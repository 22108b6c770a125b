package telemetry

import (
	"math"
	"sort"

	"github.com/GaryBoone/GoStats/stats"

	"marketruns/pkg/contracts/domain"
)

// periodFrames collects per-channel frame values for one annotation window.
type periodFrames struct {
	values map[string][]float64
	count  int
}

func newPeriodFrames() *periodFrames {
	return &periodFrames{values: make(map[string][]float64)}
}

// aggregate reduces the collected frames to per-channel statistics. Channels
// with no valid frame in the window are left out of the map entirely rather
// than reported as zero.
func (pf *periodFrames) aggregate() (map[string]domain.EmotionStats, int) {
	channels := make(map[string]domain.EmotionStats)
	for _, name := range domain.EmotionChannels {
		vals := pf.values[name]
		if len(vals) == 0 {
			continue
		}
		channels[name] = domain.EmotionStats{
			Mean: stats.StatsMean(vals),
			Max:  stats.StatsMax(vals),
			P95:  percentile(vals, 95),
		}
	}
	return channels, pf.count
}

// percentile computes the p-th percentile with linear interpolation between
// the two nearest order statistics.
func percentile(vals []float64, p float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
