package dataset

import (
	"marketruns/internal/sessiondata"
)

// cascadeSegment builds the canonical test segment: one group of four where
// A and B sell in period 3, C follows in period 4, and D holds through
// period 5. Signals rise over the periods; prices fall from the opening
// price.
func cascadeSegment() *sessiondata.Segment {
	patterns := map[string][]int{
		"A": {0, 0, 1, 1, 1},
		"B": {0, 0, 1, 1, 1},
		"C": {0, 0, 0, 1, 1},
		"D": {0, 0, 0, 0, 0},
	}
	signals := []float64{0.5, 0.55, 0.6, 0.675, 0.75}
	prices := []float64{8, 6, 4, 2, 0}

	seg := &sessiondata.Segment{
		SessionID:  "1_11-7-tr1",
		Treatment:  "tr1",
		SegmentNum: 1,
		Name:       "chat_noavg",
	}
	for label, flags := range patterns {
		for i, sold := range flags {
			signal := signals[i]
			price := prices[i]
			seg.Rows = append(seg.Rows, sessiondata.Row{
				Label:   label,
				GroupID: 1,
				Round:   1,
				Period:  i + 1,
				Sold:    sold,
				Signal:  &signal,
				Price:   &price,
				State:   1,
			})
		}
	}
	return seg
}

// noSaleSegment builds a segment with a single two-player round where nobody
// sells.
func noSaleSegment() *sessiondata.Segment {
	seg := &sessiondata.Segment{
		SessionID:  "1_11-7-tr1",
		Treatment:  "tr1",
		SegmentNum: 2,
		Name:       "chat_noavg2",
	}
	for _, label := range []string{"A", "B"} {
		for period := 1; period <= 3; period++ {
			seg.Rows = append(seg.Rows, sessiondata.Row{
				Label:   label,
				GroupID: 1,
				Round:   1,
				Period:  period,
				State:   0,
			})
		}
	}
	return seg
}
