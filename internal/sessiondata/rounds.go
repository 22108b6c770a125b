package sessiondata

import (
	apperrors "marketruns/internal/errors"
)

// RoundTable lists the number of periods of each round in a segment, in
// round order. Round counts vary per session because the number of rounds
// is a capped geometric draw; period counts vary per round.
type RoundTable []int

// TotalPeriods returns the flat period count covered by the table.
func (t RoundTable) TotalPeriods() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Locate maps a flat 1-based oTree round counter to its
// (round_number_in_segment, period_in_round) pair.
func (t RoundTable) Locate(flatRound int) (round, period int, err error) {
	if flatRound < 1 {
		return 0, 0, apperrors.NewIntegrityError("flat round counter %d is not positive", flatRound)
	}
	remaining := flatRound
	for i, periods := range t {
		if periods < 1 {
			return 0, 0, apperrors.NewIntegrityError(
				"round %d declares %d periods, expected at least 1", i+1, periods)
		}
		if remaining <= periods {
			return i + 1, remaining, nil
		}
		remaining -= periods
	}
	return 0, 0, apperrors.NewIntegrityError(
		"flat round counter %d exceeds the %d declared periods of the segment",
		flatRound, t.TotalPeriods())
}

// MaxPeriod returns the declared period count of a round.
func (t RoundTable) MaxPeriod(round int) (int, error) {
	if round < 1 || round > len(t) {
		return 0, apperrors.NewIntegrityError("round %d outside declared table of %d rounds", round, len(t))
	}
	return t[round-1], nil
}

// FlatRow is one row of a flat per-round-number export, before round and
// period reconstruction.
type FlatRow struct {
	FlatRound int
	Row       Row
}

// Reconstruct derives round_number_in_segment and period_in_round for every
// flat row of one segment using the declared table. Rows come back in input
// order with Round and Period filled in.
func Reconstruct(flat []FlatRow, table RoundTable) ([]Row, error) {
	rows := make([]Row, 0, len(flat))
	for _, fr := range flat {
		round, period, err := table.Locate(fr.FlatRound)
		if err != nil {
			return nil, err
		}
		row := fr.Row
		row.Round = round
		row.Period = period
		rows = append(rows, row)
	}
	return rows, nil
}

// ValidatePeriods checks every row of a segment against the declared table.
// A period index beyond the declared maximum for its round indicates an
// upstream parsing bug and is fatal.
func ValidatePeriods(seg *Segment, table RoundTable) error {
	for _, row := range seg.Rows {
		max, err := table.MaxPeriod(row.Round)
		if err != nil {
			return err
		}
		if row.Period < 1 || row.Period > max {
			return apperrors.NewIntegrityError(
				"period %d exceeds declared max %d for round %d (session %s segment %d)",
				row.Period, max, row.Round, seg.SessionID, seg.SegmentNum)
		}
	}
	return nil
}

// DeriveTable infers the periods-per-round table actually observed in a
// segment. Useful for consumers that need the last period of each round,
// such as the ordinal selling-position builder.
func DeriveTable(seg *Segment) RoundTable {
	maxRound := 0
	maxPeriod := make(map[int]int)
	for _, row := range seg.Rows {
		if row.Round > maxRound {
			maxRound = row.Round
		}
		if row.Period > maxPeriod[row.Round] {
			maxPeriod[row.Round] = row.Period
		}
	}
	table := make(RoundTable, maxRound)
	for round := 1; round <= maxRound; round++ {
		table[round-1] = maxPeriod[round]
	}
	return table
}
