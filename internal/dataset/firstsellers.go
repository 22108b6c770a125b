package dataset

import (
	"fmt"

	"marketruns/internal/saletiming"
	"marketruns/internal/sessiondata"
	"marketruns/pkg/contracts/domain"
)

// BuildFirstSellerRounds builds the player-round first-seller dataset. Every
// seller in the earliest sale period of a group-round is a first seller;
// rounds without a sale mark nobody.
func BuildFirstSellerRounds(segments []*sessiondata.Segment) ([]domain.FirstSellerRecord, error) {
	var records []domain.FirstSellerRecord

	for _, seg := range segments {
		byKey := seg.GroupRounds()
		for _, key := range sessiondata.SortedKeys(byKey) {
			rows := byKey[key]
			decisions, err := saletiming.DeriveDecisions(rows)
			if err != nil {
				return nil, fmt.Errorf("%s segment %d group %d round %d: %w",
					seg.SessionID, seg.SegmentNum, key.GroupID, key.Round, err)
			}
			outcome := saletiming.SummarizeRound(decisions)
			state := rows[0].State
			publicSignal := signalAtPeriod(rows, outcome.FirstSalePeriod)

			firstSet := toSet(outcome.FirstSellers)
			secondSet := toSet(outcome.SecondSellers)

			for _, player := range sessiondata.Players(rows) {
				records = append(records, domain.FirstSellerRecord{
					SessionID:       seg.SessionID,
					Treatment:       seg.Treatment,
					Segment:         seg.SegmentNum,
					GroupID:         key.GroupID,
					Round:           key.Round,
					Player:          player,
					PublicSignal:    publicSignal,
					State:           state,
					IsFirstSeller:   boolToInt(firstSet[player]),
					IsSecondSeller:  boolToInt(secondSet[player]),
					FirstSalePeriod: outcome.FirstSalePeriod,
				})
			}
		}
	}
	return records, nil
}

// signalAtPeriod returns the shared public signal of a period. All rows of a
// period carry the same value, so the first suffices.
func signalAtPeriod(rows []sessiondata.Row, period *int) *float64 {
	if period == nil {
		return nil
	}
	for _, row := range rows {
		if row.Period == *period {
			return row.Signal
		}
	}
	return nil
}

func toSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, label := range labels {
		set[label] = true
	}
	return set
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
