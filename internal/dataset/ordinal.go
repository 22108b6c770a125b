package dataset

import (
	apperrors "marketruns/internal/errors"
	"marketruns/pkg/contracts/domain"
)

// OrdinalRow is one row of the ordinal selling-position dataset: a
// player-round with its within-group selling rank, tail emotion intensities
// around the decision, and survey traits.
//
// SellRank conflates holding with selling last: non-sellers share rank 4
// with a genuine fourth seller. DidSell stays in the row so consumers can
// separate the two cases.
type OrdinalRow struct {
	domain.PlayerRoundRecord
	PlayerID      string
	SellRank      int
	EmotionPeriod int
	P95           map[string]float64
	Traits        *domain.TraitRecord
	GenderFemale  int
}

type groupRoundID struct {
	sessionID string
	segment   int
	groupID   int
	round     int
}

// BuildOrdinalPositions builds the ordinal selling-position dataset.
// Emotions for sellers come from their sale period; for holders, from the
// last period of the group-round, where the pressure to sell peaked.
func BuildOrdinalPositions(
	rounds []domain.PlayerRoundRecord,
	periods []domain.PlayerPeriodRecord,
	emotions []domain.EmotionRecord,
	traits []domain.TraitRecord,
) ([]OrdinalRow, *apperrors.MergeReport) {
	maxPeriod := maxPeriodByGroupRound(periods)
	sellPeriods := sellPeriodsByGroupRound(rounds)
	traitIdx := indexTraits(traits)

	emotionIdx := make(map[periodKey]*domain.EmotionRecord, len(emotions))
	for i := range emotions {
		e := &emotions[i]
		emotionIdx[periodKey{
			sessionID: e.SessionID,
			segment:   e.Segment,
			round:     e.Round,
			period:    e.Period,
			player:    e.Player,
		}] = e
	}

	report := &apperrors.MergeReport{RowsBefore: len(rounds)}
	unmatched := make(map[playerKey]bool)

	rows := make([]OrdinalRow, 0, len(rounds))
	for _, r := range rounds {
		id := groupRoundID{
			sessionID: r.SessionID,
			segment:   r.Segment,
			groupID:   r.GroupID,
			round:     r.Round,
		}

		row := OrdinalRow{
			PlayerRoundRecord: r,
			PlayerID:          domain.PlayerID(r.SessionID, r.Player),
			SellRank:          sellRank(r, sellPeriods[id]),
			EmotionPeriod:     emotionPeriod(r, maxPeriod[id]),
		}

		pk := playerKey{sessionID: r.SessionID, player: r.Player}
		if trait, ok := traitIdx[pk]; ok {
			row.Traits = trait
			row.GenderFemale = genderFemale(trait.Gender)
		} else {
			unmatched[pk] = true
		}

		if e, ok := emotionIdx[periodKey{
			sessionID: r.SessionID,
			segment:   r.Segment,
			round:     r.Round,
			period:    row.EmotionPeriod,
			player:    r.Player,
		}]; ok {
			p95 := make(map[string]float64, len(e.Channels))
			for channel, stats := range e.Channels {
				p95[channel] = stats.P95
			}
			row.P95 = p95
		}
		rows = append(rows, row)
	}

	report.RowsAfter = len(rows)
	report.UnmatchedPlayers = sortedPlayerKeys(unmatched)
	return rows, report
}

// sellRank is the min-rank of the player's sale period among the sellers of
// the group-round. Ties share the earliest position.
func sellRank(r domain.PlayerRoundRecord, sellPeriods []int) int {
	if r.DidSell == 0 || r.SellPeriod == nil {
		return domain.PlayersPerGroup
	}
	rank := 1
	for _, period := range sellPeriods {
		if period < *r.SellPeriod {
			rank++
		}
	}
	return rank
}

func emotionPeriod(r domain.PlayerRoundRecord, maxPeriod int) int {
	if r.DidSell == 1 && r.SellPeriod != nil {
		return *r.SellPeriod
	}
	return maxPeriod
}

func maxPeriodByGroupRound(periods []domain.PlayerPeriodRecord) map[groupRoundID]int {
	out := make(map[groupRoundID]int)
	for _, p := range periods {
		id := groupRoundID{
			sessionID: p.SessionID,
			segment:   p.Segment,
			groupID:   p.GroupID,
			round:     p.Round,
		}
		if p.Period > out[id] {
			out[id] = p.Period
		}
	}
	return out
}

func sellPeriodsByGroupRound(rounds []domain.PlayerRoundRecord) map[groupRoundID][]int {
	out := make(map[groupRoundID][]int)
	for _, r := range rounds {
		if r.DidSell == 0 || r.SellPeriod == nil {
			continue
		}
		id := groupRoundID{
			sessionID: r.SessionID,
			segment:   r.Segment,
			groupID:   r.GroupID,
			round:     r.Round,
		}
		out[id] = append(out[id], *r.SellPeriod)
	}
	return out
}
