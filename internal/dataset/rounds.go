package dataset

import (
	"fmt"

	"marketruns/internal/saletiming"
	"marketruns/internal/sessiondata"
	"marketruns/pkg/contracts/domain"
)

// BuildPlayerRounds collapses each player-round to one row: the period the
// player sold in, the price and the posterior signal at that moment, or
// nothing when they held through the round.
func BuildPlayerRounds(segments []*sessiondata.Segment) ([]domain.PlayerRoundRecord, error) {
	var records []domain.PlayerRoundRecord

	for _, seg := range segments {
		byKey := seg.GroupRounds()
		for _, key := range sessiondata.SortedKeys(byKey) {
			rows := byKey[key]
			decisions, err := saletiming.DeriveDecisions(rows)
			if err != nil {
				return nil, fmt.Errorf("%s segment %d group %d round %d: %w",
					seg.SessionID, seg.SegmentNum, key.GroupID, key.Round, err)
			}
			state := rows[0].State

			saleOf := make(map[string]saletiming.Decision)
			for _, d := range decisions {
				if d.SoldThisPeriod == 1 {
					saleOf[d.Label] = d
				}
			}

			for _, player := range sessiondata.Players(rows) {
				record := domain.PlayerRoundRecord{
					SessionID: seg.SessionID,
					Treatment: seg.Treatment,
					Segment:   seg.SegmentNum,
					GroupID:   key.GroupID,
					Round:     key.Round,
					Player:    player,
					State:     state,
				}
				if sale, ok := saleOf[player]; ok {
					period := sale.Period
					record.SellPeriod = &period
					record.DidSell = 1
					record.SellPrice = sale.Price
					record.Signal = sale.Signal
				}
				records = append(records, record)
			}
		}
	}
	return records, nil
}
