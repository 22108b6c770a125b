package dataset

import (
	"fmt"

	"marketruns/internal/saletiming"
	"marketruns/internal/sessiondata"
	"marketruns/pkg/contracts/domain"
)

// BuildPlayerPeriods builds the player-period panel: one row per player per
// period with decision-moment selling variables.
func BuildPlayerPeriods(segments []*sessiondata.Segment) ([]domain.PlayerPeriodRecord, error) {
	var records []domain.PlayerPeriodRecord

	for _, seg := range segments {
		byKey := seg.GroupRounds()
		for _, key := range sessiondata.SortedKeys(byKey) {
			decisions, err := saletiming.DeriveDecisions(byKey[key])
			if err != nil {
				return nil, fmt.Errorf("%s segment %d group %d round %d: %w",
					seg.SessionID, seg.SegmentNum, key.GroupID, key.Round, err)
			}

			for _, d := range decisions {
				records = append(records, domain.PlayerPeriodRecord{
					SessionID:       seg.SessionID,
					Treatment:       seg.Treatment,
					Segment:         seg.SegmentNum,
					Round:           d.Round,
					Period:          d.Period,
					GroupID:         d.GroupID,
					Player:          d.Label,
					Signal:          d.Signal,
					State:           d.State,
					Price:           d.Price,
					Sold:            d.SoldThisPeriod,
					AlreadySold:     d.AlreadySold,
					PriorGroupSales: d.PriorGroupSales,
					SalePrevPeriod:  d.SalePrevPeriod,
				})
			}
		}
	}
	return records, nil
}
