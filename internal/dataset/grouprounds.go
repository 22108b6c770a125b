package dataset

import (
	"fmt"

	"marketruns/internal/saletiming"
	"marketruns/internal/sessiondata"
	"marketruns/pkg/contracts/domain"
)

// BuildGroupRoundTiming builds one row per group-round listing its sellers
// in sale order.
func BuildGroupRoundTiming(segments []*sessiondata.Segment) ([]domain.GroupRoundTimingRecord, error) {
	var records []domain.GroupRoundTimingRecord

	for _, seg := range segments {
		byKey := seg.GroupRounds()
		for _, key := range sessiondata.SortedKeys(byKey) {
			rows := byKey[key]
			decisions, err := saletiming.DeriveDecisions(rows)
			if err != nil {
				return nil, fmt.Errorf("%s segment %d group %d round %d: %w",
					seg.SessionID, seg.SegmentNum, key.GroupID, key.Round, err)
			}

			records = append(records, domain.GroupRoundTimingRecord{
				SessionID:     seg.SessionID,
				Treatment:     seg.Treatment,
				Segment:       seg.Name,
				SegmentNum:    seg.SegmentNum,
				GroupID:       key.GroupID,
				GlobalGroupID: domain.GlobalGroupID(seg.SessionID, seg.SegmentNum, key.GroupID),
				Round:         key.Round,
				State:         rows[0].State,
				Sellers:       saletiming.SellerSlots(decisions),
			})
		}
	}
	return records, nil
}

// BuildFirstSales builds one row per group-round with the public signal
// observed at the moment of the first sale.
func BuildFirstSales(segments []*sessiondata.Segment) ([]domain.FirstSaleRecord, error) {
	var records []domain.FirstSaleRecord

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

			records = append(records, domain.FirstSaleRecord{
				SessionID:           seg.SessionID,
				Treatment:           seg.Treatment,
				Segment:             seg.Name,
				SegmentNum:          seg.SegmentNum,
				GroupID:             key.GroupID,
				GlobalGroupID:       domain.GlobalGroupID(seg.SessionID, seg.SegmentNum, key.GroupID),
				Round:               key.Round,
				FirstSalePeriod:     outcome.FirstSalePeriod,
				SignalAtFirstSale:   signalAtPeriod(rows, outcome.FirstSalePeriod),
				NSellersFirstPeriod: outcome.NSellersFirstPeriod,
			})
		}
	}
	return records, nil
}
