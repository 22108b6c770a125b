package dataset

import (
	"marketruns/internal/chatactivity"
	"marketruns/internal/sessiondata"
	"marketruns/pkg/contracts/domain"
)

// BuildChatActivity replicates segment-level chat counts onto every
// player-period row. Chat happens once before a segment, so the counts are
// constant across all rounds and periods of that segment; segments without
// chat carry explicit zeros.
func BuildChatActivity(
	segments []*sessiondata.Segment,
	messagesBySession map[string][]chatactivity.Message,
) []domain.ChatActivityRecord {
	var records []domain.ChatActivityRecord

	for _, seg := range segments {
		counts := chatactivity.CountSegment(messagesBySession[seg.SessionID], seg)

		byKey := seg.GroupRounds()
		for _, key := range sessiondata.SortedKeys(byKey) {
			for _, row := range byKey[key] {
				records = append(records, domain.ChatActivityRecord{
					SessionID:               seg.SessionID,
					Segment:                 seg.SegmentNum,
					Round:                   row.Round,
					Period:                  row.Period,
					Player:                  row.Label,
					GroupID:                 row.GroupID,
					MessagesSentSegment:     counts.Sent[row.Label],
					MessagesReceivedSegment: counts.Received(row.Label, row.GroupID),
					TotalGroupMessages:      counts.GroupTotals[row.GroupID],
				})
			}
		}
	}
	return records
}
