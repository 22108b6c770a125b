package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketruns/internal/chatactivity"
	"marketruns/internal/sessiondata"
)

func TestBuildChatActivity(t *testing.T) {
	seg := cascadeSegment()
	seg.SegmentNum = 3
	seg.Name = "chat_noavg3"

	messages := map[string][]chatactivity.Message{
		"1_11-7-tr1": {
			{SegmentName: "chat_noavg3", Channel: 1, Nickname: "A"},
			{SegmentName: "chat_noavg3", Channel: 1, Nickname: "A"},
			{SegmentName: "chat_noavg3", Channel: 1, Nickname: "B"},
		},
	}

	records := BuildChatActivity([]*sessiondata.Segment{seg}, messages)
	require.Len(t, records, 20)

	for _, r := range records {
		assert.Equal(t, 3, r.Segment)
		assert.Equal(t, 3, r.TotalGroupMessages)
		switch r.Player {
		case "A":
			assert.Equal(t, 2, r.MessagesSentSegment)
			assert.Equal(t, 1, r.MessagesReceivedSegment)
		case "B":
			assert.Equal(t, 1, r.MessagesSentSegment)
			assert.Equal(t, 2, r.MessagesReceivedSegment)
		default:
			assert.Equal(t, 0, r.MessagesSentSegment)
			assert.Equal(t, 3, r.MessagesReceivedSegment)
		}
		// Received plus sent always covers the group total.
		assert.Equal(t, r.TotalGroupMessages,
			r.MessagesSentSegment+r.MessagesReceivedSegment)
	}
}

func TestBuildChatActivity_NoChatSegment(t *testing.T) {
	seg := cascadeSegment()

	messages := map[string][]chatactivity.Message{
		"1_11-7-tr1": {
			{SegmentName: "chat_noavg", Channel: 1, Nickname: "A"},
		},
	}

	records := BuildChatActivity([]*sessiondata.Segment{seg}, messages)
	require.Len(t, records, 20)

	// Segment 1 has no chat phase; counts stay zero whatever the export says.
	for _, r := range records {
		assert.Equal(t, 0, r.MessagesSentSegment)
		assert.Equal(t, 0, r.MessagesReceivedSegment)
		assert.Equal(t, 0, r.TotalGroupMessages)
	}
}
