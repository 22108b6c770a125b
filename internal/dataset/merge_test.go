package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketruns/internal/sessiondata"
	"marketruns/pkg/contracts/domain"
)

func testTraits() []domain.TraitRecord {
	return []domain.TraitRecord{
		{SessionID: "1_11-7-tr1", Player: "A", Extraversion: 5.5, Gender: "Female"},
		{SessionID: "1_11-7-tr1", Player: "B", Extraversion: 3.0, Gender: "Male"},
		{SessionID: "1_11-7-tr1", Player: "C", Extraversion: 4.0, Gender: "Female"},
	}
}

func TestBuildEmotionsTraitsSelling(t *testing.T) {
	periods, err := BuildPlayerPeriods([]*sessiondata.Segment{cascadeSegment()})
	require.NoError(t, err)

	emotions := []domain.EmotionRecord{
		{
			SessionID: "1_11-7-tr1", Segment: 1, Round: 1, Period: 3, Player: "A",
			Channels: map[string]domain.EmotionStats{
				"fear": {Mean: 12.5, Max: 40, P95: 35},
			},
			NFrames: 90,
		},
	}

	rows, report := BuildEmotionsTraitsSelling(periods, testTraits(), emotions)

	// Left join: every base row survives exactly once.
	assert.True(t, report.RowCountPreserved())
	assert.Equal(t, len(periods), len(rows))

	// D has no survey record and is the only unmatched player.
	assert.Equal(t, []string{"1_11-7-tr1_D"}, report.UnmatchedPlayers)
	assert.Equal(t, 1, report.Unmatched())

	var a3, d5 EmotionTraitRow
	for _, row := range rows {
		if row.Player == "A" && row.Period == 3 {
			a3 = row
		}
		if row.Player == "D" && row.Period == 5 {
			d5 = row
		}
	}

	require.NotNil(t, a3.Traits)
	assert.InDelta(t, 5.5, a3.Traits.Extraversion, 1e-9)
	require.NotNil(t, a3.Emotions)
	assert.Equal(t, 90, a3.Emotions.NFrames)
	assert.InDelta(t, 12.5, a3.Emotions.Channels["fear"].Mean, 1e-9)
	assert.Equal(t, "1_11-7-tr1_seg1_g1", a3.GlobalGroupID)

	assert.Nil(t, d5.Traits)
	assert.Nil(t, d5.Emotions)
}

func TestBuildEmotionsTraitsSelling_GlobalGroupIDPerSegment(t *testing.T) {
	// The same group number in two segments is two different groups; the
	// clustering key must separate them.
	segA := cascadeSegment()
	segB := cascadeSegment()
	segB.SegmentNum = 3
	segB.Name = "chat_noavg3"

	periods, err := BuildPlayerPeriods([]*sessiondata.Segment{segA, segB})
	require.NoError(t, err)

	rows, _ := BuildEmotionsTraitsSelling(periods, nil, nil)

	ids := make(map[string]bool)
	for _, row := range rows {
		ids[row.GlobalGroupID] = true
	}
	assert.Len(t, ids, 2)
	assert.True(t, ids["1_11-7-tr1_seg1_g1"])
	assert.True(t, ids["1_11-7-tr1_seg3_g1"])
}

func TestBuildFirstSellerAnalysis(t *testing.T) {
	firstSellers, err := BuildFirstSellerRounds([]*sessiondata.Segment{cascadeSegment()})
	require.NoError(t, err)

	rows, report := BuildFirstSellerAnalysis(firstSellers, testTraits())

	assert.True(t, report.RowCountPreserved())
	assert.Equal(t, []string{"1_11-7-tr1_D"}, report.UnmatchedPlayers)

	for _, row := range rows {
		switch row.Player {
		case "A", "C":
			assert.Equal(t, 1, row.GenderFemale)
		case "B":
			assert.Equal(t, 0, row.GenderFemale)
		case "D":
			assert.Nil(t, row.Traits)
			assert.Equal(t, 0, row.GenderFemale)
		}
	}
}
