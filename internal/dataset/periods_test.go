package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketruns/internal/sessiondata"
	"marketruns/pkg/contracts/domain"
)

func periodRow(t *testing.T, records []domain.PlayerPeriodRecord, player string, period int) domain.PlayerPeriodRecord {
	t.Helper()
	for _, r := range records {
		if r.Player == player && r.Period == period {
			return r
		}
	}
	t.Fatalf("no record for %s period %d", player, period)
	return domain.PlayerPeriodRecord{}
}

func TestBuildPlayerPeriods_Cascade(t *testing.T) {
	records, err := BuildPlayerPeriods([]*sessiondata.Segment{cascadeSegment()})
	require.NoError(t, err)
	require.Len(t, records, 20)

	// A and B tie in period 3 with no prior sales visible to either.
	a3 := periodRow(t, records, "A", 3)
	assert.Equal(t, 1, a3.Sold)
	assert.Equal(t, 0, a3.AlreadySold)
	assert.Equal(t, 0, a3.PriorGroupSales)

	b3 := periodRow(t, records, "B", 3)
	assert.Equal(t, 1, b3.Sold)
	assert.Equal(t, 0, b3.PriorGroupSales)

	// C sells in period 4 having seen two earlier sales.
	c4 := periodRow(t, records, "C", 4)
	assert.Equal(t, 1, c4.Sold)
	assert.Equal(t, 2, c4.PriorGroupSales)

	// D never sells and by period 5 has seen all three.
	d5 := periodRow(t, records, "D", 5)
	assert.Equal(t, 0, d5.Sold)
	assert.Equal(t, 0, d5.AlreadySold)
	assert.Equal(t, 3, d5.PriorGroupSales)

	// After selling, A is already-sold and never sold again.
	a4 := periodRow(t, records, "A", 4)
	assert.Equal(t, 0, a4.Sold)
	assert.Equal(t, 1, a4.AlreadySold)
	assert.Equal(t, 1, a4.SalePrevPeriod)

	// The previous-period flag follows the group: D holds but still sees the
	// period-3 sales at period 4, and C's period-4 sale at period 5.
	d4 := periodRow(t, records, "D", 4)
	assert.Equal(t, 1, d4.SalePrevPeriod)
	assert.Equal(t, 1, d5.SalePrevPeriod)

	for _, r := range records {
		assert.LessOrEqual(t, r.Sold+r.AlreadySold, 1,
			"%s period %d: sold and already_sold overlap", r.Player, r.Period)
		assert.Equal(t, "1_11-7-tr1", r.SessionID)
		assert.Equal(t, "tr1", r.Treatment)
	}
}
