package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketruns/internal/sessiondata"
	"marketruns/pkg/contracts/domain"
)

func firstSellerRow(t *testing.T, records []domain.FirstSellerRecord, player string) domain.FirstSellerRecord {
	t.Helper()
	for _, r := range records {
		if r.Player == player {
			return r
		}
	}
	t.Fatalf("no record for %s", player)
	return domain.FirstSellerRecord{}
}

func TestBuildFirstSellerRounds_Tie(t *testing.T) {
	records, err := BuildFirstSellerRounds([]*sessiondata.Segment{cascadeSegment()})
	require.NoError(t, err)
	require.Len(t, records, 4)

	a := firstSellerRow(t, records, "A")
	b := firstSellerRow(t, records, "B")
	c := firstSellerRow(t, records, "C")
	d := firstSellerRow(t, records, "D")

	// Tied earliest sales make two first sellers.
	assert.Equal(t, 1, a.IsFirstSeller)
	assert.Equal(t, 1, b.IsFirstSeller)
	assert.Equal(t, 0, c.IsFirstSeller)
	assert.Equal(t, 1, c.IsSecondSeller)
	assert.Equal(t, 0, d.IsFirstSeller)
	assert.Equal(t, 0, d.IsSecondSeller)

	// Round-level facts are shared by every player row.
	for _, r := range records {
		require.NotNil(t, r.FirstSalePeriod)
		assert.Equal(t, 3, *r.FirstSalePeriod)
		require.NotNil(t, r.PublicSignal)
		assert.InDelta(t, 0.6, *r.PublicSignal, 1e-9)
	}
}

func TestBuildFirstSellerRounds_NoSale(t *testing.T) {
	records, err := BuildFirstSellerRounds([]*sessiondata.Segment{noSaleSegment()})
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, r := range records {
		assert.Equal(t, 0, r.IsFirstSeller)
		assert.Equal(t, 0, r.IsSecondSeller)
		assert.Nil(t, r.FirstSalePeriod)
		assert.Nil(t, r.PublicSignal)
	}
}
