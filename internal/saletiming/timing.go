package saletiming

import (
	"sort"

	apperrors "marketruns/internal/errors"
	"marketruns/internal/sessiondata"
	"marketruns/pkg/contracts/domain"
)

// Decision is one participant-period row with the decision-moment variables
// derived. Sold in the embedded row keeps the raw cumulative flag;
// SoldThisPeriod and AlreadySold replace it downstream and are mutually
// exclusive by construction.
type Decision struct {
	sessiondata.Row
	SoldThisPeriod  int
	AlreadySold     int
	PriorGroupSales int
	SalePrevPeriod  int
}

// Outcome summarizes one group-round. FirstSalePeriod is nil when nobody
// sold, in which case FirstSellers and SecondSellers are empty: no-sale
// rounds never default anyone into either role.
type Outcome struct {
	SellPeriods         map[string]int
	FirstSalePeriod     *int
	FirstSellers        []string
	SecondSellers       []string
	NSellersFirstPeriod int
}

// DeriveDecisions converts the cumulative sold flags of one group-round into
// decision-moment variables. Rows may arrive in any order; output is sorted
// by period, then label.
//
// The cumulative flag must be monotone within each player-round. A 1
// followed by a 0 means the export is corrupt and the derivation aborts.
func DeriveDecisions(rows []sessiondata.Row) ([]Decision, error) {
	byPlayer := make(map[string][]sessiondata.Row)
	for _, row := range rows {
		byPlayer[row.Label] = append(byPlayer[row.Label], row)
	}

	sellPeriod := make(map[string]int)
	decisions := make([]Decision, 0, len(rows))

	for _, label := range sortedLabels(byPlayer) {
		playerRows := byPlayer[label]
		sort.SliceStable(playerRows, func(i, j int) bool {
			return playerRows[i].Period < playerRows[j].Period
		})

		prevCumulative := 0
		for _, row := range playerRows {
			if row.Sold < prevCumulative {
				return nil, apperrors.NewIntegrityError(
					"player %s round %d: cumulative sold flag drops from 1 to 0 at period %d",
					label, row.Round, row.Period)
			}

			soldThis := 0
			if row.Sold == 1 && prevCumulative == 0 {
				soldThis = 1
				sellPeriod[label] = row.Period
			}
			alreadySold := prevCumulative

			decisions = append(decisions, Decision{
				Row:            row,
				SoldThisPeriod: soldThis,
				AlreadySold:    alreadySold,
			})

			prevCumulative = row.Sold
		}
	}

	groupSoldInPeriod := make(map[int]bool, len(sellPeriod))
	for _, period := range sellPeriod {
		groupSoldInPeriod[period] = true
	}

	// Prior sales count other group members only, and only sales settled in
	// strictly earlier periods. The previous-period sale flag is group-level:
	// it is 1 when any member of the group, the player included, sold in the
	// immediately preceding period.
	for i := range decisions {
		d := &decisions[i]
		count := 0
		for label, period := range sellPeriod {
			if label != d.Label && period < d.Period {
				count++
			}
		}
		d.PriorGroupSales = count
		if groupSoldInPeriod[d.Period-1] {
			d.SalePrevPeriod = 1
		}
	}

	sort.SliceStable(decisions, func(i, j int) bool {
		if decisions[i].Period != decisions[j].Period {
			return decisions[i].Period < decisions[j].Period
		}
		return decisions[i].Label < decisions[j].Label
	})
	return decisions, nil
}

// SummarizeRound identifies the sellers of a group-round and their roles.
// Every seller in the earliest sale period is a first seller; ties make
// multiple first sellers. Second sellers are the sellers of the next
// distinct sale period.
func SummarizeRound(decisions []Decision) Outcome {
	out := Outcome{SellPeriods: make(map[string]int)}
	for _, d := range decisions {
		if d.SoldThisPeriod == 1 {
			out.SellPeriods[d.Label] = d.Period
		}
	}
	if len(out.SellPeriods) == 0 {
		return out
	}

	first := 0
	for _, period := range out.SellPeriods {
		if first == 0 || period < first {
			first = period
		}
	}
	out.FirstSalePeriod = &first

	second := 0
	for _, period := range out.SellPeriods {
		if period > first && (second == 0 || period < second) {
			second = period
		}
	}

	for label, period := range out.SellPeriods {
		switch period {
		case first:
			out.FirstSellers = append(out.FirstSellers, label)
		case second:
			out.SecondSellers = append(out.SecondSellers, label)
		}
	}
	sort.Strings(out.FirstSellers)
	sort.Strings(out.SecondSellers)
	out.NSellersFirstPeriod = len(out.FirstSellers)
	return out
}

// SellerSlots orders the sellers of a round by sale period, then label, for
// the group-round timing dataset.
func SellerSlots(decisions []Decision) []domain.SellerSlot {
	var slots []domain.SellerSlot
	for _, d := range decisions {
		if d.SoldThisPeriod == 1 {
			slots = append(slots, domain.SellerSlot{
				Period: d.Period,
				Label:  d.Label,
				Signal: d.Signal,
			})
		}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Period != slots[j].Period {
			return slots[i].Period < slots[j].Period
		}
		return slots[i].Label < slots[j].Label
	})
	return slots
}

// OrdinalRanks assigns each player a selling rank within the group-round.
// Sellers get the min rank of their sale period (ties share the rank of the
// earliest position), holders get PlayersPerGroup. Consumers needing to
// separate holders from fourth sellers must keep the did_sell flag next to
// the rank.
func OrdinalRanks(outcome Outcome, players []string) map[string]int {
	ranks := make(map[string]int, len(players))
	for _, player := range players {
		period, sold := outcome.SellPeriods[player]
		if !sold {
			ranks[player] = domain.PlayersPerGroup
			continue
		}
		rank := 1
		for _, other := range outcome.SellPeriods {
			if other < period {
				rank++
			}
		}
		ranks[player] = rank
	}
	return ranks
}

func sortedLabels(byPlayer map[string][]sessiondata.Row) []string {
	labels := make([]string, 0, len(byPlayer))
	for label := range byPlayer {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
