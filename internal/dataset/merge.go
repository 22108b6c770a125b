package dataset

import (
	"sort"
	"strings"

	apperrors "marketruns/internal/errors"
	"marketruns/pkg/contracts/domain"
)

// EmotionTraitRow is one row of the merged emotions/traits/selling dataset:
// the player-period panel enriched with time-invariant traits and
// period-level facial telemetry. Traits and Emotions are nil when the left
// join found no match; absence survives into the output as empty cells.
type EmotionTraitRow struct {
	domain.PlayerPeriodRecord
	GlobalGroupID string
	Traits        *domain.TraitRecord
	Emotions      *domain.EmotionRecord
}

// FirstSellerAnalysisRow is one row of the first-seller regression dataset:
// first-seller status joined with survey traits. GenderFemale collapses the
// free-form gender answer into the regression indicator.
type FirstSellerAnalysisRow struct {
	domain.FirstSellerRecord
	Traits       *domain.TraitRecord
	GenderFemale int
}

type playerKey struct {
	sessionID string
	player    string
}

type periodKey struct {
	sessionID string
	segment   int
	round     int
	period    int
	player    string
}

// BuildEmotionsTraitsSelling left-joins traits and telemetry onto the
// player-period panel. The base panel is never filtered: the report carries
// the row counts and the players that matched no trait record.
func BuildEmotionsTraitsSelling(
	periods []domain.PlayerPeriodRecord,
	traits []domain.TraitRecord,
	emotions []domain.EmotionRecord,
) ([]EmotionTraitRow, *apperrors.MergeReport) {
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

	report := &apperrors.MergeReport{RowsBefore: len(periods)}
	unmatched := make(map[playerKey]bool)

	rows := make([]EmotionTraitRow, 0, len(periods))
	for _, p := range periods {
		row := EmotionTraitRow{
			PlayerPeriodRecord: p,
			GlobalGroupID:      domain.GlobalGroupID(p.SessionID, p.Segment, p.GroupID),
		}

		pk := playerKey{sessionID: p.SessionID, player: p.Player}
		if trait, ok := traitIdx[pk]; ok {
			row.Traits = trait
		} else {
			unmatched[pk] = true
		}

		row.Emotions = emotionIdx[periodKey{
			sessionID: p.SessionID,
			segment:   p.Segment,
			round:     p.Round,
			period:    p.Period,
			player:    p.Player,
		}]
		rows = append(rows, row)
	}

	report.RowsAfter = len(rows)
	report.UnmatchedPlayers = sortedPlayerKeys(unmatched)
	return rows, report
}

// BuildFirstSellerAnalysis left-joins survey traits onto the first-seller
// round dataset.
func BuildFirstSellerAnalysis(
	firstSellers []domain.FirstSellerRecord,
	traits []domain.TraitRecord,
) ([]FirstSellerAnalysisRow, *apperrors.MergeReport) {
	traitIdx := indexTraits(traits)
	report := &apperrors.MergeReport{RowsBefore: len(firstSellers)}
	unmatched := make(map[playerKey]bool)

	rows := make([]FirstSellerAnalysisRow, 0, len(firstSellers))
	for _, fs := range firstSellers {
		row := FirstSellerAnalysisRow{FirstSellerRecord: fs}

		pk := playerKey{sessionID: fs.SessionID, player: fs.Player}
		if trait, ok := traitIdx[pk]; ok {
			row.Traits = trait
			row.GenderFemale = genderFemale(trait.Gender)
		} else {
			unmatched[pk] = true
		}
		rows = append(rows, row)
	}

	report.RowsAfter = len(rows)
	report.UnmatchedPlayers = sortedPlayerKeys(unmatched)
	return rows, report
}

func indexTraits(traits []domain.TraitRecord) map[playerKey]*domain.TraitRecord {
	idx := make(map[playerKey]*domain.TraitRecord, len(traits))
	for i := range traits {
		t := &traits[i]
		idx[playerKey{sessionID: t.SessionID, player: t.Player}] = t
	}
	return idx
}

func sortedPlayerKeys(set map[playerKey]bool) []string {
	players := make([]string, 0, len(set))
	for pk := range set {
		players = append(players, domain.PlayerID(pk.sessionID, pk.player))
	}
	sort.Strings(players)
	return players
}

// genderFemale maps the survey gender answer to the binary indicator used in
// the regression datasets.
func genderFemale(gender string) int {
	if strings.EqualFold(gender, "female") {
		return 1
	}
	return 0
}
