package domain

import "fmt"

// Column names of the derived datasets. These are the de facto schema shared
// by every producer and consumer; scripts must reference these constants
// rather than re-spelling the strings.
const (
	ColSessionID       = "session_id"
	ColTreatment       = "treatment"
	ColSegment         = "segment"
	ColSegmentNum      = "segment_num"
	ColRound           = "round"
	ColRoundNum        = "round_num"
	ColPeriod          = "period"
	ColGroupID         = "group_id"
	ColGlobalGroupID   = "global_group_id"
	ColPlayer          = "player"
	ColPlayerID        = "player_id"
	ColSignal          = "signal"
	ColState           = "state"
	ColPrice           = "price"
	ColSold            = "sold"
	ColAlreadySold     = "already_sold"
	ColPriorGroupSales = "prior_group_sales"
	ColSalePrevPeriod  = "sale_prev_period"
	ColSellPeriod      = "sell_period"
	ColDidSell         = "did_sell"
	ColSellPrice       = "sell_price"
	ColSellRank        = "sell_rank"
	ColIsFirstSeller   = "is_first_seller"
	ColIsSecondSeller  = "is_second_seller"
	ColFirstSalePeriod = "first_sale_period"
	ColPublicSignal    = "public_signal"
	ColNFrames         = "n_frames"
	ColGenderFemale    = "gender_female"
)

// Raw oTree export column names. One row per participant-period.
const (
	RawColParticipantLabel = "participant.label"
	RawColGroupID          = "group.id_in_subsession"
	RawColIDInGroup        = "player.id_in_group"
	RawColRoundNumber      = "player.round_number_in_segment"
	RawColPeriodInRound    = "player.period_in_round"
	RawColFlatRoundNumber  = "subsession.round_number"
	RawColSold             = "player.sold"
	RawColSignal           = "player.signal"
	RawColPrice            = "player.price"
	RawColState            = "player.state"
)

// EmotionChannels lists the telemetry emotion channels in canonical output
// order. Channel keys in EmotionRecord.Channels use these exact names.
var EmotionChannels = []string{
	"anger", "contempt", "disgust", "fear", "joy",
	"sadness", "surprise", "engagement", "valence",
}

// PlayersPerGroup is the fixed trading group size.
const PlayersPerGroup = 4

// GlobalGroupID builds the clustering key uniquely identifying a group
// within a segment within a session. Group identifiers are only unique
// within a segment, so the key must always include all three parts.
func GlobalGroupID(sessionID string, segment, groupID int) string {
	return fmt.Sprintf("%s_seg%d_g%d", sessionID, segment, groupID)
}

// PlayerID builds the cross-session participant identifier used for random
// effects ({session_id}_{player}).
func PlayerID(sessionID, player string) string {
	return fmt.Sprintf("%s_%s", sessionID, player)
}
