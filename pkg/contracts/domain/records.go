package domain

// PlayerPeriodRecord is the atomic fact row of the player-period panel.
// Each row represents one player in one period of one round. The sold flag
// marks the selling decision in THIS period only; AlreadySold marks every
// later period of the same round. The two are mutually exclusive.
type PlayerPeriodRecord struct {
	SessionID       string   `json:"session_id" validate:"required"`
	Treatment       string   `json:"treatment" validate:"required,oneof=tr1 tr2"`
	Segment         int      `json:"segment" validate:"min=1,max=4"`
	Round           int      `json:"round" validate:"min=1"`
	Period          int      `json:"period" validate:"min=1"`
	GroupID         int      `json:"group_id" validate:"min=1"`
	Player          string   `json:"player" validate:"required"`
	Signal          *float64 `json:"signal,omitempty"`
	State           int      `json:"state" validate:"min=0,max=1"`
	Price           *float64 `json:"price,omitempty"`
	Sold            int      `json:"sold" validate:"min=0,max=1"`
	AlreadySold     int      `json:"already_sold" validate:"min=0,max=1"`
	PriorGroupSales int      `json:"prior_group_sales" validate:"min=0,max=3"`
	SalePrevPeriod  int      `json:"sale_prev_period" validate:"min=0,max=1"`
}

// PlayerRoundRecord is one player in one round, collapsed to the round level.
// SellPeriod and SellPrice are nil when the player held through the round.
type PlayerRoundRecord struct {
	SessionID string   `json:"session_id" validate:"required"`
	Treatment string   `json:"treatment" validate:"required"`
	Segment   int      `json:"segment" validate:"min=1,max=4"`
	GroupID   int      `json:"group_id" validate:"min=1"`
	Round     int      `json:"round" validate:"min=1"`
	Player    string   `json:"player" validate:"required"`
	Signal    *float64 `json:"signal,omitempty"`
	State     int      `json:"state" validate:"min=0,max=1"`
	SellPeriod *int    `json:"sell_period,omitempty"`
	DidSell   int      `json:"did_sell" validate:"min=0,max=1"`
	SellPrice *float64 `json:"sell_price,omitempty"`
}

// FirstSellerRecord marks each player's first/second-seller status in a
// group-round. FirstSalePeriod is nil when nobody in the group sold; in that
// case no player carries either flag.
type FirstSellerRecord struct {
	SessionID       string   `json:"session_id" validate:"required"`
	Treatment       string   `json:"treatment" validate:"required"`
	Segment         int      `json:"segment" validate:"min=1,max=4"`
	GroupID         int      `json:"group_id" validate:"min=1"`
	Round           int      `json:"round" validate:"min=1"`
	Player          string   `json:"player" validate:"required"`
	PublicSignal    *float64 `json:"public_signal,omitempty"`
	State           int      `json:"state" validate:"min=0,max=1"`
	IsFirstSeller   int      `json:"is_first_seller" validate:"min=0,max=1"`
	IsSecondSeller  int      `json:"is_second_seller" validate:"min=0,max=1"`
	FirstSalePeriod *int     `json:"first_sale_period,omitempty"`
}

// SellerSlot is one ordered seller entry in a group-round timing record.
type SellerSlot struct {
	Period int      `json:"period"`
	Label  string   `json:"label"`
	Signal *float64 `json:"signal,omitempty"`
}

// GroupRoundTimingRecord is one group-round with its sellers ordered by
// period, then label. At most PlayersPerGroup sellers exist.
type GroupRoundTimingRecord struct {
	SessionID     string       `json:"session_id" validate:"required"`
	Treatment     string       `json:"treatment" validate:"required"`
	Segment       string       `json:"segment" validate:"required"`
	SegmentNum    int          `json:"segment_num" validate:"min=1,max=4"`
	GroupID       int          `json:"group_id" validate:"min=1"`
	GlobalGroupID string       `json:"global_group_id" validate:"required"`
	Round         int          `json:"round_num" validate:"min=1"`
	State         int          `json:"state" validate:"min=0,max=1"`
	Sellers       []SellerSlot `json:"sellers" validate:"max=4"`
}

// FirstSaleRecord is one group-round with the public signal observed at the
// moment of the first sale. Fields are nil when the round had no sale.
type FirstSaleRecord struct {
	SessionID           string   `json:"session_id" validate:"required"`
	Treatment           string   `json:"treatment" validate:"required"`
	Segment             string   `json:"segment" validate:"required"`
	SegmentNum          int      `json:"segment_num" validate:"min=1,max=4"`
	GroupID             int      `json:"group_id" validate:"min=1"`
	GlobalGroupID       string   `json:"global_group_id" validate:"required"`
	Round               int      `json:"round_num" validate:"min=1"`
	FirstSalePeriod     *int     `json:"first_sale_period,omitempty"`
	SignalAtFirstSale   *float64 `json:"signal_at_first_sale,omitempty"`
	NSellersFirstPeriod int      `json:"n_sellers_first_period" validate:"min=0,max=4"`
}

// TraitRecord holds one participant's time-invariant survey scores.
// Created once from the survey export and never mutated afterwards.
type TraitRecord struct {
	SessionID         string  `json:"session_id" validate:"required"`
	Player            string  `json:"player" validate:"required"`
	Extraversion      float64 `json:"extraversion" validate:"min=1,max=7"`
	Agreeableness     float64 `json:"agreeableness" validate:"min=1,max=7"`
	Conscientiousness float64 `json:"conscientiousness" validate:"min=1,max=7"`
	Neuroticism       float64 `json:"neuroticism" validate:"min=1,max=7"`
	Openness          float64 `json:"openness" validate:"min=1,max=7"`
	Impulsivity       float64 `json:"impulsivity" validate:"min=1,max=7"`
	StateAnxiety      float64 `json:"state_anxiety" validate:"min=1,max=4"`
	Age               int     `json:"age" validate:"min=0"`
	Gender            string  `json:"gender"`
}

// EmotionStats aggregates one emotion channel over the frames of a period.
type EmotionStats struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	P95  float64 `json:"p95"`
}

// EmotionRecord is the per-player-period aggregate of facial telemetry,
// keyed in oTree period numbering. A record only exists when at least one
// valid frame matched the period's annotation window; absence of telemetry
// is represented by the absence of the record, never by zeros.
type EmotionRecord struct {
	SessionID string                  `json:"session_id" validate:"required"`
	Segment   int                     `json:"segment" validate:"min=1"`
	Round     int                     `json:"round" validate:"min=1"`
	Period    int                     `json:"period" validate:"min=1"`
	Player    string                  `json:"player" validate:"required"`
	Channels  map[string]EmotionStats `json:"channels" validate:"required"`
	NFrames   int                     `json:"n_frames" validate:"min=1"`
}

// ChatActivityRecord captures segment-level chat engagement replicated onto
// the player-period key space. Chat happens once before a segment, so the
// counts are constant across all rounds and periods of that segment.
type ChatActivityRecord struct {
	SessionID               string `json:"session_id" validate:"required"`
	Segment                 int    `json:"segment" validate:"min=1,max=4"`
	Round                   int    `json:"round" validate:"min=1"`
	Period                  int    `json:"period" validate:"min=1"`
	Player                  string `json:"player" validate:"required"`
	GroupID                 int    `json:"group_id" validate:"min=1"`
	MessagesSentSegment     int    `json:"messages_sent_segment" validate:"min=0"`
	MessagesReceivedSegment int    `json:"messages_received_segment" validate:"min=0"`
	TotalGroupMessages      int    `json:"total_group_messages" validate:"min=0"`
}
