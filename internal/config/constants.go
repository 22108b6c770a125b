package config

// Session identifies one experiment run and its treatment assignment.
type Session struct {
	ID        string `yaml:"id" validate:"required"`
	Treatment string `yaml:"treatment" validate:"required,oneof=tr1 tr2"`
}

// DefaultSessions is the registry of the six experiment sessions. The folder
// name under datastore/ doubles as the session identifier everywhere.
var DefaultSessions = []Session{
	{ID: "1_11-7-tr1", Treatment: "tr1"},
	{ID: "2_11-10-tr2", Treatment: "tr2"},
	{ID: "3_11-11-tr2", Treatment: "tr2"},
	{ID: "4_11-12-tr1", Treatment: "tr1"},
	{ID: "5_11-14-tr2", Treatment: "tr2"},
	{ID: "6_11-18-tr1", Treatment: "tr1"},
}

// SegmentNames lists the four game variants in play order. The 1-based index
// into this slice is the segment number used in every derived dataset.
var SegmentNames = []string{"chat_noavg", "chat_noavg2", "chat_noavg3", "chat_noavg4"}

// SegmentHasChat reports whether a segment (1-based) ran the pre-trading
// chat phase. Chat was enabled in the last two segments only.
func SegmentHasChat(segmentNum int) bool {
	return segmentNum >= 3
}

// TelemetrySessionMap maps telemetry recording folder names to oTree session
// identifiers. Telemetry exports were organized by recording order, not by
// session folder name.
var TelemetrySessionMap = map[string]string{
	"1": "1_11-7-tr1",
	"2": "2_11-10-tr2",
	"3": "3_11-11-tr2",
	"4": "4_11-12-tr1",
	"5": "5_11-14-tr2",
	"6": "6_11-18-tr1",
}

const (
	// MaxRounds caps the geometric round draw per segment.
	MaxRounds = 14

	// InitialPrice is the market price at the start of every round.
	InitialPrice = 8.0

	// PriceDecrement is the per-seller price drop within a period.
	PriceDecrement = 2.0

	// TelemetryPreambleRows is the fixed metadata preamble length of raw
	// telemetry CSV exports, before the real header row.
	TelemetryPreambleRows = 24
)
