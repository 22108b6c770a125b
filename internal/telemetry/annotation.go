package telemetry

import (
	"regexp"
	"strconv"
)

// marketPeriodPattern matches active MarketPeriod annotations. The wait-page
// variant ("MarketPeriodWait") intentionally fails the anchor.
var marketPeriodPattern = regexp.MustCompile(`^s(\d+)r(\d+)m(\d+)MarketPeriod$`)

// filenamePattern extracts the participant letter from export filenames of
// the form {recording order}_{letter}{respondent number}.csv.
var filenamePattern = regexp.MustCompile(`^\d+_([A-Z])\d+\.csv$`)

// Annotation is one parsed MarketPeriod marker, with Period already converted
// to oTree numbering.
type Annotation struct {
	Segment int
	Round   int
	Period  int
}

// ParseAnnotation parses a MarketPeriod annotation value. It returns false
// for blank cells, other phases, and the stray m1 marker that would map to
// period 0: the recording tool increments its period counter before the
// first market screen, so the smallest valid marker is m2.
func ParseAnnotation(raw string) (Annotation, bool) {
	m := marketPeriodPattern.FindStringSubmatch(raw)
	if m == nil {
		return Annotation{}, false
	}
	segment, _ := strconv.Atoi(m[1])
	round, _ := strconv.Atoi(m[2])
	index, _ := strconv.Atoi(m[3])

	period := OTreePeriod(index)
	if period < 1 {
		return Annotation{}, false
	}
	return Annotation{Segment: segment, Round: round, Period: period}, true
}

// OTreePeriod converts an annotation period counter m{N} to the oTree period
// it recorded. The counter is pre-incremented before the first market screen,
// so m{N} belongs to period N-1.
func OTreePeriod(index int) int {
	return index - 1
}

// TelemetryIndex is the inverse of OTreePeriod: the annotation counter value
// that marks a given oTree period.
func TelemetryIndex(period int) int {
	return period + 1
}

// PlayerLabelFromFilename extracts the participant letter from an export
// filename, or false when the name does not follow the recording convention.
func PlayerLabelFromFilename(name string) (string, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}
