// Package sessiondata loads raw per-session oTree segment exports and
// normalizes them into typed participant-period rows. It also owns the
// round/period reconstruction: mapping the flat oTree round counter onto
// (round_number_in_segment, period_in_round) via a per-segment
// periods-per-round table, with integrity checks against the declared
// maxima.
package sessiondata
