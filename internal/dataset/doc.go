// Package dataset assembles the derived analysis datasets from loaded
// session, telemetry, survey, and chat data. Builders are pure functions
// over in-memory inputs: loading lives in the source packages, serialization
// in the exporter. Merged datasets use left joins keyed on session and
// player so that a row of the base dataset is never dropped or duplicated;
// each merge reports its coverage.
package dataset
