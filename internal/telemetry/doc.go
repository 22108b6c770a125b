// Package telemetry reads raw iMotions facial expression exports and
// aggregates the Affectiva emotion channels into per-player-period records.
// Exports carry a fixed metadata preamble, a UTF-8 BOM, and an annotation
// column marking the on-screen phase; only MarketPeriod annotations are kept.
// All parsing of the annotation counter offset lives in this package so that
// every consumer sees oTree-aligned period numbers.
package telemetry
