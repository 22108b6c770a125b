// Package operations orchestrates the derivation pipeline.
//
// A pipeline is a registry of named steps with declared dependencies. The
// runner resolves a dependency order, executes each step once, and records
// per-step timing and status on the run state. Steps exchange data through
// the typed artifact fields of RunState rather than through files, so a
// single run loads every raw input exactly once.
package operations
