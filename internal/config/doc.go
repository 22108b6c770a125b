// Package config is the single source of truth for pipeline configuration:
// the datastore layout (raw session exports, telemetry, derived outputs,
// tables, plots), the session registry with treatment assignments, and the
// logging setup. Configuration is loaded from environment variables with the
// MARKETRUNS prefix, optionally merged with a YAML file, and validated
// before any builder runs.
package config
