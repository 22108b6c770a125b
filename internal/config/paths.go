package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for all file paths in the pipeline.
// Raw inputs live under the datastore directory; every derived dataset is
// written to the derived subdirectory and treated as immutable input by
// downstream consumers.
type Paths struct {
	DatastoreDir string
	DerivedDir   string
	TelemetryDir string
	TablesDir    string
	PlotsDir     string
	LogsDir      string
}

// NewPaths builds the path layout from configuration.
func NewPaths(cfg PathsConfig) *Paths {
	return &Paths{
		DatastoreDir: cfg.DatastoreDir,
		DerivedDir:   filepath.Join(cfg.DatastoreDir, "derived"),
		TelemetryDir: filepath.Join(cfg.DatastoreDir, "imotions"),
		TablesDir:    cfg.TablesDir,
		PlotsDir:     cfg.PlotsDir,
		LogsDir:      cfg.LogsDir,
	}
}

// SessionDir returns the raw export directory of one session.
func (p *Paths) SessionDir(sessionID string) string {
	return filepath.Join(p.DatastoreDir, sessionID)
}

// TelemetrySessionDir returns the telemetry directory of one recording
// session (keyed by recording folder name, see TelemetrySessionMap).
func (p *Paths) TelemetrySessionDir(folder string) string {
	return filepath.Join(p.TelemetryDir, folder)
}

// DerivedPath returns the output path of a derived dataset file.
func (p *Paths) DerivedPath(filename string) string {
	return filepath.Join(p.DerivedDir, filename)
}

// TablePath returns the output path of a LaTeX table fragment.
func (p *Paths) TablePath(filename string) string {
	return filepath.Join(p.TablesDir, filename)
}

// PlotPath returns the output path of a plot file.
func (p *Paths) PlotPath(filename string) string {
	return filepath.Join(p.PlotsDir, filename)
}

// EnsureOutputDirs creates the writable output directories. Raw input
// directories are never created here; a missing datastore is a usage error
// surfaced by the loaders.
func (p *Paths) EnsureOutputDirs() error {
	for _, dir := range []string{p.DerivedDir, p.TablesDir, p.PlotsDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
