// Package validation provides preflight checks for the datastore layout and
// struct-level validation of derived records before export.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"marketruns/internal/config"
	apperrors "marketruns/internal/errors"
)

// DatastoreValidator checks the datastore layout before a pipeline run.
type DatastoreValidator struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewDatastoreValidator creates a datastore validator.
func NewDatastoreValidator(paths *config.Paths, logger *slog.Logger) *DatastoreValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatastoreValidator{paths: paths, logger: logger}
}

// ValidateLayout verifies that the datastore directory exists and that at
// least one registered session has raw exports. Missing individual session
// or telemetry directories are logged, not fatal; the loaders skip them.
func (v *DatastoreValidator) ValidateLayout(cfg *config.Config) error {
	info, err := os.Stat(v.paths.DatastoreDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("datastore directory %s does not exist", v.paths.DatastoreDir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat datastore directory %s: %w", v.paths.DatastoreDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", v.paths.DatastoreDir)
	}

	found := 0
	for _, session := range cfg.Sessions {
		dir := v.paths.SessionDir(session.ID)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			found++
			continue
		}
		v.logger.Warn("session directory missing",
			slog.String("session_id", session.ID),
			slog.String("directory", dir))
	}
	if found == 0 {
		return fmt.Errorf("no session directories found under %s for %d registered sessions",
			v.paths.DatastoreDir, len(cfg.Sessions))
	}

	if info, err := os.Stat(v.paths.TelemetryDir); err != nil || !info.IsDir() {
		v.logger.Warn("telemetry directory missing, emotion datasets will be empty",
			slog.String("directory", v.paths.TelemetryDir))
	}

	v.logger.Info("datastore layout validated",
		slog.String("directory", v.paths.DatastoreDir),
		slog.Int("sessions_found", found),
		slog.Int("sessions_registered", len(cfg.Sessions)))
	return nil
}

// SessionExports returns the raw CSV exports present in one session
// directory, for diagnostics.
func (v *DatastoreValidator) SessionExports(sessionID string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(v.paths.SessionDir(sessionID), "*.csv"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names, nil
}

// RecordValidator applies the struct-level validation rules declared on the
// derived record types.
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator creates a record validator.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{validate: validator.New()}
}

// ValidateAll checks every record in a slice. The first violation aborts
// with an IntegrityError naming the record index, since a derived record
// outside its declared bounds means an upstream derivation bug.
func ValidateAll[T any](v *RecordValidator, records []T) error {
	for i := range records {
		if err := v.validate.Struct(&records[i]); err != nil {
			return apperrors.NewIntegrityError("record %d failed validation: %v", i, err)
		}
	}
	return nil
}
