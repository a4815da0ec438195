// Package export parses raw Garmin export payloads into the canonical
// typed records stored by the repository. Normalization is a pure
// transformation: no I/O, deterministic output, malformed entries are
// skipped and counted rather than failing the batch.
package export

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"garmin-fitness-assistant/internal/store"
)

// ErrUnknownExport is returned when a filename does not match any known
// export naming convention.
var ErrUnknownExport = errors.New("unrecognized export file")

// MalformedExportError indicates a payload whose top-level shape does
// not match the declared kind. Individually malformed entries inside a
// well-shaped payload do not raise it.
type MalformedExportError struct {
	Kind   store.Kind
	Detail string
	Err    error
}

func (e *MalformedExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s export: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("malformed %s export: %s", e.Kind, e.Detail)
}

func (e *MalformedExportError) Unwrap() error { return e.Err }

// Bundle is one uploaded export file's parsed content, tagged with its
// declared kind. Consumed entirely by Normalize and discarded.
type Bundle struct {
	Kind    store.Kind
	UserID  string
	Payload []byte
}

// Result carries the typed records from one bundle plus the count of
// individually malformed entries that were skipped.
type Result struct {
	Records *store.RecordSet
	Skipped int
}

// Filename prefixes produced by the upstream export tool.
var filenameKinds = []struct {
	prefix string
	kind   store.Kind
}{
	{"RunRacePredictions_", store.KindRacePredictions},
	{"TrainingHistory_", store.KindTrainingHistory},
	{"MetricsHeatAltitudeAcclimation_", store.KindAcclimation},
	{"SummarizedActivities_", store.KindActivities},
}

// KindFromFilename infers the export kind from the upstream tool's
// filename convention.
func KindFromFilename(name string) (store.Kind, error) {
	base := path.Base(name)
	for _, fk := range filenameKinds {
		if strings.HasPrefix(base, fk.prefix) {
			return fk.kind, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownExport, base)
}
