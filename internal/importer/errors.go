package importer

import (
	"errors"
	"fmt"
)

// Phase is a step of a single import attempt
type Phase string

// Import phases in execution order. PhaseFailed is terminal and reachable from any step.
const (
	PhaseFetching            Phase = "fetching"
	PhaseParsing             Phase = "parsing"
	PhaseResolvingID         Phase = "resolving_id"
	PhaseUpserting           Phase = "upserting"
	PhaseRecordingProvenance Phase = "recording_provenance"
	PhaseDone                Phase = "done"
	PhaseFailed              Phase = "failed"
)

// ErrFetch classifies network and non-2xx failures while fetching the source
var ErrFetch = errors.New("failed to fetch form")

// Error reports the phase in which an import failed
type Error struct {
	Phase Phase
	URL   string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("import of %s failed while %s: %v", e.URL, e.Phase, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failed(phase Phase, url string, err error) error {
	return &Error{Phase: phase, URL: url, Err: err}
}
