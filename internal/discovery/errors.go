package discovery

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrInvalidArgument is returned before any fetch when the call's inputs are unusable.
	ErrInvalidArgument = eris.New("discovery: invalid argument")

	// ErrAllSourcesFailed is matched by AllSourcesFailedError.
	ErrAllSourcesFailed = eris.New("discovery: all sources failed")
)

// SourceError records a single connector failure. It is isolated by the
// coordinator and never fails the call on its own.
type SourceError struct {
	SourceID string
	TimedOut bool
	Err      error
}

func (e *SourceError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("source %s: timed out: %v", e.SourceID, e.Err)
	}
	return fmt.Sprintf("source %s: %v", e.SourceID, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// AllSourcesFailedError is returned when no connector produced an outcome.
// It distinguishes an outage from a call that simply found nothing.
type AllSourcesFailedError struct {
	Failures []*SourceError
}

func (e *AllSourcesFailedError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("discovery: all %d sources failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrAllSourcesFailed) match.
func (e *AllSourcesFailedError) Is(target error) bool {
	return target == ErrAllSourcesFailed
}

func invalidArgument(format string, args ...any) error {
	return eris.Wrapf(ErrInvalidArgument, format, args...)
}
