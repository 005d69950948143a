// Package errs defines the CORE's error taxonomy.
//
// The CORE reports structured error kinds rather than ad-hoc messages, so
// callers (CLI, GUI, hardware drivers) can translate them into exit codes
// or dialogs without string matching. This mirrors the status-code style
// of the wire-protocol status codes this module grew out of, adapted from a
// byte enum to a small typed error so it composes with the standard
// library's errors.Is/errors.As and github.com/pkg/errors wrapping.
package errs

import "fmt"

// Kind is one of the taxonomy entries from the design's error-handling section.
type Kind int

const (
	// InvalidImage: file size not a recognized variant, truncated DMK, track length out of range.
	InvalidImage Kind = iota + 1
	// InvalidInput: bad (track, sector) coordinates, malformed filename, size-code exceeding maximum.
	InvalidInput
	// NotFound: file lookup missed, sector number not on this track.
	NotFound
	// Exists: insert would duplicate an existing filename and overwrite was not requested.
	Exists
	// Full: disk has no free block for allocation, directory has no free entry.
	Full
	// BamMismatch: per-track free-count discrepancy detected by validation.
	BamMismatch
	// Cancelled: cooperative stop observed mid-operation.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidImage:
		return "invalid_image"
	case InvalidInput:
		return "invalid_input"
	case NotFound:
		return "not_found"
	case Exists:
		return "exists"
	case Full:
		return "full"
	case BamMismatch:
		return "bam_mismatch"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error carries a Kind plus a human-readable detail. CRC errors are
// deliberately not part of this type: per spec they are recorded on the
// sector record itself and never raised as a call failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Msg)
}

// New builds a new Error of the given kind.
func New(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err (or one of its wrapped causes) has the given Kind.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == k
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
