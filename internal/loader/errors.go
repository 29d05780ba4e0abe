package loader

import (
	"errors"
	"fmt"
)

// Kind classifies a load failure. All kinds are terminal for the current
// run: they describe operator-fixable input or configuration problems,
// not transient faults, so nothing is ever retried.
type Kind int

const (
	// KindUnreadable means a data file could not be opened or read.
	KindUnreadable Kind = iota

	// KindInvalidFormat means a document parsed but its shape violates
	// the contract (not a mapping / not a sequence of mappings).
	KindInvalidFormat

	// KindInvalidMapping means a column mapping rule is not one of the
	// recognized kinds. This is a configuration bug.
	KindInvalidMapping

	// KindNoLoader means no strategy validated for a table that was
	// expected to have backing data.
	KindNoLoader

	// KindNoModel means a table exists in the schema but has no
	// registered model.
	KindNoModel

	// KindPersistenceConflict means the sink reported a constraint
	// violation while writing records.
	KindPersistenceConflict
)

// String returns the kind's name for log output.
func (k Kind) String() string {
	switch k {
	case KindUnreadable:
		return "unreadable"
	case KindInvalidFormat:
		return "invalid format"
	case KindInvalidMapping:
		return "invalid mapping"
	case KindNoLoader:
		return "no loader"
	case KindNoModel:
		return "no model"
	case KindPersistenceConflict:
		return "persistence conflict"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type surfaced by the loader subsystem. It
// identifies the failure kind plus the offending table and/or path so a
// run fails with one descriptive message.
type Error struct {
	Kind  Kind
	Table string
	Path  string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Table != "" {
		msg += fmt.Sprintf(" (table %q)", e.Table)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path %q)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from err, if err is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return 0, false
}
