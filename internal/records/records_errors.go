package records

import (
	"errors"
	"fmt"
)

// Kind classifies a dataset failure so the HTTP layer can map it to a status code
type Kind int

const (
	KindIO        Kind = iota // any other read failure
	KindNotFound              // no dataset file at the selected candidate
	KindMalformed             // file exists but is not valid UTF-8 JSON
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindMalformed:
		return "malformed"
	default:
		return "io"
	}
}

var (
	ErrNotFound  = errors.New("dataset not found")
	ErrMalformed = errors.New("dataset malformed")
)

// Error records a failed dataset operation and the path it was attempted on.
// errors.Is(err, ErrNotFound) and errors.Is(err, ErrMalformed) match on Kind.
type Error struct {
	Op   string
	Path string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("records: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("records: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

// KindOf returns the Kind carried by err, KindIO for foreign errors
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindIO
}
