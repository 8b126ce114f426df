package nav

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSuperseded is returned by an operation whose result was discarded
	// because a newer operation started before it finished.
	ErrSuperseded    = errors.New("operation superseded")
	ErrInvalidDepth  = errors.New("invalid slice depth")
	ErrEntryNotFound = errors.New("entry not found in slice")
	ErrClosed        = errors.New("navigation state closed")
)

// ReadError reports a failed directory listing.
type ReadError struct {
	Dir string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Dir, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func IsReadError(err error) bool {
	var readErr *ReadError
	return errors.As(err, &readErr)
}
