package files

import "github.com/pkg/errors"

var (
	ErrCancelled        = errors.New("directory selection cancelled")
	ErrPermissionDenied = errors.New("permission denied")
)

// IsPickAborted reports whether a picker error means the user backed out
// rather than something going wrong.
func IsPickAborted(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, ErrPermissionDenied)
}
