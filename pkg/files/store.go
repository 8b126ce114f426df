package files

import (
	"context"
)

// Handle is an opaque reference to a filesystem entry granted by the host.
// Holders never mutate it.
type Handle interface {
	Name() string
	IsDir() bool
}

// Store enumerates the immediate entries of a directory handle.
type Store interface {
	RootTitle() string
	ReadDir(ctx context.Context, dir Handle) ([]Handle, error)
}

// DirPicker asks the host (usually the user) to grant a root directory.
type DirPicker interface {
	PickDir(ctx context.Context) (Handle, error)
}

type DirPickerFunc func(ctx context.Context) (Handle, error)

func (f DirPickerFunc) PickDir(ctx context.Context) (Handle, error) {
	return f(ctx)
}

func IsFile(h Handle) bool {
	return h != nil && !h.IsDir()
}
