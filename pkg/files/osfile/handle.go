package osfile

import (
	"path/filepath"

	"github.com/filetug/foldertug/pkg/files"
)

var _ files.Handle = Handle{}

type Handle struct {
	path  string
	isDir bool
}

func NewHandle(path string, isDir bool) Handle {
	return Handle{path: filepath.Clean(path), isDir: isDir}
}

func (h Handle) Name() string {
	if h.path == "" {
		return ""
	}
	return filepath.Base(h.path)
}

func (h Handle) IsDir() bool    { return h.isDir }
func (h Handle) Path() string   { return h.path }
func (h Handle) String() string { return h.path }

// PathOf returns the filesystem path of a handle when the host exposes one.
func PathOf(h files.Handle) (string, bool) {
	type pather interface{ Path() string }
	if p, ok := h.(pather); ok {
		return p.Path(), true
	}
	return "", false
}
