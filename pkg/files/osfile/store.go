package osfile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/filetug/foldertug/pkg/files"
	"github.com/filetug/foldertug/pkg/fsutils"
	"github.com/pkg/errors"
)

var osReadDir = os.ReadDir
var osStat = os.Stat
var osHostname = os.Hostname

var _ files.Store = (*Store)(nil)

type Store struct {
	title string
}

func (s Store) RootTitle() string {
	return strings.TrimSuffix(s.title, ".station")
}

func (s Store) ReadDir(ctx context.Context, dir files.Handle) ([]files.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, ok := dir.(Handle)
	if !ok {
		return nil, errors.Errorf("osfile: foreign handle %T", dir)
	}
	entries, err := osReadDir(h.path)
	if err != nil {
		return nil, classify(err, h.path)
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	children := make([]files.Handle, 0, len(entries))
	for _, entry := range entries {
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			if fi, statErr := osStat(filepath.Join(h.path, entry.Name())); statErr == nil {
				isDir = fi.IsDir()
			}
		}
		children = append(children, Handle{path: filepath.Join(h.path, entry.Name()), isDir: isDir})
	}
	return children, nil
}

// Open grants a handle for an existing directory.
func (s Store) Open(path string) (Handle, error) {
	path = fsutils.ExpandHome(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		return Handle{}, errors.WithStack(err)
	}
	fi, err := osStat(abs)
	if err != nil {
		return Handle{}, classify(err, abs)
	}
	if !fi.IsDir() {
		return Handle{}, errors.Wrapf(files.ErrPermissionDenied, "%s is not a directory", abs)
	}
	return Handle{path: abs, isDir: true}, nil
}

func classify(err error, path string) error {
	if errors.Is(err, fs.ErrPermission) {
		return errors.Wrapf(files.ErrPermissionDenied, "%s", path)
	}
	return errors.Wrapf(err, "read %s", path)
}

func NewStore() *Store {
	store := Store{}
	var err error
	if store.title, err = osHostname(); err != nil {
		store.title = err.Error()
	}
	store.title = "🖥️" + store.title
	return &store
}
