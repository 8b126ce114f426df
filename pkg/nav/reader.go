package nav

import (
	"context"
	"sort"

	"github.com/filetug/foldertug/pkg/files"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
)

// Reader lists directory children in display order.
type Reader struct {
	store files.Store
}

func NewReader(store files.Store) *Reader {
	if store == nil {
		panic("nav: store is required")
	}
	return &Reader{store: store}
}

func (r *Reader) Store() files.Store {
	return r.store
}

// ListChildren returns the entries of dir with no flags set. On failure no
// entries are returned and the error is a *ReadError.
func (r *Reader) ListChildren(ctx context.Context, dir files.Handle) ([]Entry, error) {
	handles, err := r.store.ReadDir(ctx, dir)
	if err != nil {
		return nil, &ReadError{Dir: dir.Name(), Err: errors.WithStack(err)}
	}
	entries := make([]Entry, len(handles))
	for i, h := range handles {
		entries[i] = Entry{Handle: h}
	}
	sortEntries(entries)
	return entries, nil
}

// sortEntries puts directories first, then orders by case-folded name.
func sortEntries(entries []Entry) {
	fold := cases.Fold()
	keys := make(map[string]string, len(entries))
	key := func(name string) string {
		k, ok := keys[name]
		if !ok {
			k = fold.String(name)
			keys[name] = k
		}
		return k
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Handle, entries[j].Handle
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		ka, kb := key(a.Name()), key(b.Name())
		if ka != kb {
			return ka < kb
		}
		return a.Name() < b.Name()
	})
}
