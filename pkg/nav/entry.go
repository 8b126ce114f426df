package nav

import (
	"github.com/filetug/foldertug/pkg/files"
)

// Entry is a node of a slice. It is a value: transitions never modify an
// Entry that has already been handed out in a Snapshot.
type Entry struct {
	Handle   files.Handle
	Active   bool
	Removing bool
}

func (e Entry) Name() string {
	return e.Handle.Name()
}

func (e Entry) IsDir() bool {
	return e.Handle.IsDir()
}

func (e Entry) same(other Entry) bool {
	return e.Handle.Name() == other.Handle.Name() && e.Handle.IsDir() == other.Handle.IsDir()
}

// Slice lists the siblings at one depth of the open path. Err is set when
// the listing failed; the slice is then empty.
type Slice struct {
	Entries []Entry
	Err     error
}

func (s Slice) Len() int {
	return len(s.Entries)
}

func (s Slice) indexOf(e Entry) int {
	for i, entry := range s.Entries {
		if entry.same(e) {
			return i
		}
	}
	return -1
}

func (s Slice) activeIndex() int {
	for i, entry := range s.Entries {
		if entry.Active {
			return i
		}
	}
	return -1
}

func (s Slice) hasRemoving() bool {
	for _, entry := range s.Entries {
		if entry.Removing {
			return true
		}
	}
	return false
}

// with returns a copy of s where f has been applied to every entry.
func (s Slice) with(f func(i int, e Entry) Entry) Slice {
	entries := make([]Entry, len(s.Entries))
	for i, entry := range s.Entries {
		entries[i] = f(i, entry)
	}
	return Slice{Entries: entries, Err: s.Err}
}
