package nav

import (
	"github.com/filetug/foldertug/pkg/files"
)

type Status string

const (
	StatusEmpty  Status = "empty"
	StatusFilled Status = "filled"
	StatusLoaded Status = "loaded"
)

// Snapshot is an immutable view of the navigation state handed to renderers.
type Snapshot struct {
	Root            files.Handle
	Slices          []Slice
	ShowHiddenFiles bool
	Status          Status
}

func (s Snapshot) HasRoot() bool {
	return s.Root != nil
}

// Depth is the number of open slices.
func (s Snapshot) Depth() int {
	return len(s.Slices)
}

// SliceRemoving reports whether slice i is being animated away, which is the
// case when any shallower slice holds an entry marked for removal.
func (s Snapshot) SliceRemoving(i int) bool {
	for j := 0; j < i && j < len(s.Slices); j++ {
		if s.Slices[j].hasRemoving() {
			return true
		}
	}
	return false
}

// ActiveEntry returns the active entry of slice i.
func (s Snapshot) ActiveEntry(i int) (Entry, bool) {
	if i < 0 || i >= len(s.Slices) {
		return Entry{}, false
	}
	if idx := s.Slices[i].activeIndex(); idx >= 0 {
		return s.Slices[i].Entries[idx], true
	}
	return Entry{}, false
}

// SliceTitle is the name of the directory slice i lists.
func (s Snapshot) SliceTitle(i int) string {
	if i > 0 {
		if parent, ok := s.ActiveEntry(i - 1); ok {
			return parent.Name()
		}
	}
	if s.Root == nil {
		return ""
	}
	return s.Root.Name()
}

// Path returns the names from the root down the chain of active entries.
func (s Snapshot) Path() []string {
	if s.Root == nil {
		return nil
	}
	p := []string{s.Root.Name()}
	for i := range s.Slices {
		active, ok := s.ActiveEntry(i)
		if !ok {
			break
		}
		p = append(p, active.Name())
	}
	return p
}

// Errors returns the read failures of the open slices keyed by slice index.
func (s Snapshot) Errors() map[int]error {
	var errs map[int]error
	for i, slice := range s.Slices {
		if slice.Err == nil {
			continue
		}
		if errs == nil {
			errs = make(map[int]error)
		}
		errs[i] = slice.Err
	}
	return errs
}
