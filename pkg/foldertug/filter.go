package foldertug

import (
	"path"
	"strings"

	"github.com/filetug/foldertug/pkg/files"
)

// Filter decides which entries the browser shows. Stored entries are never
// filtered, only what gets drawn.
type Filter struct {
	ShowHidden bool
	// Extensions, when set, restricts files (not directories) to these
	// extensions, with or without the leading dot.
	Extensions []string
}

func (f Filter) IsVisible(h files.Handle) bool {
	name := h.Name()
	if !f.ShowHidden && strings.HasPrefix(name, ".") {
		return false
	}
	if h.IsDir() || len(f.Extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(path.Ext(name), ".")
	for _, e := range f.Extensions {
		if e = strings.TrimPrefix(e, "."); e != "" && strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
