package httpfile

import (
	"path"
	"strings"

	"github.com/filetug/foldertug/pkg/files"
)

var _ files.Handle = Handle{}

type Handle struct {
	dirPath string
	isDir   bool
}

func (h Handle) Name() string {
	name := path.Base(strings.TrimSuffix(h.dirPath, "/"))
	if name == "." {
		return "/"
	}
	return name
}

func (h Handle) IsDir() bool { return h.isDir }

// Path is the URL path of the entry relative to the server root.
func (h Handle) Path() string { return h.dirPath }
