package ftpfile

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

// Path is the server path of the entry.
func (h Handle) Path() string { return h.dirPath }
