// Package ftstate remembers the presentation toggles of the last session:
// the view mode and whether hidden files were shown. Directory state is
// never saved.
package ftstate

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/filetug/foldertug/pkg/fsutils"
	"github.com/pkg/errors"
)

const stateFileName = "state.json"

var (
	osReadFile  = os.ReadFile
	osWriteFile = os.WriteFile
	osMkdirAll  = os.MkdirAll
	osRename    = os.Rename
)

// State holds the toggles; nil or empty fields were never saved.
type State struct {
	Mode       string `json:"mode,omitempty"`
	ShowHidden *bool  `json:"show_hidden,omitempty"`
}

// File is the state file inside an app directory.
type File struct {
	path string
}

func NewFile(dir string) *File {
	return &File{path: filepath.Join(fsutils.ExpandHome(dir), stateFileName)}
}

func (f *File) Path() string {
	return f.path
}

// Load returns the saved state; a missing file is an empty state.
func (f *File) Load() (State, error) {
	var state State
	data, err := osReadFile(f.path)
	if os.IsNotExist(err) {
		return state, nil
	}
	if err != nil {
		return state, errors.Wrapf(err, "failed to read %s", f.path)
	}
	if err = json.Unmarshal(data, &state); err != nil {
		return State{}, errors.Wrapf(err, "failed to parse %s", f.path)
	}
	return state, nil
}

// Save replaces the state file atomically.
func (f *File) Save(state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	if err = osMkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create state directory")
	}
	tmp := f.path + ".tmp"
	if err = osWriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", tmp)
	}
	return errors.Wrap(osRename(tmp, f.path), "failed to replace state file")
}

// Toggles builds a state from the current toggles.
func Toggles(mode string, showHidden bool) State {
	return State{Mode: mode, ShowHidden: &showHidden}
}
