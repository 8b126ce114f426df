package fsutils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var osUserHomeDir = os.UserHomeDir

// DirExists reports whether path names an existing directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat %s", path)
	}
	return info.IsDir(), nil
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat %s", path)
	}
	return info.Mode().IsRegular(), nil
}

// ExpandHome expands leading ~ to the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := osUserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~/"))
}

// AppDir returns ~/.<name>, the per-user directory of an app.
func AppDir(name string) (string, error) {
	home, err := osUserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home dir")
	}
	return filepath.Join(home, "."+name), nil
}
