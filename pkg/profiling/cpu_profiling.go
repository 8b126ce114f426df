// Package profiling writes pprof profiles of a running session.
package profiling

import (
	"io"
	"os"
	"runtime/pprof"

	"github.com/pkg/errors"
)

var (
	osCreate             = os.Create
	pprofStartCPUProfile = pprof.StartCPUProfile
	pprofStopCPUProfile  = pprof.StopCPUProfile
)

// StartCPU starts CPU profiling into path. The returned stop func flushes
// the profile and closes the file.
func StartCPU(path string) (stop func() error, err error) {
	f, err := osCreate(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not create CPU profile")
	}
	if err = pprofStartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "could not start CPU profile")
	}
	return func() error {
		pprofStopCPUProfile()
		return closeFile(f)
	}, nil
}

func closeFile(c io.Closer) error {
	return errors.Wrap(c.Close(), "could not close profile")
}
