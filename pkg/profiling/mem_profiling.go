package profiling

import (
	"context"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	pprofWriteHeapProfile = pprof.WriteHeapProfile
	runtimeGC             = runtime.GC
)

const DefaultHeapInterval = 10 * time.Second

// WriteHeap replaces path with a fresh heap profile.
func WriteHeap(path string) error {
	f, err := osCreate(path)
	if err != nil {
		return errors.Wrap(err, "could not create memory profile")
	}
	runtimeGC()
	if err = pprofWriteHeapProfile(f); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "could not write memory profile")
	}
	return closeFile(f)
}

// StartHeap rewrites the heap profile every interval until ctx is done,
// then writes it one last time.
func StartHeap(ctx context.Context, path string, interval time.Duration, logger *zap.Logger) (done <-chan struct{}) {
	if interval <= 0 {
		interval = DefaultHeapInterval
	}
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				if err := WriteHeap(path); err != nil {
					logger.Warn("heap profile", zap.Error(err))
				}
				return
			}
			if err := WriteHeap(path); err != nil {
				logger.Warn("heap profile", zap.Error(err))
			}
		}
	}()
	return finished
}
