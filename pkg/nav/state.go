package nav

import (
	"context"
	"sync"
	"time"

	"github.com/filetug/foldertug/pkg/files"
	"go.uber.org/zap"
)

// State owns the root handle and the open slices. All mutating operations
// may be called from any goroutine; a newer operation supersedes an older
// one still in flight, whose results are then discarded.
type State struct {
	reader *Reader
	picker files.DirPicker
	o      options

	mu         sync.Mutex
	root       files.Handle
	slices     []Slice
	showHidden bool
	status     Status
	gen        uint64
	cancel     context.CancelFunc
	closed     bool
	seq        uint64

	drawMu sync.Mutex
	drawn  uint64
}

func New(reader *Reader, picker files.DirPicker, opts ...Option) *State {
	if reader == nil {
		panic("nav: reader is required")
	}
	o := options{
		removalDelay: DefaultRemovalDelay,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &State{
		reader:     reader,
		picker:     picker,
		o:          o,
		status:     StatusEmpty,
		showHidden: o.showHidden,
	}
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SelectRoot asks the picker for a root directory and lists it. A cancelled
// or denied pick resets the state to empty and is not reported as an error.
func (s *State) SelectRoot(ctx context.Context) (Snapshot, error) {
	if s.picker == nil {
		return s.resetEmpty(ctx, files.ErrCancelled)
	}
	s.mu.Lock()
	opCtx, gen, err := s.beginLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return s.Snapshot(), err
	}
	defer s.end(gen)

	root, err := s.picker.PickDir(opCtx)
	if err == nil && root == nil {
		err = files.ErrCancelled
	}
	if err != nil {
		return s.applyPickFailure(gen, err)
	}
	return s.installRoot(opCtx, gen, root)
}

// GrantRoot installs a root handle obtained without prompting.
func (s *State) GrantRoot(ctx context.Context, root files.Handle) (Snapshot, error) {
	if root == nil || !root.IsDir() {
		return s.resetEmpty(ctx, files.ErrPermissionDenied)
	}
	s.mu.Lock()
	opCtx, gen, err := s.beginLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return s.Snapshot(), err
	}
	defer s.end(gen)
	return s.installRoot(opCtx, gen, root)
}

func (s *State) resetEmpty(ctx context.Context, cause error) (Snapshot, error) {
	s.mu.Lock()
	_, gen, err := s.beginLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return s.Snapshot(), err
	}
	defer s.end(gen)
	return s.applyPickFailure(gen, cause)
}

func (s *State) applyPickFailure(gen uint64, cause error) (Snapshot, error) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.o.logger.Debug("root selection superseded")
		return s.Snapshot(), ErrSuperseded
	}
	if files.IsPickAborted(cause) {
		s.o.logger.Info("root selection aborted", zap.Error(cause))
	} else {
		s.o.logger.Warn("root selection failed", zap.Error(cause))
	}
	s.root = nil
	s.slices = nil
	s.status = StatusEmpty
	snap, seq := s.commitLocked()
	s.mu.Unlock()
	s.publish(snap, seq)
	return snap, nil
}

// installRoot shows root as filled, then lists it. When ctx ends during the
// listing the previous root and slices are restored.
func (s *State) installRoot(ctx context.Context, gen uint64, root files.Handle) (Snapshot, error) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return s.Snapshot(), ErrSuperseded
	}
	prevRoot, prevSlices, prevStatus := s.root, s.slices, s.status
	s.root = root
	s.slices = nil
	s.status = StatusFilled
	snap, seq := s.commitLocked()
	s.mu.Unlock()
	s.publish(snap, seq)
	s.o.logger.Info("root selected", zap.String("root", root.Name()))

	children, readErr := s.reader.ListChildren(ctx, root)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.o.logger.Debug("root listing discarded", zap.String("root", root.Name()))
		return s.Snapshot(), ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		s.o.logger.Debug("root listing cancelled", zap.String("root", root.Name()))
		s.root, s.slices, s.status = prevRoot, prevSlices, prevStatus
		return s.rollbackLocked(err)
	}
	s.slices = []Slice{{Entries: children, Err: readErr}}
	s.status = StatusLoaded
	snap, seq = s.commitLocked()
	s.mu.Unlock()
	s.publish(snap, seq)
	if readErr != nil {
		s.o.logger.Warn("root listing failed", zap.Error(readErr))
	}
	return snap, readErr
}

// Activate selects entry, which lives in slice depth-1. A directory opens as
// slice depth, or closes when it was already active. A file becomes active
// and fires the select notification. When another directory of the same
// slice is open it is shown as removing for the removal delay first.
func (s *State) Activate(ctx context.Context, entry Entry, depth int) (Snapshot, error) {
	if entry.Handle == nil {
		return s.Snapshot(), ErrEntryNotFound
	}
	s.mu.Lock()
	if depth < 1 || depth > len(s.slices) {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrInvalidDepth
	}
	idx := s.slices[depth-1].indexOf(entry)
	if idx < 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrEntryNotFound
	}
	opCtx, gen, err := s.beginLocked(ctx)
	if err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	defer s.end(gen)

	parent := s.slices[depth-1]
	if a := parent.activeIndex(); a >= 0 && parent.Entries[a].IsDir() {
		s.slices = replaceSlice(s.slices, depth-1, parent.with(func(i int, e Entry) Entry {
			e.Removing = i == a
			return e
		}))
		if snap, err := s.retire(opCtx, gen); err != nil {
			return snap, err
		}
	}

	target := s.slices[depth-1].Entries[idx]
	var (
		child   *Slice
		readErr error
	)
	if target.IsDir() && !target.Active {
		s.mu.Unlock()
		var children []Entry
		children, readErr = s.reader.ListChildren(opCtx, target.Handle)
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			s.o.logger.Debug("listing discarded", zap.String("dir", target.Name()))
			return s.Snapshot(), ErrSuperseded
		}
		if err := opCtx.Err(); err != nil {
			s.o.logger.Debug("listing cancelled", zap.String("dir", target.Name()))
			return s.rollbackLocked(err)
		}
		child = &Slice{Entries: children, Err: readErr}
	}

	next := make([]Slice, depth, depth+1)
	copy(next, s.slices[:depth])
	next[depth-1] = s.slices[depth-1].with(func(i int, e Entry) Entry {
		e.Removing = false
		e.Active = i == idx && (!e.Active || !e.IsDir())
		return e
	})
	if child != nil {
		next = append(next, *child)
	}
	s.slices = next
	snap, seq := s.commitLocked()
	s.mu.Unlock()
	s.publish(snap, seq)

	if readErr != nil {
		s.o.logger.Warn("listing failed", zap.String("dir", target.Name()), zap.Error(readErr))
	}
	if files.IsFile(target.Handle) && s.o.onSelect != nil {
		s.o.onSelect(target.Handle)
	}
	return snap, readErr
}

// CloseSlice drops slice depth and everything deeper after the removal
// animation, and deactivates every entry of slice depth-1. The root listing
// can not be closed.
func (s *State) CloseSlice(ctx context.Context, depth int) (Snapshot, error) {
	s.mu.Lock()
	if depth < 1 || depth >= len(s.slices) || s.slices[depth-1].Len() == 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrInvalidDepth
	}
	opCtx, gen, err := s.beginLocked(ctx)
	if err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	defer s.end(gen)

	s.slices = replaceSlice(s.slices, depth-1, s.slices[depth-1].with(func(i int, e Entry) Entry {
		e.Removing = i == 0
		return e
	}))
	if snap, err := s.retire(opCtx, gen); err != nil {
		return snap, err
	}

	next := make([]Slice, depth)
	copy(next, s.slices[:depth])
	next[depth-1] = s.slices[depth-1].with(func(_ int, e Entry) Entry {
		e.Removing = false
		e.Active = false
		return e
	})
	s.slices = next
	snap, seq := s.commitLocked()
	s.mu.Unlock()
	s.publish(snap, seq)
	return snap, nil
}

// retire publishes the removing state and waits out the removal delay.
// Called with s.mu held; returns with s.mu held unless it returns an error.
func (s *State) retire(ctx context.Context, gen uint64) (Snapshot, error) {
	snap, seq := s.commitLocked()
	s.mu.Unlock()
	s.publish(snap, seq)

	waitErr := s.wait(ctx)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return s.Snapshot(), ErrSuperseded
	}
	if waitErr != nil {
		return s.rollbackLocked(waitErr)
	}
	return Snapshot{}, nil
}

// rollbackLocked publishes the state as it was before a cancelled
// operation, minus its removing marks. Called with s.mu held; releases it.
func (s *State) rollbackLocked(cause error) (Snapshot, error) {
	s.clearRemovingLocked()
	snap, seq := s.commitLocked()
	s.mu.Unlock()
	s.publish(snap, seq)
	return snap, cause
}

// ToggleHiddenFiles flips the hidden files flag. Stored entries are left
// untouched; filtering is up to the renderer.
func (s *State) ToggleHiddenFiles() Snapshot {
	s.mu.Lock()
	s.showHidden = !s.showHidden
	snap, seq := s.commitLocked()
	s.mu.Unlock()
	s.publish(snap, seq)
	return snap
}

// Close cancels the operation in flight. Later operations fail with ErrClosed.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *State) beginLocked(ctx context.Context) (context.Context, uint64, error) {
	if s.closed {
		return ctx, 0, ErrClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	opCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.clearRemovingLocked()
	return opCtx, s.gen, nil
}

func (s *State) end(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *State) wait(ctx context.Context) error {
	if s.o.removalDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.o.removalDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *State) clearRemovingLocked() {
	for i, slice := range s.slices {
		if !slice.hasRemoving() {
			continue
		}
		s.slices = replaceSlice(s.slices, i, slice.with(func(_ int, e Entry) Entry {
			e.Removing = false
			return e
		}))
	}
}

func (s *State) commitLocked() (Snapshot, uint64) {
	s.seq++
	return s.snapshotLocked(), s.seq
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Root:            s.root,
		Slices:          s.slices,
		ShowHiddenFiles: s.showHidden,
		Status:          s.status,
	}
}

// publish draws snap unless a newer snapshot has already been drawn.
func (s *State) publish(snap Snapshot, seq uint64) {
	s.drawMu.Lock()
	defer s.drawMu.Unlock()
	if seq <= s.drawn {
		return
	}
	s.drawn = seq
	if s.o.renderer != nil {
		s.o.renderer.Draw(snap)
	}
}

// replaceSlice returns a copy of slices with slices[i] set to slice.
func replaceSlice(slices []Slice, i int, slice Slice) []Slice {
	next := make([]Slice, len(slices))
	copy(next, slices)
	next[i] = slice
	return next
}
