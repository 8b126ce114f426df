// Package foldertug is the terminal widget that draws navigation snapshots
// and turns key presses and clicks into navigation operations.
package foldertug

import (
	"context"

	"github.com/filetug/foldertug/pkg/files"
	"github.com/filetug/foldertug/pkg/foldertug/uiapp"
	"github.com/filetug/foldertug/pkg/nav"
	"github.com/filetug/foldertug/pkg/sneatv/crumbs"
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const (
	mainPage   = "main"
	helpPage   = "help"
	promptPage = "prompt"
)

// Browser renders the navigation state either as columns, one per open
// slice, or as a tree. Widget fields are only touched on the UI goroutine.
type Browser struct {
	*tview.Pages
	app    uiapp.App
	o      options
	state  *nav.State
	ctx    context.Context
	cancel context.CancelFunc

	layout  *tview.Flex
	crumbs  *crumbs.Breadcrumbs
	content *tview.Flex
	columns *columns
	tree    *tree
	status  *statusBar
	prompt  *PathPrompt

	colorizer    nameColorizer
	mode         Mode
	snap         nav.Snapshot
	lastSelected files.Handle
	lastErr      error
}

func New(app uiapp.App, reader *nav.Reader, options ...Option) *Browser {
	o := defaultOptions()
	for _, opt := range options {
		opt(&o)
	}
	b := &Browser{
		Pages:     tview.NewPages(),
		app:       app,
		o:         o,
		mode:      o.mode,
		colorizer: nameColorizer{style: o.style},
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.prompt = newPathPrompt(b, o.openPath)

	picker := o.picker
	if picker == nil {
		picker = b.prompt
	}
	b.state = nav.New(reader, picker,
		nav.WithRenderer(nav.RendererFunc(b.draw)),
		nav.WithRemovalDelay(o.removalDelay),
		nav.WithSelectHandler(b.selected),
		nav.WithLogger(o.logger),
		nav.WithShowHidden(o.showHidden),
	)
	b.snap = b.state.Snapshot()

	b.crumbs = crumbs.NewBreadcrumbs(nil, crumbs.WithSeparator(" › "))
	b.crumbs.SetErrorHandler(b.showError)
	b.columns = newColumns(b)
	b.tree = newTree(b)
	b.status = newStatusBar(b)
	b.crumbs.SetPrevFocusTarget(b.status.button)
	b.content = tview.NewFlex()
	b.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.crumbs, 1, 0, false).
		AddItem(b.content, 0, 1, true).
		AddItem(b.status, 1, 0, false)
	b.layout.SetInputCapture(b.inputCapture)

	b.AddPage(mainPage, b.layout, true, true)
	b.AddPage(promptPage, b.prompt.modal, true, false)
	b.render(b.snap)
	return b
}

// State exposes the navigation state the browser drives.
func (b *Browser) State() *nav.State {
	return b.state
}

// PathPrompt is the interactive picker, for chaining after a static one.
func (b *Browser) PathPrompt() *PathPrompt {
	return b.prompt
}

// Snapshot returns the last rendered snapshot.
func (b *Browser) Snapshot() nav.Snapshot {
	return b.snap
}

func (b *Browser) Mode() Mode {
	return b.mode
}

// Close cancels in-flight operations and detaches the navigation state.
func (b *Browser) Close() {
	b.cancel()
	b.state.Close()
}

// do runs op off the UI goroutine and reports its failure.
func (b *Browser) do(name string, op func(ctx context.Context) error) {
	b.o.run(func() {
		b.report(name, op(b.ctx))
	})
}

func (b *Browser) report(op string, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, nav.ErrSuperseded), errors.Is(err, nav.ErrClosed), errors.Is(err, context.Canceled):
		b.o.logger.Debug("operation dropped", zap.String("op", op), zap.Error(err))
		return
	}
	b.o.logger.Warn("operation failed", zap.String("op", op), zap.Error(err))
	b.app.QueueUpdateDraw(func() {
		b.showError(err)
	})
}

func (b *Browser) showError(err error) {
	b.lastErr = err
	b.status.update()
}

func (b *Browser) SelectRoot() {
	b.do("select-root", func(ctx context.Context) error {
		_, err := b.state.SelectRoot(ctx)
		return err
	})
}

func (b *Browser) GrantRoot(root files.Handle) {
	b.do("grant-root", func(ctx context.Context) error {
		_, err := b.state.GrantRoot(ctx, root)
		return err
	})
}

func (b *Browser) Activate(entry nav.Entry, depth int) {
	b.do("activate", func(ctx context.Context) error {
		_, err := b.state.Activate(ctx, entry, depth)
		return err
	})
}

func (b *Browser) CloseSlice(depth int) {
	b.do("close-slice", func(ctx context.Context) error {
		_, err := b.state.CloseSlice(ctx, depth)
		return err
	})
}

func (b *Browser) ToggleHiddenFiles() {
	b.o.run(func() {
		b.state.ToggleHiddenFiles()
	})
}

// SetMode switches between the column and the tree presentation of the
// same snapshot.
func (b *Browser) SetMode(mode Mode) {
	if mode != ModeTree {
		mode = ModeSlices
	}
	b.mode = mode
	b.render(b.snap)
	b.focusContent()
}

func (b *Browser) ToggleMode() {
	if b.mode == ModeTree {
		b.SetMode(ModeSlices)
	} else {
		b.SetMode(ModeTree)
	}
}

// draw is the nav.Renderer; it runs on the operation's goroutine.
func (b *Browser) draw(snap nav.Snapshot) {
	b.app.QueueUpdateDraw(func() {
		depthChanged := snap.Depth() != b.snap.Depth()
		b.render(snap)
		if depthChanged && !b.overlayShown() {
			b.focusContent()
		}
	})
}

func (b *Browser) render(snap nav.Snapshot) {
	b.snap = snap
	b.renderCrumbs()
	b.content.Clear()
	if b.mode == ModeTree {
		b.tree.render(snap)
		b.content.AddItem(b.tree, 0, 1, true)
	} else {
		b.columns.render(snap)
		b.content.AddItem(b.columns, 0, 1, true)
	}
	b.crumbs.SetNextFocusTarget(b.contentTarget())
	b.status.update()
}

// contentTarget is the widget that takes the keyboard in the current mode.
func (b *Browser) contentTarget() tview.Primitive {
	if b.mode == ModeTree {
		return b.tree
	}
	return b.columns.focusTarget()
}

func (b *Browser) focusContent() {
	b.app.SetFocus(b.contentTarget())
}

// focusCrumbs hands the keyboard to the breadcrumbs. Tab, Down and Esc
// lead back to the content, Backtab and Up to the Open button.
func (b *Browser) focusCrumbs() {
	b.crumbs.TakeFocus(b.contentTarget())
	b.app.SetFocus(b.crumbs)
}

func (b *Browser) overlayShown() bool {
	return b.HasPage(helpPage) || b.prompt.Visible()
}

func (b *Browser) selected(h files.Handle) {
	b.app.QueueUpdateDraw(func() {
		b.lastSelected = h
		b.status.update()
	})
	if b.o.onSelect != nil {
		b.o.onSelect(h)
	}
}

func (b *Browser) filter() Filter {
	return Filter{ShowHidden: b.snap.ShowHiddenFiles, Extensions: b.o.extensions}
}

// renderCrumbs shows the root followed by the active entries. Picking a
// crumb closes every slice below it.
func (b *Browser) renderCrumbs() {
	snap := b.snap
	if !snap.HasRoot() {
		b.crumbs.Reset(crumbs.NewCrumb("no folder", func() error {
			b.SelectRoot()
			return nil
		}))
		return
	}
	b.crumbs.Reset(nil)
	for k, name := range snap.Path() {
		depth := k + 1
		crumb := crumbs.NewCrumb(name, func() error {
			if depth < b.snap.Depth() {
				b.CloseSlice(depth)
			}
			return nil
		})
		if k > 0 {
			if e, ok := snap.ActiveEntry(k - 1); ok {
				crumb.WithColor(b.colorizer.color(e.Handle))
			}
		}
		b.crumbs.Push(crumb)
	}
}

// inputCapture holds the browser-wide shortcuts. They only fire while
// focus is inside the browser.
func (b *Browser) inputCapture(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyF1:
		b.ShowHelp()
		return nil
	case tcell.KeyRune:
		if event.Modifiers()&tcell.ModAlt == 0 {
			return event
		}
		switch event.Rune() {
		case '.':
			b.ToggleHiddenFiles()
		case 'o', 'O':
			b.SelectRoot()
		case 't', 'T':
			b.ToggleMode()
		case 'b', 'B':
			b.focusCrumbs()
		case 'x', 'X':
			b.app.Stop()
		default:
			return event
		}
		return nil
	default:
		return event
	}
}
