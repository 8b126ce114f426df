package foldertug

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/filetug/foldertug/pkg/files"
	"github.com/filetug/foldertug/pkg/files/memfile"
	"github.com/filetug/foldertug/pkg/foldertug/uiapp"
	"github.com/filetug/foldertug/pkg/nav"
	"github.com/filetug/foldertug/pkg/sneatv/ttestutils"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncRun(o *options) {
	o.run = func(f func()) { f() }
}

type testBrowser struct {
	*Browser
	root     *memfile.Node
	store    *memfile.Store
	mu       sync.Mutex
	focused  tview.Primitive
	stopped  bool
	selected []files.Handle
}

func (tb *testBrowser) focus() tview.Primitive {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.focused
}

func newTestTree() *memfile.Node {
	return memfile.Dir("root",
		memfile.Dir("A",
			memfile.File("a1.go"),
			memfile.Dir("Sub", memfile.File("deep.txt")),
		),
		memfile.Dir("B", memfile.File("b1.txt")),
		memfile.File("b.txt"),
		memfile.File(".hidden"),
	)
}

func newTestBrowser(t *testing.T, opts ...Option) *testBrowser {
	t.Helper()
	tb := &testBrowser{root: newTestTree(), store: memfile.NewStore("mem")}
	app := uiapp.New(nil,
		uiapp.WithSetFocus(func(p tview.Primitive) {
			tb.mu.Lock()
			tb.focused = p
			tb.mu.Unlock()
		}),
		uiapp.WithStop(func() { tb.stopped = true }),
	)
	defaults := []Option{
		WithPicker(memfile.Picker{Root: tb.root}),
		WithRemovalDelay(0),
		OnSelect(func(h files.Handle) { tb.selected = append(tb.selected, h) }),
		syncRun,
	}
	tb.Browser = New(app, nav.NewReader(tb.store), append(defaults, opts...)...)
	t.Cleanup(tb.Close)
	return tb
}

func itemTexts(list *tview.List) []string {
	texts := make([]string, list.GetItemCount())
	for i := range texts {
		main, _ := list.GetItemText(i)
		texts[i] = main
	}
	return texts
}

func press(handler func(*tcell.EventKey, func(tview.Primitive)), key tcell.Key) {
	handler(tcell.NewEventKey(key, 0, tcell.ModNone), func(tview.Primitive) {})
}

func alt(b *Browser, r rune) *tcell.EventKey {
	return b.layout.GetInputCapture()(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModAlt))
}

func selectRow(list *tview.List, index int) {
	list.SetCurrentItem(index)
	press(list.InputHandler(), tcell.KeyEnter)
}

func screenText(t *testing.T, b *Browser) string {
	t.Helper()
	s := ttestutils.NewSimScreen(t, "UTF-8", 100, 20)
	defer s.Fini()
	return strings.Join(ttestutils.DrawLines(s, b), "\n")
}

func crumbTitles(t *testing.T, b *Browser) []string {
	t.Helper()
	const width = 100
	s := ttestutils.NewSimScreen(t, "UTF-8", width, 1)
	defer s.Fini()
	b.crumbs.SetRect(0, 0, width, 1)
	b.crumbs.Draw(s)
	return strings.Split(strings.TrimRight(ttestutils.ReadLine(s, 0, width), " "), " › ")
}

func TestBrowser_Empty(t *testing.T) {
	tb := newTestBrowser(t)
	assert.Equal(t, nav.StatusEmpty, tb.Snapshot().Status)
	assert.Equal(t, " status=empty depth=0 │ hidden=off │ mode=slices", tb.status.line())
	assert.Equal(t, []string{"no folder"}, crumbTitles(t, tb.Browser))

	text := screenText(t, tb.Browser)
	assert.Contains(t, text, "No folder selected.")
	assert.Contains(t, text, "status=empty depth=0")
	assert.Contains(t, text, "Open")
}

func TestBrowser_SelectRoot(t *testing.T) {
	tb := newTestBrowser(t)
	tb.SelectRoot()

	snap := tb.Snapshot()
	assert.Equal(t, nav.StatusLoaded, snap.Status)
	require.Len(t, tb.columns.lists, 1)
	texts := itemTexts(tb.columns.lists[0])
	require.Len(t, texts, 4)
	assert.Equal(t, "[::b]root", texts[0])
	assert.True(t, strings.HasSuffix(texts[1], "A ▶"), texts[1])
	assert.True(t, strings.HasSuffix(texts[2], "B ▶"), texts[2])
	assert.True(t, strings.HasSuffix(texts[3], "b.txt"), texts[3])
	assert.Equal(t, 1, tb.columns.lists[0].GetCurrentItem())
	assert.Same(t, tb.columns.lists[0], tb.focus())
	assert.Equal(t, []string{"root"}, crumbTitles(t, tb.Browser))

	text := screenText(t, tb.Browser)
	assert.Contains(t, text, "A ▶")
	assert.Contains(t, text, "status=loaded depth=1")
	assert.NotContains(t, text, ".hidden")
}

func TestBrowser_OpenAndCloseColumns(t *testing.T) {
	tb := newTestBrowser(t)
	tb.SelectRoot()

	selectRow(tb.columns.lists[0], 1)
	require.Equal(t, 2, tb.Snapshot().Depth())
	require.Len(t, tb.columns.lists, 2)
	assert.Same(t, tb.columns.lists[1], tb.focus())
	texts := itemTexts(tb.columns.lists[1])
	assert.Equal(t, "[::b]◀ A", texts[0])
	assert.True(t, strings.HasPrefix(itemTexts(tb.columns.lists[0])[1], "[black:"), "active entry is highlighted")
	assert.Equal(t, []string{"root", "A"}, crumbTitles(t, tb.Browser))

	selectRow(tb.columns.lists[1], 1)
	require.Equal(t, 3, tb.Snapshot().Depth())
	assert.Equal(t, []string{"root", "A", "Sub"}, crumbTitles(t, tb.Browser))

	// back header of the deepest column
	selectRow(tb.columns.lists[2], 0)
	assert.Equal(t, 2, tb.Snapshot().Depth())

	// left arrow closes the focused column
	press(tb.columns.lists[1].InputHandler(), tcell.KeyLeft)
	assert.Equal(t, 1, tb.Snapshot().Depth())
	_, ok := tb.Snapshot().ActiveEntry(0)
	assert.False(t, ok)
	assert.Same(t, tb.columns.lists[0], tb.focus())

	// root header and left arrow in the root column do nothing
	selectRow(tb.columns.lists[0], 0)
	press(tb.columns.lists[0].InputHandler(), tcell.KeyLeft)
	assert.Equal(t, 1, tb.Snapshot().Depth())
}

func TestBrowser_RightMovesFocus(t *testing.T) {
	tb := newTestBrowser(t)
	tb.SelectRoot()
	selectRow(tb.columns.lists[0], 1)

	press(tb.columns.lists[0].InputHandler(), tcell.KeyRight)
	assert.Same(t, tb.columns.lists[1], tb.focus())
}

func TestBrowser_SelectFile(t *testing.T) {
	tb := newTestBrowser(t)
	tb.SelectRoot()
	selectRow(tb.columns.lists[0], 3)

	require.Len(t, tb.selected, 1)
	assert.Equal(t, "b.txt", tb.selected[0].Name())
	assert.Contains(t, tb.status.line(), "[green]b.txt[-]")
	assert.Equal(t, []string{"root", "b.txt"}, crumbTitles(t, tb.Browser))
}

func TestBrowser_ReadError(t *testing.T) {
	tb := newTestBrowser(t)
	tb.store.FailReads(tb.root.Find("B"), files.ErrPermissionDenied)
	tb.SelectRoot()
	selectRow(tb.columns.lists[0], 2)

	require.Equal(t, 2, tb.Snapshot().Depth())
	texts := itemTexts(tb.columns.lists[1])
	require.Len(t, texts, 2)
	assert.True(t, strings.HasPrefix(texts[1], "[red]⚠ failed to read B"), texts[1])
	assert.Contains(t, tb.status.line(), "[red]failed to read B")

	// the error row is inert
	selectRow(tb.columns.lists[1], 1)
	assert.Equal(t, 2, tb.Snapshot().Depth())
}

func TestBrowser_EmptyDirectory(t *testing.T) {
	tb := newTestBrowser(t)
	tb.root = memfile.Dir("root", memfile.Dir("void"))
	tb.GrantRoot(tb.root)
	selectRow(tb.columns.lists[0], 1)
	assert.Equal(t, []string{"[::b]◀ void", "[gray]empty"}, itemTexts(tb.columns.lists[1]))
}

func TestBrowser_ToggleHiddenFiles(t *testing.T) {
	tb := newTestBrowser(t)
	tb.SelectRoot()
	assert.Nil(t, alt(tb.Browser, '.'))

	assert.True(t, tb.Snapshot().ShowHiddenFiles)
	texts := itemTexts(tb.columns.lists[0])
	require.Len(t, texts, 5)
	assert.True(t, strings.HasSuffix(texts[3], ".hidden"), texts[3])
	assert.Contains(t, tb.status.line(), "hidden=on")
	assert.Equal(t, 1, tb.store.Reads(tb.root))
}

func TestBrowser_Extensions(t *testing.T) {
	tb := newTestBrowser(t, WithExtensions(".go"))
	tb.SelectRoot()
	assert.Len(t, itemTexts(tb.columns.lists[0]), 3, "dirs stay, b.txt is filtered")
}

func TestBrowser_MaxColumns(t *testing.T) {
	tb := newTestBrowser(t, WithMaxColumns(2))
	tb.SelectRoot()
	selectRow(tb.columns.lists[0], 1)
	selectRow(tb.columns.lists[1], 1)
	assert.Equal(t, 3, tb.Snapshot().Depth())
	assert.Equal(t, 2, tb.columns.GetItemCount())
}

func TestBrowser_RemovingEntriesAreDimmed(t *testing.T) {
	tb := newTestBrowser(t)
	a, b := tb.root.Find("A"), tb.root.Find("b.txt")
	snap := nav.Snapshot{
		Root:   tb.root,
		Status: nav.StatusLoaded,
		Slices: []nav.Slice{
			{Entries: []nav.Entry{{Handle: a, Active: true, Removing: true}, {Handle: b}}},
			{Entries: []nav.Entry{{Handle: tb.root.Find("A/a1.go")}}},
		},
	}
	tb.render(snap)
	assert.Equal(t, "[gray::d]A ▶", itemTexts(tb.columns.lists[0])[1])
	assert.False(t, strings.HasPrefix(itemTexts(tb.columns.lists[0])[2], "[gray"))
	assert.Equal(t, "[gray::d]a1.go", itemTexts(tb.columns.lists[1])[1])
}

func TestBrowser_Breadcrumbs(t *testing.T) {
	tb := newTestBrowser(t)
	tb.SelectRoot()
	selectRow(tb.columns.lists[0], 1)
	selectRow(tb.columns.lists[1], 1)

	tb.crumbs.Focus(func(tview.Primitive) {})
	press(tb.crumbs.InputHandler(), tcell.KeyEnter) // "A"
	assert.Equal(t, 2, tb.Snapshot().Depth())

	press(tb.crumbs.InputHandler(), tcell.KeyLeft)
	press(tb.crumbs.InputHandler(), tcell.KeyEnter) // "root"
	assert.Equal(t, 1, tb.Snapshot().Depth())

	// the crumb of the current level is a no-op
	press(tb.crumbs.InputHandler(), tcell.KeyEnter)
	assert.Equal(t, 1, tb.Snapshot().Depth())
}

func TestBrowser_TreeMode(t *testing.T) {
	tb := newTestBrowser(t)
	tb.SelectRoot()
	assert.Nil(t, alt(tb.Browser, 't'))
	assert.Equal(t, ModeTree, tb.Mode())
	assert.Same(t, tb.tree, tb.focus())

	root := tb.tree.GetRoot()
	require.Len(t, root.GetChildren(), 3)
	tb.tree.nodeSelected(root.GetChildren()[0])
	assert.Equal(t, 2, tb.Snapshot().Depth())

	root = tb.tree.GetRoot()
	nodeA := root.GetChildren()[0]
	require.Len(t, nodeA.GetChildren(), 2)
	assert.Same(t, nodeA, tb.tree.GetCurrentNode())

	tb.tree.SetCurrentNode(nodeA.GetChildren()[1])
	press(tb.tree.InputHandler(), tcell.KeyLeft)
	assert.Equal(t, 1, tb.Snapshot().Depth())

	text := screenText(t, tb.Browser)
	assert.Contains(t, text, "B ▶")
	assert.Contains(t, text, "mode=tree")

	assert.Nil(t, alt(tb.Browser, 'T'))
	assert.Equal(t, ModeSlices, tb.Mode())
}

func TestBrowser_TreeModeEmpty(t *testing.T) {
	tb := newTestBrowser(t, WithMode(ModeTree))
	assert.Contains(t, tb.tree.GetRoot().GetText(), "No folder selected.")
}

func TestBrowser_Help(t *testing.T) {
	tb := newTestBrowser(t, WithSettingsYAML("mode: slices\n"))
	assert.Nil(t, tb.layout.GetInputCapture()(tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone)))
	require.True(t, tb.HasPage(helpPage))

	text := screenText(t, tb.Browser)
	assert.Contains(t, text, "Alt+O")
	assert.Contains(t, text, "Settings")
	assert.Contains(t, text, "mode")

	tb.ShowHelp()
	press(tb.focus().InputHandler(), tcell.KeyEscape)
	assert.False(t, tb.HasPage(helpPage))
}

func TestBrowser_Shortcuts(t *testing.T) {
	tb := newTestBrowser(t)
	assert.Nil(t, alt(tb.Browser, 'o'))
	assert.Equal(t, nav.StatusLoaded, tb.Snapshot().Status)

	assert.Nil(t, alt(tb.Browser, 'b'))
	assert.Same(t, tb.crumbs, tb.focus())
	var moved tview.Primitive
	tb.crumbs.InputHandler()(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), func(p tview.Primitive) { moved = p })
	assert.Same(t, tb.columns.lists[0], moved, "Esc leaves the breadcrumbs")

	assert.NotNil(t, alt(tb.Browser, 'q'))
	plain := tcell.NewEventKey(tcell.KeyRune, '.', tcell.ModNone)
	assert.Same(t, plain, tb.layout.GetInputCapture()(plain))

	assert.Nil(t, alt(tb.Browser, 'x'))
	assert.True(t, tb.stopped)
}

func TestBrowser_CrumbsFocusCycle(t *testing.T) {
	tb := newTestBrowser(t)
	tb.SelectRoot()
	selectRow(tb.columns.lists[0], 1)
	require.Equal(t, 2, tb.Snapshot().Depth())

	// Up from the back header climbs to the breadcrumbs
	tb.columns.lists[1].SetCurrentItem(0)
	press(tb.columns.lists[1].InputHandler(), tcell.KeyUp)
	assert.Same(t, tb.crumbs, tb.focus())
	assert.Equal(t, 2, tb.Snapshot().Depth())

	var moved tview.Primitive
	key := func(k tcell.Key) {
		tb.crumbs.InputHandler()(tcell.NewEventKey(k, 0, tcell.ModNone), func(p tview.Primitive) { moved = p })
	}
	key(tcell.KeyTab)
	assert.Same(t, tb.columns.lists[1], moved)
	key(tcell.KeyBacktab)
	assert.Same(t, tb.status.button, moved)

	// leaving the Open button returns to the content
	press(tb.status.button.InputHandler(), tcell.KeyTab)
	assert.Same(t, tb.columns.lists[1], tb.focus())

	// Up inside a list still moves the cursor
	tb.columns.lists[1].SetCurrentItem(2)
	press(tb.columns.lists[1].InputHandler(), tcell.KeyUp)
	assert.Equal(t, 1, tb.columns.lists[1].GetCurrentItem())
	assert.Same(t, tb.columns.lists[1], tb.focus())

	assert.Nil(t, alt(tb.Browser, 't'))
	assert.Nil(t, alt(tb.Browser, 'b'))
	assert.Same(t, tb.crumbs, tb.focus())
	key(tcell.KeyDown)
	assert.Same(t, tb.tree, moved)
}

// asyncRun dispatches operations on goroutines that wg tracks.
func asyncRun(wg *sync.WaitGroup) Option {
	return func(o *options) {
		o.run = func(f func()) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f()
			}()
		}
	}
}

func promptShown(tb *testBrowser) func() bool {
	return func() bool {
		return tb.focus() == tview.Primitive(tb.prompt.input)
	}
}

func TestBrowser_PathPrompt(t *testing.T) {
	var wg sync.WaitGroup
	tb := newTestBrowser(t, WithPicker(nil), asyncRun(&wg))
	tb.prompt.open = tb.root.OpenDir

	tb.SelectRoot()
	require.Eventually(t, promptShown(tb), time.Second, time.Millisecond)
	assert.True(t, tb.prompt.Visible())

	tb.prompt.Submit("b.txt")
	assert.True(t, tb.prompt.Visible(), "refused path keeps the prompt open")
	assert.Contains(t, tb.prompt.input.GetTitle(), "b.txt is not a directory")

	tb.prompt.Submit(" /A ")
	wg.Wait()
	assert.Equal(t, nav.StatusLoaded, tb.Snapshot().Status)
	assert.Equal(t, "A", tb.Snapshot().Root.Name())
	assert.False(t, tb.prompt.Visible())

	tb.SelectRoot()
	require.Eventually(t, promptShown(tb), time.Second, time.Millisecond)
	assert.Equal(t, "A", tb.prompt.input.GetText(), "prefilled with the current root")
	press(tb.prompt.input.InputHandler(), tcell.KeyEscape)
	wg.Wait()
	assert.Equal(t, nav.StatusEmpty, tb.Snapshot().Status)
	assert.False(t, tb.prompt.Visible())
}

func TestBrowser_PathPromptClosed(t *testing.T) {
	var wg sync.WaitGroup
	tb := newTestBrowser(t, WithPicker(nil), asyncRun(&wg))
	tb.prompt.open = tb.root.OpenDir

	tb.SelectRoot()
	require.Eventually(t, promptShown(tb), time.Second, time.Millisecond)
	tb.Close()
	wg.Wait()
	assert.False(t, tb.prompt.Visible())
	assert.False(t, tb.prompt.b.Snapshot().HasRoot())
}

func TestPathPrompt_NoOpener(t *testing.T) {
	tb := newTestBrowser(t, WithPicker(nil))
	tb.SelectRoot()
	assert.Equal(t, nav.StatusEmpty, tb.Snapshot().Status)
	assert.False(t, tb.prompt.Visible())
}

func TestBrowser_PathPromptOverlappingPicks(t *testing.T) {
	var wg sync.WaitGroup
	tb := newTestBrowser(t, WithPicker(nil), asyncRun(&wg))
	tb.prompt.open = tb.root.OpenDir

	tb.SelectRoot()
	require.Eventually(t, promptShown(tb), time.Second, time.Millisecond)
	tb.mu.Lock()
	tb.focused = nil
	tb.mu.Unlock()

	tb.SelectRoot()
	require.Eventually(t, promptShown(tb), time.Second, time.Millisecond)
	assert.True(t, tb.prompt.Visible(), "the newer pick keeps the prompt")

	tb.prompt.Submit("/B")
	wg.Wait()
	snap := tb.Snapshot()
	assert.Equal(t, nav.StatusLoaded, snap.Status)
	assert.Equal(t, "B", snap.Root.Name())
	assert.False(t, tb.prompt.Visible())
	assert.NoError(t, tb.lastErr, "the superseded pick is not reported")
}

func TestPathPrompt_CancelledPickWhileDrawing(t *testing.T) {
	tb := newTestBrowser(t, WithPicker(nil))
	tb.prompt.open = tb.root.OpenDir
	// updates look at the prompt first, as Browser.draw does
	tb.app = uiapp.New(nil, uiapp.WithQueueUpdateDraw(func(f func()) {
		_ = tb.prompt.Visible()
		f()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := tb.prompt.PickDir(ctx)
		done <- err
	}()
	require.Eventually(t, tb.prompt.Visible, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled pick did not return")
	}
	assert.False(t, tb.prompt.Visible())
	front, _ := tb.GetFrontPage()
	assert.Equal(t, mainPage, front)
}
