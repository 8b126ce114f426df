package foldertug

import (
	"fmt"
	"strings"

	"github.com/filetug/foldertug/pkg/files"
	"github.com/filetug/foldertug/pkg/files/osfile"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// statusBar shows the state attributes next to the open-folder button.
type statusBar struct {
	*tview.Flex
	b      *Browser
	text   *tview.TextView
	button *tview.Button
}

func newStatusBar(b *Browser) *statusBar {
	s := &statusBar{
		Flex: tview.NewFlex(),
		b:    b,
		text: tview.NewTextView().SetDynamicColors(true),
	}
	s.button = tview.NewButton("Open").SetSelectedFunc(b.SelectRoot)
	s.button.SetExitFunc(func(tcell.Key) {
		b.focusContent()
	})
	s.AddItem(s.button, 6, 0, false)
	s.AddItem(s.text, 0, 1, false)
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// handlePath is what the status bar shows for a selected handle.
func handlePath(h files.Handle) string {
	if p, ok := osfile.PathOf(h); ok {
		return p
	}
	return h.Name()
}

func (s *statusBar) line() string {
	b := s.b
	parts := []string{
		fmt.Sprintf("status=%s depth=%d", b.snap.Status, b.snap.Depth()),
		"hidden=" + onOff(b.snap.ShowHiddenFiles),
		"mode=" + string(b.mode),
	}
	if b.lastSelected != nil {
		parts = append(parts, "[green]"+tview.Escape(handlePath(b.lastSelected))+"[-]")
	}
	if b.lastErr != nil {
		parts = append(parts, "[red]"+tview.Escape(b.lastErr.Error())+"[-]")
	}
	return " " + strings.Join(parts, " │ ")
}

func (s *statusBar) update() {
	s.text.SetText(s.line())
}
