package foldertug

import (
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/filetug/foldertug/pkg/chroma2tcell"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpText = `[yellow]Enter[-]   open folder / select file
[yellow]←[-]       close the current column
[yellow]→[-]       next column
[yellow]Alt+O[-]   open another root folder
[yellow]Alt+.[-]   show/hide hidden files
[yellow]Alt+T[-]   switch columns / tree
[yellow]Alt+B[-]   focus the path bar
[yellow]F1[-]      this help
[yellow]Alt+X[-]   exit`

func (b *Browser) helpText() string {
	text := helpText
	if b.o.settingsYAML == "" {
		return text
	}
	settings, err := chroma2tcell.ColorizeYAML(b.o.settingsYAML, lexers.Get)
	if err != nil {
		settings = tview.Escape(b.o.settingsYAML)
	}
	return text + "\n\n[::b]Settings[::-]\n" + settings
}

func (b *Browser) ShowHelp() {
	if b.HasPage(helpPage) {
		return
	}
	helpView := tview.NewTextView().
		SetDynamicColors(true).
		SetText(b.helpText())

	button := tview.NewButton("Close").SetSelectedFunc(b.closeHelp)
	closeKeys := func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Key() == tcell.KeyF1 {
			b.closeHelp()
			return nil
		}
		return event
	}
	helpView.SetInputCapture(closeKeys)
	button.SetInputCapture(closeKeys)

	helpFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(helpView, 0, 1, false).
		AddItem(button, 1, 0, true)
	helpFlex.SetBorder(true).
		SetTitle(" FolderTug - Help ").
		SetTitleAlign(tview.AlignCenter)

	modal := tview.NewGrid().
		SetColumns(0, 56, 0).
		SetRows(0, 24, 0).
		AddItem(helpFlex, 1, 1, 1, 1, 0, 0, true)

	b.AddPage(helpPage, modal, true, true)
	b.app.SetFocus(button)
}

func (b *Browser) closeHelp() {
	b.RemovePage(helpPage)
	b.focusContent()
}
