package foldertug

import (
	"context"
	"strings"
	"sync"

	"github.com/filetug/foldertug/pkg/files"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const promptTitle = " Open folder "

type pickResult struct {
	handle files.Handle
	err    error
}

// PathPrompt is a files.DirPicker that asks for a path in a modal input.
// Paths the opener refuses keep the prompt open; Esc cancels.
type PathPrompt struct {
	b     *Browser
	open  func(path string) (files.Handle, error)
	modal *tview.Grid
	input *tview.InputField

	mu      sync.Mutex
	pending chan pickResult
}

var _ files.DirPicker = (*PathPrompt)(nil)

func newPathPrompt(b *Browser, open func(path string) (files.Handle, error)) *PathPrompt {
	p := &PathPrompt{b: b, open: open}
	p.input = tview.NewInputField().SetLabel("Folder: ")
	p.input.SetBorder(true).SetTitle(promptTitle)
	p.input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			p.Submit(p.input.GetText())
		case tcell.KeyEscape:
			p.Cancel()
		default:
		}
	})
	p.modal = tview.NewGrid().
		SetColumns(0, 64, 0).
		SetRows(0, 3, 0).
		AddItem(p.input, 1, 1, 1, 1, 0, 0, true)
	return p
}

func (p *PathPrompt) PickDir(ctx context.Context) (files.Handle, error) {
	if p.open == nil {
		return nil, files.ErrCancelled
	}
	result := make(chan pickResult, 1)
	p.mu.Lock()
	if p.pending != nil {
		p.pending <- pickResult{err: files.ErrCancelled}
	}
	p.pending = result
	p.mu.Unlock()

	p.b.app.QueueUpdateDraw(p.show)
	select {
	case r := <-result:
		return r.handle, r.err
	case <-ctx.Done():
		p.mu.Lock()
		current := p.pending == result
		if current {
			p.pending = nil
		}
		p.mu.Unlock()
		// The UI goroutine takes p.mu while drawing.
		if current {
			p.b.app.QueueUpdateDraw(p.hideIdle)
		}
		return nil, ctx.Err()
	}
}

// Visible reports whether a pick is waiting for input.
func (p *PathPrompt) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Submit tries to open path and completes the pick on success.
func (p *PathPrompt) Submit(path string) {
	h, err := p.open(strings.TrimSpace(path))
	if err != nil {
		p.input.SetTitle(" " + tview.Escape(err.Error()) + " ")
		p.input.SetTitleColor(tcell.ColorRed)
		return
	}
	p.hide()
	p.deliver(pickResult{handle: h})
}

func (p *PathPrompt) Cancel() {
	p.hide()
	p.deliver(pickResult{err: files.ErrCancelled})
}

func (p *PathPrompt) deliver(r pickResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending != nil {
		p.pending <- r
		p.pending = nil
	}
}

func (p *PathPrompt) show() {
	text := ""
	if root := p.b.snap.Root; root != nil {
		text = handlePath(root)
	}
	p.input.SetText(text)
	p.input.SetTitle(promptTitle)
	p.input.SetTitleColor(tview.Styles.TitleColor)
	p.b.ShowPage(promptPage)
	p.b.app.SetFocus(p.input)
}

// hideIdle hides the prompt unless a newer pick is waiting on it.
func (p *PathPrompt) hideIdle() {
	if !p.Visible() {
		p.hide()
	}
}

func (p *PathPrompt) hide() {
	p.b.HidePage(promptPage)
	p.b.focusContent()
}
