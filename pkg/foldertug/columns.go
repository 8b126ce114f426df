package foldertug

import (
	"fmt"
	"strings"

	"github.com/filetug/foldertug/pkg/nav"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type rowKind int

const (
	headerRow rowKind = iota
	infoRow
	entryRow
)

type row struct {
	kind  rowKind
	entry nav.Entry
}

// columns shows each open slice as a list, left to right. The first row
// of a list is its back header.
type columns struct {
	*tview.Flex
	b           *Browser
	lists       []*tview.List
	rows        [][]row
	dirs        []string
	placeholder *tview.TextView
}

func newColumns(b *Browser) *columns {
	c := &columns{
		Flex:        tview.NewFlex(),
		b:           b,
		placeholder: tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter),
	}
	c.placeholder.SetBorder(true)
	return c
}

func placeholderText(status nav.Status) string {
	if status == nav.StatusFilled {
		return "Loading..."
	}
	return "No folder selected.\nPress [yellow]Alt+O[-] or [yellow]Open[-] to choose one."
}

func (c *columns) render(snap nav.Snapshot) {
	c.Clear()
	depth := snap.Depth()
	if depth == 0 {
		c.placeholder.SetText(placeholderText(snap.Status))
		c.AddItem(c.placeholder, 0, 1, true)
		return
	}
	for len(c.lists) < depth {
		c.lists = append(c.lists, c.newList(len(c.lists)))
		c.rows = append(c.rows, nil)
		c.dirs = append(c.dirs, "")
	}
	for i := max(0, depth-c.b.o.maxColumns); i < depth; i++ {
		c.fill(i, snap)
		c.AddItem(c.lists[i], 0, 1, i == depth-1)
	}
}

func (c *columns) focusTarget() tview.Primitive {
	depth := c.b.snap.Depth()
	if depth == 0 || depth > len(c.lists) {
		return c.placeholder
	}
	return c.lists[depth-1]
}

func (c *columns) newList(i int) *tview.List {
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetWrapAround(false)
	list.SetBorder(true)
	list.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		c.activateRow(i, index)
	})
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyBackspace, tcell.KeyBackspace2:
			if i > 0 {
				c.b.CloseSlice(i)
				return nil
			}
		case tcell.KeyRight:
			if i+1 < c.b.snap.Depth() {
				c.b.app.SetFocus(c.lists[i+1])
				return nil
			}
		case tcell.KeyUp:
			if list.GetCurrentItem() == 0 {
				c.b.focusCrumbs()
				return nil
			}
		default:
		}
		return event
	})
	return list
}

func (c *columns) activateRow(i, index int) {
	if i >= len(c.rows) || index < 0 || index >= len(c.rows[i]) {
		return
	}
	switch r := c.rows[i][index]; r.kind {
	case headerRow:
		if i > 0 {
			c.b.CloseSlice(i)
		}
	case entryRow:
		c.b.Activate(r.entry, i+1)
	default:
	}
}

// sliceDir identifies the directory slice i lists, to reset the cursor
// when a list is reused for another directory.
func sliceDir(snap nav.Snapshot, i int) string {
	p := snap.Path()
	if len(p) > i+1 {
		p = p[:i+1]
	}
	return fmt.Sprintf("%d:%s", i, strings.Join(p, "/"))
}

func (c *columns) fill(i int, snap nav.Snapshot) {
	list := c.lists[i]
	current := list.GetCurrentItem()
	if dir := sliceDir(snap, i); c.dirs[i] != dir {
		c.dirs[i] = dir
		current = -1
	}
	list.Clear()

	removing := snap.SliceRemoving(i)
	if removing {
		list.SetBorderColor(tcell.ColorGray)
	} else {
		list.SetBorderColor(tview.Styles.BorderColor)
	}

	rows := []row{{kind: headerRow}}
	header := tview.Escape(snap.SliceTitle(i))
	if i > 0 {
		header = "◀ " + header
	}
	list.AddItem("[::b]"+header, "", 0, nil)

	slice := snap.Slices[i]
	if slice.Err != nil {
		rows = append(rows, row{kind: infoRow})
		list.AddItem("[red]⚠ "+tview.Escape(slice.Err.Error()), "", 0, nil)
	}
	active := -1
	filter := c.b.filter()
	for _, e := range slice.Entries {
		if !filter.IsVisible(e.Handle) {
			continue
		}
		if e.Active {
			active = len(rows)
		}
		rows = append(rows, row{kind: entryRow, entry: e})
		list.AddItem(c.b.entryText(e, removing), "", 0, nil)
	}
	if len(rows) == 1 {
		rows = append(rows, row{kind: infoRow})
		list.AddItem("[gray]empty", "", 0, nil)
	}
	c.rows[i] = rows

	switch {
	case active >= 0:
		current = active
	case current < 0:
		current = 1
	case current >= len(rows):
		current = len(rows) - 1
	}
	list.SetCurrentItem(current)
}

func colorTag(color tcell.Color) string {
	return fmt.Sprintf("#%06x", color.Hex())
}

// entryText styles an entry: removing entries are dimmed, the active one
// is drawn on its color, directories get a trailing arrow.
func (b *Browser) entryText(e nav.Entry, sliceRemoving bool) string {
	name := tview.Escape(e.Name())
	if e.IsDir() {
		name += " ▶"
	}
	color := colorTag(b.colorizer.color(e.Handle))
	switch {
	case sliceRemoving || e.Removing:
		return "[gray::d]" + name
	case e.Active:
		return "[black:" + color + "]" + name
	default:
		return "[" + color + "]" + name
	}
}
