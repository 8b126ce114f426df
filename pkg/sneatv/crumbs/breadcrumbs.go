package crumbs

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Breadcrumbs is a one line path bar. Enter or a click on a crumb runs
// its action.
type Breadcrumbs struct {
	*tview.Box
	items             []*Crumb
	separator         string
	selectedColor     string
	selectedItemIndex int
	nextFocusTarget   tview.Primitive
	prevFocusTarget   tview.Primitive
	onError           func(error)
}

func NewBreadcrumbs(home *Crumb, options ...Option) *Breadcrumbs {
	bc := &Breadcrumbs{
		Box:           tview.NewBox(),
		separator:     " > ",
		selectedColor: "yellow",
	}
	if home != nil {
		bc.items = []*Crumb{home}
	}
	for _, o := range options {
		o(bc)
	}
	return bc
}

func (b *Breadcrumbs) Push(item *Crumb) {
	b.items = append(b.items, item)
	b.selectedItemIndex = len(b.items) - 1
}

// Reset replaces every crumb with home.
func (b *Breadcrumbs) Reset(home *Crumb) {
	b.items = b.items[:0]
	if home != nil {
		b.items = append(b.items, home)
	}
	b.selectedItemIndex = len(b.items) - 1
}

// SetErrorHandler receives errors returned by crumb actions.
func (b *Breadcrumbs) SetErrorHandler(f func(error)) {
	b.onError = f
}

func (b *Breadcrumbs) SetNextFocusTarget(p tview.Primitive) {
	b.nextFocusTarget = p
}

func (b *Breadcrumbs) SetPrevFocusTarget(p tview.Primitive) {
	b.prevFocusTarget = p
}

// TakeFocus selects the first crumb and makes next the target of Tab, Down
// and Esc.
func (b *Breadcrumbs) TakeFocus(next tview.Primitive) {
	b.selectedItemIndex = 0
	b.nextFocusTarget = next
}

// Focus preselects the parent crumb, as the last one is where we are.
func (b *Breadcrumbs) Focus(delegate func(p tview.Primitive)) {
	if b.selectedItemIndex < 0 || b.selectedItemIndex >= len(b.items)-1 {
		b.selectedItemIndex = max(len(b.items)-2, 0)
	}
	b.Box.Focus(delegate)
}

func (b *Breadcrumbs) Blur() {
	b.selectedItemIndex = len(b.items) - 1
	b.Box.Blur()
}

func (b *Breadcrumbs) runAction(i int) {
	if err := b.items[i].run(); err != nil && b.onError != nil {
		b.onError(err)
	}
}

type span struct {
	start, end int
}

// layout returns the screen columns of the crumbs that fit into width.
func (b *Breadcrumbs) layout(x, width int) []span {
	spans := make([]span, 0, len(b.items))
	cursor, maxX := x, x+width
	sepW := tview.TaggedStringWidth(b.separator)
	for i, item := range b.items {
		if cursor >= maxX {
			break
		}
		if i > 0 {
			cursor += sepW
		}
		w := tview.TaggedStringWidth(tview.Escape(item.Title))
		spans = append(spans, span{start: cursor, end: min(cursor+w, maxX)})
		cursor += w
	}
	return spans
}

func (b *Breadcrumbs) Draw(screen tcell.Screen) {
	b.Box.DrawForSubclass(screen, b)
	x, y, width, height := b.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}
	spans := b.layout(x, width)
	for i, s := range spans {
		if i > 0 {
			sepStart := s.start - tview.TaggedStringWidth(b.separator)
			tview.Print(screen, b.separator, sepStart, y, x+width-sepStart, tview.AlignLeft, tcell.ColorGray)
		}
		item := b.items[i]
		color := item.Color
		if color == tcell.ColorDefault {
			color = tcell.ColorWhite
		}
		label := tview.Escape(item.Title)
		if i == b.selectedItemIndex && b.HasFocus() {
			label = "[black:" + b.selectedColor + "]" + label
		}
		tview.Print(screen, label, s.start, y, s.end-s.start, tview.AlignLeft, color)
	}
}

func (b *Breadcrumbs) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return b.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		switch event.Key() {
		case tcell.KeyTab, tcell.KeyDown, tcell.KeyEscape:
			if b.nextFocusTarget != nil {
				setFocus(b.nextFocusTarget)
			}
			return
		case tcell.KeyBacktab, tcell.KeyUp:
			if b.prevFocusTarget != nil {
				setFocus(b.prevFocusTarget)
			}
			return
		}
		if len(b.items) == 0 {
			return
		}
		switch event.Key() {
		case tcell.KeyLeft:
			if b.selectedItemIndex > 0 {
				b.selectedItemIndex--
			}
		case tcell.KeyRight:
			if b.selectedItemIndex < len(b.items)-1 {
				b.selectedItemIndex++
			}
		case tcell.KeyEnter:
			b.runAction(b.selectedItemIndex)
		default:
		}
	})
}

func (b *Breadcrumbs) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return b.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		if action != tview.MouseLeftClick && action != tview.MouseLeftDown {
			return false, nil
		}
		x, y := event.Position()
		if !b.InInnerRect(x, y) {
			return false, nil
		}
		if setFocus != nil {
			setFocus(b)
		}
		innerX, _, width, _ := b.GetInnerRect()
		for i, s := range b.layout(innerX, width) {
			if x >= s.start && x < s.end {
				b.selectedItemIndex = i
				if action == tview.MouseLeftClick {
					b.runAction(i)
				}
				break
			}
		}
		return true, nil
	})
}
