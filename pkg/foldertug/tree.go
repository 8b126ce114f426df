package foldertug

import (
	"github.com/filetug/foldertug/pkg/nav"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type nodeRef struct {
	entry nav.Entry
	depth int
}

// tree draws the same snapshot as nested nodes: the children of an active
// directory are the next slice.
type tree struct {
	*tview.TreeView
	b *Browser
}

func newTree(b *Browser) *tree {
	t := &tree{TreeView: tview.NewTreeView(), b: b}
	t.SetBorder(true)
	t.SetSelectedFunc(t.nodeSelected)
	t.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() != tcell.KeyLeft {
			return event
		}
		if ref, ok := t.currentRef(); ok && ref.depth > 1 {
			t.b.CloseSlice(ref.depth - 1)
			return nil
		}
		return event
	})
	return t
}

func (t *tree) currentRef() (nodeRef, bool) {
	node := t.GetCurrentNode()
	if node == nil {
		return nodeRef{}, false
	}
	ref, ok := node.GetReference().(nodeRef)
	return ref, ok
}

func (t *tree) nodeSelected(node *tview.TreeNode) {
	if ref, ok := node.GetReference().(nodeRef); ok {
		t.b.Activate(ref.entry, ref.depth)
	}
}

func (t *tree) render(snap nav.Snapshot) {
	prev, hadPrev := t.currentRef()

	if !snap.HasRoot() {
		root := tview.NewTreeNode(placeholderText(snap.Status)).SetSelectable(false)
		t.SetRoot(root).SetCurrentNode(root)
		return
	}
	root := tview.NewTreeNode("[::b]" + tview.Escape(snap.Root.Name()))
	root.SetSelectable(false)

	var current, deepestActive *tview.TreeNode
	var addChildren func(parent *tview.TreeNode, i int)
	addChildren = func(parent *tview.TreeNode, i int) {
		if i >= snap.Depth() {
			return
		}
		slice := snap.Slices[i]
		removing := snap.SliceRemoving(i)
		if slice.Err != nil {
			parent.AddChild(tview.NewTreeNode("[red]⚠ " + tview.Escape(slice.Err.Error())).SetSelectable(false))
		}
		filter := t.b.filter()
		for _, e := range slice.Entries {
			if !filter.IsVisible(e.Handle) {
				continue
			}
			node := tview.NewTreeNode(t.b.entryText(e, removing)).
				SetReference(nodeRef{entry: e, depth: i + 1}).
				SetSelectable(true)
			parent.AddChild(node)
			if hadPrev && prev.depth == i+1 && prev.entry.Name() == e.Name() {
				current = node
			}
			if e.Active {
				deepestActive = node
				if e.IsDir() {
					addChildren(node, i+1)
				}
			}
		}
	}
	addChildren(root, 0)

	t.SetRoot(root)
	switch {
	case current != nil:
		t.SetCurrentNode(current)
	case deepestActive != nil:
		t.SetCurrentNode(deepestActive)
	case len(root.GetChildren()) > 0:
		t.SetCurrentNode(root.GetChildren()[0])
	default:
		t.SetCurrentNode(root)
	}
}
