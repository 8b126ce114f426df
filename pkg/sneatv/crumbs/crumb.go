package crumbs

import "github.com/gdamore/tcell/v2"

// Crumb is one level of a breadcrumb bar. A zero Color draws in the
// default text color.
type Crumb struct {
	Title  string
	Color  tcell.Color
	action func() error
}

func NewCrumb(title string, action func() error) *Crumb {
	return &Crumb{Title: title, action: action}
}

func (c *Crumb) WithColor(color tcell.Color) *Crumb {
	c.Color = color
	return c
}

func (c *Crumb) run() error {
	if c.action == nil {
		return nil
	}
	return c.action()
}
