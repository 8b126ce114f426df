// Package uiapp narrows *tview.Application to what the browser needs so
// tests can run UI updates synchronously.
package uiapp

import (
	"github.com/rivo/tview"
)

type App interface {
	Run() error
	QueueUpdateDraw(f func())
	SetFocus(p tview.Primitive)
	SetRoot(root tview.Primitive, fullscreen bool)
	Stop()
	EnableMouse(bool)
}

type Option func(a *appProxy)

// New wraps app. A nil app yields a proxy that runs queued updates inline
// and ignores everything else; options override individual methods.
func New(app *tview.Application, o ...Option) App {
	a := &appProxy{
		queueUpdateDraw: func(f func()) { f() },
		setFocus:        func(tview.Primitive) {},
		setRoot:         func(tview.Primitive, bool) {},
		enableMouse:     func(bool) {},
		run:             func() error { return nil },
		stop:            func() {},
	}
	if app != nil {
		a.setFocus = func(p tview.Primitive) {
			_ = app.SetFocus(p)
		}
		a.setRoot = func(root tview.Primitive, fullscreen bool) {
			_ = app.SetRoot(root, fullscreen)
		}
		a.enableMouse = func(b bool) {
			_ = app.EnableMouse(b)
		}
		a.queueUpdateDraw = func(f func()) {
			_ = app.QueueUpdateDraw(f)
		}
		a.run = app.Run
		a.stop = app.Stop
	}
	for _, m := range o {
		m(a)
	}
	return a
}

func WithQueueUpdateDraw(queueUpdateDraw func(f func())) Option {
	return func(a *appProxy) {
		a.queueUpdateDraw = queueUpdateDraw
	}
}

func WithSetFocus(setFocus func(p tview.Primitive)) Option {
	return func(a *appProxy) {
		a.setFocus = setFocus
	}
}

func WithSetRoot(setRoot func(root tview.Primitive, fullscreen bool)) Option {
	return func(a *appProxy) {
		a.setRoot = setRoot
	}
}

func WithRun(run func() error) Option {
	return func(a *appProxy) {
		a.run = run
	}
}

func WithStop(stop func()) Option {
	return func(a *appProxy) {
		a.stop = stop
	}
}

var _ App = (*appProxy)(nil)

type appProxy struct {
	queueUpdateDraw func(func())
	setFocus        func(tview.Primitive)
	setRoot         func(tview.Primitive, bool)
	enableMouse     func(bool)
	run             func() error
	stop            func()
}

func (a *appProxy) EnableMouse(b bool) {
	a.enableMouse(b)
}

func (a *appProxy) QueueUpdateDraw(f func()) {
	a.queueUpdateDraw(f)
}

func (a *appProxy) SetFocus(p tview.Primitive) {
	a.setFocus(p)
}

func (a *appProxy) SetRoot(root tview.Primitive, fullscreen bool) {
	a.setRoot(root, fullscreen)
}

func (a *appProxy) Run() error {
	return a.run()
}

func (a *appProxy) Stop() {
	a.stop()
}
