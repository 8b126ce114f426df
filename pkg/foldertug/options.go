package foldertug

import (
	"time"

	"github.com/filetug/foldertug/pkg/chroma2tcell"
	"github.com/filetug/foldertug/pkg/files"
	"github.com/filetug/foldertug/pkg/nav"
	"go.uber.org/zap"
)

type Mode string

const (
	ModeSlices Mode = "slices"
	ModeTree   Mode = "tree"
)

const defaultMaxColumns = 4

type options struct {
	picker       files.DirPicker
	openPath     func(path string) (files.Handle, error)
	removalDelay time.Duration
	showHidden   bool
	extensions   []string
	mode         Mode
	style        string
	maxColumns   int
	onSelect     func(files.Handle)
	logger       *zap.Logger
	settingsYAML string
	// run dispatches navigation operations off the UI goroutine.
	run func(f func())
}

type Option func(o *options)

// WithPicker sets the picker used by SelectRoot. Without one the browser
// prompts for a path.
func WithPicker(picker files.DirPicker) Option {
	return func(o *options) {
		o.picker = picker
	}
}

// WithPathOpener resolves paths typed into the open-folder prompt.
func WithPathOpener(open func(path string) (files.Handle, error)) Option {
	return func(o *options) {
		o.openPath = open
	}
}

func WithRemovalDelay(d time.Duration) Option {
	return func(o *options) {
		o.removalDelay = d
	}
}

func WithShowHidden(show bool) Option {
	return func(o *options) {
		o.showHidden = show
	}
}

// WithExtensions shows only files with one of the given extensions.
func WithExtensions(extensions ...string) Option {
	return func(o *options) {
		o.extensions = extensions
	}
}

func WithMode(mode Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithStyle names the chroma style used for colors.
func WithStyle(style string) Option {
	return func(o *options) {
		o.style = style
	}
}

// WithMaxColumns limits how many slices are shown side by side; deeper
// levels scroll the shallower ones out of view.
func WithMaxColumns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxColumns = n
		}
	}
}

// OnSelect registers a handler for file selections.
func OnSelect(f func(files.Handle)) Option {
	return func(o *options) {
		o.onSelect = f
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSettingsYAML shows the effective settings on the help screen.
func WithSettingsYAML(yaml string) Option {
	return func(o *options) {
		o.settingsYAML = yaml
	}
}

func defaultOptions() options {
	return options{
		removalDelay: nav.DefaultRemovalDelay,
		mode:         ModeSlices,
		style:        chroma2tcell.DefaultStyle,
		maxColumns:   defaultMaxColumns,
		logger:       zap.NewNop(),
		run:          func(f func()) { go f() },
	}
}
