package nav

import (
	"time"

	"github.com/filetug/foldertug/pkg/files"
	"go.uber.org/zap"
)

// DefaultRemovalDelay is how long a closing level stays visible in its
// removing state before it is dropped.
const DefaultRemovalDelay = 350 * time.Millisecond

// Renderer receives every committed snapshot, intermediate ones included.
// Draw is called from the goroutine running the operation and must not
// call back into State synchronously.
type Renderer interface {
	Draw(snapshot Snapshot)
}

type RendererFunc func(snapshot Snapshot)

func (f RendererFunc) Draw(snapshot Snapshot) {
	f(snapshot)
}

type options struct {
	renderer     Renderer
	removalDelay time.Duration
	onSelect     func(files.Handle)
	logger       *zap.Logger
	showHidden   bool
}

type Option func(o *options)

func WithRenderer(r Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

func WithRemovalDelay(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			d = 0
		}
		o.removalDelay = d
	}
}

// WithSelectHandler registers the receiver of "select" notifications, fired
// each time a file entry is activated.
func WithSelectHandler(f func(files.Handle)) Option {
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

func WithShowHidden(show bool) Option {
	return func(o *options) {
		o.showHidden = show
	}
}
