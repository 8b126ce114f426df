package osfile

import (
	"context"
	"sync"

	"github.com/filetug/foldertug/pkg/files"
)

// StaticPicker grants a preconfigured directory on the first request and
// hands every later request to Next. With no Next, later requests are
// treated as cancelled.
type StaticPicker struct {
	Store *Store
	Path  string
	Next  files.DirPicker

	once sync.Once
}

func (p *StaticPicker) PickDir(ctx context.Context) (files.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	used := true
	p.once.Do(func() { used = false })
	if !used && p.Path != "" {
		h, err := p.Store.Open(p.Path)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
	if p.Next == nil {
		return nil, files.ErrCancelled
	}
	return p.Next.PickDir(ctx)
}
