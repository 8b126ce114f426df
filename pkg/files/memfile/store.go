// Package memfile is an in-memory host: a fixed tree of handles with
// optional per-directory read failures and read gates.
package memfile

import (
	"context"
	"strings"
	"sync"

	"github.com/filetug/foldertug/pkg/files"
	"github.com/pkg/errors"
)

var _ files.Handle = (*Node)(nil)

// Node is a file or directory. Nodes are compared by identity.
type Node struct {
	name     string
	isDir    bool
	children []*Node
}

func Dir(name string, children ...*Node) *Node {
	return &Node{name: name, isDir: true, children: children}
}

func File(name string) *Node {
	return &Node{name: name}
}

func (n *Node) Name() string { return n.name }
func (n *Node) IsDir() bool  { return n.isDir }

// Child finds a direct child by name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Find resolves a slash separated path below n.
func (n *Node) Find(p string) *Node {
	cur := n
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		if part == "" {
			continue
		}
		if cur = cur.Child(part); cur == nil {
			return nil
		}
	}
	return cur
}

// OpenDir resolves p below n and grants it when it is a directory.
func (n *Node) OpenDir(p string) (files.Handle, error) {
	found := n.Find(p)
	if found == nil || !found.isDir {
		return nil, errors.Wrapf(files.ErrPermissionDenied, "%s is not a directory", p)
	}
	return found, nil
}

var _ files.Store = (*Store)(nil)

type Store struct {
	Title string

	mu    sync.Mutex
	fails map[*Node]error
	gates map[*Node]chan struct{}
	reads map[*Node]int
}

func NewStore(title string) *Store {
	return &Store{
		Title: title,
		fails: make(map[*Node]error),
		gates: make(map[*Node]chan struct{}),
		reads: make(map[*Node]int),
	}
}

func (s *Store) RootTitle() string {
	return s.Title
}

// FailReads makes every read of dir fail with err (nil clears it).
func (s *Store) FailReads(dir *Node, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, dir)
		return
	}
	s.fails[dir] = err
}

// Gate blocks reads of dir until the returned func is called.
func (s *Store) Gate(dir *Node) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gates[dir] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[dir] == ch {
				delete(s.gates, dir)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Reads reports how many times dir has been listed.
func (s *Store) Reads(dir *Node) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[dir]
}

func (s *Store) ReadDir(ctx context.Context, dir files.Handle) ([]files.Handle, error) {
	n, ok := dir.(*Node)
	if !ok || n == nil {
		return nil, errors.Errorf("memfile: foreign handle %T", dir)
	}
	if !n.isDir {
		return nil, errors.Errorf("memfile: %s is not a directory", n.name)
	}
	s.mu.Lock()
	s.reads[n]++
	gate := s.gates[n]
	failure := s.fails[n]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, failure
	}
	children := make([]files.Handle, len(n.children))
	for i, c := range n.children {
		children[i] = c
	}
	return children, nil
}

// Picker grants Root, or fails with Err when set.
type Picker struct {
	Root *Node
	Err  error
}

func (p Picker) PickDir(ctx context.Context) (files.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Root == nil {
		return nil, files.ErrCancelled
	}
	return p.Root, nil
}
