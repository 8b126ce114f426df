package httpfile

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/filetug/foldertug/pkg/files"
	"github.com/pkg/errors"
)

type StoreOption func(*Store)

func WithHttpClient(client *http.Client) StoreOption {
	return func(store *Store) {
		store.client = client
	}
}

var _ files.Store = (*Store)(nil)

// Store lists directories served as HTML index pages (nginx autoindex,
// Apache mod_autoindex and the like). Only the index pages are fetched.
type Store struct {
	root   url.URL
	client *http.Client
}

func NewStore(root url.URL, o ...StoreOption) *Store {
	if !strings.HasSuffix(root.Path, "/") {
		root.Path += "/"
	}
	store := &Store{root: root}
	for _, opt := range o {
		opt(store)
	}
	return store
}

func (s Store) RootURL() url.URL {
	return s.root
}

func (s Store) RootTitle() string {
	root := s.root
	root.User = nil
	return root.String()
}

// Root returns the handle of the store's root directory.
func (s Store) Root() Handle {
	return Handle{dirPath: s.root.Path, isDir: true}
}

// Open returns the directory handle for p, a URL path either absolute or
// relative to the root. Paths outside the root are refused.
func (s Store) Open(p string) (files.Handle, error) {
	if !strings.HasPrefix(p, "/") {
		p = path.Join(s.root.Path, p)
	}
	p = path.Clean(p)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	if !strings.HasPrefix(p, s.root.Path) {
		return nil, errors.Wrapf(files.ErrPermissionDenied, "%s is outside of %s", p, s.root.Path)
	}
	return Handle{dirPath: p, isDir: true}, nil
}

func (s Store) ReadDir(ctx context.Context, dir files.Handle) ([]files.Handle, error) {
	h, ok := dir.(Handle)
	if !ok {
		return nil, errors.Errorf("httpfile: foreign handle %T", dir)
	}
	u := s.root
	u.Path = h.dirPath

	client := s.client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch directory listing")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, errors.Wrapf(files.ErrPermissionDenied, "%s", u.String())
	default:
		return nil, errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	hrefs, err := parseIndexLinks(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	seen := make(map[string]bool, len(hrefs))
	var children []files.Handle
	for _, href := range hrefs {
		name, isDir, ok := entryFromHref(href)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		childPath := path.Join(h.dirPath, name)
		if isDir {
			childPath += "/"
		}
		children = append(children, Handle{dirPath: childPath, isDir: isDir})
	}
	return children, nil
}

// entryFromHref keeps only relative links to direct children.
func entryFromHref(href string) (name string, isDir bool, ok bool) {
	if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") {
		return "", false, false
	}
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() || strings.HasPrefix(u.Path, "/") {
		return "", false, false
	}
	p := u.Path
	if p == "" || p == "./" || p == "../" {
		return "", false, false
	}
	isDir = strings.HasSuffix(p, "/")
	name = strings.TrimSuffix(p, "/")
	if name == "" || strings.Contains(name, "/") {
		return "", false, false
	}
	return name, isDir, true
}
