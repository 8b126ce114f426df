package ftpfile

import (
	"context"
	"crypto/tls"
	"net"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/filetug/foldertug/pkg/files"
	"github.com/jlaffaye/ftp"
	"github.com/pkg/errors"
)

const (
	schema        = "ftp"
	defaultPort   = "21"
	implicitPort  = "990"
	anonymousUser = "anonymous"
	dialTimeout   = 5 * time.Second
)

// conn is the part of *ftp.ServerConn a listing needs.
type conn interface {
	Login(user, password string) error
	List(path string) ([]*ftp.Entry, error)
	Quit() error
}

type dialFunc func(ctx context.Context, addr string, options ...ftp.DialOption) (conn, error)

func dial(ctx context.Context, addr string, options ...ftp.DialOption) (conn, error) {
	c, err := ftp.Dial(addr, append(options, ftp.DialWithContext(ctx))...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var _ files.Store = (*Store)(nil)

// Store lists directories of an FTP server, one connection per listing.
// Credentials come from the root URL; without them the store logs in as
// anonymous.
type Store struct {
	root     url.URL
	explicit bool
	implicit bool
	dial     dialFunc
}

func NewStore(root url.URL) *Store {
	if root.Path == "" {
		root.Path = "/"
	}
	root.Path = path.Clean(root.Path)
	if !strings.HasSuffix(root.Path, "/") {
		root.Path += "/"
	}
	return &Store{root: root, dial: dial}
}

// SetTLS switches to explicit (AUTH TLS) or implicit TLS.
func (s *Store) SetTLS(explicit, implicit bool) {
	s.explicit = explicit
	s.implicit = implicit
}

func (s *Store) RootURL() url.URL {
	return s.root
}

func (s *Store) RootTitle() string {
	u := url.URL{Scheme: s.root.Scheme, Host: s.root.Host, Path: s.root.Path}
	if u.Scheme == "" {
		u.Scheme = schema
	}
	return u.String()
}

// Root returns the handle of the store's root directory.
func (s *Store) Root() Handle {
	return Handle{dirPath: s.root.Path, isDir: true}
}

// Open returns the directory handle for p, a server path either absolute
// or relative to the root. Paths outside the root are refused.
func (s *Store) Open(p string) (files.Handle, error) {
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

func (s *Store) addr() (addr, host string) {
	host, port, err := net.SplitHostPort(s.root.Host)
	if err != nil {
		host, port = s.root.Host, defaultPort
		if s.implicit {
			port = implicitPort
		}
	}
	return net.JoinHostPort(host, port), host
}

func (s *Store) dialOptions(host string) []ftp.DialOption {
	options := []ftp.DialOption{
		ftp.DialWithTimeout(dialTimeout),
	}
	if s.implicit {
		options = append(options, ftp.DialWithTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}))
	}
	if s.explicit {
		options = append(options, ftp.DialWithExplicitTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}))
	}
	return options
}

func (s *Store) credentials() (user, password string) {
	if s.root.User == nil || s.root.User.Username() == "" {
		return anonymousUser, anonymousUser
	}
	password, _ = s.root.User.Password()
	return s.root.User.Username(), password
}

func (s *Store) ReadDir(ctx context.Context, dir files.Handle) ([]files.Handle, error) {
	h, ok := dir.(Handle)
	if !ok {
		return nil, errors.Errorf("ftpfile: foreign handle %T", dir)
	}
	addr, host := s.addr()
	c, err := s.dial(ctx, addr, s.dialOptions(host)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to ftp server")
	}
	// A listing in progress ends with the connection.
	stop := context.AfterFunc(ctx, func() {
		_ = c.Quit()
	})
	defer func() {
		if stop() {
			_ = c.Quit()
		}
	}()

	if err = c.Login(s.credentials()); err != nil {
		return nil, wrapReplyError(err, "failed to login to ftp server")
	}
	entries, err := c.List(h.dirPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, wrapReplyError(err, "failed to list "+h.dirPath)
	}

	children := make([]files.Handle, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." || entry.Name == "" {
			continue
		}
		isDir := entry.Type == ftp.EntryTypeFolder
		childPath := path.Join(h.dirPath, entry.Name)
		if isDir {
			childPath += "/"
		}
		children = append(children, Handle{dirPath: childPath, isDir: isDir})
	}
	return children, nil
}

// wrapReplyError maps refusals of the server to files.ErrPermissionDenied.
func wrapReplyError(err error, msg string) error {
	var reply *textproto.Error
	if errors.As(err, &reply) {
		switch reply.Code {
		case ftp.StatusNotLoggedIn, ftp.StatusFileUnavailable:
			return errors.Wrapf(files.ErrPermissionDenied, "%s: %v", msg, err)
		}
	}
	return errors.Wrap(err, msg)
}
