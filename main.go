package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/filetug/foldertug/pkg/files"
	"github.com/filetug/foldertug/pkg/files/ftpfile"
	"github.com/filetug/foldertug/pkg/files/httpfile"
	"github.com/filetug/foldertug/pkg/files/memfile"
	"github.com/filetug/foldertug/pkg/files/osfile"
	"github.com/filetug/foldertug/pkg/foldertug"
	"github.com/filetug/foldertug/pkg/foldertug/uiapp"
	"github.com/filetug/foldertug/pkg/fsutils"
	"github.com/filetug/foldertug/pkg/ftstate"
	"github.com/filetug/foldertug/pkg/logging"
	"github.com/filetug/foldertug/pkg/nav"
	"github.com/filetug/foldertug/pkg/profiling"
	"github.com/filetug/foldertug/pkg/settings"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

type cliOptions struct {
	Config     string   `short:"c" long:"config" value-name:"FILE" description:"settings file (default ~/.foldertug/config.yaml)"`
	Mode       string   `short:"m" long:"mode" choice:"slices" choice:"tree" description:"initial presentation"`
	Hidden     bool     `short:"a" long:"hidden" description:"show hidden files"`
	Extensions []string `short:"e" long:"ext" value-name:"EXT" description:"show only files with this extension (repeatable)"`
	Print      bool     `short:"p" long:"print" description:"print the path of the first selected file and exit"`
	Demo       bool     `long:"demo" description:"browse a built-in sample tree"`
	LogLevel   string   `long:"log-level" value-name:"LEVEL" description:"overrides log.level"`
	CPUProfile string   `long:"cpuprofile" value-name:"FILE" description:"write a CPU profile"`
	MemProfile string   `long:"memprofile" value-name:"FILE" description:"write a heap profile"`
	Args       struct {
		Dir string `positional-arg-name:"DIR" description:"folder, http(s) index URL or ftp(s) URL to open"`
	} `positional-args:"yes"`
}

var (
	osExit         = os.Exit
	newApplication = tview.NewApplication
	newApp         = func(app *tview.Application) uiapp.App {
		return uiapp.New(app)
	}
	loadSettings   = settings.Load
	stateDir       = func() (string, error) {
		return fsutils.AppDir(settings.AppName)
	}
)

// run drives the application until it stops.
var run = func(app uiapp.App, _ *foldertug.Browser) error {
	return app.Run()
}

func main() {
	osExit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

func runMain(args []string, stdout, stderr io.Writer) int {
	var opts cliOptions
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = settings.AppName
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			_, _ = fmt.Fprintln(stdout, err)
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := configure(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	stopProfiling, err := startProfiling(opts, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	defer stopProfiling()

	state := loadState(opts, &cfg, logger)
	src, err := openSource(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	logger.Info("starting", zap.String("source", src.store.RootTitle()), zap.String("mode", cfg.Mode))

	app := newApp(newApplication())

	var (
		selectedMu sync.Mutex
		selected   files.Handle
	)
	browserOptions := []foldertug.Option{
		foldertug.WithPathOpener(src.open),
		foldertug.WithRemovalDelay(cfg.RemovalDelay),
		foldertug.WithShowHidden(cfg.ShowHidden),
		foldertug.WithExtensions(cfg.Extensions...),
		foldertug.WithMode(foldertug.Mode(cfg.Mode)),
		foldertug.WithStyle(cfg.Style),
		foldertug.WithLogger(logger),
	}
	if settingsYAML, err := cfg.YAML(); err == nil {
		browserOptions = append(browserOptions, foldertug.WithSettingsYAML(settingsYAML))
	}
	if src.picker != nil {
		browserOptions = append(browserOptions, foldertug.WithPicker(src.picker))
	}
	if opts.Print {
		browserOptions = append(browserOptions, foldertug.OnSelect(func(h files.Handle) {
			selectedMu.Lock()
			defer selectedMu.Unlock()
			if selected == nil {
				selected = h
				app.Stop()
			}
		}))
	}

	b := foldertug.New(app, nav.NewReader(src.store), browserOptions...)
	defer b.Close()
	if src.static != nil {
		src.static.Next = b.PathPrompt()
	}
	app.SetRoot(b, true)
	app.EnableMouse(true)
	if src.root != nil {
		b.GrantRoot(src.root)
	} else {
		b.SelectRoot()
	}

	err = run(app, b)
	saveState(state, b, logger)
	if err != nil {
		logger.Error("application failed", zap.Error(err))
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	selectedMu.Lock()
	defer selectedMu.Unlock()
	if opts.Print && selected != nil {
		_, _ = fmt.Fprintln(stdout, selectionPath(selected, src))
	}
	return 0
}

// configure loads the settings file and environment, then applies the
// command line on top.
func configure(opts cliOptions) (settings.Settings, error) {
	cfg, err := loadSettings(opts.Config)
	if err != nil {
		return cfg, err
	}
	if opts.Mode != "" {
		cfg.Mode = opts.Mode
	}
	if opts.Hidden {
		cfg.ShowHidden = true
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if len(opts.Extensions) > 0 {
		cfg.Extensions = opts.Extensions
	}
	return cfg, errors.Wrap(cfg.Validate(), "invalid options")
}

// loadState applies the toggles of the last session to cfg unless the
// command line set them.
func loadState(opts cliOptions, cfg *settings.Settings, logger *zap.Logger) *ftstate.File {
	dir, err := stateDir()
	if err != nil {
		logger.Warn("session state disabled", zap.Error(err))
		return nil
	}
	file := ftstate.NewFile(dir)
	state, err := file.Load()
	if err != nil {
		logger.Warn("ignoring session state", zap.Error(err))
		return file
	}
	if opts.Mode == "" && (state.Mode == settings.ModeSlices || state.Mode == settings.ModeTree) {
		cfg.Mode = state.Mode
	}
	if !opts.Hidden && state.ShowHidden != nil {
		cfg.ShowHidden = *state.ShowHidden
	}
	return file
}

func saveState(file *ftstate.File, b *foldertug.Browser, logger *zap.Logger) {
	if file == nil {
		return
	}
	state := ftstate.Toggles(string(b.Mode()), b.State().Snapshot().ShowHiddenFiles)
	if err := file.Save(state); err != nil {
		logger.Warn("failed to save session state", zap.Error(err))
	}
}

func startProfiling(opts cliOptions, logger *zap.Logger) (stop func(), err error) {
	var stops []func()
	stop = func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}
	if opts.CPUProfile != "" {
		stopCPU, err := profiling.StartCPU(opts.CPUProfile)
		if err != nil {
			return nil, err
		}
		stops = append(stops, func() {
			if err := stopCPU(); err != nil {
				logger.Warn("cpu profile", zap.Error(err))
			}
		})
	}
	if opts.MemProfile != "" {
		ctx, cancel := context.WithCancel(context.Background())
		done := profiling.StartHeap(ctx, opts.MemProfile, profiling.DefaultHeapInterval, logger)
		stops = append(stops, func() {
			cancel()
			<-done
		})
	}
	return stop, nil
}

// source is where the browser reads from and how it gets its first root.
type source struct {
	store  files.Store
	root   files.Handle
	picker files.DirPicker
	static *osfile.StaticPicker
	open   func(path string) (files.Handle, error)
	// base prefixes printed selections of hosts without filesystem paths.
	base string
}

func openSource(opts cliOptions) (source, error) {
	dir := opts.Args.Dir
	switch {
	case opts.Demo:
		tree := demoTree()
		return source{
			store: memfile.NewStore("demo"),
			root:  tree,
			open:  tree.OpenDir,
		}, nil
	case strings.HasPrefix(dir, "http://") || strings.HasPrefix(dir, "https://"):
		u, err := url.Parse(dir)
		if err != nil {
			return source{}, errors.Wrapf(err, "invalid URL %s", dir)
		}
		store := httpfile.NewStore(*u)
		root := store.RootURL()
		return source{
			store: store,
			root:  store.Root(),
			open:  store.Open,
			base:  (&url.URL{Scheme: root.Scheme, Host: root.Host}).String(),
		}, nil
	case strings.HasPrefix(dir, "ftp://") || strings.HasPrefix(dir, "ftps://"):
		u, err := url.Parse(dir)
		if err != nil {
			return source{}, errors.Wrapf(err, "invalid URL %s", dir)
		}
		store := ftpfile.NewStore(*u)
		if u.Scheme == "ftps" {
			store.SetTLS(false, true)
		}
		root := store.RootURL()
		return source{
			store: store,
			root:  store.Root(),
			open:  store.Open,
			base:  (&url.URL{Scheme: root.Scheme, Host: root.Host}).String(),
		}, nil
	default:
		store := osfile.NewStore()
		static := &osfile.StaticPicker{Store: store, Path: dir}
		return source{
			store:  store,
			picker: static,
			static: static,
			open: func(path string) (files.Handle, error) {
				return store.Open(path)
			},
		}, nil
	}
}

func selectionPath(h files.Handle, src source) string {
	if p, ok := osfile.PathOf(h); ok {
		return src.base + p
	}
	return h.Name()
}

func demoTree() *memfile.Node {
	return memfile.Dir("demo",
		memfile.Dir("cmd",
			memfile.Dir("server", memfile.File("main.go")),
		),
		memfile.Dir("docs",
			memfile.File("index.md"),
			memfile.Dir("images", memfile.File("logo.png")),
		),
		memfile.Dir("pkg",
			memfile.Dir("api", memfile.File("handler.go"), memfile.File("handler_test.go")),
			memfile.Dir("store", memfile.File("store.go")),
		),
		memfile.File(".gitignore"),
		memfile.File("go.mod"),
		memfile.File("Makefile"),
		memfile.File("README.md"),
	)
}
