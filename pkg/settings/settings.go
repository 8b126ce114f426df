// Package settings loads user settings from defaults, a YAML file and
// FOLDERTUG_* environment variables, in increasing order of precedence.
package settings

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/filetug/foldertug/pkg/fsutils"
	"github.com/filetug/foldertug/pkg/logging"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	AppName        = "foldertug"
	ConfigFileName = "config.yaml"
	EnvPrefix      = "FOLDERTUG_"

	ModeSlices = "slices"
	ModeTree   = "tree"

	MaxRemovalDelay = 5 * time.Second
)

type Settings struct {
	Mode         string         `koanf:"mode" default:"slices"`
	ShowHidden   bool           `koanf:"show_hidden"`
	RemovalDelay time.Duration  `koanf:"removal_delay" default:"350ms"`
	Style        string         `koanf:"style" default:"dracula"`
	// Extensions limits the files shown, e.g. [".go", ".md"].
	Extensions   []string       `koanf:"extensions"`
	Log          logging.Config `koanf:"log"`
}

// Default returns the built-in settings.
func Default() Settings {
	var s Settings
	if err := defaults.Set(&s); err != nil {
		panic(err)
	}
	return s
}

func (s Settings) Validate() error {
	switch s.Mode {
	case ModeSlices, ModeTree:
	default:
		return errors.Errorf("invalid mode %q: expected %s or %s", s.Mode, ModeSlices, ModeTree)
	}
	if s.RemovalDelay < 0 || s.RemovalDelay > MaxRemovalDelay {
		return errors.Errorf("removal_delay %v out of range [0, %v]", s.RemovalDelay, MaxRemovalDelay)
	}
	if s.Style == "" {
		return errors.New("style can not be empty")
	}
	return errors.Wrap(s.Log.Validate(), "log")
}

// DefaultPath returns ~/.foldertug/config.yaml.
func DefaultPath() (string, error) {
	dir, err := fsutils.AppDir(AppName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load reads settings. An empty path means the default file, which may be
// missing; an explicit path must exist.
func Load(path string) (Settings, error) {
	s := Default()
	k := koanf.New(".")

	required := path != ""
	if !required {
		var err error
		if path, err = DefaultPath(); err != nil {
			path = ""
		}
	}
	if path != "" {
		path = fsutils.ExpandHome(path)
		exists, err := fsutils.FileExists(path)
		if err != nil {
			return s, err
		}
		switch {
		case exists:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return s, errors.Wrapf(err, "failed to load %s", path)
			}
		case required:
			return s, errors.Errorf("config file not found: %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return s, errors.Wrap(err, "failed to load environment")
	}
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return s, errors.Wrap(err, "failed to decode settings")
	}
	if err := s.Validate(); err != nil {
		return s, errors.Wrap(err, "invalid settings")
	}
	return s, nil
}

// envKey maps FOLDERTUG_LOG__LEVEL to log.level.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// YAML renders s the way it would be written in the config file.
func (s Settings) YAML() (string, error) {
	k := koanf.New(".")
	for key, value := range map[string]interface{}{
		"mode":          s.Mode,
		"show_hidden":   s.ShowHidden,
		"removal_delay": s.RemovalDelay.String(),
		"style":         s.Style,
		"log.level":     s.Log.Level,
		"log.format":    s.Log.Format,
		"log.output":    s.Log.OutputPath,
	} {
		if err := k.Set(key, value); err != nil {
			return "", errors.WithStack(err)
		}
	}
	if len(s.Extensions) > 0 {
		if err := k.Set("extensions", s.Extensions); err != nil {
			return "", errors.WithStack(err)
		}
	}
	b, err := k.Marshal(yaml.Parser())
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal settings")
	}
	return string(b), nil
}
