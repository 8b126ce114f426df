// Package logging builds the zap logger. A terminal UI owns stdout, so
// logs go to a file or nowhere.
package logging

import (
	"github.com/filetug/foldertug/pkg/fsutils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level      string `koanf:"level" default:"info"`
	Format     string `koanf:"format" default:"json"`
	OutputPath string `koanf:"output"`
}

func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.Level)
	}
	switch c.Format {
	case "json", "console":
	default:
		return errors.Errorf("invalid log format %q: expected json or console", c.Format)
	}
	if c.OutputPath == "stdout" {
		return errors.New("log output can not be stdout")
	}
	return nil
}

// New builds a logger for cfg. Without an output path it returns a no-op
// logger.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.OutputPath == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if cfg.Format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{fsutils.ExpandHome(cfg.OutputPath)}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return logger, nil
}
