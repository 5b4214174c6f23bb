package observability

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger. format is "json" or "console"; verbose forces
// the console encoder at debug level regardless of the other settings.
func NewLogger(level, format string, verbose bool) (*zap.Logger, error) {
	var zapCfg zap.Config
	if verbose || format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if verbose {
		level = "debug"
	}
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, eris.Wrap(err, "observability: parse log level")
	}
	zapCfg.Level.SetLevel(lvl)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "observability: build logger")
	}
	return logger, nil
}

// InitLogger builds a logger and installs it as the zap global.
func InitLogger(level, format string, verbose bool) error {
	logger, err := NewLogger(level, format, verbose)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}
