/*
The package logging sets up the zerolog logger of the decoder process. It is initialized once by the entry point,
the codec packages never log.
*/
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ftl/tetra-air/config"
)

// LevelEnv overrides the configured log level.
const LevelEnv = "TETRA_LOG_LEVEL"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init creates the logger according to the configuration and installs it as global zerolog logger.
// The returned closer must be closed on exit to flush the log file.
func Init(cfg config.Log) (zerolog.Logger, io.Closer, error) {
	return initWithConsole(cfg, os.Stderr)
}

func initWithConsole(cfg config.Log, console io.Writer) (zerolog.Logger, io.Closer, error) {
	levelName := cfg.Level
	if override := strings.TrimSpace(os.Getenv(LevelEnv)); override != "" {
		levelName = override
	}
	level, err := ParseLevel(levelName)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
	}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxAge:     cfg.MaxAgeDays,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		output = zerolog.MultiLevelWriter(output, rotator)
		closer = rotator
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", "tetradec").Logger()
	log.Logger = logger
	return logger, closer, nil
}

// ParseLevel parses the name of a log level. "disabled" switches logging off.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", name)
	}
}
