// Package logging builds the zap logger shared by all commands.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config describes console and optional file logging.
type Config struct {
	Level       string // none | normal | debug
	Destination string // log file, empty for console only
	Mode        string // append | overwrite
	Color       bool
}

// New returns a configured logger. Info and debug messages go to out,
// errors go to errOut. When a destination is set a file core is added at the
// same level.
func New(conf Config, out, errOut io.Writer) (*zap.Logger, error) {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if conf.Color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	encoder := zapcore.NewConsoleEncoder(ec)

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	var minLevel zapcore.Level
	switch conf.Level {
	case "none", "":
		return zap.NewNop(), nil
	case "normal":
		minLevel = zapcore.InfoLevel
	case "debug":
		minLevel = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("unknown log level %q (want none, normal or debug)", conf.Level)
	}

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return minLevel <= lvl && lvl < zapcore.ErrorLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(out), lowPriority),
		zapcore.NewCore(encoder, zapcore.AddSync(errOut), highPriority),
	}

	if conf.Destination != "" {
		flags := os.O_CREATE | os.O_WRONLY
		if conf.Mode == "append" {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(conf.Destination, flags, 0644)
		if err != nil {
			return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.Destination, err)
		}
		fileEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.Lock(f), zap.NewAtomicLevelAt(minLevel)))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
