// Package hooklog provides structured logging for elfhook and hookctl
// using zap. elfhook logs at info level when an image is initialized, when
// a hook starts and when a GOT slot is patched; it does not log the result
// of symbol resolution, and errors are returned to the caller without
// being logged.
package hooklog

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with elfhook-specific field helpers.
type Logger struct {
	*zap.Logger
}

var (
	// L is the global logger instance, set by Init.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger. Safe to call multiple times; only
// the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a standalone Logger instance.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}

	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger, used as elfhook's default sink so the
// library never forces a logging configuration on its caller.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Hex formats a uint64 as a "0x"-prefixed hex string.
func Hex(addr uint64) string {
	return "0x" + hexString(addr)
}

func hexString(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	buf := make([]byte, 16)
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// Addr creates a hex-formatted address field.
func Addr(name string, addr uint64) zap.Field {
	return zap.String(name, Hex(addr))
}

// Size creates a byte-count field.
func Size(size uint64) zap.Field {
	return zap.Uint64("size", size)
}

// NamedSize creates a byte-count field under a caller-chosen key, for
// logging several sizes (e.g. the three relocation tables) in one line.
func NamedSize(key string, size uint64) zap.Field {
	return zap.Uint64(key, size)
}

// Fn creates a symbol/image name field.
func Fn(name string) zap.Field {
	return zap.String("fn", name)
}

// String is a thin re-export of zap.String for callers that don't want to
// import zap directly just to build one field.
func String(key, val string) zap.Field {
	return zap.String(key, val)
}
