// Package logger is a thin component-scoped wrapper over zap. Output goes to
// stderr so stdout stays free for command output.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int8

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel accepts debug, info, warn or error (any case).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// Options configures the process logger.
type Options struct {
	Level  Level
	Output io.Writer // defaults to os.Stderr
	JSON   bool
}

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  = build(Options{Level: INFO})
)

func build(opts Options) *zap.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(out), level))
}

// Init replaces the process logger.
func Init(opts Options) {
	mu.Lock()
	defer mu.Unlock()
	level.SetLevel(opts.Level.zapLevel())
	base = build(opts)
}

// SetLevel changes the minimum level without rebuilding the logger.
func SetLevel(l Level) {
	level.SetLevel(l.zapLevel())
}

// L returns the underlying zap logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

func DebugCF(component, msg string, fields map[string]interface{}) {
	logCF(zapcore.DebugLevel, component, msg, fields)
}

func InfoCF(component, msg string, fields map[string]interface{}) {
	logCF(zapcore.InfoLevel, component, msg, fields)
}

func WarnCF(component, msg string, fields map[string]interface{}) {
	logCF(zapcore.WarnLevel, component, msg, fields)
}

func ErrorCF(component, msg string, fields map[string]interface{}) {
	logCF(zapcore.ErrorLevel, component, msg, fields)
}

func logCF(lvl zapcore.Level, component, msg string, fields map[string]interface{}) {
	l := L()
	ce := l.Check(lvl, msg)
	if ce == nil {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zf := make([]zap.Field, 0, len(keys)+1)
	zf = append(zf, zap.String("component", component))
	for _, k := range keys {
		if err, ok := fields[k].(error); ok {
			zf = append(zf, zap.NamedError(k, err))
			continue
		}
		zf = append(zf, zap.Any(k, fields[k]))
	}
	ce.Write(zf...)
}
