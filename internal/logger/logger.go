package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ErrorFile    = "error.log"
	CombinedFile = "combined.log"
)

// Options controls where log lines go.
type Options struct {
	Dir        string
	Level      string
	Production bool
}

// New builds the process logger: error-level lines to error.log, everything
// at or above Level to combined.log, and a console echo outside production.
// The returned func flushes and closes the file sinks.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("logger: invalid level %q: %w", opts.Level, err)
		}
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("logger: create dir: %w", err)
	}

	errSink, closeErr, err := zap.Open(filepath.Join(dir, ErrorFile))
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open %s: %w", ErrorFile, err)
	}
	combinedSink, closeCombined, err := zap.Open(filepath.Join(dir, CombinedFile))
	if err != nil {
		closeErr()
		return nil, nil, fmt.Errorf("logger: open %s: %w", CombinedFile, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonEnc := zapcore.NewJSONEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(jsonEnc, errSink, zapcore.ErrorLevel),
		zapcore.NewCore(jsonEnc, combinedSink, level),
	}

	if !opts.Production {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.Lock(os.Stdout),
			level,
		))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return l, func() {
		_ = l.Sync()
		closeCombined()
		closeErr()
	}, nil
}

// Init installs l as the process-wide logger used by the helpers below.
func Init(l *zap.Logger) {
	zap.ReplaceGlobals(l)
}

func Info(msg string, fields map[string]any) {
	zap.L().Info(msg, toFields(fields)...)
}

func Warn(msg string, fields map[string]any) {
	zap.L().Warn(msg, toFields(fields)...)
}

func Error(msg string, fields map[string]any) {
	zap.L().Error(msg, toFields(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	zap.L().Fatal(msg, toFields(fields)...)
}

func toFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
