package logger

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ILogger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Warning(msg string, fields ...Field)
	Sync() error
}

type logger struct {
	zap *zap.Logger
}

func (l logger) Debug(msg string, fields ...Field) {
	l.zap.Debug(msg, fields...)
}

func (l logger) Info(msg string, fields ...Field) {
	l.zap.Info(msg, fields...)
}

func (l logger) Error(msg string, fields ...Field) {
	l.zap.Error(msg, fields...)
}

func (l logger) Warning(msg string, fields ...Field) {
	l.zap.Warn(msg, fields...)
}

func (l logger) Sync() error {
	return l.zap.Sync()
}

// Options tunes New. Format is "console" (default) or "json".
type Options struct {
	Level  string
	Format string
	Output []string
}

// New builds a namespaced zap logger. Unknown levels fall back to info.
func New(namespace string, opts Options) (ILogger, error) {
	cfg := zap.NewDevelopmentConfig()
	if strings.EqualFold(opts.Format, "json") {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stdout"}
	if len(opts.Output) > 0 {
		cfg.OutputPaths = opts.Output
	}
	cfg.InitialFields = map[string]interface{}{
		"namespace": namespace,
	}
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if parsed, err := zapcore.ParseLevel(opts.Level); err == nil {
			level = parsed
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger{zap: z}, nil
}

// Wrap adapts an existing zap logger.
func Wrap(z *zap.Logger) ILogger {
	if z == nil {
		z = zap.NewNop()
	}
	return logger{zap: z}
}

// NewNop discards everything.
func NewNop() ILogger {
	return logger{zap: zap.NewNop()}
}

// Telemetry writes domain events as debug log lines. It satisfies the
// Record contract used by the salon editor, admin controller and commands.
type Telemetry struct {
	log ILogger
}

func NewTelemetry(log ILogger) *Telemetry {
	if log == nil {
		log = NewNop()
	}
	return &Telemetry{log: log}
}

func (t *Telemetry) Record(_ context.Context, event string, payload map[string]any) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]Field, 0, len(keys)+1)
	fields = append(fields, String("event", event))
	for _, key := range keys {
		fields = append(fields, Any(key, payload[key]))
	}
	t.log.Debug("telemetry", fields...)
}
