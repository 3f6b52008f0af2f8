package gologger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	glog "github.com/goliatone/go-logger/glog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

type Config struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	Development bool     `yaml:"development"`
	OutputPaths []string `yaml:"output_paths"`
}

// NewZap builds the zap logger used by the command line tools.
func NewZap(cfg Config) (*zap.Logger, error) {
	levelName := strings.TrimSpace(cfg.Level)
	if levelName == "" {
		levelName = "info"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("gologger: invalid log level: %w", err)
	}
	encoding := strings.ToLower(strings.TrimSpace(cfg.Encoding))
	if encoding == "" {
		encoding = "json"
	}
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if cfg.Development {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stderr"}
	}
	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Development,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("gologger: build logger: %w", err)
	}
	return logger, nil
}

// ZapLogger adapts a zap logger to glog.Logger. Args are key/value pairs.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{sugar: logger.Sugar()}
}

func (l *ZapLogger) Trace(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }
func (l *ZapLogger) Fatal(msg string, args ...any) { l.sugar.Fatalw(msg, args...) }

// WithContext tags entries with the chi request id when one is set.
func (l *ZapLogger) WithContext(ctx context.Context) glog.Logger {
	if ctx == nil {
		return l
	}
	if requestID := middleware.GetReqID(ctx); requestID != "" {
		return &ZapLogger{sugar: l.sugar.With("request_id", requestID)}
	}
	return l
}

func (l *ZapLogger) WithFields(fields map[string]any) glog.Logger {
	if len(fields) == 0 {
		return l
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return &ZapLogger{sugar: l.sugar.With(args...)}
}

func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// Provider hands out named children of one zap logger.
type Provider struct {
	base *zap.Logger
}

func NewProvider(logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{base: logger}
}

func (p *Provider) GetLogger(name string) glog.Logger {
	return NewZapLogger(p.base.Named(strings.TrimSpace(name)))
}

var (
	_ glog.Logger         = (*ZapLogger)(nil)
	_ glog.LoggerProvider = (*Provider)(nil)
)
