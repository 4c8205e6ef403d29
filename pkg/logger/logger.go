// Package logger настраивает глобальный slog-логгер сервиса поиска.
package logger

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"gridbench/pkg/config"
)

// Log глобальный логгер. До вызова Init пишет через slog.Default().
var Log = slog.Default()

// Config конфигурация логгера
type Config struct {
	Level      string
	Format     string // json, text
	Output     string // stdout, stderr, file
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool

	// Writer перекрывает Output, используется в тестах
	Writer io.Writer
}

// FromConfig переводит секцию log конфигурации приложения
func FromConfig(cfg config.LogConfig) Config {
	return Config{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		FilePath:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

// InitWithConfig заменяет глобальный Log
func InitWithConfig(cfg Config) {
	Log = New(cfg)
}

// New собирает логгер, не трогая глобальный. На debug в записи
// добавляется файл и строка вызова.
func New(cfg Config) *slog.Logger {
	lvl := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl == slog.LevelDebug}

	w := cfg.Writer
	if w == nil {
		w = openOutput(cfg)
	}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel разбирает уровень, неизвестные значения дают info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const defaultLogFile = "logs/gridbench.log"

// openOutput выбирает поток вывода. Для file каталог создаётся заранее,
// а если это не удалось, логи идут в stderr.
func openOutput(cfg Config) io.Writer {
	switch cfg.Output {
	case "stderr":
		return os.Stderr
	case "file":
		path := cmp.Or(cfg.FilePath, defaultLogFile)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v, writing to stderr\n", err)
			return os.Stderr
		}
		return &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}
	return os.Stdout
}

type ctxKey struct{}

// NewContext кладёт логгер в контекст
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext возвращает логгер запроса, положенный NewContext.
// Без него возвращается fallback, а при nil fallback глобальный Log.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return Log
}

// WithService добавляет имя сервиса
func WithService(service string) *slog.Logger {
	return Log.With("service", service)
}

// WithRunID привязывает записи к прогону эксперимента
func WithRunID(l *slog.Logger, runID string) *slog.Logger {
	if l == nil {
		l = Log
	}
	return l.With("run_id", runID)
}

// WithScenario добавляет номер и имя сценария
func WithScenario(l *slog.Logger, index int, name string) *slog.Logger {
	if l == nil {
		l = Log
	}
	return l.With(slog.Group("scenario", slog.Int("index", index), slog.String("name", name)))
}

// WithSearch добавляет алгоритм и ширину луча
func WithSearch(l *slog.Logger, algorithm string, beamWidth int) *slog.Logger {
	if l == nil {
		l = Log
	}
	return l.With("algorithm", algorithm, "beam_width", beamWidth)
}

// Info, Warn и Error пишут через глобальный Log.
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Fatal пишет запись уровня error и завершает процесс с кодом 1.
func Fatal(msg string, args ...any) {
	Log.Error(msg, args...)
	os.Exit(1)
}
