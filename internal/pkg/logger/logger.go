package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config - настройки логгера. Переменные: CALCULATOR_LOG_LEVEL, CALCULATOR_LOG_FORMAT, CALCULATOR_LOG_FILE.
type Config struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"text"` // text или json
	File   string `envconfig:"FILE" default:""`       // пусто - только stderr
}

// logWriter открывает файл и возвращает writer в файл + stderr.
// При ошибке открытия файла (или пустом имени) возвращает только stderr.
func logWriter(file string) io.Writer {
	if file == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return os.Stderr
	}
	return io.MultiWriter(f, os.Stderr)
}

// ParseLevel переводит строку (debug, info, warn, error) в slog.Level. Неизвестное значение - Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// New возвращает логгер по конфигу.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(cfg, logWriter(cfg.File))
}

// NewWithWriter - то же, что New, но с явным writer (для тестов).
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
