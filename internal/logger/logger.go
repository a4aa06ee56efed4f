package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	OutputStdout = "stdout"
	OutputFile   = "file"
)

type Conf struct {
	Output     string
	Path       string
	Filename   string
	Level      string
	KeepDays   int // сколько дней хранить ротированные файлы
	RotateSize int // MB
	RotateNum  int
}

func SetDefaults() *Conf {
	return &Conf{
		Output:     OutputStdout,
		Path:       "./logs",
		Filename:   "rostersync.log",
		Level:      "INFO",
		KeepDays:   7,
		RotateSize: 100,
		RotateNum:  10,
	}
}

func (c *Conf) Validate() error {
	switch c.Output {
	case "", OutputStdout:
	case OutputFile:
		if c.Path == "" {
			return fmt.Errorf("log path is required when output is %q", OutputFile)
		}
		if c.Filename == "" {
			c.Filename = "rostersync.log"
		}
		if c.RotateSize <= 0 {
			c.RotateSize = 100
		}
		if c.RotateNum <= 0 {
			c.RotateNum = 10
		}
		if c.KeepDays <= 0 {
			c.KeepDays = 7
		}
	default:
		return fmt.Errorf("unknown log output %q", c.Output)
	}
	return nil
}

// New builds a sugared logger and installs it as the zap global.
func New(conf *Conf) (*zap.SugaredLogger, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}

	var ws zapcore.WriteSyncer
	switch conf.Output {
	case OutputFile:
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(conf.Path, conf.Filename),
			MaxSize:    conf.RotateSize,
			MaxBackups: conf.RotateNum,
			MaxAge:     conf.KeepDays,
			Compress:   true,
		})
	default:
		ws = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(newEncoder(), ws, parseLogLevel(conf.Level))
	l := zap.New(core, zap.AddCaller())
	zap.ReplaceGlobals(l)

	sugar := l.Sugar()
	sugar.Debugw("log initialized", "output", conf.Output, "level", conf.Level)
	return sugar, nil
}

func newEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "time"
	cfg.LevelKey = "level"
	cfg.CallerKey = "caller"
	cfg.MessageKey = "msg"
	cfg.StacktraceKey = "stacktrace"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = utcTimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func utcTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339))
}

// parseLogLevel is case-insensitive, unknown levels fall back to info.
func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
