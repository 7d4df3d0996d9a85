package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the service logger. When logFile is set, output is tee'd to a
// rotating JSON file next to the console output.
func New(env, logFile string) (*zap.Logger, error) {
	if logFile == "" {
		return buildConfig(env).Build()
	}
	return NewWithWriter(env, &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}), nil
}

// NewWithWriter builds a logger that writes to stdout and, as JSON, to w.
func NewWithWriter(env string, w io.Writer) *zap.Logger {
	config := buildConfig(env)
	level := zap.NewAtomicLevelAt(config.Level.Level())

	consoleCore := zapcore.NewCore(
		consoleEncoder(env, config.EncoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(fileEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func buildConfig(env string) zap.Config {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return config
}

func consoleEncoder(env string, cfg zapcore.EncoderConfig) zapcore.Encoder {
	if env == "production" {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// The file schema is the production one in every environment, without color.
func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}
