package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Environment string
	Level       string
	// FilePath enables an additional size-rotated log file.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func New(opts Options) (*zap.Logger, error) {
	var encCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder

	if opts.Environment == "production" {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, err
		}
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 30),
			Compress:   true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
