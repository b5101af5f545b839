package zap

import (
	"github.com/lintang-b-s/nearest-cities/pkg/logger/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON production logger at the configured level.
func New(cfg config.Configuration) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(toZapLevel(cfg.Level))
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)

	return zapCfg.Build(zap.AddCaller())
}

func toZapLevel(level int) zapcore.Level {
	switch level {
	case config.DEBUG_LEVEL:
		return zapcore.DebugLevel
	case config.WARN_LEVEL:
		return zapcore.WarnLevel
	case config.ERROR_LEVEL:
		return zapcore.ErrorLevel
	case config.FATAL_LEVEL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
