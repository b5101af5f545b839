package logger_di

import (
	"github.com/lintang-b-s/nearest-cities/pkg/di/config"
	logconfig "github.com/lintang-b-s/nearest-cities/pkg/logger/config"
	myZap "github.com/lintang-b-s/nearest-cities/pkg/logger/zap"

	"go.uber.org/zap"
)

func New(appCfg *config.Config) (*zap.Logger, func(), error) {
	cfg := logconfig.Configuration{
		Level:      appCfg.LogLevel,
		TimeFormat: appCfg.LogTimeFormat,
	}

	err := cfg.Validate()
	if err != nil {
		return nil, nil, err
	}

	log, err := myZap.New(cfg)

	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = log.Sync()
	}

	return log, cleanup, nil
}
