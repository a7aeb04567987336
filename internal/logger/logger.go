package logger

import (
	"context"

	"eduvibe/internal/config"
	"eduvibe/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the application logger and, when enabled, tees it into the "logs" collection.
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	base, err := NewBaseLogger(cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.Log.ToMongo || mongodb == nil {
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			_ = base.Sync()
			return nil
		}})
		return base, nil
	}

	dbWriter := NewDBLogWriter(mongodb.DB.Collection("logs"), cfg.AppId, cfg.Log.BufferSz)
	logger := zap.New(NewDBCore(base.Core(), dbWriter), zap.AddCaller())

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = logger.Sync()
			return dbWriter.Close(ctx)
		},
	})

	return logger, nil
}

// NewBaseLogger builds the console logger from config alone.
func NewBaseLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	if cfg.Log.Format == "console" {
		zapConfig.Encoding = "console"
	} else if cfg.Log.Format == "json" {
		zapConfig.Encoding = "json"
	}

	if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	}

	zapConfig.EncoderConfig.FunctionKey = "func"

	return zapConfig.Build()
}
