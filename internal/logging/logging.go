// Copyright 2023 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"fmt"
	"log"
	"time"

	"github.com/blinklabs-io/powtarget/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger = zap.SugaredLogger

var globalLogger = zap.NewNop().Sugar()

func Setup() {
	cfg := config.GetConfig()
	loggerConfig, err := buildConfig(cfg.Logging)
	if err != nil {
		log.Fatalf("error configuring logger: %s", err)
	}
	l, err := loggerConfig.Build()
	if err != nil {
		log.Fatal(err)
	}
	globalLogger = l.Sugar()
}

// buildConfig maps the logging section of the config onto a zap config.
// Development mode starts from zap's development preset, and the format
// picks the encoder.
func buildConfig(cfg config.LoggingConfig) (zap.Config, error) {
	loggerConfig := zap.NewProductionConfig()
	if cfg.Development {
		loggerConfig = zap.NewDevelopmentConfig()
	}
	switch cfg.Format {
	case "":
	case config.LogFormatJSON, config.LogFormatConsole:
		loggerConfig.Encoding = cfg.Format
	default:
		return loggerConfig, fmt.Errorf("unknown log format: %s", cfg.Format)
	}
	loggerConfig.EncoderConfig.TimeKey = "timestamp"
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(
		time.RFC3339,
	)
	if loggerConfig.Encoding == config.LogFormatConsole {
		loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return loggerConfig, err
		}
		loggerConfig.Level.SetLevel(level)
	}
	return loggerConfig, nil
}

func GetLogger() *Logger {
	return globalLogger
}

func GetDesugaredLogger() *zap.Logger {
	return globalLogger.Desugar()
}

// GetComponentLogger returns the global logger tagged with a component
// name
func GetComponentLogger(component string) *Logger {
	return globalLogger.With("component", component)
}
