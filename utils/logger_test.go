package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"parkventure/config"
)

func TestLogLevelReadsConfig(t *testing.T) {
	orig := config.AppConfig
	defer func() { config.AppConfig = orig }()

	config.AppConfig.Env = "production"
	config.AppConfig.LogLevel = "warn"
	assert.Equal(t, zapcore.WarnLevel, logLevel())

	config.AppConfig.LogLevel = "debug"
	assert.Equal(t, zapcore.DebugLevel, logLevel())
}

func TestLogLevelFallsBackPerEnvironment(t *testing.T) {
	orig := config.AppConfig
	defer func() { config.AppConfig = orig }()

	config.AppConfig.LogLevel = ""
	config.AppConfig.Env = "production"
	assert.Equal(t, zapcore.InfoLevel, logLevel())

	config.AppConfig.Env = "development"
	assert.Equal(t, zapcore.DebugLevel, logLevel())

	config.AppConfig.LogLevel = "loudest"
	assert.Equal(t, zapcore.DebugLevel, logLevel())
}
