// Package logging sets up file-backed structured logging for wizard hosts.
// The core engine takes a plain *zap.Logger and defaults to a no-op one, so
// this package is only needed by programs that want rotated log files.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Service struct {
	logger *zap.Logger
}

var logInstance *Service

// GetWizardDir returns the .settings-wizard directory path, creating it if it
// doesn't exist.
func GetWizardDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}

	wizardDir := filepath.Join(homeDir, ".settings-wizard")
	if err := os.MkdirAll(wizardDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create .settings-wizard directory: %v", err)
	}

	return wizardDir, nil
}

// New creates a new logging service instance (singleton).
func New() (*Service, func(), error) {
	// Reuse existing instance
	if logInstance != nil {
		return logInstance, nil, nil
	}

	wizardDir, err := GetWizardDir()
	if err != nil {
		return nil, nil, err
	}

	logsDir := filepath.Join(wizardDir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %v", err)
	}

	logPath := filepath.Join(logsDir, "wizard.log")

	// Setup logger with file rotation (file-only, no console)
	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    2, // megabytes
		MaxBackups: 5,
		MaxAge:     15, // days
		Compress:   true,
	})

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	encoder := zapcore.NewJSONEncoder(cfg.EncoderConfig)

	// INFO by default, overridable via environment variable
	level := zapcore.InfoLevel
	if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
		switch logLevelEnv {
		case "DEBUG", "debug":
			level = zapcore.DebugLevel
		case "INFO", "info":
			level = zapcore.InfoLevel
		case "WARN", "warn":
			level = zapcore.WarnLevel
		case "ERROR", "error":
			level = zapcore.ErrorLevel
		default:
			level = zapcore.InfoLevel
		}
	}

	fileCore := zapcore.NewCore(encoder, fileWriter, level)
	logger := zap.New(fileCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	logInstance = &Service{logger: logger}

	return logInstance, func() {
		logger.Sync()
	}, nil
}

// GetLogger returns the zap logger instance.
func (s *Service) GetLogger() *zap.Logger {
	return s.logger
}

// Close flushes any buffered log entries.
func (s *Service) Close() error {
	if s.logger != nil {
		return s.logger.Sync()
	}
	return nil
}

var globalLogger *zap.Logger

// InitGlobalLogger initializes the global logger instance.
func InitGlobalLogger() (func(), error) {
	service, closeFn, err := New()
	if err != nil {
		return nil, err
	}
	globalLogger = service.GetLogger()
	return closeFn, nil
}

// GetGlobalLogger returns the global logger instance.
func GetGlobalLogger() *zap.Logger {
	return globalLogger
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Debug(msg, fields...)
	}
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Info(msg, fields...)
	}
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Warn(msg, fields...)
	}
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	if globalLogger != nil {
		globalLogger.Error(msg, fields...)
	}
}
