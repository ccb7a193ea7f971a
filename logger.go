package main

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LOG_LEVEL_DEBUG = "DEBUG"
	LOG_LEVEL_INFO  = "INFO"
	LOG_LEVEL_WARN  = "WARN"
	LOG_LEVEL_ERROR = "ERROR"
)

var LOG_LEVELS = []string{
	LOG_LEVEL_DEBUG,
	LOG_LEVEL_INFO,
	LOG_LEVEL_WARN,
	LOG_LEVEL_ERROR,
}

var ZAP_LEVEL_BY_LOG_LEVEL = map[string]zapcore.Level{
	LOG_LEVEL_DEBUG: zapcore.DebugLevel,
	LOG_LEVEL_INFO:  zapcore.InfoLevel,
	LOG_LEVEL_WARN:  zapcore.WarnLevel,
	LOG_LEVEL_ERROR: zapcore.ErrorLevel,
}

var _loggers = map[string]*zap.SugaredLogger{}
var _loggersMutex sync.Mutex

func LogError(config *Config, message ...interface{}) {
	logger(config).Errorln(message...)
}

func LogWarn(config *Config, message ...interface{}) {
	logger(config).Warnln(message...)
}

func LogInfo(config *Config, message ...interface{}) {
	logger(config).Infoln(message...)
}

func LogDebug(config *Config, message ...interface{}) {
	logger(config).Debugln(message...)
}

func logger(config *Config) *zap.SugaredLogger {
	logLevel := DEFAULT_LOG_LEVEL
	if config != nil && config.LogLevel != "" {
		logLevel = config.LogLevel
	}

	_loggersMutex.Lock()
	defer _loggersMutex.Unlock()

	if sugaredLogger, ok := _loggers[logLevel]; ok {
		return sugaredLogger
	}

	zapLevel, ok := ZAP_LEVEL_BY_LOG_LEVEL[logLevel]
	if !ok {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zapConfig.DisableStacktrace = true
	zapConfig.DisableCaller = true

	zapLogger, err := zapConfig.Build()
	if err != nil {
		zapLogger = zap.NewNop()
	}

	sugaredLogger := zapLogger.Sugar()
	_loggers[logLevel] = sugaredLogger
	return sugaredLogger
}
