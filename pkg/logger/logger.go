package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *zap.Logger

// Init builds the process-wide logger. Debug mode logs everything in a
// human readable format; otherwise only warnings and errors reach stderr.
func Init(debug bool) {
	var config zap.Config

	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		config.EncoderConfig.TimeKey = ""
		config.EncoderConfig.CallerKey = ""
	}

	// stdout carries list/JSON/YAML output, keep logs off it
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	var err error
	globalLogger, err = config.Build()
	if err != nil {
		globalLogger = zap.NewNop()
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
	}
}

// SetLogger replaces the global logger, mostly useful in tests.
func SetLogger(l *zap.Logger) {
	globalLogger = l
}

func Get() *zap.Logger {
	if globalLogger == nil {
		Init(false)
	}
	return globalLogger
}

func Debug(msg string, fields ...zap.Field) {
	Get().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Get().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Get().Warn(msg, fields...)
}

func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}
