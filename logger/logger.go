package logger

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

const (
	LOGGER_FILE = "men.log"
)

var (
	logger   *zap.Logger
	sinkOnce sync.Once
)

func newConfig(debug bool) zap.Config {
	config := zap.NewDevelopmentConfig()

	// If not debug keep at info level
	if !debug {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return config
}

// Logger writing to stderr, stdout carries the console output
func fallbackConfig(debug bool) zap.Config {
	config := newConfig(debug)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	return config
}

// Create new logger
func newLogger(workingFolder string, debug bool) error {
	config := newConfig(debug)

	logPath := filepath.Join(workingFolder, LOGGER_FILE)
	// delete old file
	os.Remove(logPath)

	if runtime.GOOS == "windows" {
		sinkOnce.Do(func() {
			zap.RegisterSink("winfile", func(u *url.URL) (zap.Sink, error) {
				// Remove leading slash left by url.Parse()
				return os.OpenFile(u.Path[1:], os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
			})
		})
		logPath = "winfile:///" + logPath
	}

	config.OutputPaths = []string{logPath}
	config.ErrorOutputPaths = []string{logPath}

	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to create logger - %w", err)
	}
	logger = built
	zap.ReplaceGlobals(logger)
	return nil
}

// Get sugared logger from logger, falls back to stderr when the log file
// cannot be created
func GetSugar(workingFolder string, debug bool) *zap.SugaredLogger {
	if logger == nil {
		if err := newLogger(workingFolder, debug); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			fallback, fallbackErr := fallbackConfig(debug).Build()
			if fallbackErr != nil {
				fallback = zap.NewNop()
			}
			logger = fallback
		}
	}

	return logger.Sugar()
}

// Sync on defer (call it with defer)
func Defer() {
	if logger != nil {
		logger.Sync()
	}
}
