package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LOG_BUFFER_SIZE = 1000

var (
	ErrLogNotInitialized = errors.New("log object is not initialized yet")
	ErrUnknownLogLevel   = errors.New("unknown log level")
)

const (
	LOG_LEVEL_ERROR = iota + 1
	LOG_LEVEL_WARN
	LOG_LEVEL_INFO
	LOG_LEVEL_DEBUG
)

type LogSettings struct {
	Folder  string
	File    string
	Level   int
	Console bool
	Rewrite bool
}

// ServiceLogger queues events on a buffered channel and writes them from a
// single goroutine through zap. A zero ServiceLogger drops every event.
type ServiceLogger struct {
	logBuffer         chan LeveledLogger
	handle            *os.File
	wg                *sync.WaitGroup
	mu                sync.RWMutex
	loggerInitialized bool
	zapLogger         *zap.Logger
}

type LeveledLogger struct {
	level  int
	logMsg string
}

func (m *ServiceLogger) Init(settings LogSettings) error {
	var err error

	m.wg = new(sync.WaitGroup)
	m.logBuffer = make(chan LeveledLogger, LOG_BUFFER_SIZE)

	m.handle = nil
	if settings.File != "" {
		CheckAndCreateLogFolder(settings.Folder)
		fileWithRelPath := filepath.Join(settings.Folder, settings.File)

		flags := os.O_RDWR | os.O_CREATE | os.O_APPEND
		if settings.Rewrite {
			flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
		}
		m.handle, err = os.OpenFile(fileWithRelPath, flags, 0666)
		if err != nil {
			return err
		}
	}

	m.zapLoggerInit(settings)

	m.wg.Add(1)
	go m.logWritter()

	m.mu.Lock()
	m.loggerInitialized = true
	m.mu.Unlock()
	return nil
}

func (m *ServiceLogger) zapLoggerInit(settings LogSettings) {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder

	config.EncodeLevel = zapcore.CapitalLevelEncoder //To Print level in Uppercase.
	encoder := zapcore.NewConsoleEncoder(config)     //To Print Lines in non json format.

	level := ZapLevel(settings.Level)

	var cores []zapcore.Core
	if m.handle != nil {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(m.handle), level))
	}
	if settings.Console {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	}

	m.zapLogger = zap.New(zapcore.NewTee(cores...))
}

// ZapLevel maps the LOG_LEVEL_* constants onto zap levels. Unknown values
// fall back to info.
func ZapLevel(level int) zapcore.Level {
	switch level {
	case LOG_LEVEL_ERROR:
		return zapcore.ErrorLevel
	case LOG_LEVEL_WARN:
		return zapcore.WarnLevel
	case LOG_LEVEL_DEBUG:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLogLevel accepts "error", "warn", "info" or "debug".
func ParseLogLevel(name string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return LOG_LEVEL_ERROR, nil
	case "warn", "warning":
		return LOG_LEVEL_WARN, nil
	case "info", "":
		return LOG_LEVEL_INFO, nil
	case "debug":
		return LOG_LEVEL_DEBUG, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, name)
}

func (m *ServiceLogger) logWritter() {
	for logdata := range m.logBuffer {
		switch logdata.level {
		case LOG_LEVEL_ERROR:
			m.zapLogger.Error(logdata.logMsg)
		case LOG_LEVEL_WARN:
			m.zapLogger.Warn(logdata.logMsg)
		case LOG_LEVEL_INFO:
			m.zapLogger.Info(logdata.logMsg)
		case LOG_LEVEL_DEBUG:
			m.zapLogger.Debug(logdata.logMsg)
		}
	}
	m.zapLogger.Sync()
	m.wg.Done()
}

// LogEvent takes an optional leading LOG_LEVEL_* followed by the values to
// print. Without a level the event is logged at info.
func (m *ServiceLogger) LogEvent(v ...interface{}) error {
	level, msg := formatEvent(v...)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.loggerInitialized {
		return ErrLogNotInitialized
	}
	m.logBuffer <- LeveledLogger{level, msg}
	return nil
}

func formatEvent(v ...interface{}) (int, string) {
	if len(v) == 0 {
		return LOG_LEVEL_INFO, ""
	}
	if len(v) == 1 {
		return LOG_LEVEL_INFO, fmt.Sprint(v[0])
	}

	level, ok := v[0].(int)
	if ok && level >= LOG_LEVEL_ERROR && level <= LOG_LEVEL_DEBUG {
		v = v[1:]
	} else {
		level = LOG_LEVEL_INFO
	}
	msg := fmt.Sprintf("%v", v)
	return level, msg[1 : len(msg)-1]
}

// DeInit drains queued events and closes the log file.
func (m *ServiceLogger) DeInit() {
	m.mu.Lock()
	if !m.loggerInitialized {
		m.mu.Unlock()
		return
	}
	m.loggerInitialized = false
	close(m.logBuffer)
	m.mu.Unlock()

	m.wg.Wait()

	if m.handle != nil {
		m.handle.Close()
	}
}

func CheckAndCreateLogFolder(FolderNameWithPath string) {
	if FolderNameWithPath == "" {
		return
	}
	_, err := os.Stat(FolderNameWithPath)

	if os.IsNotExist(err) {
		err := os.MkdirAll(FolderNameWithPath, 0755)
		if err != nil {
			fmt.Println("Failed to create the log folder and Mkdir err :: ", err)
		}
	}
}
