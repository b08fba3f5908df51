// pkg/logging/logging.go - timestamped logging for Office deployment runs.
//
// Provides structured logging with timestamped session directories:
// - Timestamped subdirectories (YYYY-MM-DD-HHMMss format)
// - Plain deploy.log plus a JSON lines mirror for reporting tools
// - YAML session summary written on close

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sys/windows"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/officedeploy/pkg/config"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	// Define log levels.
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

func parseLevel(s string) LogLevel {
	switch s {
	case "ERROR":
		return LevelError
	case "WARN":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// LogEntry represents a structured log entry compatible with external reporting tools.
type LogEntry struct {
	Time       int64                  `json:"time" yaml:"time"`
	Timestamp  string                 `json:"timestamp" yaml:"timestamp"`
	Level      string                 `json:"level" yaml:"level"`
	Message    string                 `json:"message" yaml:"message"`
	Hostname   string                 `json:"hostname" yaml:"hostname"`
	PID        int64                  `json:"pid" yaml:"pid"`
	SessionID  string                 `json:"session_id" yaml:"session_id"`
	Properties map[string]interface{} `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// SessionSummary is the YAML document written when the logger closes.
type SessionSummary struct {
	SessionID string `yaml:"session_id"`
	Hostname  string `yaml:"hostname"`
	Started   string `yaml:"started"`
	Finished  string `yaml:"finished"`
	ExitCode  int    `yaml:"exit_code"`
	Errors    int    `yaml:"errors"`
	Warnings  int    `yaml:"warnings"`
}

// Logger encapsulates logging to a timestamped session directory.
type Logger struct {
	mu           sync.RWMutex
	logger       *log.Logger
	logLevel     LogLevel
	logFile      *os.File
	jsonFile     *os.File
	logDir       string
	hostname     string
	sessionID    string
	sessionStart time.Time
	errorCount   int
	warnCount    int
}

// singleton instance and sync.Once for thread-safe initialization
var (
	instance *Logger
	once     sync.Once
)

// Init initializes the singleton Logger based on the provided configuration.
// It must be called before any logging functions are used.
func Init(cfg *config.Configuration) error {
	var initErr error
	once.Do(func() {
		instance, initErr = newLogger(cfg)
	})
	return initErr
}

// generateSessionID creates a unique session identifier
func generateSessionID() string {
	return fmt.Sprintf("officedeploy-%d-%s", time.Now().Unix(),
		time.Now().Format("2006-01-02-150405"))
}

// newLogger creates a new Logger instance based on the configuration.
func newLogger(cfg *config.Configuration) (*Logger, error) {
	sessionStart := time.Now()

	baseDir := cfg.LogPath
	if baseDir == "" {
		baseDir = `C:\ProgramData\OfficeDeploy\logs`
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base log directory: %w", err)
	}

	// Format: YYYY-MM-DD-HHMMss
	logDir := filepath.Join(baseDir, sessionStart.Format("2006-01-02-150405"))
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create timestamped log directory %s: %w", logDir, err)
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	level := parseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = LevelDebug
	}

	l := &Logger{
		logLevel:     level,
		logDir:       logDir,
		hostname:     hostname,
		sessionID:    generateSessionID(),
		sessionStart: sessionStart,
	}

	var err error
	l.logFile, err = os.OpenFile(filepath.Join(logDir, "deploy.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open main log file: %w", err)
	}
	l.jsonFile, err = os.OpenFile(filepath.Join(logDir, "events.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON log file: %w", err)
	}

	l.logger = log.New(io.MultiWriter(os.Stdout, l.logFile), "", 0)

	return l, nil
}

// CloseLogger writes the session summary and closes all log files.
func CloseLogger(exitCode int) {
	if instance == nil {
		return
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()

	summary := SessionSummary{
		SessionID: instance.sessionID,
		Hostname:  instance.hostname,
		Started:   instance.sessionStart.Format(time.RFC3339),
		Finished:  time.Now().Format(time.RFC3339),
		ExitCode:  exitCode,
		Errors:    instance.errorCount,
		Warnings:  instance.warnCount,
	}
	if data, err := yaml.Marshal(summary); err == nil {
		_ = os.WriteFile(filepath.Join(instance.logDir, "session.yaml"), data, 0644)
	}

	if instance.logFile != nil {
		if err := instance.logFile.Close(); err != nil {
			fmt.Printf("Failed to close main log file: %v\n", err)
		}
		instance.logFile = nil
	}
	if instance.jsonFile != nil {
		if err := instance.jsonFile.Close(); err != nil {
			fmt.Printf("Failed to close JSON log file: %v\n", err)
		}
		instance.jsonFile = nil
	}
}

// logMessage is the core logging method that writes to all configured outputs
func (l *Logger) logMessage(level LogLevel, message string, keyValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logger == nil {
		fmt.Printf("LOGGING NOT INITIALIZED: %s %s %v\n", level.String(), message, keyValues)
		return
	}

	if level > l.logLevel {
		return
	}

	switch level {
	case LevelError:
		l.errorCount++
	case LevelWarn:
		l.warnCount++
	}

	// Convert keyValues to properties map
	properties := make(map[string]interface{})
	for i := 0; i < len(keyValues); i += 2 {
		if i+1 < len(keyValues) {
			key := fmt.Sprintf("%v", keyValues[i])
			properties[key] = keyValues[i+1]
		}
	}

	now := time.Now()
	entry := LogEntry{
		Time:       now.Unix(),
		Timestamp:  now.Format(time.RFC3339),
		Level:      level.String(),
		Message:    message,
		Hostname:   l.hostname,
		PID:        int64(os.Getpid()),
		SessionID:  l.sessionID,
		Properties: properties,
	}

	l.writeMainLog(entry, keyValues)
	l.writeJSONLog(entry)

	if l.logFile != nil {
		l.logFile.Sync()
	}
	if l.jsonFile != nil {
		l.jsonFile.Sync()
	}
}

// writeMainLog writes to the deploy.log file in traditional format
func (l *Logger) writeMainLog(entry LogEntry, keyValues []interface{}) {
	ts := time.Unix(entry.Time, 0).Format("2006-01-02 15:04:05")
	baseLine := fmt.Sprintf("[%s] %-5s %s", ts, entry.Level, entry.Message)

	for i := 0; i < len(keyValues); i += 2 {
		if i+1 < len(keyValues) {
			key := fmt.Sprintf("%v", keyValues[i])
			val := keyValues[i+1]
			baseLine += fmt.Sprintf(" %s=%v", key, val)
		}
	}

	if entry.Level == "ERROR" {
		baseLine = "\n----------------------------------------\n" + baseLine
	}

	l.logger.Println(baseLine)
}

// writeJSONLog writes structured JSON log entry
func (l *Logger) writeJSONLog(entry LogEntry) {
	if l.jsonFile == nil {
		return
	}
	if data, err := json.Marshal(entry); err == nil {
		l.jsonFile.WriteString(string(data) + "\n")
	}
}

// GetCurrentLogDir returns the current timestamped log directory
func GetCurrentLogDir() string {
	if instance == nil {
		return ""
	}
	instance.mu.RLock()
	defer instance.mu.RUnlock()
	return instance.logDir
}

// GetSessionID returns the current session ID
func GetSessionID() string {
	if instance == nil {
		return ""
	}
	instance.mu.RLock()
	defer instance.mu.RUnlock()
	return instance.sessionID
}

// Info logs informational messages.
func Info(message string, keyValues ...interface{}) {
	if instance == nil {
		fmt.Printf("LOGGING NOT INITIALIZED: INFO %s %v\n", message, keyValues)
		return
	}
	instance.logMessage(LevelInfo, message, keyValues...)
}

// Debug logs debug messages.
func Debug(message string, keyValues ...interface{}) {
	if instance == nil {
		fmt.Printf("LOGGING NOT INITIALIZED: DEBUG %s %v\n", message, keyValues)
		return
	}
	instance.logMessage(LevelDebug, message, keyValues...)
}

// Warn logs warning messages.
func Warn(message string, keyValues ...interface{}) {
	if instance == nil {
		fmt.Printf("LOGGING NOT INITIALIZED: WARN %s %v\n", message, keyValues)
		return
	}
	instance.logMessage(LevelWarn, message, keyValues...)
}

// Error logs error messages.
func Error(message string, keyValues ...interface{}) {
	if instance == nil {
		fmt.Printf("LOGGING NOT INITIALIZED: ERROR %s %v\n", message, keyValues)
		return
	}
	instance.logMessage(LevelError, message, keyValues...)
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
)

// enableColors enables ANSI colors for Windows console
func enableColors() {
	if runtime.GOOS == "windows" {
		for _, stream := range []*os.File{os.Stdout, os.Stderr} {
			handle := windows.Handle(stream.Fd())
			var mode uint32
			if err := windows.GetConsoleMode(handle, &mode); err == nil {
				mode |= windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
				_ = windows.SetConsoleMode(handle, mode)
			}
		}
	}
}

// New creates a standalone console Logger instance for the CLI front end.
func New(verbose bool) *Logger {
	enableColors()

	output := os.Stdout
	if !verbose {
		output = os.Stderr
	}
	l := log.New(output, "", 0)
	return &Logger{
		logger:   l,
		logLevel: LevelInfo, // default log level
		logFile:  nil,       // no file logging for this instance
	}
}

// colorPrintf prints a colored message.
func (l *Logger) colorPrintf(color, format string, v ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ts := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, v...)
	l.logger.Printf("%s[%s] %s%s", color, ts, msg, colorReset)
}

// Printf prints a regular message.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ts := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, v...)
	l.logger.Printf("[%s] %s", ts, msg)
}

// Info prints an informational message (instance method counterpart to the package-level Info).
func (l *Logger) Info(format string, v ...interface{}) {
	l.Printf(format, v...)
}

// Success prints a success message in green.
func (l *Logger) Success(format string, v ...interface{}) {
	l.colorPrintf(colorGreen, format, v...)
}

// Error prints an error message in red.
func (l *Logger) Error(format string, v ...interface{}) {
	l.colorPrintf(colorRed, format, v...)
}

// Warning prints a warning message in yellow.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.colorPrintf(colorYellow, format, v...)
}

// Debug prints a debug message in blue.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.colorPrintf(colorBlue, format, v...)
}

// Fatal prints an error message in red and exits.
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.Error(format, v...)
	os.Exit(1)
}
