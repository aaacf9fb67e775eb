package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

type LogLevel int

type Logger struct {
	Writer io.Writer
	Level  LogLevel
}

// Levels are ordered by severity. Notice and Success sit between info and warn
// so that build milestones remain visible when running with "info".
const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelNotice
	LogLevelSuccess
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

var (
	current       atomic.Value
	defaultLogger = Logger{
		Writer: os.Stderr,
		Level:  LogLevelInfo,
	}

	// writeMutex serializes writes, so that concurrent lines are never interleaved.
	writeMutex sync.Mutex
)

func init() {
	current.Store(defaultLogger)
}

// ParseLevel converts a level name to a LogLevel.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "notice":
		return LogLevelNotice, nil
	case "success":
		return LogLevelSuccess, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "fatal":
		return LogLevelFatal, nil
	}

	return LogLevelInfo, fmt.Errorf("%q is not a valid log level", level)
}

// SetLevel changes the level of the global logger. Invalid levels are fatal.
func SetLevel(level string) {
	lvl, err := ParseLevel(level)
	if err != nil {
		Fatalf("%v", err)
		return
	}

	log := Get()
	if log.Level == lvl {
		return
	}

	log.Level = lvl
	current.Store(log)
	Debugf("Log level set to %s", log.Level)
}

// SetWriter redirects the output of the global logger.
func SetWriter(w io.Writer) {
	log := Get()
	log.Writer = w
	current.Store(log)
}

// LogLevelStyle returns the style of the prefix for each log level.
func (l LogLevel) LogLevelStyle() pterm.Style {
	switch l {
	case LogLevelDebug:
		return pterm.Style{pterm.FgBlack, pterm.BgGray}
	case LogLevelInfo:
		return pterm.Style{pterm.FgBlack, pterm.BgCyan}
	case LogLevelNotice:
		return pterm.Style{pterm.FgBlack, pterm.BgMagenta}
	case LogLevelSuccess:
		return pterm.Style{pterm.FgBlack, pterm.BgGreen}
	case LogLevelWarn:
		return pterm.Style{pterm.FgBlack, pterm.BgYellow}
	case LogLevelError, LogLevelFatal:
		return pterm.Style{pterm.FgBlack, pterm.BgLightRed}
	default:
		return pterm.Style{pterm.FgDefault, pterm.BgDefault}
	}
}

// MessageStyle returns the style of the message for each log level.
func (l LogLevel) MessageStyle() pterm.Style {
	switch l {
	case LogLevelDebug:
		return pterm.Style{pterm.FgGray}
	case LogLevelInfo:
		return pterm.Style{pterm.FgDefault}
	case LogLevelNotice:
		return pterm.Style{pterm.FgLightMagenta}
	case LogLevelSuccess:
		return pterm.Style{pterm.FgLightGreen, pterm.Bold}
	case LogLevelWarn:
		return pterm.Style{pterm.FgYellow}
	case LogLevelError, LogLevelFatal:
		return pterm.Style{pterm.FgLightRed}
	default:
		return pterm.Style{pterm.FgDefault, pterm.BgDefault}
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelNotice:
		return "NOTICE"
	case LogLevelSuccess:
		return "SUCCESS"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelFatal:
		return "FATAL"
	}
	return "Unknown"
}

// CanPrint checks if the logger can print a specific log level.
func (l Logger) CanPrint(level LogLevel) bool {
	return l.Level <= level
}

func (l Logger) log(level LogLevel, msg string) {
	if !l.CanPrint(level) {
		return
	}

	line := pterm.Gray(time.Now().Format("15:04:05")) + " "
	line += level.LogLevelStyle().Sprintf(" %-7s ", level.String()) + " "
	line += level.MessageStyle().Sprint(msg)

	writeMutex.Lock()
	defer writeMutex.Unlock()

	_, _ = l.Writer.Write([]byte(line + "\n"))
}

func Get() Logger {
	l, ok := current.Load().(Logger)
	if !ok {
		panic("invalid logger")
	}
	return l
}

func Debugf(msg string, args ...any) {
	Get().log(LogLevelDebug, fmt.Sprintf(msg, args...))
}

func Infof(msg string, args ...any) {
	Get().log(LogLevelInfo, fmt.Sprintf(msg, args...))
}

// Noticef logs a build milestone, such as the start of a component build.
func Noticef(msg string, args ...any) {
	Get().log(LogLevelNotice, fmt.Sprintf(msg, args...))
}

// Successf logs a completed step.
func Successf(msg string, args ...any) {
	Get().log(LogLevelSuccess, fmt.Sprintf(msg, args...))
}

func Warnf(msg string, args ...any) {
	Get().log(LogLevelWarn, fmt.Sprintf(msg, args...))
}

func Errorf(msg string, args ...any) {
	Get().log(LogLevelError, fmt.Sprintf(msg, args...))
}

func Fatalf(msg string, args ...any) {
	l := Get()
	l.log(LogLevelFatal, fmt.Sprintf(msg, args...))
	if l.CanPrint(LogLevelFatal) {
		os.Exit(1)
	}
}
