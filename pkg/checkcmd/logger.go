package checkcmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/kdar/factorlog"
)

// define all available log levels.
const (
	// LogVerbosityNone disables logging.
	LogVerbosityNone = 0

	// LogVerbosityDefault sets the default log level.
	LogVerbosityDefault = 1

	// LogVerbosityDebug sets the debug log level.
	LogVerbosityDebug = 2

	// LogVerbosityTrace sets trace log level.
	LogVerbosityTrace = 3
)

var (
	DateTimeLogFormat = `[%{Date} %{Time "15:04:05.000"}]`
	LogFormat         = `[%{Severity}][pid:%{Pid}][%{ShortFile}:%{Line}] %{Message}`

	// plugin stdout is reserved for the check result, logs go to stderr
	log = factorlog.New(os.Stderr, BuildFormatter(DateTimeLogFormat+LogFormat))
)

// SetLogLevel adjusts the logger, level is one of: off, error, info, debug, trace.
func SetLogLevel(level string) {
	switch strings.ToLower(level) {
	case "off":
		log.SetMinMaxSeverity(factorlog.StringToSeverity("PANIC"), factorlog.StringToSeverity("PANIC"))
		log.SetVerbosity(LogVerbosityNone)
	case "error", "info":
		log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		log.SetVerbosity(LogVerbosityDefault)
	case "debug":
		log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		log.SetVerbosity(LogVerbosityDebug)
	case "trace":
		log.SetMinMaxSeverity(factorlog.StringToSeverity(strings.ToUpper(level)), factorlog.StringToSeverity("PANIC"))
		log.SetVerbosity(LogVerbosityTrace)
	case "":
	default:
		log.Errorf("unknown log level: %s", level)
	}
}

func BuildFormatter(format string) *factorlog.StdFormatter {
	format = strings.ReplaceAll(format, "%{Pid}", fmt.Sprintf("%d", os.Getpid()))

	return factorlog.NewStdFormatter(format)
}

// LogError logs an error unless it is nil.
func LogError(err error) {
	if err != nil {
		logErr := log.Output(factorlog.ERROR, 2, err.Error())
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "failed to log: %s (%s)\n", err.Error(), logErr.Error())
		}
	}
}

// LogDebug logs an error with debug level unless it is nil.
func LogDebug(err error) {
	if err != nil {
		logErr := log.Output(factorlog.DEBUG, 2, err.Error())
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "failed to log: %s (%s)\n", err.Error(), logErr.Error())
		}
	}
}
