package logger

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("rentalhub")

var stdoutLogFormat = logging.MustStringFormatter(
	`%{color:reset}%{color}%{time:15:04:05.000} [%{shortfunc}] [%{level}] %{message}`,
)

var fileLogFormat = logging.MustStringFormatter(
	`%{time:2006-01-02 15:04:05.000} [%{shortfunc}] [%{level}] %{message}`,
)

func init() {
	// the package-level helpers add one frame between the caller and go-logging
	log.ExtraCalldepth = 1
	setBackends(logging.INFO, backendFor(os.Stdout, stdoutLogFormat))
}

// Setup configures the process-wide level and, when filename is set, a
// size-rotated log file next to stdout.
func Setup(level, filename string) error {
	lvl := logging.INFO
	if level != "" {
		parsed, err := logging.LogLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}

	backends := []logging.Backend{backendFor(os.Stdout, stdoutLogFormat)}
	if filename != "" {
		w := &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		}
		backends = append(backends, backendFor(w, fileLogFormat))
	}
	setBackends(lvl, backends...)
	return nil
}

// SetOutput routes all log output to w. Used by tests.
func SetOutput(w io.Writer, level logging.Level) {
	setBackends(level, backendFor(w, fileLogFormat))
}

func backendFor(w io.Writer, format logging.Formatter) logging.Backend {
	return logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), format)
}

func setBackends(level logging.Level, backends ...logging.Backend) {
	leveled := logging.AddModuleLevel(logging.MultiLogger(backends...))
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
}

func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warningf(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}
