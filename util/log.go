package util

import (
	"io"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	umcontext "github.com/keystrand/usermeta/server/context"
)

type LogSource string

const (
	HTTPSource   LogSource = "HTTP"
	SystemSource LogSource = "SYSTEM"
)

// InitLog parses and sets log-level input
func InitLog(logLevel string, logPath string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.Errorf("Failed parsing log-level %s: %s", logLevel, err)
		return err
	}

	if logPath != "" && logPath != "console" {
		lumberjackLogger := &lumberjack.Logger{
			// Log file absolute path, os agnostic
			Filename:   filepath.ToSlash(logPath),
			MaxSize:    5, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		}
		log.SetOutput(io.Writer(lumberjackLogger))
	}

	log.SetFormatter(&CustomFormatter{})
	log.SetLevel(level)
	return nil
}

// CustomFormatter formats the log message as required
type CustomFormatter struct {
	log.TextFormatter
}

func (f *CustomFormatter) Format(entry *log.Entry) ([]byte, error) {
	if entry.Context == nil {
		return f.TextFormatter.Format(entry)
	}

	source, ok := entry.Context.Value(umcontext.LogSourceKey).(LogSource)
	if !ok {
		return f.TextFormatter.Format(entry)
	}

	switch source {
	case HTTPSource, SystemSource:
		return f.formatRequestLog(entry)
	default:
		return f.TextFormatter.Format(entry)
	}
}

func (f *CustomFormatter) formatRequestLog(entry *log.Entry) ([]byte, error) {
	if ctxReqID, ok := entry.Context.Value(umcontext.RequestIDKey).(string); ok {
		entry.Data["requestID"] = ctxReqID
	}
	if ctxInitiatorID, ok := entry.Context.Value(umcontext.InitiatorIDKey).(string); ok {
		entry.Data["initiatorID"] = ctxInitiatorID
	}

	return f.TextFormatter.Format(entry)
}
