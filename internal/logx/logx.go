// Package logx writes one JSON object per log line.
package logx

import (
	"encoding/json"
	"io"
	"log"
	"time"
)

type Fields map[string]any

// JSON writes payload as a single JSON line, adding ts when missing.
func JSON(logger *log.Logger, payload Fields) {
	if logger == nil {
		return
	}
	if _, ok := payload["ts"]; !ok {
		payload["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		logger.Printf(`{"level":"error","msg":"log_marshal_failed","error":%q}`, err.Error())
		return
	}
	logger.Print(string(b))
}

func Info(logger *log.Logger, msg string, fields Fields) {
	emit(logger, "info", msg, fields)
}

func Warn(logger *log.Logger, msg string, fields Fields) {
	emit(logger, "warn", msg, fields)
}

func Error(logger *log.Logger, msg string, err error, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	emit(logger, "error", msg, fields)
}

func emit(logger *log.Logger, level, msg string, fields Fields) {
	payload := Fields{"level": level, "msg": msg}
	for k, v := range fields {
		payload[k] = v
	}
	JSON(logger, payload)
}

// Discard is a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
