//go:build !(rp2040 || rp2350)

package logx

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

type hostLogger struct {
	entry *logrus.Entry
}

// New returns a logrus-backed logger writing text lines to w.
func New(w io.Writer, lvl Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(toLogrus(lvl))
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return &hostLogger{entry: logrus.NewEntry(l)}
}

func toLogrus(l Level) logrus.Level {
	switch l {
	case LevelTrace:
		return logrus.TraceLevel
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarn:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

func fields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			k = fmt.Sprint(kv[i])
		}
		f[k] = kv[i+1]
	}
	if len(kv)%2 == 1 {
		f["!extra"] = kv[len(kv)-1]
	}
	return f
}

func (h *hostLogger) log(lvl logrus.Level, msg string, kv []any) {
	if !h.entry.Logger.IsLevelEnabled(lvl) {
		return
	}
	h.entry.WithFields(fields(kv)).Log(lvl, msg)
}

func (h *hostLogger) Trace(msg string, kv ...any) { h.log(logrus.TraceLevel, msg, kv) }
func (h *hostLogger) Debug(msg string, kv ...any) { h.log(logrus.DebugLevel, msg, kv) }
func (h *hostLogger) Info(msg string, kv ...any)  { h.log(logrus.InfoLevel, msg, kv) }
func (h *hostLogger) Warn(msg string, kv ...any)  { h.log(logrus.WarnLevel, msg, kv) }
func (h *hostLogger) Error(msg string, kv ...any) { h.log(logrus.ErrorLevel, msg, kv) }

func (h *hostLogger) With(kv ...any) Logger {
	return &hostLogger{entry: h.entry.WithFields(fields(kv))}
}
