//go:build rp2040 || rp2350

package logx

import (
	"io"
	"sync"

	"thermofuse-go/x/conv"
)

type mcuLogger struct {
	out *mcuOutput
	min Level
	kv  []any
}

type mcuOutput struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

// New returns a logger printing "Level: msg k=v" lines to w.
func New(w io.Writer, lvl Level) Logger {
	return &mcuLogger{out: &mcuOutput{w: w, buf: make([]byte, 0, 128)}, min: lvl}
}

func (m *mcuLogger) log(lvl Level, msg string, kv []any) {
	if lvl < m.min {
		return
	}
	o := m.out
	o.mu.Lock()
	b := o.buf[:0]
	b = append(b, lvl.String()...)
	b = append(b, ": "...)
	b = append(b, msg...)
	b = appendPairs(b, m.kv)
	b = appendPairs(b, kv)
	b = append(b, '\r', '\n')
	_, _ = o.w.Write(b)
	o.buf = b
	o.mu.Unlock()
}

func appendPairs(b []byte, kv []any) []byte {
	for i := 0; i < len(kv); i += 2 {
		b = append(b, ' ')
		b = appendValue(b, kv[i])
		if i+1 < len(kv) {
			b = append(b, '=')
			b = appendValue(b, kv[i+1])
		}
	}
	return b
}

func appendValue(b []byte, v any) []byte {
	var tmp [24]byte
	switch x := v.(type) {
	case string:
		return append(b, x...)
	case int:
		return append(b, conv.Itoa(tmp[:], int64(x))...)
	case int32:
		return append(b, conv.Itoa(tmp[:], int64(x))...)
	case int64:
		return append(b, conv.Itoa(tmp[:], x)...)
	case uint8:
		return append(b, conv.Utoa(tmp[:], uint64(x))...)
	case uint16:
		return append(b, conv.Utoa(tmp[:], uint64(x))...)
	case uint32:
		return append(b, conv.Utoa(tmp[:], uint64(x))...)
	case uint64:
		return append(b, conv.Utoa(tmp[:], x)...)
	case float32:
		return conv.AppendFixed(b, float64(x), 2)
	case float64:
		return conv.AppendFixed(b, x, 2)
	case bool:
		if x {
			return append(b, "true"...)
		}
		return append(b, "false"...)
	case error:
		return append(b, x.Error()...)
	case interface{ String() string }:
		return append(b, x.String()...)
	case nil:
		return append(b, "nil"...)
	default:
		return append(b, '?')
	}
}

func (m *mcuLogger) Trace(msg string, kv ...any) { m.log(LevelTrace, msg, kv) }
func (m *mcuLogger) Debug(msg string, kv ...any) { m.log(LevelDebug, msg, kv) }
func (m *mcuLogger) Info(msg string, kv ...any)  { m.log(LevelInfo, msg, kv) }
func (m *mcuLogger) Warn(msg string, kv ...any)  { m.log(LevelWarn, msg, kv) }
func (m *mcuLogger) Error(msg string, kv ...any) { m.log(LevelError, msg, kv) }

func (m *mcuLogger) With(kv ...any) Logger {
	return &mcuLogger{out: m.out, min: m.min, kv: join(m.kv, kv)}
}
