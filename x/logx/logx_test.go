//go:build !(rp2040 || rp2350)

package logx

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"trace": LevelTrace, "DEBUG": LevelDebug, "": LevelInfo,
		"warning": LevelWarn, "error": LevelError,
	} {
		got, ok := ParseLevel(in)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v,%v want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatal("ParseLevel accepted an unknown level")
	}
}

func TestHostLoggerFiltersAndCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo).With("component", "fusion")

	l.Debug("hidden")
	l.Info("fused average", "value", float32(21.5))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
	for _, want := range []string{"fused average", "component=fusion", "value=21.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestOrNop(t *testing.T) {
	l := OrNop(nil)
	l.Error("dropped")
	l.With("k", 1).Info("dropped")
}
