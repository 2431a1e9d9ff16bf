package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOfUnwrapsCodes(t *testing.T) {
	if got := Of(nil); got != OK {
		t.Fatalf("Of(nil) = %q", got)
	}
	if got := Of(Timeout); got != Timeout {
		t.Fatalf("Of(Timeout) = %q", got)
	}
	e := &E{C: ChecksumMismatch, Op: "dht22"}
	if got := Of(fmt.Errorf("read: %w", e)); got != ChecksumMismatch {
		t.Fatalf("Of(wrapped E) = %q", got)
	}
	if got := Of(errors.New("boom")); got != Error {
		t.Fatalf("Of(plain) = %q", got)
	}
}

func TestEMatchesItsCode(t *testing.T) {
	cause := errors.New("nack")
	err := Wrap(BusError, "lm75", cause)
	if !errors.Is(err, BusError) {
		t.Fatal("errors.Is(err, BusError) = false")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
	if errors.Is(err, Timeout) {
		t.Fatal("E matched a different code")
	}
	if got, want := err.Error(), "lm75: bus_error: nack"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestMapDriverErr(t *testing.T) {
	if got := MapDriverErr(nil); got != OK {
		t.Fatalf("nil -> %q", got)
	}
	if got := MapDriverErr(errors.New("i2c: no ack")); got != BusError {
		t.Fatalf("plain -> %q", got)
	}
	if got := MapDriverErr(Timeout); got != Timeout {
		t.Fatalf("coded -> %q", got)
	}
}
