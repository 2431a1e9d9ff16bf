package simbus

import (
	"testing"

	"thermofuse-go/drivers/lm75"
	"thermofuse-go/errcode"
)

func TestUnknownAddressNacks(t *testing.T) {
	b := New()
	if err := b.Tx(0x50, []byte{0}, make([]byte, 1)); errcode.Of(err) != errcode.BusError {
		t.Fatalf("err = %v", err)
	}
}

func TestFailNext(t *testing.T) {
	b := New()
	b.Attach(0x68, NewDS3231())
	b.FailNext(0x68, 1)
	if err := b.Tx(0x68, []byte{0x11}, make([]byte, 2)); err == nil {
		t.Fatal("forced failure did not happen")
	}
	if err := b.Tx(0x68, []byte{0x11}, make([]byte, 2)); err != nil {
		t.Fatal(err)
	}
	if b.Transactions() != 2 {
		t.Fatalf("txs = %d", b.Transactions())
	}
}

func TestLM75ModelWithDriver(t *testing.T) {
	b := New()
	m := NewLM75(lm75.Res11Bit)
	m.SetTemperature(23.125)
	b.Attach(lm75.Address, m)

	d := lm75.NewPCT2075(b)
	if err := d.Disable(); err != nil || !m.Shutdown() {
		t.Fatalf("disable: %v", err)
	}
	if err := d.Enable(); err != nil || m.Shutdown() {
		t.Fatalf("enable: %v", err)
	}
	c, err := d.ReadCelsius()
	if err != nil || c != 23.125 {
		t.Fatalf("c = %v, err = %v", c, err)
	}
}

func TestDS3231Encoding(t *testing.T) {
	d := NewDS3231()
	d.SetTemperature(-1.25)
	if d.Peek(0x11) != 0xFE || d.Peek(0x12) != 0xC0 {
		t.Fatalf("regs = %#x %#x", d.Peek(0x11), d.Peek(0x12))
	}
	d.SetTemperature(25.5)
	if d.Peek(0x11) != 25 || d.Peek(0x12) != 0x80 {
		t.Fatalf("regs = %#x %#x", d.Peek(0x11), d.Peek(0x12))
	}
	if d.Running() {
		t.Fatal("oscillator running at power-up")
	}
}

func TestBME280Compensation(t *testing.T) {
	if got := compensate(519888); got != 2508 {
		t.Fatalf("datasheet example = %d, want 2508", got)
	}
	d := NewBME280()
	d.SetTemperature(21.5)
	raw := (int32(d.Peek(0xFA))<<16 | int32(d.Peek(0xFB))<<8 | int32(d.Peek(0xFC))) >> 4
	if got := compensate(raw); got != 2150 {
		t.Fatalf("round trip = %d", got)
	}
	if d.Peek(0xD0) != 0x60 {
		t.Fatal("chip id")
	}
}
