// Package simbus is a software I2C bus with register models of the parts the
// firmware talks to. The host board and tests use it in place of hardware.
package simbus

import (
	"sync"

	"thermofuse-go/errcode"
)

// Target is one device on the bus. Write receives the bytes after the
// address (register pointer first); Read fills r from the current pointer.
type Target interface {
	Write(w []byte)
	Read(r []byte)
}

// Bus routes transactions by address. Unknown addresses NACK.
type Bus struct {
	mu      sync.Mutex
	targets map[uint16]Target
	fail    map[uint16]int // remaining forced NACKs
	txs     int
}

func New() *Bus {
	return &Bus{targets: map[uint16]Target{}, fail: map[uint16]int{}}
}

func (b *Bus) Attach(addr uint16, t Target) {
	b.mu.Lock()
	b.targets[addr] = t
	b.mu.Unlock()
}

func (b *Bus) Detach(addr uint16) {
	b.mu.Lock()
	delete(b.targets, addr)
	b.mu.Unlock()
}

// FailNext makes the next n transactions to addr NACK.
func (b *Bus) FailNext(addr uint16, n int) {
	b.mu.Lock()
	b.fail[addr] = n
	b.mu.Unlock()
}

// Transactions counts every Tx call.
func (b *Bus) Transactions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.txs
}

// Tx implements drivers.I2C: an optional write then a repeated-start read.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txs++
	t, ok := b.targets[addr]
	if !ok {
		return &errcode.E{C: errcode.BusError, Op: "simbus", Msg: "nack"}
	}
	if n := b.fail[addr]; n > 0 {
		b.fail[addr] = n - 1
		return &errcode.E{C: errcode.BusError, Op: "simbus", Msg: "nack"}
	}
	if len(w) > 0 {
		t.Write(w)
	}
	if len(r) > 0 {
		t.Read(r)
	}
	return nil
}

// ByteFile is a 256-byte register file with an auto-incrementing pointer,
// the layout of the DS3231 and BME280.
type ByteFile struct {
	mu  sync.Mutex
	mem [256]byte
	ptr byte
}

func (f *ByteFile) Write(w []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ptr = w[0]
	for _, v := range w[1:] {
		f.mem[f.ptr] = v
		f.ptr++
	}
}

func (f *ByteFile) Read(r []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range r {
		r[i] = f.mem[f.ptr]
		f.ptr++
	}
}

// Poke sets registers starting at reg.
func (f *ByteFile) Poke(reg byte, v ...byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range v {
		f.mem[reg+byte(i)] = b
	}
}

// Peek reads one register without moving the pointer.
func (f *ByteFile) Peek(reg byte) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mem[reg]
}
