// Package sharedbus gives every tier exclusive, per-transaction access to the
// one I2C bus.
//
// A transaction runs inside an interrupt critical section, so no handler of
// any tier can enter while it is in flight. Transactions are short register
// reads; callers must not suspend inside one.
package sharedbus

import (
	"sync/atomic"

	"tinygo.org/x/drivers"

	"thermofuse-go/errcode"
	"thermofuse-go/irq"
)

// Masker runs f with interrupts masked. *irq.Controller implements it.
type Masker interface {
	CriticalSection(f func())
}

var _ Masker = (*irq.Controller)(nil)

// Stats counts transactions since construction.
type Stats struct {
	Transactions uint32
	Errors       uint32
}

// Arbiter owns the bus handle.
type Arbiter struct {
	name string
	bus  drivers.I2C
	cs   Masker

	txs  atomic.Uint32
	errs atomic.Uint32
}

// New wraps bus. name appears in error ops ("i2c0").
func New(name string, bus drivers.I2C, cs Masker) *Arbiter {
	return &Arbiter{name: name, bus: bus, cs: cs}
}

func (a *Arbiter) Name() string { return a.name }

// With runs f on the raw bus inside one critical section. f may issue
// several Tx calls that must not be interleaved with other users. Errors
// returned by f are mapped to a code; plain driver errors become BusError.
func (a *Arbiter) With(f func(bus drivers.I2C) error) error {
	if f == nil {
		return errcode.InvalidParams
	}
	var err error
	a.cs.CriticalSection(func() {
		err = f(a.bus)
	})
	a.txs.Add(1)
	if err == nil {
		return nil
	}
	a.errs.Add(1)
	if c := errcode.Of(err); c != errcode.Error {
		return err
	}
	return &errcode.E{C: errcode.MapDriverErr(err), Op: a.name, Err: err}
}

// Device returns a drivers.I2C whose every Tx is its own transaction. Hand
// it to drivers that know nothing about arbitration.
func (a *Arbiter) Device() drivers.I2C { return device{a} }

func (a *Arbiter) Stats() Stats {
	return Stats{Transactions: a.txs.Load(), Errors: a.errs.Load()}
}

type device struct{ a *Arbiter }

func (d device) Tx(addr uint16, w, r []byte) error {
	return d.a.With(func(bus drivers.I2C) error { return bus.Tx(addr, w, r) })
}
