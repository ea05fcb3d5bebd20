// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bench emulates the I²C test bench in memory.
//
// It provides an i2c.Bus populated with serial EEPROM and multiplexer
// models so discovery and self-test logic can be exercised without
// hardware. The models implement the transaction-visible behavior of
// the real parts: address-only presence acknowledgment, pointer write
// followed by sequential read, page-boundary wrap on writes, and
// channel gating on the multiplexer.
package bench // import "periph.io/x/eepromtest/bench"

import (
	"fmt"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/physic"
)

// Device is a part wired on the emulated bus.
//
// Tx receives the payload of a transaction already addressed at the
// device. Both w and r empty is an address-only presence ping.
type Device interface {
	Tx(w, r []byte) error
}

// Bus is an in-memory i2c.Bus.
type Bus struct {
	name   string
	speed  physic.Frequency
	direct map[uint16]Device
	muxes  map[uint16]*Mux
}

// NewBus returns an empty emulated bus.
func NewBus(name string) *Bus {
	return &Bus{
		name:   name,
		direct: map[uint16]Device{},
		muxes:  map[uint16]*Mux{},
	}
}

func (b *Bus) String() string {
	return b.name
}

// SetSpeed implements i2c.Bus. The emulation has no clock; the value is
// recorded so tests can assert it was configured.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	b.speed = f
	return nil
}

// Speed returns the last configured clock rate.
func (b *Bus) Speed() physic.Frequency {
	return b.speed
}

// Add wires a device directly on the bus.
func (b *Bus) Add(addr uint16, d Device) {
	b.direct[addr] = d
}

// AddMux wires a multiplexer on the bus at its address.
func (b *Bus) AddMux(m *Mux) {
	b.muxes[m.addr] = m
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if d, ok := b.direct[addr]; ok {
		return d.Tx(w, r)
	}
	if m, ok := b.muxes[addr]; ok {
		return m.control(w, r)
	}
	for _, m := range b.muxes {
		if d := m.active(addr); d != nil {
			return d.Tx(w, r)
		}
	}
	return fmt.Errorf("bench: no device at %#02x on %s", addr, b.name)
}

var _ i2c.Bus = &Bus{}

// Mux models a PCA954x style multiplexer.
//
// Parts behind it are only reachable while their channel bit is set in
// the control register.
type Mux struct {
	addr uint16
	mask byte
	segs map[byte]map[uint16]Device
}

// NewMux returns a multiplexer model at addr with no channel selected.
func NewMux(addr uint16) *Mux {
	return &Mux{addr: addr, segs: map[byte]map[uint16]Device{}}
}

// Add wires a device at addr on the segment selected by channel, a
// single-bit mask.
func (m *Mux) Add(channel byte, addr uint16, d Device) {
	if m.segs[channel] == nil {
		m.segs[channel] = map[uint16]Device{}
	}
	m.segs[channel][addr] = d
}

// control handles transactions addressed at the multiplexer itself: a
// one byte write latches the channel mask, a one byte read returns it.
func (m *Mux) control(w, r []byte) error {
	if len(w) > 1 || len(r) > 1 {
		return fmt.Errorf("bench: mux control transfer of %d/%d bytes", len(w), len(r))
	}
	if len(w) == 1 {
		m.mask = w[0]
	}
	if len(r) == 1 {
		r[0] = m.mask
	}
	return nil
}

// active returns the device at addr on a currently selected segment.
func (m *Mux) active(addr uint16) Device {
	for channel, seg := range m.segs {
		if channel&m.mask == 0 {
			continue
		}
		if d, ok := seg[addr]; ok {
			return d
		}
	}
	return nil
}

// EEPROM models a 24-series serial EEPROM.
//
// Writes wrap at the page boundary, reads are sequential across the
// whole array, and the address pointer width follows the page size the
// way the real parts do: one byte for 16 byte pages, two bytes
// otherwise.
type EEPROM struct {
	pageSize int
	ptr      int
	mem      []byte
}

// NewEEPROM returns an EEPROM model of size bytes with the given page
// size. size must be a multiple of pageSize.
func NewEEPROM(pageSize, size int) *EEPROM {
	if size%pageSize != 0 {
		panic("bench: size must be a multiple of the page size")
	}
	e := &EEPROM{pageSize: pageSize, mem: make([]byte, size)}
	for i := range e.mem {
		e.mem[i] = 0xA5 // factory-fresh parts hold anything but the test fill
	}
	return e
}

// Mem exposes the backing array for assertions.
func (e *EEPROM) Mem() []byte {
	return e.mem
}

// PageSize returns the modeled page size in bytes.
func (e *EEPROM) PageSize() int {
	return e.pageSize
}

// Tx implements Device.
func (e *EEPROM) Tx(w, r []byte) error {
	if len(w) > 0 {
		n := 2
		if e.pageSize == 16 {
			n = 1
		}
		if len(w) < n {
			return fmt.Errorf("bench: short address pointer of %d bytes", len(w))
		}
		if n == 1 {
			e.ptr = int(w[0])
		} else {
			e.ptr = int(w[0])<<8 | int(w[1])
		}
		e.ptr %= len(e.mem)
		// Payload bytes wrap within the addressed page.
		base := e.ptr &^ (e.pageSize - 1)
		off := e.ptr & (e.pageSize - 1)
		for _, c := range w[n:] {
			e.mem[base+off] = c
			off = (off + 1) & (e.pageSize - 1)
		}
	}
	for i := range r {
		r[i] = e.mem[e.ptr]
		e.ptr = (e.ptr + 1) % len(e.mem)
	}
	return nil
}
