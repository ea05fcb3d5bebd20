// Copyright 2019 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mux controls a PCA954x style I²C multiplexer.
//
// The multiplexer routes the upstream bus to one of several downstream
// segments. The active segment is selected by writing a one byte
// bitmask to the device; a one byte readback confirms the control
// register took the value.
//
// Datasheet
//
// https://www.ti.com/lit/ds/symlink/pca9546a.pdf
package mux // import "periph.io/x/eepromtest/mux"

import (
	"strconv"

	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/i2c"
)

// DefaultAddr is the base address of PCA954x devices with all address
// pins grounded, as wired on the test bench.
const DefaultAddr uint16 = 0x74

// Dev is a handle to a multiplexer on an upstream bus.
type Dev struct {
	c i2c.Dev
}

// New returns a handle to the multiplexer at addr.
//
// No transaction is performed; use probe.Ping to check presence first.
func New(b i2c.Bus, addr uint16) *Dev {
	return &Dev{c: i2c.Dev{Bus: b, Addr: addr}}
}

func (d *Dev) String() string {
	return "mux(" + d.c.Bus.String() + "/" + strconv.FormatUint(uint64(d.c.Addr), 16) + ")"
}

// Halt deselects all downstream segments.
func (d *Dev) Halt() error {
	return d.Select(0)
}

// Select makes the segments set in mask the active ones.
//
// The write and the readback are two separate transactions; the
// control register is read back so a device that acknowledged the
// write but did not latch it is caught here rather than by a confusing
// downstream probe failure.
func (d *Dev) Select(mask byte) error {
	if err := d.c.Tx([]byte{mask}, nil); err != nil {
		return err
	}
	var rb [1]byte
	return d.c.Tx(nil, rb[:])
}

// Channels returns the channel masks to try, highest first.
//
// Scanning from the highest single-channel mask downward matches the
// wiring convention of the bench where the EEPROM sits on one of the
// upper segments.
func Channels(max byte) []byte {
	var out []byte
	for m := max; m > 0; m >>= 1 {
		out = append(out, m)
	}
	return out
}

var _ conn.Resource = &Dev{}
