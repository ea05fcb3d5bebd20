// Copyright 2019 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package probe detects whether a device acknowledges at an I²C address.
//
// It is the host-side equivalent of a bus controller's slave monitor
// mode: the bus is addressed without transferring any payload and the
// outcome of the addressing phase tells whether something is wired at
// that address.
package probe // import "periph.io/x/eepromtest/probe"

import (
	"errors"
	"time"

	"periph.io/x/periph/conn/i2c"
)

// ErrNoDevice is returned when nothing acknowledged at the address.
//
// It distinguishes an empty address from a broken bus, so a scan can
// keep going on the former and abort on the latter.
var ErrNoDevice = errors.New("probe: no device")

// Ping addresses the device once.
//
// An address-only transaction carries no payload; the device either
// acknowledges the addressing phase or the transaction fails.
func Ping(b i2c.Bus, addr uint16) error {
	if err := b.Tx(addr, nil, nil); err != nil {
		return ErrNoDevice
	}
	return nil
}

// Wait polls the address until the device acknowledges or the timeout
// passes.
//
// Some devices are deaf while an internal operation is in flight, so a
// single failed addressing is not proof of absence. The deadline
// replaces a fixed iteration count so the behavior doesn't depend on
// host speed.
func Wait(b i2c.Bus, addr uint16, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := Ping(b, addr); err == nil {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrNoDevice
		}
		time.Sleep(pollInterval)
	}
}

// pollInterval paces the retry loop; an EEPROM program cycle is in the
// low milliseconds so there is no point hammering the bus faster.
const pollInterval = 500 * time.Microsecond
