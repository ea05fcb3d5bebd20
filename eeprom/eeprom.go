// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package eeprom drives a 24-series serial EEPROM over I²C.
//
// The device is written and read one page at a time. Each transfer
// starts with an address pointer whose width depends on the page size
// of the part: one byte for 16 byte pages, two bytes (high byte first)
// otherwise. Writes are followed by a fixed sleep to let the internal
// program cycle finish before the next transfer addresses the part.
//
// The page size of the part on the bench is not known up front, so it
// can be detected at runtime by trial round-trips; see DetectPageSize.
//
// Datasheet (one of the parts the bench was verified with)
//
// https://www.st.com/resource/en/datasheet/m24c08-r.pdf
package eeprom // import "periph.io/x/eepromtest/eeprom"

import (
	"fmt"
	"strconv"
	"time"

	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/i2c"
)

// Supported page sizes, in bytes.
const (
	PageSize16 = 16
	PageSize32 = 32
	PageSize64 = 64

	// MaxPageSize bounds the transfer buffers.
	MaxPageSize = PageSize64
)

// Opts holds the device parameters.
type Opts struct {
	// Addr is the 7 bit device address.
	Addr uint16
	// PageSize is the page size in bytes. Zero means detect it at
	// runtime by trial round-trips.
	PageSize int
	// WriteDelay is how long the internal program cycle is given to
	// complete after a page write.
	WriteDelay time.Duration
}

// DefaultOpts matches the part on the test bench.
var DefaultOpts = Opts{
	Addr:       0x54,
	PageSize:   0,
	WriteDelay: 250 * time.Millisecond,
}

// New returns a device session for the EEPROM at opts.Addr.
//
// If opts.PageSize is zero the page size is detected first, which
// overwrites the first page of the part.
func New(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Addr == 0 || opts.Addr > 0x77 {
		return nil, fmt.Errorf("eeprom: invalid address %#02x", opts.Addr)
	}
	ps := opts.PageSize
	if ps == 0 {
		var err error
		if ps, err = DetectPageSize(b, opts.Addr, opts.WriteDelay); err != nil {
			return nil, err
		}
	} else if ps != PageSize16 && ps != PageSize32 && ps != PageSize64 {
		return nil, fmt.Errorf("eeprom: unsupported page size %d", ps)
	}
	return &Dev{
		c:          i2c.Dev{Bus: b, Addr: opts.Addr},
		pageSize:   ps,
		writeDelay: opts.WriteDelay,
	}, nil
}

// Dev is a handle to an EEPROM on a bus.
//
// It owns its transfer buffers; a Dev must not be used concurrently.
type Dev struct {
	c          i2c.Dev
	pageSize   int
	writeDelay time.Duration

	// wbuf holds the address pointer followed by the payload.
	wbuf [2 + MaxPageSize]byte
}

func (d *Dev) String() string {
	return "eeprom(" + d.c.Bus.String() + "/" + strconv.FormatUint(uint64(d.c.Addr), 16) + ")"
}

// Halt implements conn.Resource.
//
// There is no transfer in flight between calls, so there is nothing to
// stop.
func (d *Dev) Halt() error {
	return nil
}

// Addr returns the 7 bit device address.
func (d *Dev) Addr() uint16 {
	return d.c.Addr
}

// PageSize returns the page size in bytes.
func (d *Dev) PageSize() int {
	return d.pageSize
}

// WritePage writes data starting at memAddr.
//
// memAddr should be page aligned; the part wraps within the page
// otherwise. data must not exceed the page size.
func (d *Dev) WritePage(memAddr uint16, data []byte) error {
	if len(data) == 0 || len(data) > d.pageSize {
		return fmt.Errorf("eeprom: write of %d bytes exceeds page size %d", len(data), d.pageSize)
	}
	n := encodeAddr(d.wbuf[:], memAddr, d.pageSize)
	copy(d.wbuf[n:], data)
	if err := d.c.Tx(d.wbuf[:n+len(data)], nil); err != nil {
		return err
	}
	// The part does not acknowledge while programming.
	time.Sleep(d.writeDelay)
	return nil
}

// ReadPage reads len(buf) bytes starting at memAddr.
//
// The pointer is positioned with an address-only write, then the data
// is clocked out in a second transaction. A failure in either phase
// aborts the read.
func (d *Dev) ReadPage(memAddr uint16, buf []byte) error {
	if len(buf) == 0 || len(buf) > d.pageSize {
		return fmt.Errorf("eeprom: read of %d bytes exceeds page size %d", len(buf), d.pageSize)
	}
	n := encodeAddr(d.wbuf[:], memAddr, d.pageSize)
	if err := d.c.Tx(d.wbuf[:n], nil); err != nil {
		return err
	}
	return d.c.Tx(nil, buf)
}

// DetectPageSize determines the page size of the part at addr by trial
// round-trips, largest candidate first.
//
// Each trial writes a full page at address 0 and reads it back; the
// first size that round-trips byte-exact wins. The fill pattern is
// offset by the trial index so stale data from a previous, larger
// trial can't make a smaller size pass by accident.
//
// The first page of the part is overwritten.
func DetectPageSize(b i2c.Bus, addr uint16, delay time.Duration) (int, error) {
	c := i2c.Dev{Bus: b, Addr: addr}
	var wbuf [2 + MaxPageSize]byte
	var rbuf [MaxPageSize]byte
	for trial, ps := range pageSizes {
		n := encodeAddr(wbuf[:], 0, ps)
		for k := 0; k < ps; k++ {
			wbuf[n+k] = byte(k + trial)
			rbuf[k] = 0
		}
		if err := c.Tx(wbuf[:n+ps], nil); err != nil {
			return 0, err
		}
		time.Sleep(delay)
		if err := c.Tx(wbuf[:n], nil); err != nil {
			return 0, err
		}
		if err := c.Tx(nil, rbuf[:ps]); err != nil {
			return 0, err
		}
		match := 0
		for k := 0; k < ps; k++ {
			if rbuf[k] == byte(k+trial) {
				match++
			}
		}
		if match == ps {
			return ps, nil
		}
	}
	return 0, fmt.Errorf("eeprom: page size not detected at %#02x: read-back mismatched on every candidate size", addr)
}

// pageSizes are the detection candidates, largest first so a partial
// success at a larger size is rejected before a smaller size is tried.
var pageSizes = [...]int{PageSize64, PageSize32, PageSize16}

// encodeAddr writes the address pointer bytes into b and returns how
// many were written: 1 for 16 byte pages, 2 (big-endian) otherwise.
func encodeAddr(b []byte, memAddr uint16, pageSize int) int {
	if pageSize == PageSize16 {
		b[0] = byte(memAddr)
		return 1
	}
	b[0] = byte(memAddr >> 8)
	b[1] = byte(memAddr)
	return 2
}

var _ conn.Resource = &Dev{}
