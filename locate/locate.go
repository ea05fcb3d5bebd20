// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package locate discovers a serial EEPROM on the host's I²C buses.
//
// The search walks every bus, first through any multiplexer found on
// it (every candidate address on every channel, highest channel
// first), then directly on the bus. The first acknowledging candidate
// wins and its page size is detected before it is returned, so callers
// always get a device session ready for page transfers.
package locate // import "periph.io/x/eepromtest/locate"

import (
	"errors"
	"time"

	"periph.io/x/eepromtest/eeprom"
	"periph.io/x/eepromtest/mux"
	"periph.io/x/eepromtest/probe"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
)

// ErrNotFound is returned when the whole search space was exhausted
// without a device acknowledging.
var ErrNotFound = errors.New("locate: no EEPROM found")

// Options tunes the search. The zero value of each field falls back to
// the bench defaults.
type Options struct {
	// EEPROMAddrs are the candidate device addresses, in probing order.
	EEPROMAddrs []uint16
	// MuxAddrs are the multiplexer addresses to try, in probing order.
	MuxAddrs []uint16
	// MaxChannel is the highest multiplexer channel mask; channels are
	// tried from it downward as single-bit masks.
	MaxChannel byte
	// Speed is the bus clock rate configured before probing.
	Speed physic.Frequency
	// ProbeTimeout bounds each presence poll.
	ProbeTimeout time.Duration
	// WriteDelay is handed to the device session for program cycles.
	WriteDelay time.Duration
}

// DefaultOptions matches the test bench wiring.
var DefaultOptions = Options{
	EEPROMAddrs:  []uint16{0x54, 0x55},
	MuxAddrs:     []uint16{mux.DefaultAddr},
	MaxChannel:   0x04,
	Speed:        100 * physic.KiloHertz,
	ProbeTimeout: 100 * time.Millisecond,
	WriteDelay:   250 * time.Millisecond,
}

// Found is the outcome of a successful search.
type Found struct {
	// Bus is the bus the device acknowledged on, with the multiplexer
	// (if any) still routing to it.
	Bus i2c.Bus
	// Dev is the device session, page size already detected.
	Dev *eeprom.Dev
}

// First returns the first EEPROM acknowledging on any of the buses.
//
// Buses are searched in order; on each bus the multiplexed paths are
// exhausted before the direct path is tried.
func First(buses []i2c.Bus, opts *Options) (*Found, error) {
	o := fill(opts)
	for _, b := range buses {
		if err := b.SetSpeed(o.Speed); err != nil {
			return nil, err
		}
		if f, err := searchMuxed(b, &o); err == nil {
			return f, nil
		} else if err != ErrNotFound {
			return nil, err
		}
		if f, err := searchDirect(b, &o); err == nil {
			return f, nil
		} else if err != ErrNotFound {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

// FirstRegistered searches every bus known to the host registry.
func FirstRegistered(opts *Options) (*Found, error) {
	var buses []i2c.Bus
	for _, ref := range i2creg.All() {
		b, err := ref.Open()
		if err != nil {
			continue
		}
		buses = append(buses, b)
	}
	if len(buses) == 0 {
		return nil, errors.New("locate: no I²C bus registered")
	}
	return First(buses, opts)
}

// searchMuxed probes every candidate on every channel of every
// multiplexer present on b.
func searchMuxed(b i2c.Bus, o *Options) (*Found, error) {
	for _, ma := range o.MuxAddrs {
		if probe.Wait(b, ma, o.ProbeTimeout) != nil {
			continue
		}
		m := mux.New(b, ma)
		for _, ea := range o.EEPROMAddrs {
			for _, channel := range mux.Channels(o.MaxChannel) {
				if err := m.Select(channel); err != nil {
					return nil, err
				}
				if probe.Wait(b, ea, o.ProbeTimeout) != nil {
					continue
				}
				return open(b, ea, o)
			}
		}
	}
	return nil, ErrNotFound
}

// searchDirect probes every candidate without a multiplexer in the
// path.
func searchDirect(b i2c.Bus, o *Options) (*Found, error) {
	for _, ea := range o.EEPROMAddrs {
		if probe.Wait(b, ea, o.ProbeTimeout) != nil {
			continue
		}
		return open(b, ea, o)
	}
	return nil, ErrNotFound
}

// open builds the device session; the page size is always detected, on
// the direct path as much as behind a multiplexer.
func open(b i2c.Bus, addr uint16, o *Options) (*Found, error) {
	d, err := eeprom.New(b, &eeprom.Opts{Addr: addr, WriteDelay: o.WriteDelay})
	if err != nil {
		return nil, err
	}
	return &Found{Bus: b, Dev: d}, nil
}

// fill copies opts with bench defaults in place of zero fields.
func fill(opts *Options) Options {
	o := DefaultOptions
	if opts != nil {
		if len(opts.EEPROMAddrs) != 0 {
			o.EEPROMAddrs = opts.EEPROMAddrs
		}
		if len(opts.MuxAddrs) != 0 {
			o.MuxAddrs = opts.MuxAddrs
		}
		if opts.MaxChannel != 0 {
			o.MaxChannel = opts.MaxChannel
		}
		if opts.Speed != 0 {
			o.Speed = opts.Speed
		}
		if opts.ProbeTimeout != 0 {
			o.ProbeTimeout = opts.ProbeTimeout
		}
		if opts.WriteDelay != 0 {
			o.WriteDelay = opts.WriteDelay
		}
	}
	return o
}
