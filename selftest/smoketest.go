// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package selftest

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"periph.io/x/eepromtest/locate"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
)

// SmokeTest is imported by test harnesses that aggregate hardware
// smoke tests.
type SmokeTest struct {
}

// Name implements the SmokeTest interface.
func (s *SmokeTest) Name() string {
	return "eeprom"
}

// Description implements the SmokeTest interface.
func (s *SmokeTest) Description() string {
	return "Discovers a serial EEPROM and verifies 256 page writes"
}

// Run implements the SmokeTest interface.
func (s *SmokeTest) Run(f *flag.FlagSet, args []string) error {
	busName := f.String("bus", "", "I²C bus to use, all registered buses when empty")
	pages := f.Int("pages", DefaultPages, "number of page slots to exercise")
	delay := f.Duration("delay", 250*time.Millisecond, "EEPROM program cycle delay")
	speed := f.Int("speed", 100, "bus clock in kHz")
	if err := f.Parse(args); err != nil {
		return err
	}
	if f.NArg() != 0 {
		f.Usage()
		return errors.New("unrecognized arguments")
	}

	opts := locate.Options{
		Speed:      physic.Frequency(*speed) * physic.KiloHertz,
		WriteDelay: *delay,
	}
	var found *locate.Found
	var err error
	if *busName == "" {
		found, err = locate.FirstRegistered(&opts)
	} else {
		b, err2 := i2creg.Open(*busName)
		if err2 != nil {
			return err2
		}
		defer b.Close()
		found, err = locate.First([]i2c.Bus{b}, &opts)
	}
	if err != nil {
		return err
	}
	fmt.Printf("found %s, page size %d\n", found.Dev, found.Dev.PageSize())
	return Run(found.Dev, *pages, nil)
}
