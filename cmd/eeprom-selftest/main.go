// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// eeprom-selftest discovers a serial EEPROM on the host's I²C buses and
// exercises it by writing and verifying 256 pages.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"periph.io/x/eepromtest/locate"
	"periph.io/x/eepromtest/pagemap"
	"periph.io/x/eepromtest/selftest"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

func parseAddrs(s string) ([]uint16, error) {
	if s == "" {
		return nil, nil
	}
	var out []uint16
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 0, 16)
		if err != nil {
			return nil, err
		}
		out = append(out, uint16(v))
	}
	return out, nil
}

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to search; all registered buses when empty")
	addrs := flag.String("addrs", "", "comma separated candidate EEPROM addresses, e.g. 0x54,0x55")
	muxAddrs := flag.String("muxaddrs", "", "comma separated multiplexer addresses, e.g. 0x74")
	speed := flag.Int("speed", 100, "bus clock in kHz")
	delay := flag.Duration("delay", 250*time.Millisecond, "EEPROM program cycle delay")
	pages := flag.Int("pages", selftest.DefaultPages, "number of page slots to exercise")
	quiet := flag.Bool("quiet", false, "do not draw the page map")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	if _, err := host.Init(); err != nil {
		return err
	}

	opts := locate.DefaultOptions
	opts.Speed = physic.Frequency(*speed) * physic.KiloHertz
	opts.WriteDelay = *delay
	eaddrs, err := parseAddrs(*addrs)
	if err != nil {
		return err
	}
	if len(eaddrs) != 0 {
		opts.EEPROMAddrs = eaddrs
	}
	maddrs, err := parseAddrs(*muxAddrs)
	if err != nil {
		return err
	}
	if len(maddrs) != 0 {
		opts.MuxAddrs = maddrs
	}

	var found *locate.Found
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
	fmt.Printf("Found %s, page size %d\n", found.Dev, found.Dev.PageSize())

	var progress func(page int, ok bool)
	if !*quiet {
		d := pagemap.New(*pages)
		defer d.Halt()
		progress = d.Mark
	}
	if err := selftest.Run(found.Dev, *pages, progress); err != nil {
		return err
	}
	fmt.Printf("Verified %d pages of %d bytes\n", *pages, found.Dev.PageSize())
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "eeprom-selftest: %s.\n", err)
		os.Exit(1)
	}
}
