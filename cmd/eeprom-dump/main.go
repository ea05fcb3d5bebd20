// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// eeprom-dump reads pages out of a discovered serial EEPROM.
//
// It can write the raw content to a file or hex dump it to stdout,
// which is handy to inspect what a failed self-test left behind.
//
// Discovery detects the page size by trial writes, so the first page
// is overwritten before it is dumped.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"periph.io/x/eepromtest/locate"
	"periph.io/x/eepromtest/selftest"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

func mainImpl() error {
	verbose := flag.Bool("v", false, "verbose mode")
	busName := flag.String("bus", "", "I²C bus to search; all registered buses when empty")
	speed := flag.Int("speed", 100, "bus clock in kHz")
	pages := flag.Int("pages", selftest.DefaultPages, "number of page slots to read")
	out := flag.String("o", "", "write raw content to this file instead of hex dumping")
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
	ps := found.Dev.PageSize()
	log.Printf("found %s, page size %d", found.Dev, ps)

	buf := make([]byte, *pages*ps)
	for page := 0; page < *pages; page++ {
		if err := found.Dev.ReadPage(uint16(page*ps), buf[page*ps:(page+1)*ps]); err != nil {
			return fmt.Errorf("reading page %d: %v", page, err)
		}
	}
	if *out != "" {
		return ioutil.WriteFile(*out, buf, 0644)
	}
	fmt.Print(hex.Dump(buf))
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "eeprom-dump: %s.\n", err)
		os.Exit(1)
	}
}
