// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package selftest exercises a located EEPROM end to end.
//
// The test fills a fixed number of pages with 0xFF in one pass, then
// reads every page back in a second pass and verifies each byte. It is
// all-or-nothing: the first failed transfer or mismatched byte aborts
// the whole run.
package selftest // import "periph.io/x/eepromtest/selftest"

import (
	"fmt"

	"periph.io/x/eepromtest/eeprom"
)

// DefaultPages is how many page slots the test covers.
const DefaultPages = 256

// fill is the pattern written to every byte of every page.
const fill = 0xFF

// Run writes pages pages of fill bytes and verifies them.
//
// progress, when not nil, is called after each page of the verify pass
// with ok reporting whether the page matched. The write pass does not
// report progress; a write failure aborts before any verification.
func Run(dev *eeprom.Dev, pages int, progress func(page int, ok bool)) error {
	if pages <= 0 {
		pages = DefaultPages
	}
	ps := dev.PageSize()
	wb := make([]byte, ps)
	for i := range wb {
		wb[i] = fill
	}
	for page := 0; page < pages; page++ {
		if err := dev.WritePage(uint16(page*ps), wb); err != nil {
			return fmt.Errorf("selftest: writing page %d: %v", page, err)
		}
	}
	rb := make([]byte, ps)
	for page := 0; page < pages; page++ {
		for i := range rb {
			rb[i] = 0
		}
		if err := dev.ReadPage(uint16(page*ps), rb); err != nil {
			return fmt.Errorf("selftest: reading page %d: %v", page, err)
		}
		for i, c := range rb {
			if c != fill {
				if progress != nil {
					progress(page, false)
				}
				return fmt.Errorf("selftest: page %d byte %d is %#02x, expected %#02x", page, i, c, fill)
			}
		}
		if progress != nil {
			progress(page, true)
		}
	}
	return nil
}
