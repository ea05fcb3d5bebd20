// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package eepromtest is for documentation only. Explains the test
// bench this tooling was written against.
//
// Bench wiring
//
// A 24-series serial EEPROM (verified with ST M24C02 and M24C08 class
// parts, write protect pin grounded) sits on one of the host's I²C
// buses, either directly or behind a PCA954x multiplexer at 0x74. The
// device answers at 0x54 or 0x55 depending on how its address pins are
// strapped.
//
// Usage
//
// Run the self-test:
//
//  eeprom-selftest -bus /dev/i2c-1
//
// Dump the content after a failure:
//
//  eeprom-dump -bus /dev/i2c-1 -o content.bin
package eepromtest
