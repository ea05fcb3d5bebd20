// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pagemap renders self-test progress to the terminal (stdout)
// using ANSI color codes.
//
// Each page slot is one colored block: gray while pending, green once
// verified, red on mismatch. Useful while watching a long run against
// a slow part.
package pagemap // import "periph.io/x/eepromtest/pagemap"

import (
	"bytes"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Dev displays one block per page slot at the console.
type Dev struct {
	w      io.Writer
	states []byte
	buf    bytes.Buffer
}

const (
	pending = iota
	verified
	failed
)

var palette = [...]color.NRGBA{
	pending:  {0x40, 0x40, 0x40, 255},
	verified: {0x00, 0xC0, 0x00, 255},
	failed:   {0xC0, 0x00, 0x00, 255},
}

// New returns a Dev tracking n page slots.
func New(n int) *Dev {
	return &Dev{
		w:      colorable.NewColorableStdout(),
		states: make([]byte, n),
	}
}

func (d *Dev) String() string {
	return "PageMap"
}

// Halt restores the terminal so it is not left corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Mark records the verify outcome of one page and redraws the map.
func (d *Dev) Mark(page int, ok bool) {
	if page < 0 || page >= len(d.states) {
		return
	}
	if ok {
		d.states[page] = verified
	} else {
		d.states[page] = failed
	}
	d.refresh()
}

func (d *Dev) refresh() {
	// This code is designed to minimize the amount of memory allocated
	// per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for _, s := range d.states {
		_, _ = io.WriteString(&d.buf, ansi256.Default.Block(palette[s]))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, _ = d.buf.WriteTo(d.w)
}
