// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package eeprom

import (
	"errors"
	"testing"

	"periph.io/x/eepromtest/bench"
	"periph.io/x/periph/conn/i2c/i2ctest"
	"periph.io/x/periph/conn/physic"
)

func TestNew_InvalidAddr(t *testing.T) {
	b := bench.NewBus("bus0")
	if _, err := New(b, &Opts{Addr: 0x80, PageSize: PageSize32}); err == nil {
		t.Fatal("expected failure for an 8 bit address")
	}
	if _, err := New(b, &Opts{Addr: 0}); err == nil {
		t.Fatal("expected failure for address 0")
	}
}

func TestNew_InvalidPageSize(t *testing.T) {
	b := bench.NewBus("bus0")
	if _, err := New(b, &Opts{Addr: 0x54, PageSize: 48}); err == nil {
		t.Fatal("expected failure for page size 48")
	}
}

func TestWritePage_TwoByteAddr(t *testing.T) {
	p := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x54, W: []byte{0x01, 0x20, 0xDE, 0xAD, 0xBE, 0xEF}},
		},
	}
	d, err := New(p, &Opts{Addr: 0x54, PageSize: PageSize32})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.WritePage(0x0120, []byte{0xDE, 0xAD, 0xBE, 0xEF}); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWritePage_OneByteAddr(t *testing.T) {
	p := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x54, W: []byte{0x34, 0xAA}},
		},
	}
	d, err := New(p, &Opts{Addr: 0x54, PageSize: PageSize16})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.WritePage(0x34, []byte{0xAA}); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWritePage_TooLong(t *testing.T) {
	d, err := New(bench.NewBus("bus0"), &Opts{Addr: 0x54, PageSize: PageSize32})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.WritePage(0, make([]byte, PageSize32+1)); err == nil {
		t.Fatal("expected failure writing past the page size")
	}
}

func TestReadPage_PositionsPointerFirst(t *testing.T) {
	p := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x55, W: []byte{0x02, 0x40}},
			{Addr: 0x55, R: []byte{1, 2, 3, 4}},
		},
	}
	d, err := New(p, &Opts{Addr: 0x55, PageSize: PageSize64})
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	if err := d.ReadPage(0x0240, buf); err != nil {
		t.Fatal(err)
	}
	for i, c := range []byte{1, 2, 3, 4} {
		if buf[i] != c {
			t.Fatalf("buf[%d] = %#02x, expected %#02x", i, buf[i], c)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDetectPageSize(t *testing.T) {
	for _, ps := range []int{PageSize64, PageSize32, PageSize16} {
		b := bench.NewBus("bus0")
		b.Add(0x54, bench.NewEEPROM(ps, 256*ps))
		got, err := DetectPageSize(b, 0x54, 0)
		if err != nil {
			t.Fatalf("page size %d: %v", ps, err)
		}
		if got != ps {
			t.Fatalf("detected %d, expected %d", got, ps)
		}
	}
}

// TestDetectPageSize_FallsThrough asserts that a partial success at 64
// bytes does not short-circuit detection: on a 32 byte part the 64
// byte trial writes fine but wraps within the page, so the read-back
// mismatches and the next candidate must be tried.
func TestDetectPageSize_FallsThrough(t *testing.T) {
	b := bench.NewBus("bus0")
	e := bench.NewEEPROM(PageSize32, 256*PageSize32)
	b.Add(0x54, e)
	got, err := DetectPageSize(b, 0x54, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != PageSize32 {
		t.Fatalf("detected %d, expected %d", got, PageSize32)
	}
	// The accepted trial is the second one, so the surviving fill is
	// offset by 1.
	for k := 0; k < PageSize32; k++ {
		if e.Mem()[k] != byte(k+1) {
			t.Fatalf("mem[%d] = %#02x, expected %#02x", k, e.Mem()[k], byte(k+1))
		}
	}
}

type brokenBus struct {
	err error
}

func (b *brokenBus) String() string { return "broken" }

func (b *brokenBus) Tx(addr uint16, w, r []byte) error { return b.err }

func (b *brokenBus) SetSpeed(f physic.Frequency) error { return nil }

func TestDetectPageSize_TransferFailure(t *testing.T) {
	errBus := errors.New("wire fault")
	if _, err := DetectPageSize(&brokenBus{err: errBus}, 0x54, 0); err != errBus {
		t.Fatalf("expected the transport error, got %v", err)
	}
}

func TestNew_Detects(t *testing.T) {
	b := bench.NewBus("bus0")
	b.Add(0x55, bench.NewEEPROM(PageSize64, 256*PageSize64))
	d, err := New(b, &Opts{Addr: 0x55})
	if err != nil {
		t.Fatal(err)
	}
	if d.PageSize() != PageSize64 {
		t.Fatalf("PageSize() = %d, expected %d", d.PageSize(), PageSize64)
	}
	if d.Addr() != 0x55 {
		t.Fatalf("Addr() = %#02x, expected 0x55", d.Addr())
	}
}
