// Copyright 2019 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mux

import (
	"testing"

	"periph.io/x/periph/conn/i2c/i2ctest"
)

func TestSelect(t *testing.T) {
	p := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x74, W: []byte{0x04}},
			{Addr: 0x74, R: []byte{0x04}},
		},
	}
	d := New(p, 0x74)
	if err := d.Select(0x04); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestHalt(t *testing.T) {
	p := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x74, W: []byte{0x00}},
			{Addr: 0x74, R: []byte{0x00}},
		},
	}
	d := New(p, 0x74)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestChannels(t *testing.T) {
	got := Channels(0x04)
	want := []byte{4, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("Channels(0x04) = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Channels(0x04) = %v, expected %v", got, want)
		}
	}
}
