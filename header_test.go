// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"errors"
	"testing"
)

func TestReadHeaderAcceptsElfanewAtPrefixBoundary(t *testing.T) {
	synth := buildSyntheticPE(headerPrefixSize, make([]byte, 16))
	rw := newMemRW(synth.buf)

	if _, err := ReadHeader(rw); err != nil {
		t.Fatalf("ReadHeader with elfanew == headerPrefixSize: %v", err)
	}
}

func TestReadHeaderRejectsElfanewPastPrefixBoundary(t *testing.T) {
	buf := make([]byte, headerPrefixSize+0x2000)
	copy(buf[0:2], "MZ")
	elfanew := headerPrefixSize + 1
	putU32(buf, dosElfanewOffset, uint32(elfanew))
	rw := newMemRW(buf)

	_, err := ReadHeader(rw)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestReadHeaderRejectsBadDOSSignature(t *testing.T) {
	synth := buildSyntheticPE(0x80, make([]byte, 16))
	buf := append([]byte(nil), synth.buf...)
	buf[0] = 'X'
	rw := newMemRW(buf)

	_, err := ReadHeader(rw)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat for bad DOS signature, got %v", err)
	}
}

func TestResolveRVA(t *testing.T) {
	resourceData := make([]byte, 16)
	synth := buildSyntheticPE(0x80, resourceData)
	rw := newMemRW(synth.buf)

	h, err := ReadHeader(rw)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}

	resolved, ok, err := h.ResolveRVA(ImageDirectoryEntryResource)
	if err != nil {
		t.Fatalf("ResolveRVA: %v", err)
	}
	if !ok {
		t.Fatal("expected resource directory entry to resolve")
	}
	if resolved.File.Start != FileOffset(synth.sectionFileStart) {
		t.Fatalf("resolved file start: got %d want %d", resolved.File.Start, synth.sectionFileStart)
	}
	if resolved.Virtual.Start != RVA(synth.sectionVirtualStart) {
		t.Fatalf("resolved virtual start: got %d want %d", resolved.Virtual.Start, synth.sectionVirtualStart)
	}
}

func TestSetSubsystemAlsoZeroesChecksum(t *testing.T) {
	synth := buildSyntheticPE(0x80, make([]byte, 16))
	rw := newMemRW(synth.buf)

	h, err := ReadHeader(rw)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	oh := h.optionalHeaderOffset
	putU32(h.Buf, int(oh)+64, 0xDEADBEEF)

	h.SetSubsystem(SubsystemGUI)

	if h.Subsystem() != SubsystemGUI {
		t.Fatalf("Subsystem: got %d want %d", h.Subsystem(), SubsystemGUI)
	}
	checksum := readU32(h.Buf, int(oh)+64)
	if checksum != 0 {
		t.Fatalf("checksum not zeroed: %#x", checksum)
	}
}

func putU32(buf []byte, off int, v uint32) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
}

func readU32(buf []byte, off int) uint32 {
	return uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
}
