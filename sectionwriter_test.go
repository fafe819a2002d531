// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"errors"
	"testing"
)

func TestWriteResourceSectionRoundTrip(t *testing.T) {
	// Size the placeholder section generously; the real serialized
	// buffer for one small leaf is well under a page.
	synth := buildSyntheticPE(0x80, make([]byte, 0x1000))
	rw := newMemRW(synth.buf)

	h, err := ReadHeader(rw)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	resolved, ok, err := h.ResolveRVA(ImageDirectoryEntryResource)
	if err != nil || !ok {
		t.Fatalf("ResolveRVA: ok=%v err=%v", ok, err)
	}

	table := NewResTable()
	table.Set(ID(RTIcon), ID(1), ID(usEnglish), []byte{1, 2, 3, 4})

	if err := WriteResourceSection(h, rw, resolved.Section, table, false); err != nil {
		t.Fatalf("WriteResourceSection: %v", err)
	}

	raw, err := rw.Read(int64(resolved.File.Start), int(resolved.Section.File.Size))
	if err != nil {
		t.Fatalf("reading back section: %v", err)
	}
	parsed, err := ParseResourceSection(raw, resolved.Section.Virtual.Start)
	if err != nil {
		t.Fatalf("parsing written section: %v", err)
	}
	data, ok := parsed.Get(ID(RTIcon), idPtr(1), nil)
	if !ok {
		t.Fatal("RT_ICON leaf missing after round trip")
	}
	if string(data) != "\x01\x02\x03\x04" {
		t.Fatalf("leaf data mismatch: %v", data)
	}
}

func TestWriteResourceSectionRejectsOversizedBuffer(t *testing.T) {
	synth := buildSyntheticPE(0x80, make([]byte, 16))
	rw := newMemRW(synth.buf)

	h, err := ReadHeader(rw)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	resolved, ok, err := h.ResolveRVA(ImageDirectoryEntryResource)
	if err != nil || !ok {
		t.Fatalf("ResolveRVA: ok=%v err=%v", ok, err)
	}

	table := NewResTable()
	table.Set(ID(RTIcon), ID(1), ID(usEnglish), make([]byte, 4096))

	err = WriteResourceSection(h, rw, resolved.Section, table, false)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestWriteResourceSectionRejectsEmptyTable(t *testing.T) {
	synth := buildSyntheticPE(0x80, make([]byte, 16))
	rw := newMemRW(synth.buf)

	h, err := ReadHeader(rw)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	resolved, ok, err := h.ResolveRVA(ImageDirectoryEntryResource)
	if err != nil || !ok {
		t.Fatalf("ResolveRVA: ok=%v err=%v", ok, err)
	}

	err = WriteResourceSection(h, rw, resolved.Section, NewResTable(), false)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for empty table, got %v", err)
	}
}
