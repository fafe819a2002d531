// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import "testing"

func TestVersionInfoRoundTrip(t *testing.T) {
	block := defaultVersionInfo()
	block = UpdateVersionInfo(block, VersionUpdate{
		FileVersion: &[4]uint16{1, 2, 3, 4},
	})

	buf := FormatVersionInfo(block)
	parsed, err := ParseVersionInfo(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if parsed.Key != versionInfoRoot {
		t.Fatalf("root key: got %q want %q", parsed.Key, versionInfoRoot)
	}
	if !IsFixedFileInfo(parsed) {
		t.Fatal("parsed root is not detected as FIXEDFILEINFO")
	}

	a, b, c, d := FixedVersionQuad(parsed.Binary, 8)
	if a != 1 || b != 2 || c != 3 || d != 4 {
		t.Fatalf("file version: got (%d,%d,%d,%d) want (1,2,3,4)", a, b, c, d)
	}
}

func TestFixedVersionQuadWordOrder(t *testing.T) {
	b := make([]byte, 52)
	// dwFileVersionMS = (a<<16)|b, dwFileVersionLS = (c<<16)|d, each
	// DWORD stored low-word-first.
	SetFixedVersionQuad(b, 8, 10, 20, 30, 40)

	ms := uint32(b[8]) | uint32(b[9])<<8 | uint32(b[10])<<16 | uint32(b[11])<<24
	ls := uint32(b[12]) | uint32(b[13])<<8 | uint32(b[14])<<16 | uint32(b[15])<<24
	if ms != (10<<16 | 20) {
		t.Fatalf("dwFileVersionMS: got %#x want %#x", ms, uint32(10<<16|20))
	}
	if ls != (30<<16 | 40) {
		t.Fatalf("dwFileVersionLS: got %#x want %#x", ls, uint32(30<<16|40))
	}
}

func TestIsFixedFileInfoRequiresLengthAndSignature(t *testing.T) {
	short := VersionInfoBlock{Binary: make([]byte, 51)}
	if IsFixedFileInfo(short) {
		t.Fatal("51-byte blob should not be detected as FIXEDFILEINFO")
	}

	wrongSig := VersionInfoBlock{Binary: make([]byte, 52)}
	if IsFixedFileInfo(wrongSig) {
		t.Fatal("zeroed blob should not be detected as FIXEDFILEINFO")
	}
}

func TestUpdateVersionInfoStrings(t *testing.T) {
	block := UpdateVersionInfo(VersionInfoBlock{}, VersionUpdate{
		Strings: map[string]*string{"CompanyName": strPtr("Acme")},
	})

	got, ok := GetVersionString(block, "CompanyName")
	if !ok || got != "Acme" {
		t.Fatalf("GetVersionString: got %q, %v", got, ok)
	}

	block = UpdateVersionInfo(block, VersionUpdate{
		Strings: map[string]*string{"CompanyName": nil},
	})
	if _, ok := GetVersionString(block, "CompanyName"); ok {
		t.Fatal("CompanyName should be removed after delete")
	}
}

func TestDefaultVersionInfoSynthesis(t *testing.T) {
	block := defaultVersionInfo()
	if !IsFixedFileInfo(block) {
		t.Fatal("default version info root should be a FIXEDFILEINFO")
	}
	strs := ListVersionStrings(block)
	if len(strs) != 0 {
		t.Fatalf("default string table should start empty, got %v", strs)
	}
}

func strPtr(s string) *string { return &s }
