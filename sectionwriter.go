// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import "fmt"

// WriteResourceSection serializes table, patches its data-entry RVA
// fields to absolute addresses using section's virtual base, and
// writes the result at section's file offset through w. It fails with
// ErrUnsupported if the serialized buffer doesn't fit the section's
// existing virtual or file extent — growing a section is out of scope.
//
// updateSizes selects between two conformant behaviours: when true,
// the resource data-directory size and the section table's
// VirtualSize/SizeOfRawData are updated to match the freshly
// serialized buffer; when false they are left untouched.
func WriteResourceSection(h *ExeHeader, w Writable, section SectionHeader, table *ResTable, updateSizes bool) error {
	if len(table.types) == 0 {
		return fmt.Errorf("resource tree has no types to write: %w", ErrUnsupported)
	}

	buf, patches, err := SerializeResourceTable(table)
	if err != nil {
		return err
	}

	for _, off := range patches {
		patchRVA(buf, off, section.Virtual.Start)
	}

	if uint32(len(buf)) > uint32(section.Virtual.Size) || uint32(len(buf)) > uint32(section.File.Size) {
		return fmt.Errorf(
			"serialized resource section (%d bytes) exceeds existing allocation (virtual %d, file %d): %w",
			len(buf), section.Virtual.Size, section.File.Size, ErrUnsupported)
	}

	if updateSizes {
		h.SetSectionSize(section.Index, uint32(len(buf)))
		h.SetDataDirectorySize(ImageDirectoryEntryResource, uint32(len(buf)))
	}

	return writeExact(w, int64(section.File.Start), buf)
}

// patchRVA adds base to the 32-bit little-endian value stored at
// buf[off:off+4], turning the section-relative data pointer the
// serializer wrote into an absolute RVA.
func patchRVA(buf []byte, off int, base RVA) {
	cur := uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
	cur += uint32(base)
	buf[off] = byte(cur)
	buf[off+1] = byte(cur >> 8)
	buf[off+2] = byte(cur >> 16)
	buf[off+3] = byte(cur >> 24)
}
