// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"fmt"
)

// memRW is an in-memory Readable/Writable/Closeable over a single
// owned buffer, standing in for the mmap-backed collaborator in
// tests that don't need a real file.
type memRW struct {
	buf    []byte
	closed bool
}

func newMemRW(buf []byte) *memRW { return &memRW{buf: buf} }

func (m *memRW) Read(pos int64, length int) ([]byte, error) {
	if pos < 0 || pos+int64(length) > int64(len(m.buf)) {
		return nil, fmt.Errorf("out of bounds read at %#x, length %d", pos, length)
	}
	out := make([]byte, length)
	copy(out, m.buf[pos:pos+int64(length)])
	return out, nil
}

func (m *memRW) Write(pos int64, data []byte) error {
	if pos < 0 || pos+int64(len(data)) > int64(len(m.buf)) {
		return fmt.Errorf("out of bounds write at %#x, length %d", pos, len(data))
	}
	copy(m.buf[pos:], data)
	return nil
}

func (m *memRW) Close() error {
	m.closed = true
	return nil
}

// syntheticPE describes the layout of a minimal PE32 image built by
// buildSyntheticPE, so tests can locate the section without
// re-deriving offsets.
type syntheticPE struct {
	buf                []byte
	optionalHeaderStart int
	sectionTableStart   int
	sectionFileStart    int
	sectionFileSize     int
	sectionVirtualStart uint32
	sectionVirtualSize  uint32
}

// buildSyntheticPE assembles a minimal, structurally valid PE32 image
// with a single .rsrc section whose resource data directory entry
// points at it. elfanew controls the DOS-to-PE offset, letting tests
// exercise the boundary at exactly headerPrefixSize.
func buildSyntheticPE(elfanew int, resourceSectionData []byte) syntheticPE {
	const (
		fileAlignment    = 0x200
		sectionAlignment = 0x1000
		sectionVirtAddr  = 0x2000
	)

	coffOffset := elfanew + 4
	optionalHeaderStart := coffOffset + 20
	optionalHeaderSize := 96 + 16*8 // PE32: RVA table at +96, 16 entries
	sectionTableStart := optionalHeaderStart + optionalHeaderSize
	sectionTableEnd := sectionTableStart + 40 // one section

	sizeOfHeaders := int(AlignUp(uint32(sectionTableEnd), fileAlignment))
	sectionFileStart := sizeOfHeaders
	sectionFileSize := int(AlignUp(uint32(len(resourceSectionData)), fileAlignment))

	total := sectionFileStart + sectionFileSize
	// ReadHeader always reads a full headerPrefixSize-byte prefix, so
	// the image is zero-padded to at least that length.
	if total < headerPrefixSize {
		total = headerPrefixSize
	}
	buf := make([]byte, total)

	binary.LittleEndian.PutUint16(buf[0:2], imageDOSSignature)
	binary.LittleEndian.PutUint32(buf[dosElfanewOffset:dosElfanewOffset+4], uint32(elfanew))

	binary.LittleEndian.PutUint32(buf[elfanew:elfanew+4], imageNTSignature)

	binary.LittleEndian.PutUint16(buf[coffOffset+2:coffOffset+4], 1) // NumberOfSections
	binary.LittleEndian.PutUint16(buf[coffOffset+16:coffOffset+18], uint16(optionalHeaderSize))

	oh := optionalHeaderStart
	binary.LittleEndian.PutUint16(buf[oh:oh+2], imageNtOptionalHeader32Magic)
	binary.LittleEndian.PutUint32(buf[oh+32:oh+36], sectionAlignment)
	binary.LittleEndian.PutUint32(buf[oh+36:oh+40], fileAlignment)
	binary.LittleEndian.PutUint32(buf[oh+60:oh+64], uint32(sizeOfHeaders))
	binary.LittleEndian.PutUint16(buf[oh+68:oh+70], SubsystemConsole)

	dataDirOffset := oh + 96
	resourceEntry := dataDirOffset + ImageDirectoryEntryResource*8
	binary.LittleEndian.PutUint32(buf[resourceEntry:resourceEntry+4], sectionVirtAddr)
	binary.LittleEndian.PutUint32(buf[resourceEntry+4:resourceEntry+8], uint32(len(resourceSectionData)))

	sec := buf[sectionTableStart : sectionTableStart+40]
	copy(sec[0:8], ".rsrc")
	binary.LittleEndian.PutUint32(sec[8:12], uint32(len(resourceSectionData)))
	binary.LittleEndian.PutUint32(sec[12:16], sectionVirtAddr)
	binary.LittleEndian.PutUint32(sec[16:20], uint32(sectionFileSize))
	binary.LittleEndian.PutUint32(sec[20:24], uint32(sectionFileStart))

	copy(buf[sectionFileStart:sectionFileStart+len(resourceSectionData)], resourceSectionData)

	return syntheticPE{
		buf:                 buf,
		optionalHeaderStart: optionalHeaderStart,
		sectionTableStart:   sectionTableStart,
		sectionFileStart:    sectionFileStart,
		sectionFileSize:     sectionFileSize,
		sectionVirtualStart: sectionVirtAddr,
		sectionVirtualSize:  uint32(len(resourceSectionData)),
	}
}
