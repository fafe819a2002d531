// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"fmt"
)

const (
	icoHeaderSize      = 6
	icoDirEntrySize    = 16
	grpIconEntrySize   = 14
	grpIconHeaderCopy  = 12 // bytes of ICONDIRENTRY copied verbatim into GRPICONDIRENTRY
)

// IconImage is one decoded ICONDIRENTRY from a .ico file, plus the raw
// image bytes it points to.
type IconImage struct {
	Width, Height, ColorCount, Reserved byte
	Planes, BitCount                   uint16
	Data                                []byte
}

// ParseICO reads a Windows .ico file's 6-byte header and its
// ICONDIRENTRY records, returning one IconImage per embedded image.
// Fails with ErrInvalidFormat if count==0.
func ParseICO(data []byte) ([]IconImage, error) {
	if len(data) < icoHeaderSize {
		return nil, fmt.Errorf("ico file too short: %w", ErrInvalidFormat)
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if count == 0 {
		return nil, fmt.Errorf("ico file has no images: %w", ErrInvalidFormat)
	}

	need := icoHeaderSize + count*icoDirEntrySize
	if len(data) < need {
		return nil, fmt.Errorf("ico directory truncated: %w", ErrInvalidFormat)
	}

	images := make([]IconImage, count)
	for i := 0; i < count; i++ {
		e := data[icoHeaderSize+i*icoDirEntrySize:]
		bytesInRes := binary.LittleEndian.Uint32(e[8:12])
		imageOffset := binary.LittleEndian.Uint32(e[12:16])

		end := int64(imageOffset) + int64(bytesInRes)
		if imageOffset < 0 || end > int64(len(data)) {
			return nil, fmt.Errorf("ico image %d out of bounds: %w", i, ErrInvalidFormat)
		}

		images[i] = IconImage{
			Width:      e[0],
			Height:     e[1],
			ColorCount: e[2],
			Reserved:   e[3],
			Planes:     binary.LittleEndian.Uint16(e[4:6]),
			BitCount:   binary.LittleEndian.Uint16(e[6:8]),
			Data:       append([]byte(nil), data[imageOffset:end]...),
		}
	}
	return images, nil
}

// ImportIcon adds an icon group to t from the parsed .ico contents of
// icoData: it allocates one RT_ICON leaf per image plus a single
// RT_GROUP_ICON leaf describing them, all under the fixed language
// 0x0409. Icon resources already in t are left in place; Run removes
// them with RemoveIcon before importing.
func ImportIcon(t *ResTable, icoData []byte) error {
	if len(icoData) < icoHeaderSize {
		return fmt.Errorf("ico file too short: %w", ErrInvalidFormat)
	}
	count := int(binary.LittleEndian.Uint16(icoData[4:6]))
	if count == 0 {
		return fmt.Errorf("ico file has no images: %w", ErrInvalidFormat)
	}
	need := icoHeaderSize + count*icoDirEntrySize
	if len(icoData) < need {
		return fmt.Errorf("ico directory truncated: %w", ErrInvalidFormat)
	}

	group := make([]byte, grpIconHeaderSize()+grpIconEntrySize*count)
	copy(group[0:icoHeaderSize], icoData[0:icoHeaderSize])

	lang := ID(usEnglish)
	for i := 0; i < count; i++ {
		entry := icoData[icoHeaderSize+i*icoDirEntrySize:]
		bytesInRes := binary.LittleEndian.Uint32(entry[8:12])
		imageOffset := binary.LittleEndian.Uint32(entry[12:16])

		end := int64(imageOffset) + int64(bytesInRes)
		if end > int64(len(icoData)) {
			return fmt.Errorf("ico image %d out of bounds: %w", i, ErrInvalidFormat)
		}
		imageData := append([]byte(nil), icoData[imageOffset:end]...)

		newID := t.NextID(ID(RTIcon))
		t.Set(ID(RTIcon), ID(newID), lang, imageData)

		groupEntryOff := grpIconHeaderSize() + i*grpIconEntrySize
		copy(group[groupEntryOff:groupEntryOff+grpIconHeaderCopy], entry[0:grpIconHeaderCopy])
		binary.LittleEndian.PutUint16(group[groupEntryOff+12:groupEntryOff+14], newID)
	}

	groupID := t.NextID(ID(RTGroupIcon))
	t.Set(ID(RTGroupIcon), ID(groupID), lang, group)
	return nil
}

// grpIconHeaderSize is the 6-byte GRPICONDIR header copied verbatim
// from the .ico header.
func grpIconHeaderSize() int { return icoHeaderSize }

// RemoveIcon deletes every RT_GROUP_ICON and RT_ICON entry from t
// (the --no-icon CLI path, scenario 2 of the end-to-end tests).
func RemoveIcon(t *ResTable) {
	t.DeleteType(ID(RTGroupIcon))
	t.DeleteType(ID(RTIcon))
}
