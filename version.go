// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// VsFileInfoSignature is the FIXEDFILEINFO magic: the first 4 bytes of
// a binary-typed leaf whose length is at least fixedFileInfoSize mark
// it as the fixed version record.
const VsFileInfoSignature uint32 = 0xFEEF04BD

const (
	fixedFileInfoSize  = 52
	defaultStringTable = "040904b0"

	versionInfoRoot  = "VS_VERSION_INFO"
	stringFileInfo   = "StringFileInfo"
	varFileInfo      = "VarFileInfo"
	translationBlock = "Translation"
)

// VersionInfoBlock is one node of the VS_VERSIONINFO tree: a key, a
// value that is either bytes (binary-typed) or a string (text-typed),
// and nested children.
type VersionInfoBlock struct {
	Key      string
	Binary   []byte // non-nil when this record is binary-typed (type=0)
	Text     string // valid when Binary is nil (type=1)
	IsText   bool
	Children []VersionInfoBlock
}

// ParseVersionInfo parses a VS_VERSIONINFO byte blob (the payload of
// an RT_VERSION resource leaf) into its tree form.
func ParseVersionInfo(data []byte) (VersionInfoBlock, error) {
	block, _, err := parseVersionRecord(data, 0)
	return block, err
}

// parseVersionRecord parses one record starting at offset and returns
// it plus the offset just past its declared length.
func parseVersionRecord(data []byte, offset int) (VersionInfoBlock, int, error) {
	if offset+6 > len(data) {
		return VersionInfoBlock{}, 0, fmt.Errorf("version record at %#x out of bounds: %w", offset, ErrInvalidFormat)
	}
	length := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
	valueLength := int(binary.LittleEndian.Uint16(data[offset+2 : offset+4]))
	typ := binary.LittleEndian.Uint16(data[offset+4 : offset+6])
	if typ != 0 && typ != 1 {
		return VersionInfoBlock{}, 0, fmt.Errorf("version record type %d unknown: %w", typ, ErrInvalidFormat)
	}

	end := offset + length
	if end > len(data) || length < 6 {
		return VersionInfoBlock{}, 0, fmt.Errorf("version record length %d at %#x out of bounds: %w", length, offset, ErrInvalidFormat)
	}

	key, keyEnd, err := readNulUTF16(data, offset+6)
	if err != nil {
		return VersionInfoBlock{}, 0, err
	}

	pos := alignUp4(keyEnd)
	block := VersionInfoBlock{Key: key, IsText: typ == 1}

	switch {
	case typ == 1:
		// valueLength counts UTF-16 code units including the NUL terminator.
		byteLen := valueLength * 2
		if pos+byteLen > end && pos+byteLen > len(data) {
			return VersionInfoBlock{}, 0, fmt.Errorf("version text value at %#x out of bounds: %w", pos, ErrInvalidFormat)
		}
		text, _, err := readNulUTF16(data, pos)
		if err != nil {
			return VersionInfoBlock{}, 0, err
		}
		block.Text = text
		pos += byteLen
	default:
		if pos+valueLength > len(data) {
			return VersionInfoBlock{}, 0, fmt.Errorf("version binary value at %#x out of bounds: %w", pos, ErrInvalidFormat)
		}
		block.Binary = append([]byte(nil), data[pos:pos+valueLength]...)
		pos += valueLength
	}

	for pos < end {
		pos = alignUp4(pos)
		if pos >= end {
			break
		}
		child, next, err := parseVersionRecord(data, pos)
		if err != nil {
			return VersionInfoBlock{}, 0, err
		}
		block.Children = append(block.Children, child)
		pos = next
	}

	return block, end, nil
}

func readNulUTF16(data []byte, offset int) (string, int, error) {
	pos := offset
	for {
		if pos+2 > len(data) {
			return "", 0, fmt.Errorf("unterminated UTF-16 string at %#x: %w", offset, ErrInvalidFormat)
		}
		if data[pos] == 0 && data[pos+1] == 0 {
			break
		}
		pos += 2
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := decoder.Bytes(data[offset:pos])
	if err != nil {
		return "", 0, fmt.Errorf("decoding UTF-16 string at %#x: %w", offset, err)
	}
	return string(s), pos + 2, nil
}

// encodeUTF16Units returns s as a sequence of UTF-16LE code units, the
// form every VS_VERSIONINFO key and string value is stored in.
func encodeUTF16Units(s string) []uint16 {
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	b, err := encoder.Bytes([]byte(s))
	if err != nil {
		return nil
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return units
}

func alignUp4(x int) int { return (x + 3) &^ 3 }

// FormatVersionInfo serializes a VersionInfoBlock tree back to its
// wire form, computing each record's length bottom-up and padding
// before each child to a 4-byte boundary.
func FormatVersionInfo(block VersionInfoBlock) []byte {
	var buf []byte
	return appendVersionRecord(buf, block)
}

func appendVersionRecord(buf []byte, block VersionInfoBlock) []byte {
	start := len(buf)
	keyUnits := encodeUTF16Units(block.Key)

	headerAndKeySize := alignUp4(6 + 2*(len(keyUnits)+1))
	buf = append(buf, make([]byte, headerAndKeySize)...)
	binary.LittleEndian.PutUint16(buf[start+4:start+6], boolToType(block.IsText))
	for i, u := range keyUnits {
		binary.LittleEndian.PutUint16(buf[start+6+2*i:], u)
	}

	var valueLen int
	if block.IsText {
		textUnits := encodeUTF16Units(block.Text)
		valueLen = len(textUnits) + 1
		valStart := len(buf)
		buf = append(buf, make([]byte, valueLen*2)...)
		for i, u := range textUnits {
			binary.LittleEndian.PutUint16(buf[valStart+2*i:], u)
		}
	} else {
		valueLen = len(block.Binary)
		buf = append(buf, block.Binary...)
	}
	binary.LittleEndian.PutUint16(buf[start+2:start+4], uint16(valueLen))

	for _, child := range block.Children {
		for len(buf)%4 != 0 {
			buf = append(buf, 0)
		}
		buf = appendVersionRecord(buf, child)
	}

	binary.LittleEndian.PutUint16(buf[start:start+2], uint16(len(buf)-start))
	return buf
}

func boolToType(isText bool) uint16 {
	if isText {
		return 1
	}
	return 0
}

// IsFixedFileInfo reports whether block is the distinguished
// FIXEDFILEINFO binary leaf: signature match and length >= 52.
func IsFixedFileInfo(block VersionInfoBlock) bool {
	if block.Binary == nil || len(block.Binary) < fixedFileInfoSize {
		return false
	}
	return binary.LittleEndian.Uint32(block.Binary[0:4]) == VsFileInfoSignature
}

// FixedVersionQuad reads a 4-tuple (a,b,c,d) from a FIXEDFILEINFO
// binary blob at byte offset o, honouring the Microsoft low-word-first
// DWORD layout.
func FixedVersionQuad(b []byte, o int) (a, c, e, g uint16) {
	return binary.LittleEndian.Uint16(b[o+2 : o+4]),
		binary.LittleEndian.Uint16(b[o : o+2]),
		binary.LittleEndian.Uint16(b[o+6 : o+8]),
		binary.LittleEndian.Uint16(b[o+4 : o+6])
}

// SetFixedVersionQuad writes (a,b,c,d) into a FIXEDFILEINFO binary
// blob at byte offset o using the same word order FixedVersionQuad
// reads.
func SetFixedVersionQuad(b []byte, o int, a, c, e, g uint16) {
	binary.LittleEndian.PutUint16(b[o+2:o+4], a)
	binary.LittleEndian.PutUint16(b[o:o+2], c)
	binary.LittleEndian.PutUint16(b[o+6:o+8], e)
	binary.LittleEndian.PutUint16(b[o+4:o+6], g)
}

// defaultFixedFileInfo builds a minimal 52-byte FIXEDFILEINFO: the
// signature, struct version 0x00010000, OS=Windows NT, type=APP, and
// zero everywhere else — used when no version resource exists yet.
func defaultFixedFileInfo() []byte {
	b := make([]byte, fixedFileInfoSize)
	binary.LittleEndian.PutUint32(b[0:4], VsFileInfoSignature)
	binary.LittleEndian.PutUint32(b[4:8], 0x00010000)
	binary.LittleEndian.PutUint32(b[32:36], 0x00040004) // dwFileOS: VOS_NT
	binary.LittleEndian.PutUint32(b[36:40], 1)           // dwFileType: VFT_APP
	return b
}

// defaultVersionInfo synthesizes a version tree when none exists yet:
// a FIXEDFILEINFO, an empty default string table, and a
// VarFileInfo/Translation leaf naming it.
func defaultVersionInfo() VersionInfoBlock {
	return VersionInfoBlock{
		Key:    versionInfoRoot,
		Binary: defaultFixedFileInfo(),
		Children: []VersionInfoBlock{
			{
				Key: stringFileInfo,
				Children: []VersionInfoBlock{
					{Key: defaultStringTable},
				},
			},
			{
				Key: varFileInfo,
				Children: []VersionInfoBlock{
					{Key: translationBlock, Binary: []byte{0x09, 0x04, 0xB0, 0x04}},
				},
			},
		},
	}
}

// VersionUpdate describes the mutations UpdateVersionInfo applies in
// one pass.
type VersionUpdate struct {
	FileVersion    *[4]uint16
	ProductVersion *[4]uint16
	// Strings maps a key to a new value, or to nil to delete it.
	Strings map[string]*string
}

// UpdateVersionInfo applies upd to block, creating a FIXEDFILEINFO,
// StringFileInfo/<table> and VarFileInfo/Translation as needed.
func UpdateVersionInfo(block VersionInfoBlock, upd VersionUpdate) VersionInfoBlock {
	if block.Key == "" {
		block = defaultVersionInfo()
	}
	if !IsFixedFileInfo(block) {
		block.Binary = defaultFixedFileInfo()
		block.IsText = false
	}

	if upd.FileVersion != nil {
		v := upd.FileVersion
		SetFixedVersionQuad(block.Binary, 8, v[0], v[1], v[2], v[3])
	}
	if upd.ProductVersion != nil {
		v := upd.ProductVersion
		SetFixedVersionQuad(block.Binary, 16, v[0], v[1], v[2], v[3])
	}

	if len(upd.Strings) > 0 {
		sfi := findOrAppendChild(&block, stringFileInfo)
		table := sfiFirstTable(sfi)
		for key, value := range upd.Strings {
			applyStringEdit(table, key, value)
		}
	}

	return block
}

func findOrAppendChild(block *VersionInfoBlock, key string) *VersionInfoBlock {
	for i := range block.Children {
		if block.Children[i].Key == key {
			return &block.Children[i]
		}
	}
	block.Children = append(block.Children, VersionInfoBlock{Key: key})
	return &block.Children[len(block.Children)-1]
}

func sfiFirstTable(sfi *VersionInfoBlock) *VersionInfoBlock {
	if len(sfi.Children) == 0 {
		sfi.Children = append(sfi.Children, VersionInfoBlock{Key: defaultStringTable})
	}
	return &sfi.Children[0]
}

func applyStringEdit(table *VersionInfoBlock, key string, value *string) {
	for i := range table.Children {
		if table.Children[i].Key == key {
			if value == nil {
				table.Children = append(table.Children[:i], table.Children[i+1:]...)
			} else {
				table.Children[i].IsText = true
				table.Children[i].Text = *value
			}
			return
		}
	}
	if value != nil {
		table.Children = append(table.Children, VersionInfoBlock{Key: key, IsText: true, Text: *value})
	}
}

// GetVersionString returns the value of key under the first
// StringFileInfo table in block, if present.
func GetVersionString(block VersionInfoBlock, key string) (string, bool) {
	for _, child := range block.Children {
		if child.Key != stringFileInfo || len(child.Children) == 0 {
			continue
		}
		for _, s := range child.Children[0].Children {
			if s.Key == key {
				return s.Text, true
			}
		}
	}
	return "", false
}

// ListVersionStrings returns every key/value pair under the first
// StringFileInfo table in block.
func ListVersionStrings(block VersionInfoBlock) map[string]string {
	out := map[string]string{}
	for _, child := range block.Children {
		if child.Key != stringFileInfo || len(child.Children) == 0 {
			continue
		}
		for _, s := range child.Children[0].Children {
			out[s.Key] = s.Text
		}
	}
	return out
}
