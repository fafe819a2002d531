// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"fmt"
	"sort"
	"unicode/utf16"
)

// Predefined resource types touched by this editor. Only the entries
// this editor reads or writes are kept here.
const (
	RTIcon      uint16 = 3
	RTGroupIcon uint16 = 14 // RTIcon + 11
	RTVersion   uint16 = 16
)

// usEnglish is the language id every icon and version resource this
// editor writes is filed under, keeping the resource locale uniform.
const usEnglish uint16 = 0x0409

const (
	resDirHeaderSize = 16
	resDirEntrySize  = 8
	resDataEntrySize = 16

	resHighBit = 0x80000000
)

// ResID identifies a type, name or language slot in a resource tree.
// It is either a string (a Unicode name) or an unsigned 16-bit
// integer; the two kinds never compare equal to each other.
type ResID struct {
	str    string
	id     uint16
	isName bool
}

// ID builds an integer ResID.
func ID(n uint16) ResID { return ResID{id: n} }

// Name builds a string ResID.
func Name(s string) ResID { return ResID{str: s, isName: true} }

// IsName reports whether this ResID is a string name rather than an
// integer id.
func (r ResID) IsName() bool { return r.isName }

// Int returns the integer id. Only meaningful when !IsName().
func (r ResID) Int() uint16 { return r.id }

// Str returns the string name. Only meaningful when IsName().
func (r ResID) Str() string { return r.str }

func (r ResID) String() string {
	if r.isName {
		return r.str
	}
	return fmt.Sprintf("#%d", r.id)
}

// less implements the canonical serialization order: all integer ids
// sort before all string ids; within a kind, by natural order, with
// string names compared by UTF-16 code unit.
func (r ResID) less(other ResID) bool {
	if r.isName != other.isName {
		return !r.isName
	}
	if !r.isName {
		return r.id < other.id
	}
	a, b := utf16.Encode([]rune(r.str)), utf16.Encode([]rune(other.str))
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// ResTableHeader is the subset of IMAGE_RESOURCE_DIRECTORY that
// round-trips: characteristics, timestamp and version. A nil
// *ResTableHeader serializes as all-zero fields.
type ResTableHeader struct {
	Characteristics uint32
	Timestamp       uint32
	MajorVersion    uint16
	MinorVersion    uint16
}

// ResKey names a leaf: the (type, name, lang) triple Find returns.
type ResKey struct {
	Type ResID
	Name ResID
	Lang ResID
}

// ResTable is the parsed, three-level type -> name -> lang resource
// tree. Insertion order is preserved at every level for Get/Find/Walk;
// SerializeResourceTable re-sorts into canonical order on the way out.
type ResTable struct {
	types     []*resTypeNode
	typeIndex map[ResID]int
}

type resTypeNode struct {
	id        ResID
	header    *ResTableHeader
	names     []*resNameNode
	nameIndex map[ResID]int
}

type resNameNode struct {
	id        ResID
	header    *ResTableHeader
	langs     []*resLangLeaf
	langIndex map[ResID]int
}

type resLangLeaf struct {
	id   ResID
	data []byte
}

// NewResTable returns an empty resource tree.
func NewResTable() *ResTable {
	return &ResTable{typeIndex: map[ResID]int{}}
}

func (t *ResTable) typeNode(typ ResID, create bool) *resTypeNode {
	if i, ok := t.typeIndex[typ]; ok {
		return t.types[i]
	}
	if !create {
		return nil
	}
	n := &resTypeNode{id: typ, nameIndex: map[ResID]int{}}
	t.typeIndex[typ] = len(t.types)
	t.types = append(t.types, n)
	return n
}

func (n *resTypeNode) nameNode(name ResID, create bool) *resNameNode {
	if i, ok := n.nameIndex[name]; ok {
		return n.names[i]
	}
	if !create {
		return nil
	}
	m := &resNameNode{id: name, langIndex: map[ResID]int{}}
	n.nameIndex[name] = len(n.names)
	n.names = append(n.names, m)
	return m
}

func (n *resNameNode) langLeaf(lang ResID, create bool) *resLangLeaf {
	if i, ok := n.langIndex[lang]; ok {
		return n.langs[i]
	}
	if !create {
		return nil
	}
	l := &resLangLeaf{id: lang}
	n.langIndex[lang] = len(n.langs)
	n.langs = append(n.langs, l)
	return l
}

// Get returns the data for (typ, name, lang). A nil name or lang
// selects the first inserted child at that level.
func (t *ResTable) Get(typ ResID, name, lang *ResID) ([]byte, bool) {
	tn := t.typeNode(typ, false)
	if tn == nil || len(tn.names) == 0 {
		return nil, false
	}
	nn := tn.names[0]
	if name != nil {
		nn = tn.nameNode(*name, false)
		if nn == nil {
			return nil, false
		}
	}
	if len(nn.langs) == 0 {
		return nil, false
	}
	ll := nn.langs[0]
	if lang != nil {
		ll = nn.langLeaf(*lang, false)
		if ll == nil {
			return nil, false
		}
	}
	return ll.data, true
}

// Find returns the key of the first leaf matching typ and, optionally,
// name.
func (t *ResTable) Find(typ ResID, name *ResID) (ResKey, bool) {
	tn := t.typeNode(typ, false)
	if tn == nil || len(tn.names) == 0 {
		return ResKey{}, false
	}
	nn := tn.names[0]
	if name != nil {
		nn = tn.nameNode(*name, false)
		if nn == nil {
			return ResKey{}, false
		}
	}
	if len(nn.langs) == 0 {
		return ResKey{}, false
	}
	return ResKey{Type: typ, Name: nn.id, Lang: nn.langs[0].id}, true
}

// Set upserts data at (typ, name, lang), creating intermediate
// directories as needed.
func (t *ResTable) Set(typ, name, lang ResID, data []byte) {
	tn := t.typeNode(typ, true)
	nn := tn.nameNode(name, true)
	ll := nn.langLeaf(lang, true)
	ll.data = data
}

// DeleteType removes every name and lang under typ. Reports whether
// anything was removed.
func (t *ResTable) DeleteType(typ ResID) bool {
	i, ok := t.typeIndex[typ]
	if !ok {
		return false
	}
	t.types = append(t.types[:i], t.types[i+1:]...)
	delete(t.typeIndex, typ)
	for id, idx := range t.typeIndex {
		if idx > i {
			t.typeIndex[id] = idx - 1
		}
	}
	return true
}

// DeleteName removes name (and all its langs) under typ.
func (t *ResTable) DeleteName(typ, name ResID) bool {
	tn := t.typeNode(typ, false)
	if tn == nil {
		return false
	}
	i, ok := tn.nameIndex[name]
	if !ok {
		return false
	}
	tn.names = append(tn.names[:i], tn.names[i+1:]...)
	delete(tn.nameIndex, name)
	for id, idx := range tn.nameIndex {
		if idx > i {
			tn.nameIndex[id] = idx - 1
		}
	}
	return true
}

// DeleteLang removes a single leaf under typ/name.
func (t *ResTable) DeleteLang(typ, name, lang ResID) bool {
	tn := t.typeNode(typ, false)
	if tn == nil {
		return false
	}
	nn := tn.nameNode(name, false)
	if nn == nil {
		return false
	}
	i, ok := nn.langIndex[lang]
	if !ok {
		return false
	}
	nn.langs = append(nn.langs[:i], nn.langs[i+1:]...)
	delete(nn.langIndex, lang)
	for id, idx := range nn.langIndex {
		if idx > i {
			nn.langIndex[id] = idx - 1
		}
	}
	return true
}

// NextID returns one more than the largest integer name currently
// under typ, or 0 if there is none.
func (t *ResTable) NextID(typ ResID) uint16 {
	tn := t.typeNode(typ, false)
	if tn == nil {
		return 0
	}
	var max uint16
	haveAny := false
	for _, nn := range tn.names {
		if nn.id.IsName() {
			continue
		}
		if !haveAny || nn.id.Int() > max {
			max = nn.id.Int()
			haveAny = true
		}
	}
	if !haveAny {
		return 0
	}
	return max + 1
}

// Walk visits every leaf in store (insertion) order, depth-first, and
// stops at the first error the visitor returns.
func (t *ResTable) Walk(visit func(key ResKey, data []byte) error) error {
	for _, tn := range t.types {
		for _, nn := range tn.names {
			for _, ll := range nn.langs {
				if err := visit(ResKey{Type: tn.id, Name: nn.id, Lang: ll.id}, ll.data); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Iterate collects every leaf into a slice, for callers that want the
// whole tree rather than a callback walk.
func (t *ResTable) Iterate() []ResKey {
	var keys []ResKey
	_ = t.Walk(func(key ResKey, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	return keys
}

// Types returns the distinct resource type ids present in the table,
// in insertion order.
func (t *ResTable) Types() []ResID {
	out := make([]ResID, len(t.types))
	for i, tn := range t.types {
		out[i] = tn.id
	}
	return out
}

// TypeHeader returns the round-tripped directory header for typ, if
// the table was parsed with one or SetTypeHeader was called.
func (t *ResTable) TypeHeader(typ ResID) *ResTableHeader {
	if tn := t.typeNode(typ, false); tn != nil {
		return tn.header
	}
	return nil
}

// SetTypeHeader stores h as the directory header to emit for typ.
func (t *ResTable) SetTypeHeader(typ ResID, h ResTableHeader) {
	t.typeNode(typ, true).header = &h
}

// NameHeader returns the round-tripped directory header for typ/name.
func (t *ResTable) NameHeader(typ, name ResID) *ResTableHeader {
	tn := t.typeNode(typ, false)
	if tn == nil {
		return nil
	}
	if nn := tn.nameNode(name, false); nn != nil {
		return nn.header
	}
	return nil
}

// SetNameHeader stores h as the directory header to emit for typ/name.
func (t *ResTable) SetNameHeader(typ, name ResID, h ResTableHeader) {
	t.typeNode(typ, true).nameNode(name, true).header = &h
}

// canonicalOrder returns ids sorted integer-first ascending, then
// string ids ascending by UTF-16 code unit: the order required on the
// wire regardless of insertion order.
func canonicalOrder(ids []ResID) []ResID {
	out := append([]ResID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

func partitionCounts(ordered []ResID) (names, ids int) {
	for _, id := range ordered {
		if id.IsName() {
			names++
		} else {
			ids++
		}
	}
	return
}

// ---- parsing ----

// ParseResourceSection parses a .rsrc section's raw bytes into a
// ResTable. sectionVirtualBase is the section's virtual start address,
// used to translate each leaf's absolute data RVA back into an offset
// within data.
func ParseResourceSection(data []byte, sectionVirtualBase RVA) (*ResTable, error) {
	t := NewResTable()
	if err := parseResTypeDir(t, data, 0, sectionVirtualBase); err != nil {
		return nil, err
	}
	return t, nil
}

func parseResTypeDir(t *ResTable, data []byte, offset uint32, base RVA) error {
	_, nameCount, idCount, err := readResDirHeader(data, offset)
	if err != nil {
		return err
	}
	total := nameCount + idCount
	entryOffset := offset + resDirHeaderSize

	for i := 0; i < total; i++ {
		id, isDir, ptr, err := readResDirEntry(data, entryOffset)
		if err != nil {
			return err
		}
		entryOffset += resDirEntrySize

		if !isDir {
			return fmt.Errorf("type entry %v is a leaf, want a directory: %w", id, ErrInvalidFormat)
		}
		if err := parseResNameDir(t, id, data, ptr, base); err != nil {
			return err
		}
	}
	return nil
}

func parseResNameDir(t *ResTable, typ ResID, data []byte, offset uint32, base RVA) error {
	hdr, nameCount, idCount, err := readResDirHeader(data, offset)
	if err != nil {
		return err
	}
	t.SetTypeHeader(typ, hdr)
	total := nameCount + idCount
	entryOffset := offset + resDirHeaderSize

	for i := 0; i < total; i++ {
		id, isDir, ptr, err := readResDirEntry(data, entryOffset)
		if err != nil {
			return err
		}
		entryOffset += resDirEntrySize

		if !isDir {
			return fmt.Errorf("name entry %v is a leaf, want a directory: %w", id, ErrInvalidFormat)
		}
		if err := parseResLangDir(t, typ, id, data, ptr, base); err != nil {
			return err
		}
	}
	return nil
}

func parseResLangDir(t *ResTable, typ, name ResID, data []byte, offset uint32, base RVA) error {
	hdr, nameCount, idCount, err := readResDirHeader(data, offset)
	if err != nil {
		return err
	}
	t.SetNameHeader(typ, name, hdr)
	total := nameCount + idCount
	entryOffset := offset + resDirHeaderSize

	for i := 0; i < total; i++ {
		id, isDir, ptr, err := readResDirEntry(data, entryOffset)
		if err != nil {
			return err
		}
		entryOffset += resDirEntrySize

		if isDir {
			return fmt.Errorf("lang entry %v is a directory, want a leaf: %w", id, ErrInvalidFormat)
		}

		leafData, err := readResDataEntry(data, ptr, base)
		if err != nil {
			return err
		}
		t.Set(typ, name, id, leafData)
	}
	return nil
}

func readResDirHeader(data []byte, offset uint32) (ResTableHeader, int, int, error) {
	if uint64(offset)+resDirHeaderSize > uint64(len(data)) {
		return ResTableHeader{}, 0, 0, fmt.Errorf("directory header at %#x out of bounds: %w", offset, ErrInvalidFormat)
	}
	b := data[offset:]
	hdr := ResTableHeader{
		Characteristics: binary.LittleEndian.Uint32(b[0:4]),
		Timestamp:       binary.LittleEndian.Uint32(b[4:8]),
		MajorVersion:    binary.LittleEndian.Uint16(b[8:10]),
		MinorVersion:    binary.LittleEndian.Uint16(b[10:12]),
	}
	nameCount := int(binary.LittleEndian.Uint16(b[12:14]))
	idCount := int(binary.LittleEndian.Uint16(b[14:16]))
	return hdr, nameCount, idCount, nil
}

// readResDirEntry reads one 8-byte directory entry at data[offset:]
// and resolves it to a ResID plus a section-relative pointer (either
// to a child directory or to a data-entry record).
func readResDirEntry(data []byte, offset uint32) (ResID, bool, uint32, error) {
	if uint64(offset)+resDirEntrySize > uint64(len(data)) {
		return ResID{}, false, 0, fmt.Errorf("directory entry at %#x out of bounds: %w", offset, ErrInvalidFormat)
	}
	b := data[offset:]
	nameField := binary.LittleEndian.Uint32(b[0:4])
	ptrField := binary.LittleEndian.Uint32(b[4:8])

	var id ResID
	if nameField&resHighBit != 0 {
		nameOffset := nameField &^ resHighBit
		s, err := readResDirString(data, nameOffset)
		if err != nil {
			return ResID{}, false, 0, err
		}
		id = Name(s)
	} else {
		id = ID(uint16(nameField))
	}

	isDir := ptrField&resHighBit != 0
	ptr := ptrField &^ resHighBit
	return id, isDir, ptr, nil
}

// readResDirString reads a length-prefixed (not NUL-terminated) UTF-16
// name used for string type/name/lang ids in the resource directory.
// This differs from the NUL-terminated keys used in VS_VERSIONINFO.
func readResDirString(data []byte, offset uint32) (string, error) {
	if uint64(offset)+2 > uint64(len(data)) {
		return "", fmt.Errorf("resource name length at %#x out of bounds: %w", offset, ErrInvalidFormat)
	}
	length := binary.LittleEndian.Uint16(data[offset : offset+2])
	start := offset + 2
	end := uint64(start) + uint64(length)*2
	if end > uint64(len(data)) {
		return "", fmt.Errorf("resource name at %#x out of bounds: %w", offset, ErrInvalidFormat)
	}
	units := make([]uint16, length)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(data[int(start)+2*i:])
	}
	return string(utf16.Decode(units)), nil
}

func readResDataEntry(data []byte, offset uint32, base RVA) ([]byte, error) {
	if uint64(offset)+resDataEntrySize > uint64(len(data)) {
		return nil, fmt.Errorf("data entry at %#x out of bounds: %w", offset, ErrInvalidFormat)
	}
	b := data[offset:]
	dataRVA := binary.LittleEndian.Uint32(b[0:4])
	size := binary.LittleEndian.Uint32(b[4:8])

	start := int64(dataRVA) - int64(base)
	if start < 0 || start+int64(size) > int64(len(data)) {
		return nil, fmt.Errorf("resource payload RVA %#x out of bounds: %w", dataRVA, ErrInvalidFormat)
	}
	return data[start : start+int64(size)], nil
}

// ---- serialization ----

// SerializeResourceTable lays out t into a single contiguous buffer in
// four regions: directory headers & entries, UTF-16 name strings,
// data-entry records, payload bytes. It returns
// the buffer and the byte offsets at which a section-relative data
// pointer was written; the caller must add the section's virtual base
// address to each before the buffer is placed in memory.
func SerializeResourceTable(t *ResTable) ([]byte, []int, error) {
	b := newResBuilder()
	b.layout(t)
	return b.encode(t)
}

type resBuilder struct {
	region1Size uint32 // directory headers+entries
	region2Size uint32 // name strings
	region3Size uint32 // data entries
	payloads    [][]byte

	stringOff map[ResID]uint32 // offset within region 2, keyed by distinct name

	region1Start uint32
	region2Start uint32
	region3Start uint32
	region4Start uint32
}

func newResBuilder() *resBuilder {
	return &resBuilder{stringOff: map[ResID]uint32{}}
}

// layout walks the canonical tree to size every region and to assign
// each distinct string ResID an offset within region 2 (a name used
// at more than one slot with the same text shares one copy).
func (b *resBuilder) layout(t *ResTable) {
	typeIDs := make([]ResID, 0, len(t.types))
	for _, tn := range t.types {
		typeIDs = append(typeIDs, tn.id)
	}
	order := canonicalOrder(typeIDs)

	b.addDir(len(order))
	for _, typID := range order {
		tn := t.typeNode(typID, false)
		b.addString(typID)

		nameIDs := make([]ResID, 0, len(tn.names))
		for _, nn := range tn.names {
			nameIDs = append(nameIDs, nn.id)
		}
		nameOrder := canonicalOrder(nameIDs)
		b.addDir(len(nameOrder))

		for _, nameID := range nameOrder {
			nn := tn.nameNode(nameID, false)
			b.addString(nameID)

			langIDs := make([]ResID, 0, len(nn.langs))
			for _, ll := range nn.langs {
				langIDs = append(langIDs, ll.id)
			}
			langOrder := canonicalOrder(langIDs)
			b.addDir(len(langOrder))

			for _, langID := range langOrder {
				ll := nn.langLeaf(langID, false)
				b.addString(langID)
				b.region3Size += resDataEntrySize
				b.payloads = append(b.payloads, ll.data)
			}
		}
	}

	b.region1Start = 0
	b.region2Start = AlignUp(b.region1Start+b.region1Size, 16)
	b.region3Start = AlignUp(b.region2Start+b.region2Size, 16)
	b.region4Start = AlignUp(b.region3Start+b.region3Size, 16)
}

func (b *resBuilder) addDir(entries int) {
	b.region1Size += resDirHeaderSize + uint32(entries)*resDirEntrySize
}

func (b *resBuilder) addString(id ResID) {
	if !id.IsName() {
		return
	}
	if _, ok := b.stringOff[id]; ok {
		return
	}
	units := utf16.Encode([]rune(id.Str()))
	size := uint32(2 + 2*len(units))
	b.stringOff[id] = b.region2Size
	b.region2Size += size
}

// encode performs the second pass: having already sized every region
// in layout(), it recomputes each directory's file offset by walking
// the same canonical order (so the arithmetic always agrees with the
// sizes already summed) and writes all four regions.
func (b *resBuilder) encode(t *ResTable) ([]byte, []int, error) {
	offs := make([]uint32, len(b.payloads))
	var payloadOff uint32
	for i, p := range b.payloads {
		offs[i] = b.region4Start + payloadOff
		payloadOff += AlignUp(uint32(len(p)), 8)
	}
	totalSize := b.region4Start + payloadOff

	buf := make([]byte, totalSize)
	var patches []int

	for id, off := range b.stringOff {
		units := utf16.Encode([]rune(id.Str()))
		p := b.region2Start + off
		binary.LittleEndian.PutUint16(buf[p:p+2], uint16(len(units)))
		for i, u := range units {
			binary.LittleEndian.PutUint16(buf[p+2+uint32(i)*2:], u)
		}
	}

	for i, p := range b.payloads {
		copy(buf[offs[i]:], p)
	}

	typeIDs := make([]ResID, 0, len(t.types))
	for _, tn := range t.types {
		typeIDs = append(typeIDs, tn.id)
	}
	order := canonicalOrder(typeIDs)

	dirCursor := b.region1Start
	rootOffset := dirCursor
	dirCursor += resDirHeaderSize + uint32(len(order))*resDirEntrySize

	nameDirOffsets := make(map[ResID]uint32, len(order))
	nameOrders := make(map[ResID][]ResID, len(order))
	for _, typID := range order {
		nameDirOffsets[typID] = dirCursor
		tn := t.typeNode(typID, false)
		nameIDs := make([]ResID, 0, len(tn.names))
		for _, nn := range tn.names {
			nameIDs = append(nameIDs, nn.id)
		}
		nameOrder := canonicalOrder(nameIDs)
		nameOrders[typID] = nameOrder
		dirCursor += resDirHeaderSize + uint32(len(nameOrder))*resDirEntrySize
	}

	langDirOffsets := make(map[ResKey]uint32)
	langOrders := make(map[ResKey][]ResID)
	for _, typID := range order {
		tn := t.typeNode(typID, false)
		for _, nameID := range nameOrders[typID] {
			key := ResKey{Type: typID, Name: nameID}
			langDirOffsets[key] = dirCursor
			nn := tn.nameNode(nameID, false)
			langIDs := make([]ResID, 0, len(nn.langs))
			for _, ll := range nn.langs {
				langIDs = append(langIDs, ll.id)
			}
			langOrder := canonicalOrder(langIDs)
			langOrders[key] = langOrder
			dirCursor += resDirHeaderSize + uint32(len(langOrder))*resDirEntrySize
		}
	}

	names, ids := partitionCounts(order)
	writeDirHeader(buf, rootOffset, nil, names, ids)
	entryOff := rootOffset + resDirHeaderSize
	for _, typID := range order {
		writeDirEntry(buf, entryOff, typID, b.stringOff, b.region2Start, nameDirOffsets[typID], true)
		entryOff += resDirEntrySize
	}

	for _, typID := range order {
		nameOrder := nameOrders[typID]
		nnNames, nnIds := partitionCounts(nameOrder)
		off := nameDirOffsets[typID]
		writeDirHeader(buf, off, t.TypeHeader(typID), nnNames, nnIds)
		e := off + resDirHeaderSize
		for _, nameID := range nameOrder {
			key := ResKey{Type: typID, Name: nameID}
			writeDirEntry(buf, e, nameID, b.stringOff, b.region2Start, langDirOffsets[key], true)
			e += resDirEntrySize
		}
	}

	dataCursor := b.region3Start
	payloadIdx := 0
	for _, typID := range order {
		tn := t.typeNode(typID, false)
		for _, nameID := range nameOrders[typID] {
			key := ResKey{Type: typID, Name: nameID}
			langOrder := langOrders[key]
			lNames, lIds := partitionCounts(langOrder)
			off := langDirOffsets[key]
			writeDirHeader(buf, off, t.NameHeader(typID, nameID), lNames, lIds)
			e := off + resDirHeaderSize
			nn := tn.nameNode(nameID, false)
			for _, langID := range langOrder {
				writeDirEntry(buf, e, langID, b.stringOff, b.region2Start, dataCursor, false)
				e += resDirEntrySize

				ll := nn.langLeaf(langID, false)
				patches = append(patches, int(dataCursor))
				binary.LittleEndian.PutUint32(buf[dataCursor:dataCursor+4], offs[payloadIdx])
				binary.LittleEndian.PutUint32(buf[dataCursor+4:dataCursor+8], uint32(len(ll.data)))
				binary.LittleEndian.PutUint32(buf[dataCursor+8:dataCursor+12], 0)
				binary.LittleEndian.PutUint32(buf[dataCursor+12:dataCursor+16], 0)
				dataCursor += resDataEntrySize
				payloadIdx++
			}
		}
	}

	return buf, patches, nil
}

func writeDirHeader(buf []byte, offset uint32, hdr *ResTableHeader, names, ids int) {
	b := buf[offset:]
	if hdr != nil {
		binary.LittleEndian.PutUint32(b[0:4], hdr.Characteristics)
		binary.LittleEndian.PutUint32(b[4:8], hdr.Timestamp)
		binary.LittleEndian.PutUint16(b[8:10], hdr.MajorVersion)
		binary.LittleEndian.PutUint16(b[10:12], hdr.MinorVersion)
	}
	binary.LittleEndian.PutUint16(b[12:14], uint16(names))
	binary.LittleEndian.PutUint16(b[14:16], uint16(ids))
}

func writeDirEntry(buf []byte, offset uint32, id ResID, stringOff map[ResID]uint32, region2Start, ptr uint32, isDir bool) {
	var nameField uint32
	if id.IsName() {
		nameField = (region2Start + stringOff[id]) | resHighBit
	} else {
		nameField = uint32(id.Int())
	}
	ptrField := ptr
	if isDir {
		ptrField |= resHighBit
	}
	binary.LittleEndian.PutUint32(buf[offset:offset+4], nameField)
	binary.LittleEndian.PutUint32(buf[offset+4:offset+8], ptrField)
}
