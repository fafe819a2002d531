// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"fmt"
	"strings"

	"github.com/simonbuchan/npm-exe-edit/internal/log"
)

// Subsystem values the subsystem switch accepts.
const (
	SubsystemGUI     uint16 = 2
	SubsystemConsole uint16 = 3
)

// Options collects every mutation an editing session may apply, plus
// the logging configuration driving its verbose diagnostics.
type Options struct {
	// Subsystem, if non-nil, overwrites the optional header's
	// Subsystem field.
	Subsystem *uint16

	// IconData, if non-nil, is the parsed bytes of a .ico file to
	// import as the new icon group, replacing every existing
	// RT_GROUP_ICON/RT_ICON resource. RemoveIcon and IconData are
	// mutually exclusive.
	IconData []byte
	// RemoveIcon deletes every RT_GROUP_ICON/RT_ICON resource.
	RemoveIcon bool

	FileVersion    *[4]uint16
	ProductVersion *[4]uint16
	// SetVersionStrings upserts StringFileInfo entries.
	SetVersionStrings map[string]string
	// DeleteVersionStrings removes StringFileInfo entries.
	DeleteVersionStrings []string

	// UpdateSectionSizes selects which of the two conformant section
	// writer behaviours this session uses.
	UpdateSectionSizes bool

	Logger  *log.Helper
	Verbose bool
}

func (o Options) logger() *log.Helper {
	if o.Logger != nil {
		return o.Logger
	}
	if o.Verbose {
		return log.Verbose()
	}
	return log.Default()
}

func (o Options) wantsVersionEdit() bool {
	return o.FileVersion != nil || o.ProductVersion != nil ||
		len(o.SetVersionStrings) > 0 || len(o.DeleteVersionStrings) > 0
}

func (o Options) wantsResourceEdit() bool {
	return o.IconData != nil || o.RemoveIcon || o.wantsVersionEdit()
}

// Run drives the full edit pass against rw: Read -> optional
// HeaderEdit -> optional (ResourceRead -> MutateTable -> Serialize ->
// Patch -> SectionWrite) -> HeaderWrite. rw is not closed; the caller
// owns its lifetime and must Close it on every exit path.
func Run(rw ReadWriteCloser, opts Options) error {
	logger := opts.logger()

	header, err := ReadHeader(rw)
	if err != nil {
		return err
	}

	if opts.Verbose {
		logSummary(logger, header)
		logAuthenticodeSigner(logger, rw, header)
		logResourceTypes(logger, rw, header)
	}

	dirty := false

	if opts.Subsystem != nil {
		header.SetSubsystem(*opts.Subsystem)
		dirty = true
	}

	if opts.wantsResourceEdit() {
		if err := applyResourceEdits(rw, header, opts); err != nil {
			return err
		}
		dirty = true
	}

	if dirty {
		header.ZeroChecksum()
		if err := writeExact(rw, 0, header.Buf); err != nil {
			return err
		}
	}

	return nil
}

func applyResourceEdits(rw ReadWriteCloser, header *ExeHeader, opts Options) error {
	resolved, ok, err := header.ResolveRVA(ImageDirectoryEntryResource)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("target has no resource section: %w", ErrUnsupported)
	}

	sectionData, err := readExact(rw, int64(resolved.File.Start), int(resolved.File.Size))
	if err != nil {
		return err
	}

	table, err := ParseResourceSection(sectionData, resolved.Section.Virtual.Start)
	if err != nil {
		return err
	}

	if opts.RemoveIcon || opts.IconData != nil {
		RemoveIcon(table)
	}
	if opts.IconData != nil {
		if err := ImportIcon(table, opts.IconData); err != nil {
			return err
		}
	}

	if opts.wantsVersionEdit() {
		if err := applyVersionEdit(table, opts); err != nil {
			return err
		}
	}

	return WriteResourceSection(header, rw, resolved.Section, table, opts.UpdateSectionSizes)
}

func applyVersionEdit(table *ResTable, opts Options) error {
	typ := ID(RTVersion)
	key, found := table.Find(typ, nil)

	var block VersionInfoBlock
	if found {
		data, _ := table.Get(typ, &key.Name, &key.Lang)
		parsed, err := ParseVersionInfo(data)
		if err != nil {
			return err
		}
		block = parsed
	}

	upd := VersionUpdate{
		FileVersion:    opts.FileVersion,
		ProductVersion: opts.ProductVersion,
	}
	if len(opts.SetVersionStrings) > 0 || len(opts.DeleteVersionStrings) > 0 {
		upd.Strings = map[string]*string{}
		for k, v := range opts.SetVersionStrings {
			value := v
			upd.Strings[k] = &value
		}
		for _, k := range opts.DeleteVersionStrings {
			upd.Strings[k] = nil
		}
	}

	block = UpdateVersionInfo(block, upd)
	serialized := FormatVersionInfo(block)

	name := ID(1)
	lang := ID(usEnglish)
	if found {
		name = key.Name
		lang = key.Lang
	}
	table.Set(typ, name, lang, serialized)
	return nil
}

func logSummary(logger *log.Helper, h *ExeHeader) {
	logger.Debugf("machine=%#x subsystem=%d", h.Machine(), h.Subsystem())
	for _, sec := range h.Sections() {
		logger.Debugf("section %q virtual=[%#x,%#x) file=[%#x,%#x)",
			sec.Name, sec.Virtual.Start, sec.Virtual.End(), sec.File.Start, sec.File.End())
	}
}

// logResourceTypes read-only parses the resource directory, if any,
// and logs the distinct resource type ids it contains. A missing
// section or a parse failure is logged and otherwise ignored: this is
// a diagnostic, not a precondition for the edit that follows.
func logResourceTypes(logger *log.Helper, r Readable, h *ExeHeader) {
	resolved, ok, err := h.ResolveRVA(ImageDirectoryEntryResource)
	if err != nil {
		logger.Warnf("resource directory: %v", err)
		return
	}
	if !ok {
		logger.Debugf("resource types: none (no resource section)")
		return
	}

	data, err := readExact(r, int64(resolved.File.Start), int(resolved.File.Size))
	if err != nil {
		logger.Warnf("reading resource section: %v", err)
		return
	}
	table, err := ParseResourceSection(data, resolved.Section.Virtual.Start)
	if err != nil {
		logger.Warnf("parsing resource section: %v", err)
		return
	}

	types := table.Types()
	names := make([]string, len(types))
	for i, id := range types {
		names[i] = id.String()
	}
	logger.Debugf("resource types: %s", strings.Join(names, ", "))
}
