// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"fmt"

	"go.mozilla.org/pkcs7"

	"github.com/simonbuchan/npm-exe-edit/internal/log"
)

// ImageDirectoryEntrySecurity is the data directory slot holding the
// Authenticode certificate table. Unlike every other directory entry,
// its VirtualAddress field is a raw file offset, not an RVA, so it is
// read directly rather than through ExeHeader.ResolveRVA.
const ImageDirectoryEntrySecurity = 4

// logAuthenticodeSigner is a best-effort --verbose diagnostic: if a
// certificate table is present, it parses just enough of the PKCS#7
// blob to report the signer's subject, without validating the
// signature chain. This never blocks or mutates anything the editor
// does; it stays entirely inside the non-goal of not fully validating
// non-resource directories.
func logAuthenticodeSigner(logger *log.Helper, r Readable, h *ExeHeader) {
	entry, ok := h.dataDirectoryEntry(ImageDirectoryEntrySecurity)
	if !ok {
		return
	}

	// WIN_CERTIFICATE: dwLength, wRevision, wCertificateType, then the
	// PKCS#7 blob itself. The certificate table is appended past the
	// end of the mapped sections, so it is read directly off the
	// offset named in the directory entry (a byte count here, despite
	// ExeHeader storing it as RVA(start)/RVA(size) like every other
	// slot) rather than being translated through a section.
	offset := int64(entry.Virtual.Start) + 8
	size := int(entry.Virtual.Size) - 8
	if size <= 0 {
		return
	}

	blob, err := r.Read(offset, size)
	if err != nil {
		logger.Debugf("authenticode: could not read certificate table: %v", err)
		return
	}

	p7, err := pkcs7.Parse(blob)
	if err != nil {
		logger.Debugf("authenticode: could not parse PKCS#7 blob: %v", err)
		return
	}
	if len(p7.Certificates) == 0 {
		logger.Debugf("authenticode: certificate table present but empty")
		return
	}

	logger.Debugf("authenticode: signed by %s", fmt.Sprint(p7.Certificates[0].Subject))
}
