// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import "errors"

// Errors
var (
	// ErrInvalidFormat is returned when an on-wire invariant is violated:
	// a bad signature, a magic number out of range, a directory whose
	// shape doesn't match its level, or misaligned sizes.
	ErrInvalidFormat = errors.New("invalid PE format")

	// ErrUnsupported is returned for a layout that is valid but not
	// handled by this editor: growing a section past its existing
	// allocation, or a target PE with no resource section at all.
	ErrUnsupported = errors.New("unsupported PE layout")

	// ErrIO is returned when the random-access collaborator returns
	// fewer bytes than requested, or fails to write or close.
	ErrIO = errors.New("PE I/O error")

	// ErrUsage is returned for CLI argument problems.
	ErrUsage = errors.New("usage error")
)
