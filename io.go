// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"errors"
	"fmt"
)

// Readable is a byte-addressable random-access reader. Read must
// return exactly length bytes or report an error; a short read
// without an error is a collaborator bug, not something this package
// tolerates.
type Readable interface {
	Read(pos int64, length int) ([]byte, error)
}

// Writable is a byte-addressable random-access writer. Write must
// write all of data or report an error.
type Writable interface {
	Write(pos int64, data []byte) error
}

// Closeable releases the handle backing a Readable/Writable.
type Closeable interface {
	Close() error
}

// ReadWriteCloser is the full collaborator the editing session drives.
// It is supplied by the caller: this package never opens a file
// itself.
type ReadWriteCloser interface {
	Readable
	Writable
	Closeable
}

// readExact reads length bytes at pos, turning both a collaborator
// error and a short read into an ErrIO.
func readExact(r Readable, pos int64, length int) ([]byte, error) {
	b, err := r.Read(pos, length)
	if err != nil {
		return nil, fmt.Errorf("reading %d bytes at %#x: %w", length, pos, errors.Join(ErrIO, err))
	}
	if len(b) != length {
		return nil, fmt.Errorf("short read at %#x: wanted %d, got %d: %w", pos, length, len(b), ErrIO)
	}
	return b, nil
}

func writeExact(w Writable, pos int64, data []byte) error {
	if err := w.Write(pos, data); err != nil {
		return fmt.Errorf("writing %d bytes at %#x: %w", len(data), pos, errors.Join(ErrIO, err))
	}
	return nil
}
