// Package ioboundary supplies the random-access Readable/Writable/
// Closeable collaborator the editing session is built against,
// backed by a memory-mapped file opened read-write. The core package
// never opens a file itself; this is the concrete implementation the
// CLI front-end wires in.
package ioboundary

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MappedFile is a ReadWriteCloser over an mmap'd file, matching the
// teacher's own read-only use of mmap-go in file.go's New, but opened
// RDWR since this editor patches resource bytes in place.
type MappedFile struct {
	f *os.File
	m mmap.MMap
}

// Open maps path read-write. The file must already exist and be
// sized to its final extent (the caller copies the input file to the
// output path before editing begins).
func Open(path string) (*MappedFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	return &MappedFile{f: f, m: m}, nil
}

// Read returns a copy of length bytes starting at pos.
func (mf *MappedFile) Read(pos int64, length int) ([]byte, error) {
	if pos < 0 || pos+int64(length) > int64(len(mf.m)) {
		return nil, fmt.Errorf("read at %#x, length %d: out of bounds (file is %d bytes)", pos, length, len(mf.m))
	}
	out := make([]byte, length)
	copy(out, mf.m[pos:pos+int64(length)])
	return out, nil
}

// Write copies data into the mapping starting at pos.
func (mf *MappedFile) Write(pos int64, data []byte) error {
	if pos < 0 || pos+int64(len(data)) > int64(len(mf.m)) {
		return fmt.Errorf("write at %#x, length %d: out of bounds (file is %d bytes)", pos, len(data), len(mf.m))
	}
	copy(mf.m[pos:], data)
	return nil
}

// Close flushes the mapping to disk and releases both the mapping and
// the underlying file handle.
func (mf *MappedFile) Close() error {
	flushErr := mf.m.Flush()
	unmapErr := mf.m.Unmap()
	closeErr := mf.f.Close()
	if flushErr != nil {
		return flushErr
	}
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}
