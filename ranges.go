// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

// FileOffset is a byte offset into the executable's on-disk bytes.
type FileOffset uint32

// RVA is a byte offset relative to the image base once the executable
// is mapped into memory. A file offset and an RVA are never the same
// number by coincidence except within a section's own adjustment; the
// distinct types below keep them from being compared or added by
// accident.
type RVA uint32

// offsetLike is satisfied by any type whose underlying type is uint32:
// FileOffset and RVA, and also plain uint32 (AlignUp is used on raw
// header fields). Range[T] cannot be instantiated with a numeric type
// of another width.
type offsetLike interface {
	~uint32
}

// Range is a start+size pair over one of the two offset kinds. end is
// always start+size; there is no way to construct a Range with an
// inconsistent end, which is the invariant spec tests check for.
type Range[T offsetLike] struct {
	Start T
	Size  T
}

// End returns the exclusive end of the range.
func (r Range[T]) End() T {
	return r.Start + r.Size
}

// Contains reports whether off falls within [Start, End).
func (r Range[T]) Contains(off T) bool {
	return r.Start <= off && off < r.End()
}

// FileRange is a Range over file offsets.
type FileRange = Range[FileOffset]

// RvaRange is a Range over RVAs.
type RvaRange = Range[RVA]

// RangesTouch reports whether a and b share or border on a byte: the
// gap between them, if any, is zero.
func RangesTouch[T offsetLike](a, b Range[T]) bool {
	return b.Start <= a.End() && a.Start <= b.End()
}

// RangesOverlap reports whether a and b share at least one byte.
// Two zero-size ranges never overlap even if they coincide.
func RangesOverlap[T offsetLike](a, b Range[T]) bool {
	return a.Size > 0 && b.Size > 0 && b.Start < a.End() && a.Start < b.End()
}

// AlignUp rounds x up to the next multiple of align, which must be a
// power of two. AlignUp(x, align) >= x, is a multiple of align, and
// is within align-1 of x.
func AlignUp[T offsetLike](x, align T) T {
	if align == 0 {
		return x
	}
	return (x + align - 1) &^ (align - 1)
}
