// Package bitmap implements the fixed-size bit vector used by both the
// block allocator and the inode allocator (spec.md §4.3). It wraps
// github.com/boljen/go-bitmap the same way the teacher's
// drivers/common/allocatormap.go and drivers/common/blockmanager.go do,
// generalized into a single reusable type instead of being duplicated
// per allocator.
package bitmap

import (
	"log"

	gobitmap "github.com/boljen/go-bitmap"
)

// Bitmap is a fixed-size bit vector with first-free allocation.
type Bitmap struct {
	bits  gobitmap.Bitmap
	total uint32
}

// New creates a Bitmap of the given size with every bit clear.
func New(total uint32) *Bitmap {
	return &Bitmap{
		bits:  gobitmap.New(int(total)),
		total: total,
	}
}

// FromBytes wraps an existing byte slice as a Bitmap, used when loading
// the checkpoint sidecar (spec.md §4.6). total is the number of
// meaningful bits; the byte slice may be padded up to the next byte
// boundary.
func FromBytes(raw []byte, total uint32) *Bitmap {
	b := gobitmap.Bitmap(raw)
	return &Bitmap{bits: b, total: total}
}

// Bytes returns the raw backing bytes, suitable for checkpointing.
func (b *Bitmap) Bytes() []byte {
	return []byte(b.bits)
}

// Len returns the number of bits this bitmap tracks.
func (b *Bitmap) Len() uint32 {
	return b.total
}

// IsSet reports whether bit i is set (block/inode in use).
func (b *Bitmap) IsSet(i uint32) bool {
	if i >= b.total {
		return false
	}
	return b.bits.Get(int(i))
}

// Set forces bit i to the given value, without the allocate/deallocate
// bookkeeping. Used for bits reserved at initialization time (bit 0 of
// the block bitmap, bit 1 of the inode bitmap).
func (b *Bitmap) Set(i uint32, value bool) {
	b.bits.Set(int(i), value)
}

// Allocate returns the lowest clear bit, marking it set, starting the
// scan at `start` so callers can skip reserved low bits (spec.md §4.4:
// inode allocation starts the scan at index 2). It reports ok=false if
// no clear bit exists.
func (b *Bitmap) Allocate(start uint32) (index uint32, ok bool) {
	for i := start; i < b.total; i++ {
		if !b.bits.Get(int(i)) {
			b.bits.Set(int(i), true)
			return i, true
		}
	}
	return 0, false
}

// Deallocate clears bit i. Clearing an already-clear bit is a no-op,
// logged as a warning rather than returned as an error, matching
// spec.md §4.3 ("flagged in logs").
func (b *Bitmap) Deallocate(i uint32) {
	if i >= b.total {
		log.Printf("bitmap: deallocate of out-of-range index %d (size %d)", i, b.total)
		return
	}
	if !b.bits.Get(int(i)) {
		log.Printf("bitmap: deallocate of already-clear index %d", i)
		return
	}
	b.bits.Set(int(i), false)
}

// FreeCount returns the number of clear bits.
func (b *Bitmap) FreeCount() uint32 {
	free := uint32(0)
	for i := uint32(0); i < b.total; i++ {
		if !b.bits.Get(int(i)) {
			free++
		}
	}
	return free
}
