package inode

import (
	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/bitmap"
)

// Table is the mapping from ino to inode record, populated from the
// metadata sidecar at mount time (spec.md §4.4).
type Table struct {
	entries map[uint64]*Inode
	bmap    *bitmap.Bitmap
}

// NewTable creates an empty table sized for totalInodes, with bit 0
// unused and bit 1 (the root) always set (spec.md §3).
func NewTable(totalInodes uint32) *Table {
	b := bitmap.New(totalInodes)
	b.Set(0, true)
	b.Set(uint32(bwfs.RootIno), true)
	return &Table{entries: make(map[uint64]*Inode), bmap: b}
}

// FromBitmap rebuilds a Table around an already-populated inode bitmap
// and set of inodes, used when restoring from a checkpoint (spec.md §4.6).
func FromBitmap(b *bitmap.Bitmap, entries map[uint64]*Inode) *Table {
	return &Table{entries: entries, bmap: b}
}

// Bitmap exposes the backing bitmap for checkpointing.
func (t *Table) Bitmap() *bitmap.Bitmap {
	return t.bmap
}

// Get returns the inode for ino, or nil if it doesn't exist.
func (t *Table) Get(ino uint64) *Inode {
	return t.entries[ino]
}

// Put installs or replaces the record for n.Ino.
func (t *Table) Put(n *Inode) {
	t.entries[n.Ino] = n
}

// Allocate reserves the lowest clear inode bit >= 2 and returns it
// (spec.md §4.4). It does not install a record; callers must Put one.
func (t *Table) Allocate() (uint64, *bwfs.DriverError) {
	idx, ok := t.bmap.Allocate(2)
	if !ok {
		return 0, bwfs.ErrNoSpace("inode table exhausted (%d inodes)", t.bmap.Len())
	}
	return uint64(idx), nil
}

// Release frees ino's bit and drops its record.
func (t *Table) Release(ino uint64) {
	t.bmap.Deallocate(uint32(ino))
	delete(t.entries, ino)
}

// FreeCount returns the number of unallocated inode bits.
func (t *Table) FreeCount() uint32 {
	return t.bmap.FreeCount()
}

// All returns every live inode record. Used by checkpointing.
func (t *Table) All() map[uint64]*Inode {
	return t.entries
}
