package bwfs

import (
	"os"
	"time"
)

// Attrs is the platform-independent set of attributes returned by
// GetAttr (spec.md §4.5), analogous to the teacher's disko.FileStat but
// trimmed to the fields BWFS actually has (no device id, no symlinks,
// no deletion timestamp).
type Attrs struct {
	Ino     uint64
	Size    uint64
	Blocks  uint32 // count of allocated direct blocks
	Kind    Kind
	Nlink   uint32
	Uid     uint32
	Gid     uint32
	Perm    os.FileMode
	Atime   time.Time
	Mtime   time.Time
	Ctime   time.Time
	Blksize uint32
}

// FSStat is returned by Statfs (spec.md §4.5).
type FSStat struct {
	BlockSize   uint32
	TotalBlocks uint32
	FreeBlocks  uint32
	TotalInodes uint32
	FreeInodes  uint32
	NameMax     uint32
}
