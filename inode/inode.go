// Package inode implements the in-memory inode table (spec.md §4.4): a
// mapping from inode number to inode record, with allocation backed by
// an inode bitmap. Adapted from the teacher's drivers/unixv1/inode.go
// (RawInode/Inode/InodeManager), generalized from Unix v1's 8 uint16
// block slots to spec.md's 12 uint32 direct blocks.
package inode

import (
	"os"
	"time"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
)

// Inode is a single file or directory's metadata record (spec.md §3).
type Inode struct {
	Ino   uint64
	Kind  bwfs.Kind
	Size  uint64
	Nlink uint32
	Uid   uint32
	Gid   uint32
	Perm  os.FileMode

	Atime time.Time
	Mtime time.Time
	Ctime time.Time

	// Direct holds up to bwfs.DirectBlockCount block numbers; 0 means
	// "unused" (spec.md §3).
	Direct [bwfs.DirectBlockCount]uint32

	// SingleIndirect and DoubleIndirect are reserved per spec.md §9 and
	// never dereferenced by any operation in this implementation.
	SingleIndirect uint32
	DoubleIndirect uint32
}

// NewFile builds a freshly allocated file inode: size 0, nlink 1, all
// direct blocks unused (spec.md §4.5 create).
func NewFile(ino uint64, mode os.FileMode, uid, gid uint32, now time.Time) *Inode {
	return &Inode{
		Ino:   ino,
		Kind:  bwfs.KindFile,
		Nlink: 1,
		Uid:   uid,
		Gid:   gid,
		Perm:  mode.Perm(),
		Atime: now,
		Mtime: now,
		Ctime: now,
	}
}

// NewDirectory builds a freshly allocated directory inode with nlink 2,
// accounting for its own "." self-link (spec.md §3).
func NewDirectory(ino uint64, mode os.FileMode, uid, gid uint32, now time.Time) *Inode {
	n := NewFile(ino, mode, uid, gid, now)
	n.Kind = bwfs.KindDirectory
	n.Nlink = 2
	return n
}

// BlockCount returns the number of allocated (nonzero) direct blocks,
// used for GetAttr's "blocks" field and invariant 4 (spec.md §3, §4.5).
func (n *Inode) BlockCount() uint32 {
	count := uint32(0)
	for _, b := range n.Direct {
		if b != 0 {
			count++
		}
	}
	return count
}

// Attrs translates the inode into the host-facing Attrs struct
// (spec.md §4.5 getattr).
func (n *Inode) Attrs(bytesPerBlock int) bwfs.Attrs {
	return bwfs.Attrs{
		Ino:     n.Ino,
		Size:    n.Size,
		Blocks:  n.BlockCount(),
		Kind:    n.Kind,
		Nlink:   n.Nlink,
		Uid:     n.Uid,
		Gid:     n.Gid,
		Perm:    n.Perm,
		Atime:   n.Atime,
		Mtime:   n.Mtime,
		Ctime:   n.Ctime,
		Blksize: uint32(bytesPerBlock),
	}
}
