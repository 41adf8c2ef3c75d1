package engine

import (
	"log"
	"os"
	"time"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/dirtable"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/inode"
)

// Lookup searches parent's entry list for name (spec.md §4.5).
func (fs *FS) Lookup(parent uint64, name string) (uint64, bwfs.Attrs, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parentNode := fs.inodes.Get(parent)
	if parentNode == nil {
		return 0, bwfs.Attrs{}, bwfs.ErrNotFound("parent inode %d does not exist", parent)
	}
	if parentNode.Kind != bwfs.KindDirectory {
		return 0, bwfs.Attrs{}, bwfs.ErrNotADirectory("inode %d is not a directory", parent)
	}

	entry, ok := fs.dirs.Lookup(parent, name)
	if !ok {
		return 0, bwfs.Attrs{}, bwfs.ErrNotFound("%q not found in directory %d", name, parent)
	}

	child := fs.inodes.Get(entry.ChildIno)
	if child == nil {
		return 0, bwfs.Attrs{}, bwfs.ErrIOError("dangling directory entry %q -> inode %d", name, entry.ChildIno)
	}
	return entry.ChildIno, child.Attrs(fs.bytesPerBlock), nil
}

// GetAttr returns ino's attributes (spec.md §4.5).
func (fs *FS) GetAttr(ino uint64) (bwfs.Attrs, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := fs.inodes.Get(ino)
	if n == nil {
		return bwfs.Attrs{}, bwfs.ErrNotFound("inode %d does not exist", ino)
	}
	return n.Attrs(fs.bytesPerBlock), nil
}

// Access is an always-allow stub that only verifies the inode exists
// (spec.md §4.7).
func (fs *FS) Access(ino uint64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.inodes.Get(ino) == nil {
		return bwfs.ErrNotFound("inode %d does not exist", ino)
	}
	return nil
}

// Create allocates a new file inode and links it into parent under name
// (spec.md §4.5).
func (fs *FS) Create(parent uint64, name string, mode os.FileMode, uid, gid uint32) (uint64, bwfs.Attrs, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parentNode := fs.inodes.Get(parent)
	if parentNode == nil {
		return 0, bwfs.Attrs{}, bwfs.ErrNotFound("parent inode %d does not exist", parent)
	}
	if parentNode.Kind != bwfs.KindDirectory {
		return 0, bwfs.Attrs{}, bwfs.ErrNotADirectory("inode %d is not a directory", parent)
	}
	if _, exists := fs.dirs.Lookup(parent, name); exists {
		return 0, bwfs.Attrs{}, bwfs.ErrAlreadyExists("%q already exists in directory %d", name, parent)
	}

	ino, derr := fs.inodes.Allocate()
	if derr != nil {
		return 0, bwfs.Attrs{}, derr
	}

	now := time.Now()
	n := inode.NewFile(ino, mode, uid, gid, now)
	fs.inodes.Put(n)

	if err := fs.dirs.Insert(parent, dirtable.DirEntry{ChildIno: ino, Name: name, Kind: bwfs.KindFile}); err != nil {
		fs.inodes.Release(ino)
		return 0, bwfs.Attrs{}, err
	}

	return ino, n.Attrs(fs.bytesPerBlock), nil
}

// Mkdir allocates a new directory inode and links it into parent under
// name (spec.md §4.5).
func (fs *FS) Mkdir(parent uint64, name string, mode os.FileMode, uid, gid uint32) (uint64, bwfs.Attrs, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parentNode := fs.inodes.Get(parent)
	if parentNode == nil {
		return 0, bwfs.Attrs{}, bwfs.ErrNotFound("parent inode %d does not exist", parent)
	}
	if parentNode.Kind != bwfs.KindDirectory {
		return 0, bwfs.Attrs{}, bwfs.ErrNotADirectory("inode %d is not a directory", parent)
	}
	if _, exists := fs.dirs.Lookup(parent, name); exists {
		return 0, bwfs.Attrs{}, bwfs.ErrAlreadyExists("%q already exists in directory %d", name, parent)
	}

	ino, derr := fs.inodes.Allocate()
	if derr != nil {
		return 0, bwfs.Attrs{}, derr
	}

	now := time.Now()
	n := inode.NewDirectory(ino, mode, uid, gid, now)
	fs.inodes.Put(n)
	fs.dirs.InitDir(ino, parent)

	if err := fs.dirs.Insert(parent, dirtable.DirEntry{ChildIno: ino, Name: name, Kind: bwfs.KindDirectory}); err != nil {
		fs.dirs.Delete(ino)
		fs.inodes.Release(ino)
		return 0, bwfs.Attrs{}, err
	}
	parentNode.Nlink++

	return ino, n.Attrs(fs.bytesPerBlock), nil
}

// Open verifies ino exists and is a file, then returns a fresh handle
// (spec.md §4.5).
func (fs *FS) Open(ino uint64) (uint64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := fs.inodes.Get(ino)
	if n == nil {
		return 0, bwfs.ErrNotFound("inode %d does not exist", ino)
	}
	if n.Kind != bwfs.KindFile {
		return 0, bwfs.ErrIsADirectory("inode %d is a directory", ino)
	}
	return fs.newHandle(ino, false), nil
}

// OpenDir verifies ino exists and is a directory, then returns a fresh
// handle (spec.md §4.7 opendir).
func (fs *FS) OpenDir(ino uint64) (uint64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := fs.inodes.Get(ino)
	if n == nil {
		return 0, bwfs.ErrNotFound("inode %d does not exist", ino)
	}
	if n.Kind != bwfs.KindDirectory {
		return 0, bwfs.ErrNotADirectory("inode %d is not a directory", ino)
	}
	return fs.newHandle(ino, true), nil
}

// Read fills out the byte range [offset, offset+length) of ino,
// clamped to size, reading unallocated blocks as zeros (spec.md §4.5).
func (fs *FS) Read(ino uint64, offset int64, length int) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := fs.inodes.Get(ino)
	if n == nil {
		return nil, bwfs.ErrNotFound("inode %d does not exist", ino)
	}
	if n.Kind != bwfs.KindFile {
		return nil, bwfs.ErrIsADirectory("inode %d is a directory", ino)
	}

	if offset >= int64(n.Size) || length <= 0 {
		n.Atime = time.Now()
		return []byte{}, nil
	}
	if offset+int64(length) > int64(n.Size) {
		length = int(int64(n.Size) - offset)
	}

	out := make([]byte, 0, length)
	remaining := length
	cur := offset

	for remaining > 0 {
		blockIdx := int(cur / int64(fs.bytesPerBlock))
		intraOffset := int(cur % int64(fs.bytesPerBlock))
		chunk := fs.bytesPerBlock - intraOffset
		if chunk > remaining {
			chunk = remaining
		}

		if blockIdx >= bwfs.DirectBlockCount || n.Direct[blockIdx] == 0 {
			out = append(out, make([]byte, chunk)...)
		} else {
			blockData, err := fs.store.ReadBlock(n.Direct[blockIdx])
			if err != nil {
				return nil, err
			}
			out = append(out, blockData[intraOffset:intraOffset+chunk]...)
		}

		cur += int64(chunk)
		remaining -= chunk
	}

	n.Atime = time.Now()
	return out, nil
}

// Write splices data into ino's direct blocks starting at offset,
// allocating blocks lazily as logical slots are first touched
// (spec.md §4.5). Partial writes commit what succeeded and report the
// short count alongside ErrNoSpace (see SPEC_FULL.md §4.5, policy B).
func (fs *FS) Write(ino uint64, offset int64, data []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := fs.inodes.Get(ino)
	if n == nil {
		return 0, bwfs.ErrNotFound("inode %d does not exist", ino)
	}
	if n.Kind != bwfs.KindFile {
		return 0, bwfs.ErrIsADirectory("inode %d is a directory", ino)
	}

	written := 0
	remaining := len(data)
	cur := offset

	for remaining > 0 {
		blockIdx := int(cur / int64(fs.bytesPerBlock))
		if blockIdx >= bwfs.DirectBlockCount {
			fs.commitWrite(n, offset, written)
			return written, bwfs.ErrFileTooLarge(
				"offset %d exceeds %d direct blocks of %d bytes", cur, bwfs.DirectBlockCount, fs.bytesPerBlock,
			)
		}

		intraOffset := int(cur % int64(fs.bytesPerBlock))
		chunk := fs.bytesPerBlock - intraOffset
		if chunk > remaining {
			chunk = remaining
		}

		if n.Direct[blockIdx] == 0 {
			blockNum, ok := fs.blockBitmap.Allocate(1)
			if !ok {
				fs.commitWrite(n, offset, written)
				return written, bwfs.ErrNoSpace("block bitmap exhausted (%d blocks)", fs.blockBitmap.Len())
			}
			n.Direct[blockIdx] = blockNum
		}

		existing, err := fs.store.ReadBlock(n.Direct[blockIdx])
		if err != nil {
			fs.commitWrite(n, offset, written)
			return written, err
		}
		copy(existing[intraOffset:intraOffset+chunk], data[written:written+chunk])
		if err := fs.store.WriteBlock(n.Direct[blockIdx], existing); err != nil {
			fs.commitWrite(n, offset, written)
			return written, err
		}

		written += chunk
		cur += int64(chunk)
		remaining -= chunk
	}

	fs.commitWrite(n, offset, written)
	return written, nil
}

func (fs *FS) commitWrite(n *inode.Inode, offset int64, written int) {
	if written == 0 {
		return
	}
	newSize := offset + int64(written)
	if newSize > int64(n.Size) {
		n.Size = uint64(newSize)
	}
	now := time.Now()
	n.Mtime = now
	n.Ctime = now
}

// Unlink removes name from parent and, if the target's nlink reaches
// zero, releases its blocks and its inode (spec.md §4.5).
func (fs *FS) Unlink(parent uint64, name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entry, ok := fs.dirs.Lookup(parent, name)
	if !ok {
		return bwfs.ErrNotFound("%q not found in directory %d", name, parent)
	}
	target := fs.inodes.Get(entry.ChildIno)
	if target == nil {
		return bwfs.ErrIOError("dangling directory entry %q -> inode %d", name, entry.ChildIno)
	}
	if target.Kind == bwfs.KindDirectory {
		return bwfs.ErrIsADirectory("%q is a directory, use rmdir", name)
	}

	if _, derr := fs.dirs.Remove(parent, name); derr != nil {
		return derr
	}

	target.Nlink--
	if target.Nlink == 0 {
		fs.releaseBlocks(target)
		fs.inodes.Release(target.Ino)
	}
	return nil
}

// Rmdir removes an empty directory entry from parent (spec.md §4.5).
func (fs *FS) Rmdir(parent uint64, name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entry, ok := fs.dirs.Lookup(parent, name)
	if !ok {
		return bwfs.ErrNotFound("%q not found in directory %d", name, parent)
	}
	target := fs.inodes.Get(entry.ChildIno)
	if target == nil {
		return bwfs.ErrIOError("dangling directory entry %q -> inode %d", name, entry.ChildIno)
	}
	if target.Kind != bwfs.KindDirectory {
		return bwfs.ErrNotADirectory("%q is not a directory", name)
	}
	if !fs.dirs.IsEmpty(entry.ChildIno) {
		return bwfs.ErrDirNotEmpty("directory %q is not empty", name)
	}

	if _, derr := fs.dirs.Remove(parent, name); derr != nil {
		return derr
	}
	fs.dirs.Delete(entry.ChildIno)
	fs.inodes.Release(entry.ChildIno)

	if parentNode := fs.inodes.Get(parent); parentNode != nil {
		parentNode.Nlink--
	}
	return nil
}

// Rename implements POSIX rename-replace semantics (spec.md §4.5, §9).
func (fs *FS) Rename(srcParent uint64, srcName string, dstParent uint64, dstName string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if srcParent == dstParent && srcName == dstName {
		return nil
	}

	srcEntry, ok := fs.dirs.Lookup(srcParent, srcName)
	if !ok {
		return bwfs.ErrNotFound("%q not found in directory %d", srcName, srcParent)
	}
	srcNode := fs.inodes.Get(srcEntry.ChildIno)
	if srcNode == nil {
		return bwfs.ErrIOError("dangling directory entry %q -> inode %d", srcName, srcEntry.ChildIno)
	}

	if dstEntry, exists := fs.dirs.Lookup(dstParent, dstName); exists {
		dstNode := fs.inodes.Get(dstEntry.ChildIno)
		if dstNode == nil {
			return bwfs.ErrIOError("dangling directory entry %q -> inode %d", dstName, dstEntry.ChildIno)
		}
		if dstNode.Kind != srcNode.Kind {
			return bwfs.ErrInvalidArgument("cannot rename %s onto %s of a different kind", srcNode.Kind, dstNode.Kind)
		}
		if dstNode.Kind == bwfs.KindDirectory {
			if !fs.dirs.IsEmpty(dstEntry.ChildIno) {
				return bwfs.ErrDirNotEmpty("destination directory %q is not empty", dstName)
			}
			fs.dirs.Delete(dstEntry.ChildIno)
			fs.inodes.Release(dstEntry.ChildIno)
			if p := fs.inodes.Get(dstParent); p != nil {
				p.Nlink--
			}
		} else {
			dstNode.Nlink--
			if dstNode.Nlink == 0 {
				fs.releaseBlocks(dstNode)
				fs.inodes.Release(dstNode.Ino)
			}
		}
		if _, derr := fs.dirs.Remove(dstParent, dstName); derr != nil {
			return derr
		}
	}

	// Within a single directory, the renamed entry keeps its index
	// (spec.md §3: "rename preserves position"); only a cross-directory
	// move is a fresh insertion at the destination.
	if srcParent == dstParent {
		fs.dirs.SetChildName(srcParent, srcName, dstName)
	} else {
		if _, derr := fs.dirs.Remove(srcParent, srcName); derr != nil {
			return derr
		}
		if err := fs.dirs.Insert(dstParent, dirtable.DirEntry{
			ChildIno: srcEntry.ChildIno, Name: dstName, Kind: srcEntry.Kind,
		}); err != nil {
			return err
		}
	}

	if srcNode.Kind == bwfs.KindDirectory && srcParent != dstParent {
		fs.dirs.SetParentIno(srcEntry.ChildIno, dstParent)
		if p := fs.inodes.Get(srcParent); p != nil {
			p.Nlink--
		}
		if p := fs.inodes.Get(dstParent); p != nil {
			p.Nlink++
		}
	}

	return nil
}

// Readdir returns dir's entries after skipping the first offset of them,
// so offset 0 lists the whole directory (spec.md §4.5).
func (fs *FS) Readdir(ino uint64, offset uint64) ([]dirtable.DirEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := fs.inodes.Get(ino)
	if n == nil {
		return nil, bwfs.ErrNotFound("inode %d does not exist", ino)
	}
	if n.Kind != bwfs.KindDirectory {
		return nil, bwfs.ErrNotADirectory("inode %d is not a directory", ino)
	}

	entries := fs.dirs.List(ino)
	if offset >= uint64(len(entries)) {
		return nil, nil
	}
	return entries[offset:], nil
}

// Statfs reports aggregate space/inode usage (spec.md §4.5).
func (fs *FS) Statfs() bwfs.FSStat {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return bwfs.FSStat{
		BlockSize:   uint32(fs.bytesPerBlock),
		TotalBlocks: fs.blockBitmap.Len(),
		FreeBlocks:  fs.blockBitmap.FreeCount(),
		TotalInodes: fs.inodes.Bitmap().Len(),
		FreeInodes:  fs.inodes.FreeCount(),
		NameMax:     bwfs.NameMax,
	}
}

// Fsync flushes the metadata checkpoint (spec.md §4.5, §4.6). ino is
// accepted for interface symmetry with the host callback surface but
// unused: checkpointing is always whole-filesystem (spec.md §4.6).
func (fs *FS) Fsync(ino uint64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_ = ino
	return fs.checkpointLocked()
}

// releaseBlocks frees every nonzero direct block of n back to the
// block bitmap and zeroes their image files (spec.md §4.5 unlink).
func (fs *FS) releaseBlocks(n *inode.Inode) {
	for i, b := range n.Direct {
		if b == 0 {
			continue
		}
		fs.blockBitmap.Deallocate(b)
		if err := fs.store.ZeroBlock(b); err != nil {
			log.Printf("engine: zeroing released block %d of inode %d: %s", b, n.Ino, err)
		}
		n.Direct[i] = 0
	}
	n.Size = 0
}
