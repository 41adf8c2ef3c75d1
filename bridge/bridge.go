// Package bridge implements the FUSE host bridge (C8, spec.md §4.7): a
// thin fs.InodeEmbedder adapter translating the kernel's path-walking
// callbacks into calls against an engine.FS, and bwfs.DriverError
// results back into syscall.Errno. Grounded on the high-level
// fs.InodeEmbedder API demonstrated in hanwen/go-fuse's fs package
// (see fs-api.go in the retrieval pack) rather than on anything in the
// teacher, which never implements a live FUSE server.
package bridge

import (
	"context"
	"os"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/engine"
)

// Node is the single InodeEmbedder type used for every file and
// directory in the tree; which behavior applies is determined purely
// by the inode number it wraps and the engine's own bookkeeping, not
// by the node's Go type.
type Node struct {
	fs.Inode

	eng *engine.FS
	ino uint64
}

var (
	_ fs.InodeEmbedder = (*Node)(nil)
	_ fs.NodeLookuper  = (*Node)(nil)
	_ fs.NodeGetattrer = (*Node)(nil)
	_ fs.NodeCreater   = (*Node)(nil)
	_ fs.NodeOpener    = (*Node)(nil)
	_ fs.NodeOpendirer = (*Node)(nil)
	_ fs.NodeReader    = (*Node)(nil)
	_ fs.NodeWriter    = (*Node)(nil)
	_ fs.NodeMkdirer   = (*Node)(nil)
	_ fs.NodeUnlinker  = (*Node)(nil)
	_ fs.NodeRmdirer   = (*Node)(nil)
	_ fs.NodeRenamer   = (*Node)(nil)
	_ fs.NodeReaddirer = (*Node)(nil)
	_ fs.NodeStatfser  = (*Node)(nil)
	_ fs.NodeAccesser  = (*Node)(nil)
	_ fs.NodeFsyncer   = (*Node)(nil)
	_ fs.NodeFlusher   = (*Node)(nil)
	_ fs.NodeReleaser  = (*Node)(nil)
)

// Root constructs the node for the tree root, to be handed to fs.Mount.
func Root(eng *engine.FS) *Node {
	return &Node{eng: eng, ino: bwfs.RootIno}
}

func modeBits(kind bwfs.Kind, perm os.FileMode) uint32 {
	if kind == bwfs.KindDirectory {
		return syscall.S_IFDIR | uint32(perm)
	}
	return syscall.S_IFREG | uint32(perm)
}

func fillAttr(out *fuse.Attr, a bwfs.Attrs) {
	out.Ino = a.Ino
	out.Size = a.Size
	out.Blocks = uint64(a.Blocks)
	out.Nlink = a.Nlink
	out.Uid = a.Uid
	out.Gid = a.Gid
	out.Mode = modeBits(a.Kind, a.Perm)
	out.Blksize = a.Blksize
	out.SetTimes(&a.Atime, &a.Mtime, &a.Ctime)
}

// toErrno maps a bwfs.DriverError (or any other error) to the errno the
// kernel expects (spec.md §4.5 "error model").
func toErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	if derr, ok := err.(*bwfs.DriverError); ok {
		return derr.Errno()
	}
	return syscall.EIO
}

func (n *Node) child(ino uint64, attrs bwfs.Attrs) *fs.Inode {
	child := &Node{eng: n.eng, ino: ino}
	return n.NewInode(context.Background(), child, fs.StableAttr{
		Mode: modeBits(attrs.Kind, attrs.Perm),
		Ino:  ino,
	})
}

// Lookup implements fs.NodeLookuper (spec.md §4.5 lookup).
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	ino, attrs, err := n.eng.Lookup(n.ino, name)
	if err != nil {
		return nil, toErrno(err)
	}
	fillAttr(&out.Attr, attrs)
	return n.child(ino, attrs), 0
}

// Getattr implements fs.NodeGetattrer (spec.md §4.5 getattr).
func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	attrs, err := n.eng.GetAttr(n.ino)
	if err != nil {
		return toErrno(err)
	}
	fillAttr(&out.Attr, attrs)
	return 0
}

// Access implements fs.NodeAccesser (spec.md §4.7).
func (n *Node) Access(ctx context.Context, mask uint32) syscall.Errno {
	return toErrno(n.eng.Access(n.ino))
}

// Create implements fs.NodeCreater (spec.md §4.5 create).
func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	caller, _ := fuse.FromContext(ctx)
	var uid, gid uint32
	if caller != nil {
		uid, gid = caller.Uid, caller.Gid
	}

	ino, attrs, err := n.eng.Create(n.ino, name, os.FileMode(mode), uid, gid)
	if err != nil {
		return nil, nil, 0, toErrno(err)
	}
	fillAttr(&out.Attr, attrs)
	return n.child(ino, attrs), nil, 0, 0
}

// Mkdir implements fs.NodeMkdirer (spec.md §4.5 mkdir).
func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	caller, _ := fuse.FromContext(ctx)
	var uid, gid uint32
	if caller != nil {
		uid, gid = caller.Uid, caller.Gid
	}

	ino, attrs, err := n.eng.Mkdir(n.ino, name, os.FileMode(mode), uid, gid)
	if err != nil {
		return nil, toErrno(err)
	}
	fillAttr(&out.Attr, attrs)
	return n.child(ino, attrs), 0
}

// Open implements fs.NodeOpener. BWFS has no per-handle state beyond
// the engine's own bookkeeping, so no FileHandle is returned (spec.md
// §4.5 open, §4.7).
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if _, err := n.eng.Open(n.ino); err != nil {
		return nil, 0, toErrno(err)
	}
	return nil, 0, 0
}

// Opendir implements fs.NodeOpendirer (spec.md §4.7).
func (n *Node) Opendir(ctx context.Context) syscall.Errno {
	_, err := n.eng.OpenDir(n.ino)
	return toErrno(err)
}

// Read implements fs.NodeReader (spec.md §4.5 read).
func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.eng.Read(n.ino, off, len(dest))
	if err != nil {
		return nil, toErrno(err)
	}
	return fuse.ReadResultData(data), 0
}

// Write implements fs.NodeWriter (spec.md §4.5 write, write policy B
// in SPEC_FULL.md §4.5).
func (n *Node) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, err := n.eng.Write(n.ino, off, data)
	return uint32(written), toErrno(err)
}

// Unlink implements fs.NodeUnlinker (spec.md §4.5 unlink).
func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return toErrno(n.eng.Unlink(n.ino, name))
}

// Rmdir implements fs.NodeRmdirer (spec.md §4.5 rmdir).
func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return toErrno(n.eng.Rmdir(n.ino, name))
}

// Rename implements fs.NodeRenamer (spec.md §4.5 rename, §9).
func (n *Node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	dst, ok := newParent.(*Node)
	if !ok {
		return syscall.EINVAL
	}
	return toErrno(n.eng.Rename(n.ino, name, dst.ino, newName))
}

// Readdir implements fs.NodeReaddirer (spec.md §4.5 readdir).
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := n.eng.Readdir(n.ino, 0)
	if err != nil {
		return nil, toErrno(err)
	}

	list := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		mode := uint32(syscall.S_IFREG)
		if e.Kind == bwfs.KindDirectory {
			mode = syscall.S_IFDIR
		}
		list = append(list, fuse.DirEntry{Name: e.Name, Ino: e.ChildIno, Mode: mode})
	}
	return fs.NewListDirStream(list), 0
}

// Statfs implements fs.NodeStatfser (spec.md §4.5 statfs).
func (n *Node) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	stat := n.eng.Statfs()
	out.Blocks = uint64(stat.TotalBlocks)
	out.Bfree = uint64(stat.FreeBlocks)
	out.Bavail = uint64(stat.FreeBlocks)
	out.Files = uint64(stat.TotalInodes)
	out.Ffree = uint64(stat.FreeInodes)
	out.Bsize = stat.BlockSize
	out.NameLen = stat.NameMax
	return 0
}

// Fsync implements fs.NodeFsyncer (spec.md §4.5 fsync, §4.6).
func (n *Node) Fsync(ctx context.Context, f fs.FileHandle, flags uint32) syscall.Errno {
	return toErrno(n.eng.Fsync(n.ino))
}

// Release implements fs.NodeReleaser. Open hands the kernel no
// FileHandle, so there is no engine handle to name here and this does
// not call engine.FS.Release.
func (n *Node) Release(ctx context.Context, f fs.FileHandle) syscall.Errno {
	return 0
}

// Flush implements fs.NodeFlusher. BWFS writes go straight through to
// the block store on every Write call, so there is no write-back
// buffer for a close-time flush to drain.
func (n *Node) Flush(ctx context.Context, f fs.FileHandle) syscall.Errno {
	return 0
}
