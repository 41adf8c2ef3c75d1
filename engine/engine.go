// Package engine implements the filesystem engine (C6, spec.md §4.5):
// the single mutator of the block store, both bitmaps, the inode table,
// and the directory table. Path-walking style and error idiom are
// grounded on the teacher's drivers/common/basedriver/driver.go, adapted
// from path-based resolution to the ino-based lookup contract the host
// bridge (and FUSE itself) actually uses.
package engine

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/bitmap"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/blockstore"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/checkpoint"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/dirtable"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/inode"
)

const checkpointFileName = "metadata.json"

// FS is the filesystem engine. Every exported method takes the single
// coarse lock for its whole duration (spec.md §5): the linearization
// point is lock acquisition, and the lock is deliberately held across
// block I/O.
type FS struct {
	mu sync.Mutex

	store       *blockstore.Store
	blockBitmap *bitmap.Bitmap
	inodes      *inode.Table
	dirs        *dirtable.Table

	width, height int
	bytesPerBlock int
	fingerprint   string
	sidecarPath   string

	nextHandle uint64
	handles    map[uint64]handle

	// OnReplicate is a seam for an out-of-scope replication
	// collaborator. The engine stores it but never calls it, and never
	// calls into any network code itself (spec.md §9: "we do not
	// speculate on any cross-node replication semantics").
	OnReplicate func(op ReplicatedOp)
}

// ReplicatedOp describes a single mutation for an optional replication
// hook (spec.md §9, SPEC_FULL.md §6).
type ReplicatedOp struct {
	Kind   string
	Parent uint64
	Name   string
	Ino    uint64
}

type handle struct {
	ino uint64
	dir bool
}

// Mkfs initializes a brand-new store at cfg.StoragePath and returns a
// mounted engine over it (spec.md §4.2 init, §4.5).
func Mkfs(cfg bwfs.Config) (*FS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := blockstore.Init(cfg.StoragePath, cfg.BlockWidth, cfg.BlockHeight, cfg.TotalBlocks, cfg.TotalInodes, cfg.Fingerprint)
	if err != nil {
		return nil, err
	}

	fs := &FS{
		store:         store,
		blockBitmap:   bitmap.New(cfg.TotalBlocks),
		width:         cfg.BlockWidth,
		height:        cfg.BlockHeight,
		bytesPerBlock: cfg.BytesPerBlock(),
		fingerprint:   cfg.Fingerprint,
		sidecarPath:   filepath.Join(cfg.StoragePath, checkpointFileName),
		handles:       make(map[uint64]handle),
	}
	fs.blockBitmap.Set(bwfs.SuperblockNumber, true)

	fs.inodes = inode.NewTable(cfg.TotalInodes)
	fs.dirs = dirtable.NewTable()

	now := time.Now()
	root := inode.NewDirectory(bwfs.RootIno, 0o755, 0, 0, now)
	fs.inodes.Put(root)
	fs.dirs.InitRoot(bwfs.RootIno)

	if err := fs.checkpointLocked(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Mount opens an existing store at cfg.StoragePath, verifies its
// fingerprint, and restores engine state from the metadata sidecar
// (spec.md §4.6). A fingerprint mismatch is fatal and aborts the mount
// (spec.md §3, §7); it is returned as a plain error, not a
// bwfs.DriverError, since it never maps to an errno for a live mount.
func Mount(cfg bwfs.Config) (*FS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, sb, err := blockstore.Open(cfg.StoragePath, cfg.BlockWidth, cfg.BlockHeight)
	if err != nil {
		return nil, err
	}
	if sb.Fingerprint != cfg.Fingerprint {
		return nil, fmt.Errorf(
			"fingerprint mismatch, store has %q, config expects %q",
			sb.Fingerprint, cfg.Fingerprint,
		)
	}

	fs := &FS{
		store:         store,
		width:         cfg.BlockWidth,
		height:        cfg.BlockHeight,
		bytesPerBlock: cfg.BytesPerBlock(),
		fingerprint:   sb.Fingerprint,
		sidecarPath:   filepath.Join(cfg.StoragePath, checkpointFileName),
		handles:       make(map[uint64]handle),
	}

	cp, err := checkpoint.Load(fs.sidecarPath)
	if err == checkpoint.ErrNoCheckpoint {
		log.Printf("engine: booting empty filesystem from superblock parameters at %s", cfg.StoragePath)
		fs.blockBitmap = bitmap.New(sb.TotalBlocks)
		fs.blockBitmap.Set(bwfs.SuperblockNumber, true)
		fs.inodes = inode.NewTable(sb.TotalInodes)
		fs.dirs = dirtable.NewTable()

		root := inode.NewDirectory(bwfs.RootIno, 0o755, 0, 0, time.Now())
		fs.inodes.Put(root)
		fs.dirs.InitRoot(bwfs.RootIno)
		return fs, nil
	}
	if err != nil {
		return nil, err
	}
	if cp.Fingerprint != sb.Fingerprint {
		return nil, fmt.Errorf(
			"fingerprint mismatch, sidecar has %q, superblock has %q",
			cp.Fingerprint, sb.Fingerprint,
		)
	}

	fs.blockBitmap = bitmap.FromBytes(cp.BlockBitmap, cp.TotalBlocks)
	inodeBitmap := bitmap.FromBytes(cp.InodeBitmap, cp.TotalInodes)
	fs.inodes = inode.FromBitmap(inodeBitmap, cp.Inodes)
	fs.dirs = dirtable.FromMap(cp.Dirs)
	return fs, nil
}

// Checkpoint flushes engine state to the metadata sidecar (spec.md §4.6,
// invoked by Fsync and on unmount).
func (fs *FS) Checkpoint() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.checkpointLocked()
}

func (fs *FS) checkpointLocked() error {
	cp := checkpoint.Checkpoint{
		Inodes:      fs.inodes.All(),
		Dirs:        fs.dirs.All(),
		BlockBitmap: fs.blockBitmap.Bytes(),
		InodeBitmap: fs.inodes.Bitmap().Bytes(),
		Width:       fs.width,
		Height:      fs.height,
		TotalBlocks: fs.blockBitmap.Len(),
		TotalInodes: fs.inodes.Bitmap().Len(),
		Fingerprint: fs.fingerprint,
	}
	return checkpoint.Save(fs.sidecarPath, cp)
}

// Unmount flushes a final checkpoint. The store itself needs no
// explicit close since blockstore opens and closes image files per
// operation (spec.md §5).
func (fs *FS) Unmount() error {
	return fs.Checkpoint()
}

// newHandle allocates a fresh, monotonically increasing file handle
// (spec.md §4.5 open, §4.7).
func (fs *FS) newHandle(ino uint64, dir bool) uint64 {
	fs.nextHandle++
	fh := fs.nextHandle
	fs.handles[fh] = handle{ino: ino, dir: dir}
	return fh
}

// Release drops a previously issued handle. The engine has no other
// per-handle state to clean up (spec.md §4.5 open: "opaque counters").
func (fs *FS) Release(fh uint64) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.handles, fh)
}

func permOf(mode os.FileMode) os.FileMode {
	return mode & os.ModePerm
}
