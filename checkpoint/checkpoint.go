// Package checkpoint implements the metadata sidecar (spec.md §4.6): a
// full serialization of the engine's in-memory tables, written on
// fsync/unmount and loaded at mount time. The sidecar format is JSON,
// the grounded stdlib choice documented in DESIGN.md; atomic replace
// uses the same renameio helper as blockstore.
package checkpoint

import (
	"encoding/json"
	"errors"
	"log"
	"os"

	"github.com/google/renameio"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/dirtable"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/inode"
)

// ErrNoCheckpoint is returned by Load when the sidecar file doesn't
// exist. Per spec.md §4.6, this is not fatal: the caller should boot
// with an empty filesystem using block 0's declared parameters.
var ErrNoCheckpoint = errors.New("checkpoint: no sidecar file present")

// Checkpoint is the full snapshot written to the sidecar file. There is
// no next-inode counter: inode allocation is purely bitmap-driven
// (inode.Table.Allocate scans InodeBitmap for a free slot), so there is
// no separate counter state to persist.
type Checkpoint struct {
	Inodes      map[uint64]*inode.Inode      `json:"inodes"`
	Dirs        map[uint64][]dirtable.DirEntry `json:"dirs"`
	BlockBitmap []byte                       `json:"block_bitmap"`
	InodeBitmap []byte                       `json:"inode_bitmap"`
	Width       int                          `json:"width"`
	Height      int                          `json:"height"`
	TotalBlocks uint32                       `json:"total_blocks"`
	TotalInodes uint32                       `json:"total_inodes"`
	Fingerprint string                       `json:"fingerprint"`
}

// Save serializes cp and atomically replaces path (write-to-temp +
// rename, per spec.md §4.6/§5).
func Save(path string, cp Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return bwfs.ErrIOError("marshaling checkpoint: %s", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return bwfs.ErrIOError("writing checkpoint %s: %s", path, err)
	}
	return nil
}

// Load reads and decodes the sidecar at path. If the file is absent it
// returns ErrNoCheckpoint, which the caller should treat as "boot with
// an empty filesystem" rather than a fatal error.
func Load(path string) (Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("checkpoint: no sidecar at %s, booting empty", path)
			return Checkpoint{}, ErrNoCheckpoint
		}
		return Checkpoint{}, bwfs.ErrIOError("reading checkpoint %s: %s", path, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, bwfs.ErrIOError("corrupt checkpoint %s: %s", path, err)
	}
	return cp, nil
}
