package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/dirtable"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/inode"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")

	root := inode.NewDirectory(1, 0o755, 0, 0, time.Unix(0, 0))
	cp := Checkpoint{
		Inodes: map[uint64]*inode.Inode{1: root},
		Dirs: map[uint64][]dirtable.DirEntry{
			1: {{ChildIno: 1, Name: "."}, {ChildIno: 1, Name: ".."}},
		},
		BlockBitmap: []byte{0x01},
		InodeBitmap: []byte{0x03},
		Width:       64,
		Height:      8,
		TotalBlocks: 10,
		TotalInodes: 16,
		Fingerprint: "BWFS_v1.0",
	}

	require.NoError(t, Save(path, cp))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cp.Fingerprint, loaded.Fingerprint)
	assert.Equal(t, cp.TotalBlocks, loaded.TotalBlocks)
	assert.Equal(t, cp.BlockBitmap, loaded.BlockBitmap)
	require.Contains(t, loaded.Inodes, uint64(1))
	assert.Equal(t, root.Nlink, loaded.Inodes[1].Nlink)
	require.Contains(t, loaded.Dirs, uint64(1))
	assert.Len(t, loaded.Dirs[1], 2)
}

func TestLoadMissingFileReturnsErrNoCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNoCheckpoint)
}

func TestSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")

	require.NoError(t, Save(path, Checkpoint{Fingerprint: "a"}))
	entriesBefore, err := os.ReadDir(dir)
	require.NoError(t, err)

	require.NoError(t, Save(path, Checkpoint{Fingerprint: "b"}))
	entriesAfter, err := os.ReadDir(dir)
	require.NoError(t, err)

	assert.Len(t, entriesBefore, 1)
	assert.Len(t, entriesAfter, 1, "no stray temp files should remain after a successful atomic replace")
}
