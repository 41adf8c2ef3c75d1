package inode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
)

func TestNewFileStartsEmptyWithNlinkOne(t *testing.T) {
	now := time.Unix(1000, 0)
	n := NewFile(5, 0o644, 1, 1, now)

	assert.Equal(t, bwfs.KindFile, n.Kind)
	assert.Equal(t, uint32(1), n.Nlink)
	assert.Equal(t, uint64(0), n.Size)
	assert.Equal(t, uint32(0), n.BlockCount())
}

func TestNewDirectoryStartsWithNlinkTwo(t *testing.T) {
	now := time.Unix(1000, 0)
	n := NewDirectory(5, 0o755, 0, 0, now)

	assert.Equal(t, bwfs.KindDirectory, n.Kind)
	assert.Equal(t, uint32(2), n.Nlink)
}

func TestBlockCountCountsNonzeroDirectSlots(t *testing.T) {
	n := NewFile(1, 0o644, 0, 0, time.Now())
	n.Direct[0] = 7
	n.Direct[3] = 12

	assert.Equal(t, uint32(2), n.BlockCount())
}

func TestAttrsReflectsInodeFields(t *testing.T) {
	now := time.Unix(2000, 0)
	n := NewFile(9, 0o640, 1, 2, now)
	n.Size = 42
	n.Direct[0] = 1

	attrs := n.Attrs(128)
	assert.Equal(t, uint64(9), attrs.Ino)
	assert.Equal(t, uint64(42), attrs.Size)
	assert.Equal(t, uint32(1), attrs.Blocks)
	assert.Equal(t, bwfs.KindFile, attrs.Kind)
	assert.Equal(t, uint32(128), attrs.Blksize)
	assert.Equal(t, uint32(1), attrs.Uid)
	assert.Equal(t, uint32(2), attrs.Gid)
}
