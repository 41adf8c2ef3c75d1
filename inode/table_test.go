package inode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
)

func TestNewTableReservesBitZeroAndRoot(t *testing.T) {
	tbl := NewTable(16)
	assert.True(t, tbl.Bitmap().IsSet(0))
	assert.True(t, tbl.Bitmap().IsSet(uint32(bwfs.RootIno)))
}

func TestAllocateSkipsReservedBits(t *testing.T) {
	tbl := NewTable(16)

	ino, err := tbl.Allocate()
	require.Nil(t, err)
	assert.Equal(t, uint64(2), ino)
}

func TestAllocateFailsWhenTableFull(t *testing.T) {
	tbl := NewTable(2)

	_, err := tbl.Allocate()
	assert.NotNil(t, err)
	assert.Equal(t, bwfs.KindNoSpace, err.Kind)
}

func TestPutAndGetRoundTrip(t *testing.T) {
	tbl := NewTable(16)
	n := NewFile(2, 0o644, 0, 0, time.Now())
	tbl.Put(n)

	assert.Same(t, n, tbl.Get(2))
	assert.Nil(t, tbl.Get(99))
}

func TestReleaseFreesBitAndDropsRecord(t *testing.T) {
	tbl := NewTable(16)
	n := NewFile(2, 0o644, 0, 0, time.Now())
	tbl.Put(n)

	tbl.Release(2)
	assert.Nil(t, tbl.Get(2))
	assert.False(t, tbl.Bitmap().IsSet(2))
}

func TestFromBitmapRestoresGivenState(t *testing.T) {
	tbl := NewTable(16)
	n := NewFile(2, 0o644, 0, 0, time.Now())
	tbl.Put(n)

	restored := FromBitmap(tbl.Bitmap(), tbl.All())
	assert.Same(t, n, restored.Get(2))
}
