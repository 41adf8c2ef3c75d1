package dirtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
)

func TestInitRootSeedsDotAndDotDot(t *testing.T) {
	tbl := NewTable()
	tbl.InitRoot(1)

	entries := tbl.List(1)
	require.Len(t, entries, 2)
	assert.Equal(t, ".", entries[0].Name)
	assert.Equal(t, "..", entries[1].Name)
	assert.Equal(t, uint64(1), entries[0].ChildIno)
	assert.Equal(t, uint64(1), entries[1].ChildIno)
}

func TestInitDirPointsDotDotAtParent(t *testing.T) {
	tbl := NewTable()
	tbl.InitDir(5, 1)

	entry, ok := tbl.Lookup(5, "..")
	require.True(t, ok)
	assert.Equal(t, uint64(1), entry.ChildIno)
}

func TestInsertRejectsDuplicateNames(t *testing.T) {
	tbl := NewTable()
	tbl.InitRoot(1)

	require.Nil(t, tbl.Insert(1, DirEntry{ChildIno: 2, Name: "a.txt", Kind: bwfs.KindFile}))

	err := tbl.Insert(1, DirEntry{ChildIno: 3, Name: "a.txt", Kind: bwfs.KindFile})
	require.NotNil(t, err)
	assert.Equal(t, bwfs.KindAlreadyExists, err.Kind)
}

func TestRemoveDeletesAndReportsMissing(t *testing.T) {
	tbl := NewTable()
	tbl.InitRoot(1)
	require.Nil(t, tbl.Insert(1, DirEntry{ChildIno: 2, Name: "a.txt", Kind: bwfs.KindFile}))

	removed, err := tbl.Remove(1, "a.txt")
	require.Nil(t, err)
	assert.Equal(t, uint64(2), removed.ChildIno)

	_, err = tbl.Remove(1, "a.txt")
	require.NotNil(t, err)
	assert.Equal(t, bwfs.KindNotFound, err.Kind)
}

func TestIsEmptyOnlyCountsRealEntries(t *testing.T) {
	tbl := NewTable()
	tbl.InitRoot(1)
	assert.True(t, tbl.IsEmpty(1))

	require.Nil(t, tbl.Insert(1, DirEntry{ChildIno: 2, Name: "a.txt", Kind: bwfs.KindFile}))
	assert.False(t, tbl.IsEmpty(1))
}

func TestSetParentInoRewritesDotDot(t *testing.T) {
	tbl := NewTable()
	tbl.InitDir(5, 1)
	tbl.SetParentIno(5, 7)

	entry, ok := tbl.Lookup(5, "..")
	require.True(t, ok)
	assert.Equal(t, uint64(7), entry.ChildIno)
}

func TestSubdirCountIgnoresDotEntries(t *testing.T) {
	tbl := NewTable()
	tbl.InitRoot(1)
	require.Nil(t, tbl.Insert(1, DirEntry{ChildIno: 2, Name: "sub", Kind: bwfs.KindDirectory}))
	require.Nil(t, tbl.Insert(1, DirEntry{ChildIno: 3, Name: "file.txt", Kind: bwfs.KindFile}))

	assert.Equal(t, 1, tbl.SubdirCount(1))
}
