package blockstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitThenOpenRecoversSuperblock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	_, err := Init(dir, 64, 8, 10, 32, "BWFS_v1.0")
	require.NoError(t, err)

	_, sb, err := Open(dir, 64, 8)
	require.NoError(t, err)
	assert.Equal(t, "BWFS_v1.0", sb.Fingerprint)
	assert.Equal(t, uint32(10), sb.TotalBlocks)
	assert.Equal(t, uint32(32), sb.TotalInodes)
}

func TestWriteBlockThenReadBlockRoundTrips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	store, err := Init(dir, 64, 8, 4, 8, "fp")
	require.NoError(t, err)

	payload := []byte("hello block store")
	require.NoError(t, store.WriteBlock(1, payload))

	got, err := store.ReadBlock(1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), len(payload))
	assert.Equal(t, payload, got[:len(payload)])
	for _, b := range got[len(payload):] {
		assert.Equal(t, byte(0), b)
	}
}

func TestVerifyFingerprintDetectsMismatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	store, err := Init(dir, 64, 8, 2, 8, "correct")
	require.NoError(t, err)

	ok, err := store.VerifyFingerprint("correct")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.VerifyFingerprint("wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestZeroBlockClearsPreviousContent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	store, err := Init(dir, 64, 8, 4, 8, "fp")
	require.NoError(t, err)

	require.NoError(t, store.WriteBlock(2, []byte{0xFF, 0xFF, 0xFF}))
	require.NoError(t, store.ZeroBlock(2))

	got, err := store.ReadBlock(2)
	require.NoError(t, err)
	for _, b := range got {
		assert.Equal(t, byte(0), b)
	}
}

func TestWriteBlockRejectsOversizedPayload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	store, err := Init(dir, 64, 8, 2, 8, "fp")
	require.NoError(t, err)

	err = store.WriteBlock(1, make([]byte, store.BytesPerBlock()+1))
	assert.Error(t, err)
}
