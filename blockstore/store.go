// Package blockstore implements the on-disk block store (spec.md §4.2):
// a directory of PNG images, one per block, plus the superblock layout
// carried in block 0. Atomic writes are done with renameio the same way
// distr1/distri writes its package metadata, so a crash mid-write never
// leaves a half-written image behind.
package blockstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/google/renameio"

	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
	"github.com/oasolisr/OSFinalProject-BlackAndWhiteFS/codec"
)

// Superblock is the decoded content of block 0 (spec.md §3, §6).
type Superblock struct {
	Fingerprint string
	Version     string
	TotalBlocks uint32
	TotalInodes uint32
}

// Store owns a directory of block image files.
type Store struct {
	dir           string
	width, height int
	bytesPerBlock int
}

func blockFileName(dir string, index uint32) string {
	return filepath.Join(dir, fmt.Sprintf("block_%08d.png", index))
}

// Init creates the store directory, writes the superblock into block 0,
// and writes totalBlocks-1 zero-filled data blocks (spec.md §4.2 init).
func Init(dir string, width, height int, totalBlocks, totalInodes uint32, fingerprint string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, bwfs.ErrIOError("creating store directory %s: %s", dir, err)
	}

	s := &Store{dir: dir, width: width, height: height, bytesPerBlock: codec.BytesPerBlock(width, height)}

	sbBytes := encodeSuperblock(Superblock{
		Fingerprint: fingerprint,
		Version:     bwfs.SuperblockVersion,
		TotalBlocks: totalBlocks,
		TotalInodes: totalInodes,
	}, s.bytesPerBlock)

	if err := s.writeBlock(bwfs.SuperblockNumber, sbBytes); err != nil {
		return nil, err
	}

	zero := make([]byte, s.bytesPerBlock)
	for i := uint32(1); i < totalBlocks; i++ {
		if err := s.writeBlock(i, zero); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Open loads an existing store directory, reading block 0 to recover
// the dimensions-independent superblock fields. The caller is
// responsible for comparing the returned Superblock's fingerprint
// against the expected one (spec.md §3: "mismatch is fatal").
func Open(dir string, width, height int) (*Store, Superblock, error) {
	s := &Store{dir: dir, width: width, height: height, bytesPerBlock: codec.BytesPerBlock(width, height)}

	raw, err := s.readBlock(bwfs.SuperblockNumber)
	if err != nil {
		return nil, Superblock{}, err
	}
	return s, decodeSuperblock(raw), nil
}

// BytesPerBlock returns the logical payload size of one block.
func (s *Store) BytesPerBlock() int {
	return s.bytesPerBlock
}

// ReadBlock loads and decodes block i, returning exactly BytesPerBlock
// bytes (spec.md §4.2).
func (s *Store) ReadBlock(i uint32) ([]byte, error) {
	return s.readBlock(i)
}

// WriteBlock pads data to BytesPerBlock with zeros, encodes it, and
// atomically replaces block i's image file.
func (s *Store) WriteBlock(i uint32, data []byte) error {
	if len(data) > s.bytesPerBlock {
		return bwfs.ErrInvalidArgument("block %d: %d bytes exceeds block size %d", i, len(data), s.bytesPerBlock)
	}
	padded := make([]byte, s.bytesPerBlock)
	copy(padded, data)
	return s.writeBlock(i, padded)
}

// ZeroBlock overwrites block i with an all-zero image. Called when a
// block is released back to the bitmap (spec.md §4.5 unlink: "optional").
func (s *Store) ZeroBlock(i uint32) error {
	return s.WriteBlock(i, nil)
}

// VerifyFingerprint reads block 0 and compares its fingerprint field
// against expected, truncated/compared as raw ASCII (spec.md §4.2).
func (s *Store) VerifyFingerprint(expected string) (bool, error) {
	raw, err := s.readBlock(bwfs.SuperblockNumber)
	if err != nil {
		return false, err
	}
	return decodeSuperblock(raw).Fingerprint == expected, nil
}

func (s *Store) readBlock(i uint32) ([]byte, error) {
	path := blockFileName(s.dir, i)
	f, err := os.Open(path)
	if err != nil {
		return nil, bwfs.ErrIOError("reading block %d: %s", i, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, bwfs.ErrIOError("block %d: corrupt PNG: %s", i, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != s.width || bounds.Dy() != s.height {
		return nil, bwfs.ErrIOError(
			"block %d: dimension mismatch, expected %dx%d, got %dx%d",
			i, s.width, s.height, bounds.Dx(), bounds.Dy(),
		)
	}

	return codec.Decode(img, s.width, s.height), nil
}

func (s *Store) writeBlock(i uint32, data []byte) error {
	img := codec.Encode(data, s.width, s.height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return bwfs.ErrIOError("encoding block %d: %s", i, err)
	}

	path := blockFileName(s.dir, i)
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return bwfs.ErrIOError("writing block %d: %s", i, err)
	}
	return nil
}

func encodeSuperblock(sb Superblock, bytesPerBlock int) []byte {
	buf := make([]byte, bytesPerBlock)
	copy(buf[0:bwfs.FingerprintSize], sb.Fingerprint)
	copy(buf[bwfs.FingerprintSize:bwfs.FingerprintSize+bwfs.VersionSize], sb.Version)
	binary.LittleEndian.PutUint32(buf[64:68], sb.TotalBlocks)
	binary.LittleEndian.PutUint32(buf[68:72], sb.TotalInodes)
	return buf
}

func decodeSuperblock(buf []byte) Superblock {
	if len(buf) < 72 {
		log.Printf("blockstore: superblock payload too short (%d bytes)", len(buf))
		return Superblock{}
	}
	return Superblock{
		Fingerprint: trimNUL(buf[0:bwfs.FingerprintSize]),
		Version:     trimNUL(buf[bwfs.FingerprintSize : bwfs.FingerprintSize+bwfs.VersionSize]),
		TotalBlocks: binary.LittleEndian.Uint32(buf[64:68]),
		TotalInodes: binary.LittleEndian.Uint32(buf[68:72]),
	}
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
