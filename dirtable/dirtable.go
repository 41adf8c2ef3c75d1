// Package dirtable implements the in-memory directory table (spec.md
// §4.4/§4.5): an ordered list of (name, child-inode, kind) entries per
// directory inode. Adapted from the teacher's drivers/unixv1/dirents.go
// and drivers/common/basedriver/dirent.go.
package dirtable

import (
	bwfs "github.com/oasolisr/OSFinalProject-BlackAndWhiteFS"
)

// DirEntry is a single directory entry (spec.md §3).
type DirEntry struct {
	ChildIno uint64
	Name     string
	Kind     bwfs.Kind
}

// Table maps a directory's inode number to its ordered entry list.
type Table struct {
	dirs map[uint64][]DirEntry
}

// NewTable creates an empty directory table.
func NewTable() *Table {
	return &Table{dirs: make(map[uint64][]DirEntry)}
}

// FromMap rebuilds a Table from a checkpointed entry map.
func FromMap(dirs map[uint64][]DirEntry) *Table {
	if dirs == nil {
		dirs = make(map[uint64][]DirEntry)
	}
	return &Table{dirs: dirs}
}

// All returns the full backing map, for checkpointing.
func (t *Table) All() map[uint64][]DirEntry {
	return t.dirs
}

// InitRoot seeds ino's entry list with "." and ".." both pointing at
// itself, the special case for the root directory (spec.md §3).
func (t *Table) InitRoot(ino uint64) {
	t.dirs[ino] = []DirEntry{
		{ChildIno: ino, Name: ".", Kind: bwfs.KindDirectory},
		{ChildIno: ino, Name: "..", Kind: bwfs.KindDirectory},
	}
}

// InitDir seeds a freshly created directory ino's entry list, with ".."
// pointing at parent (spec.md §4.5 mkdir).
func (t *Table) InitDir(ino, parent uint64) {
	t.dirs[ino] = []DirEntry{
		{ChildIno: ino, Name: ".", Kind: bwfs.KindDirectory},
		{ChildIno: parent, Name: "..", Kind: bwfs.KindDirectory},
	}
}

// List returns dir's entries in order, or nil if dir has no entries.
func (t *Table) List(dir uint64) []DirEntry {
	return t.dirs[dir]
}

// Lookup finds the entry named name within dir.
func (t *Table) Lookup(dir uint64, name string) (DirEntry, bool) {
	for _, e := range t.dirs[dir] {
		if e.Name == name {
			return e, true
		}
	}
	return DirEntry{}, false
}

// Insert appends a new entry to dir's list, preserving insertion order
// after "." and "..". Fails with AlreadyExists if name is already
// present (spec.md §4.4: "the engine enforces" the duplicate check).
func (t *Table) Insert(dir uint64, entry DirEntry) *bwfs.DriverError {
	if _, exists := t.Lookup(dir, entry.Name); exists {
		return bwfs.ErrAlreadyExists("%q already exists in directory %d", entry.Name, dir)
	}
	t.dirs[dir] = append(t.dirs[dir], entry)
	return nil
}

// Remove deletes the entry named name from dir, returning it.
func (t *Table) Remove(dir uint64, name string) (DirEntry, *bwfs.DriverError) {
	entries := t.dirs[dir]
	for i, e := range entries {
		if e.Name == name {
			t.dirs[dir] = append(entries[:i:i], entries[i+1:]...)
			return e, nil
		}
	}
	return DirEntry{}, bwfs.ErrNotFound("%q not found in directory %d", name, dir)
}

// IsEmpty reports whether dir's entry list contains only "." and "..",
// the precondition for rmdir (spec.md §4.5).
func (t *Table) IsEmpty(dir uint64) bool {
	return len(t.dirs[dir]) <= 2
}

// SetChildName renames the entry named oldName within dir to newName,
// in place, without moving its position in the entry list (spec.md
// §3: "rename preserves position"). Used by engine.FS.Rename for
// same-directory renames.
func (t *Table) SetChildName(dir uint64, oldName, newName string) {
	entries := t.dirs[dir]
	for i := range entries {
		if entries[i].Name == oldName {
			entries[i].Name = newName
			return
		}
	}
}

// SetParentIno rewrites the ".." entry of dir to point at newParent,
// used when a directory is moved across parents (spec.md §9).
func (t *Table) SetParentIno(dir, newParent uint64) {
	entries := t.dirs[dir]
	for i := range entries {
		if entries[i].Name == ".." {
			entries[i].ChildIno = newParent
			return
		}
	}
}

// Delete removes dir's entry list entirely, called when its inode is
// destroyed (spec.md §4.5 rmdir).
func (t *Table) Delete(dir uint64) {
	delete(t.dirs, dir)
}

// SubdirCount returns the number of direct subdirectories, the count
// invariant 5 relates to a directory's nlink (nlink == 2 + subdirectory
// count). The engine does not call it.
func (t *Table) SubdirCount(dir uint64) int {
	count := 0
	for _, e := range t.dirs[dir] {
		if e.Kind == bwfs.KindDirectory && e.Name != "." && e.Name != ".." {
			count++
		}
	}
	return count
}
