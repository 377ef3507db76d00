package debuginfo

// ---------------------------------------------------------------------------
// FilenameTable: Uniquing filename storage
// ---------------------------------------------------------------------------

// filenameEntry locates one filename inside the shared storage buffer.
type filenameEntry struct {
	offset uint32
	length uint32
}

// FilenameTable interns filenames to dense IDs backed by one contiguous
// storage buffer. IDs are assigned in interning order and referenced by
// DebugSourceLocation.FilenameID and DebugFileRegion.FilenameID.
//
// The table is mutated only on the VM's single execution thread, so it
// carries no locks.
type FilenameTable struct {
	byName  map[string]uint32
	entries []filenameEntry
	storage []byte
}

// NewFilenameTable creates an empty filename table.
func NewFilenameTable() *FilenameTable {
	return &FilenameTable{
		byName: make(map[string]uint32),
	}
}

// Intern returns the ID for a filename, adding it if not present.
func (ft *FilenameTable) Intern(name string) uint32 {
	if id, ok := ft.byName[name]; ok {
		return id
	}
	id := uint32(len(ft.entries))
	ft.byName[name] = id
	ft.entries = append(ft.entries, filenameEntry{
		offset: uint32(len(ft.storage)),
		length: uint32(len(name)),
	})
	ft.storage = append(ft.storage, name...)
	return id
}

// Lookup returns the ID for a filename, or false if it was never interned.
func (ft *FilenameTable) Lookup(name string) (uint32, bool) {
	id, ok := ft.byName[name]
	return id, ok
}

// Name returns the filename for an ID. IDs are generated internally, so an
// out-of-range ID is an internal bug and panics.
func (ft *FilenameTable) Name(id uint32) string {
	if int(id) >= len(ft.entries) {
		panic("debuginfo: FilenameTable.Name: id out of bounds")
	}
	e := ft.entries[id]
	return string(ft.storage[e.offset : e.offset+e.length])
}

// Len returns the number of interned filenames.
func (ft *FilenameTable) Len() int {
	return len(ft.entries)
}
