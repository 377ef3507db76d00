package stacktrace

// ---------------------------------------------------------------------------
// StringTable: Interned frame names and script names
// ---------------------------------------------------------------------------

// StringID identifies an interned string.
type StringID uint32

// StringTable interns the names and script names referenced by tree nodes.
// The tree and its table are mutated only on the VM's single execution
// thread, so the table carries no locks.
type StringTable struct {
	byName map[string]StringID
	byID   []string
}

// NewStringTable creates a new empty string table.
func NewStringTable() *StringTable {
	return &StringTable{
		byName: make(map[string]StringID),
		byID:   make([]string, 0, 64),
	}
}

// Intern returns the ID for a string, creating a new one if needed.
func (st *StringTable) Intern(name string) StringID {
	if id, ok := st.byName[name]; ok {
		return id
	}
	id := StringID(len(st.byID))
	st.byName[name] = id
	st.byID = append(st.byID, name)
	return id
}

// Lookup returns the ID for a string, or false if it was never interned.
func (st *StringTable) Lookup(name string) (StringID, bool) {
	id, ok := st.byName[name]
	return id, ok
}

// Name returns the string for an ID, or "" if invalid.
func (st *StringTable) Name(id StringID) string {
	if int(id) >= len(st.byID) {
		return ""
	}
	return st.byID[id]
}

// Len returns the number of interned strings.
func (st *StringTable) Len() int {
	return len(st.byID)
}
