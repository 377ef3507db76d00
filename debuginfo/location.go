package debuginfo

// ---------------------------------------------------------------------------
// Debug location records
// ---------------------------------------------------------------------------

// NoOffset marks a function with no data in a given debug section.
const NoOffset = ^uint32(0)

// NoSourceMappingURL marks a location with no sourceMappingUrl entry.
const NoSourceMappingURL = ^uint32(0)

// MostCommonEntryOffset is a well-known offset shared by every function whose
// entry matches the most common shape of its table.
//
// For the lexical section that shape is "0 variables, no parent", which is
// what nearly every function looks like when compiled without full debug
// data. For the textified callee section it is the empty table. The generator
// pre-seeds both sections with that entry so the offset is always valid.
const MostCommonEntryOffset = 0

// DebugSourceLocation is the filename, line and column associated with a
// bytecode address.
type DebugSourceLocation struct {
	// Bytecode offset within the function.
	Address uint32
	// Index into the filename table.
	FilenameID uint32
	// Index of the sourceMappingUrl in the debug string table, or
	// NoSourceMappingURL.
	SourceMappingURLID uint32
	// 1-based line.
	Line uint32
	// 1-based column.
	Column uint32
	// 1-based statement index within the function. Zero means the
	// instruction is not part of any user-written statement.
	Statement uint32
}

// DebugTextifiedCallee names the callee expression of a call instruction that
// cannot be resolved to a static function name at compile time.
type DebugTextifiedCallee struct {
	// Bytecode offset of the call within the function.
	Address uint32
	// Human-readable UTF-8 name for the callee expression.
	Name string
}

// DebugOffsets holds one function's offsets into the debug data sections.
// Each is either a valid offset into its section or NoOffset.
type DebugOffsets struct {
	SourceLocations  uint32
	LexicalData      uint32
	TextifiedCallees uint32
}

// NewDebugOffsets returns offsets with every section marked absent.
func NewDebugOffsets() DebugOffsets {
	return DebugOffsets{
		SourceLocations:  NoOffset,
		LexicalData:      NoOffset,
		TextifiedCallees: NoOffset,
	}
}

// DebugFileRegion associates a contiguous span of the function table,
// starting at FromFunctionID, with a source file. Regions are append-only and
// ordered by compilation unit; a region extends until the next region begins.
type DebugFileRegion struct {
	FromFunctionID     uint32
	FilenameID         uint32
	SourceMappingURLID uint32
}

// DebugSearchResult is the outcome of searching for the bytecode address of a
// source position.
type DebugSearchResult struct {
	// Index of the function whose location list matched.
	FunctionIndex uint32
	// Instruction offset from the start of that function.
	BytecodeOffset uint32
	// The line the search actually found.
	Line uint32
	// The column the search actually found.
	Column uint32
}
