package debuginfo

import "math"

// ---------------------------------------------------------------------------
// DebugInfoGenerator: Mutable accumulator for debug data
// ---------------------------------------------------------------------------

// DebugInfoGenerator accumulates per-function debug data during compilation
// and serializes it into an immutable DebugInfo. The transfer is one-way:
// after SerializeWithMove the generator must not be reused, and every method
// panics if it is.
type DebugInfoGenerator struct {
	valid bool

	// Serialized source location records.
	sourcesData []byte

	// Uniquing filename storage, moved into the DebugInfo on serialization.
	filenames *FilenameTable

	// File regions mapping function spans to filenames.
	files []DebugFileRegion

	// Serialized lexical data (variable names, parent function links).
	lexicalData []byte

	// Serialized textified callee table.
	textifiedCallees []byte

	// Debug string table: size-prefixed UTF-8 payloads. Every string entry in
	// the debug records points into this table.
	stringTable []byte

	// Dedup index for stringTable: string -> offset.
	stringTableIndex map[string]uint32
}

// NewDebugInfoGenerator creates a generator that takes ownership of the given
// filename table.
func NewDebugInfoGenerator(filenames *FilenameTable) *DebugInfoGenerator {
	g := &DebugInfoGenerator{
		valid:            true,
		filenames:        filenames,
		stringTableIndex: make(map[string]uint32),
	}
	// Seed each optional-data section with its most common entry so that
	// MostCommonEntryOffset is always decodable: "no parent, 0 variables"
	// for lexical data, the empty table for textified callees.
	g.lexicalData = AppendSleb128(g.lexicalData, -1)
	g.lexicalData = AppendUleb128(g.lexicalData, 0)
	g.textifiedCallees = AppendUleb128(g.textifiedCallees, 0)
	return g
}

// delta computes to-from as an int32. The debug format stores all follow-on
// entries as signed 32-bit deltas; a wider jump means corrupt compiler
// output, which must not silently produce bad debug info.
func delta(to, from uint32) int32 {
	diff := int64(to) - int64(from)
	if diff > math.MaxInt32 || diff < math.MinInt32 {
		panic("debuginfo: delta too large when encoding debug info")
	}
	return int32(diff)
}

func (g *DebugInfoGenerator) checkValid(method string) {
	if !g.valid {
		panic("debuginfo: DebugInfoGenerator." + method + ": generator already serialized")
	}
}

// appendString interns str in the debug string table, then appends str's
// table offset to data. Strings are stored once: a repeated string reuses its
// existing offset.
func (g *DebugInfoGenerator) appendString(data []byte, str string) []byte {
	offset, ok := g.stringTableIndex[str]
	if !ok {
		offset = uint32(len(g.stringTable))
		g.stringTable = AppendUleb128(g.stringTable, uint64(len(str)))
		g.stringTable = append(g.stringTable, str...)
		g.stringTableIndex[str] = offset
	}
	return AppendUleb128(data, uint64(offset))
}

// AppendSourceLocations writes one function's location list: functionIndex
// and entry count, the start entry encoded in full, then each entry in rest
// as signed deltas from its predecessor. Addresses must be non-decreasing.
// Returns the byte offset of the record, for use as the function's
// DebugOffsets.SourceLocations.
func (g *DebugInfoGenerator) AppendSourceLocations(start DebugSourceLocation, functionIndex uint32, rest []DebugSourceLocation) uint32 {
	g.checkValid("AppendSourceLocations")

	startOffset := uint32(len(g.sourcesData))

	// Open a new file region when this function belongs to a different file
	// than the previous one. Regions are append-only and span functions until
	// the next region begins.
	if len(g.files) == 0 || g.files[len(g.files)-1].FilenameID != start.FilenameID {
		g.files = append(g.files, DebugFileRegion{
			FromFunctionID:     functionIndex,
			FilenameID:         start.FilenameID,
			SourceMappingURLID: start.SourceMappingURLID,
		})
	}

	g.sourcesData = AppendUleb128(g.sourcesData, uint64(functionIndex))
	g.sourcesData = AppendUleb128(g.sourcesData, uint64(1+len(rest)))

	// The first entry carries absolute values. sourceMappingUrl is biased by
	// one so the "none" sentinel encodes as a single zero byte.
	g.sourcesData = AppendUleb128(g.sourcesData, uint64(start.Address))
	g.sourcesData = AppendUleb128(g.sourcesData, uint64(start.FilenameID))
	if start.SourceMappingURLID == NoSourceMappingURL {
		g.sourcesData = AppendUleb128(g.sourcesData, 0)
	} else {
		g.sourcesData = AppendUleb128(g.sourcesData, uint64(start.SourceMappingURLID)+1)
	}
	g.sourcesData = AppendUleb128(g.sourcesData, uint64(start.Line))
	g.sourcesData = AppendUleb128(g.sourcesData, uint64(start.Column))
	g.sourcesData = AppendUleb128(g.sourcesData, uint64(start.Statement))

	previous := start
	for _, next := range rest {
		if next.Address < previous.Address {
			panic("debuginfo: DebugInfoGenerator.AppendSourceLocations: addresses must be non-decreasing")
		}
		g.sourcesData = AppendSleb128(g.sourcesData, int64(delta(next.Address, previous.Address)))
		g.sourcesData = AppendSleb128(g.sourcesData, int64(delta(next.FilenameID, previous.FilenameID)))
		g.sourcesData = AppendSleb128(g.sourcesData, int64(delta(next.Line, previous.Line)))
		g.sourcesData = AppendSleb128(g.sourcesData, int64(delta(next.Column, previous.Column)))
		g.sourcesData = AppendSleb128(g.sourcesData, int64(delta(next.Statement, previous.Statement)))
		previous = next
	}

	return startOffset
}

// AppendLexicalData writes a function's lexical debug data: the parent
// function back-reference (for lexical scope chain resolution) and the list
// of local variable names. Functions with no parent and no variables share
// MostCommonEntryOffset without emitting any bytes. Returns the offset in the
// lexical section.
func (g *DebugInfoGenerator) AppendLexicalData(parentFunctionIndex uint32, hasParent bool, variableNames []string) uint32 {
	g.checkValid("AppendLexicalData")

	if !hasParent && len(variableNames) == 0 {
		return MostCommonEntryOffset
	}

	startOffset := uint32(len(g.lexicalData))
	if hasParent {
		g.lexicalData = AppendSleb128(g.lexicalData, int64(parentFunctionIndex))
	} else {
		g.lexicalData = AppendSleb128(g.lexicalData, -1)
	}
	g.lexicalData = AppendUleb128(g.lexicalData, uint64(len(variableNames)))
	for _, name := range variableNames {
		g.lexicalData = g.appendString(g.lexicalData, name)
	}
	return startOffset
}

// AppendTextifiedCalleeData writes a function's textified callee table: a
// count followed by (address delta, name) pairs keyed by call-instruction
// address. Addresses must be non-decreasing. An empty table shares
// MostCommonEntryOffset. Returns the offset in the textified callee section.
func (g *DebugInfoGenerator) AppendTextifiedCalleeData(callees []DebugTextifiedCallee) uint32 {
	g.checkValid("AppendTextifiedCalleeData")

	if len(callees) == 0 {
		return MostCommonEntryOffset
	}

	startOffset := uint32(len(g.textifiedCallees))
	g.textifiedCallees = AppendUleb128(g.textifiedCallees, uint64(len(callees)))
	var previous uint32
	for _, callee := range callees {
		if callee.Address < previous {
			panic("debuginfo: DebugInfoGenerator.AppendTextifiedCalleeData: addresses must be non-decreasing")
		}
		g.textifiedCallees = AppendUleb128(g.textifiedCallees, uint64(callee.Address-previous))
		g.textifiedCallees = g.appendString(g.textifiedCallees, callee.Name)
		previous = callee.Address
	}
	return startOffset
}

// SerializeWithMove destructively moves the accumulated data into an
// immutable DebugInfo. The generator is invalid afterwards.
func (g *DebugInfoGenerator) SerializeWithMove() *DebugInfo {
	g.checkValid("SerializeWithMove")
	g.valid = false

	lexicalDataOffset := uint32(len(g.sourcesData))
	textifiedCalleeOffset := lexicalDataOffset + uint32(len(g.lexicalData))
	stringTableOffset := textifiedCalleeOffset + uint32(len(g.textifiedCallees))

	data := make([]byte, 0, int(stringTableOffset)+len(g.stringTable))
	data = append(data, g.sourcesData...)
	data = append(data, g.lexicalData...)
	data = append(data, g.textifiedCallees...)
	data = append(data, g.stringTable...)

	info := &DebugInfo{
		filenames:             g.filenames,
		files:                 g.files,
		lexicalDataOffset:     lexicalDataOffset,
		textifiedCalleeOffset: textifiedCalleeOffset,
		stringTableOffset:     stringTableOffset,
		data:                  data,
	}

	g.filenames = nil
	g.files = nil
	g.sourcesData = nil
	g.lexicalData = nil
	g.textifiedCallees = nil
	g.stringTable = nil
	g.stringTableIndex = nil

	return info
}
