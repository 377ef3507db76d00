package debuginfo

import (
	"fmt"
	"io"
)

// ---------------------------------------------------------------------------
// DebugInfo: Immutable container for serialized debug data
// ---------------------------------------------------------------------------

// DebugInfo holds a compiled module's debug data: the filename table, the
// file-region list, and one contiguous byte buffer logically partitioned as
//
//	[sourceLocations][lexicalData][textifiedCallees][stringTable]
//	                 |            |                 ^ stringTableOffset
//	                 |            ^ textifiedCalleeOffset
//	                 ^ lexicalDataOffset
//
// It is read-only after construction; a DebugInfo is only produced by
// DebugInfoGenerator.SerializeWithMove or by reading a serialized file.
type DebugInfo struct {
	filenames             *FilenameTable
	files                 []DebugFileRegion
	lexicalDataOffset     uint32
	textifiedCalleeOffset uint32
	stringTableOffset     uint32
	data                  []byte
}

// Files returns the file-region list.
func (d *DebugInfo) Files() []DebugFileRegion {
	return d.files
}

// Data returns the raw debug data buffer.
func (d *DebugInfo) Data() []byte {
	return d.data
}

// LexicalDataOffset returns the offset of the lexical data section.
func (d *DebugInfo) LexicalDataOffset() uint32 {
	return d.lexicalDataOffset
}

// TextifiedCalleeOffset returns the offset of the textified callee section.
func (d *DebugInfo) TextifiedCalleeOffset() uint32 {
	return d.textifiedCalleeOffset
}

// StringTableOffset returns the offset of the debug string table.
func (d *DebugInfo) StringTableOffset() uint32 {
	return d.stringTableOffset
}

// StringTableSizeBytes returns the size in bytes of the debug string table.
func (d *DebugInfo) StringTableSizeBytes() uint32 {
	return uint32(len(d.data)) - d.stringTableOffset
}

// Filenames returns the filename table.
func (d *DebugInfo) Filenames() *FilenameTable {
	return d.filenames
}

// FilenameByID returns the filename for an ID. Panics if the ID is out of
// bounds: filename IDs are generated internally and never come from
// untrusted input.
func (d *DebugInfo) FilenameByID(id uint32) string {
	return d.filenames.Name(id)
}

// Section accessors.

func (d *DebugInfo) sourceLocationsData() []byte {
	return d.data[:d.lexicalDataOffset]
}

func (d *DebugInfo) lexicalData() []byte {
	return d.data[d.lexicalDataOffset:d.textifiedCalleeOffset]
}

func (d *DebugInfo) textifiedCalleeData() []byte {
	return d.data[d.textifiedCalleeOffset:d.stringTableOffset]
}

func (d *DebugInfo) stringTableData() []byte {
	return d.data[d.stringTableOffset:]
}

// getString decodes the size-prefixed string at offset in the string table.
func (d *DebugInfo) getString(offset uint32) string {
	table := d.stringTableData()
	if int(offset) >= len(table) {
		panic("debuginfo: DebugInfo.getString: offset out of bounds")
	}
	length, next := ReadUleb128(table, int(offset))
	end := next + int(length)
	if end > len(table) {
		panic("debuginfo: DebugInfo.getString: string extends past table")
	}
	return string(table[next:end])
}

// decodeLocationRecord decodes the function location record at offset in
// section, calling visit for every entry in encoding order. Returns the
// record's function index and the offset of the next record.
func decodeLocationRecord(section []byte, offset int, visit func(DebugSourceLocation)) (uint32, int) {
	fnIndex, off := ReadUleb128(section, offset)
	count, off := ReadUleb128(section, off)
	if count == 0 {
		return uint32(fnIndex), off
	}

	var cur DebugSourceLocation
	address, off := ReadUleb128(section, off)
	filenameID, off := ReadUleb128(section, off)
	urlBiased, off := ReadUleb128(section, off)
	line, off := ReadUleb128(section, off)
	column, off := ReadUleb128(section, off)
	statement, off := ReadUleb128(section, off)
	cur = DebugSourceLocation{
		Address:            uint32(address),
		FilenameID:         uint32(filenameID),
		SourceMappingURLID: NoSourceMappingURL,
		Line:               uint32(line),
		Column:             uint32(column),
		Statement:          uint32(statement),
	}
	if urlBiased != 0 {
		cur.SourceMappingURLID = uint32(urlBiased - 1)
	}
	visit(cur)

	for i := uint64(1); i < count; i++ {
		var ad, fd, ld, cd, sd int64
		ad, off = ReadSleb128(section, off)
		fd, off = ReadSleb128(section, off)
		ld, off = ReadSleb128(section, off)
		cd, off = ReadSleb128(section, off)
		sd, off = ReadSleb128(section, off)
		cur.Address = uint32(int64(cur.Address) + ad)
		cur.FilenameID = uint32(int64(cur.FilenameID) + fd)
		cur.Line = uint32(int64(cur.Line) + ld)
		cur.Column = uint32(int64(cur.Column) + cd)
		cur.Statement = uint32(int64(cur.Statement) + sd)
		visit(cur)
	}
	return uint32(fnIndex), off
}

// GetLocationForAddress returns the last location in the function's list
// whose address is at or before offsetInFunction. debugOffset is the
// function's DebugOffsets.SourceLocations. Returns false when the list is
// empty or the first recorded address already exceeds the query.
func (d *DebugInfo) GetLocationForAddress(debugOffset, offsetInFunction uint32) (DebugSourceLocation, bool) {
	section := d.sourceLocationsData()
	if int(debugOffset) >= len(section) {
		panic("debuginfo: DebugInfo.GetLocationForAddress: offset out of bounds")
	}

	var best DebugSourceLocation
	found := false
	decodeLocationRecord(section, int(debugOffset), func(loc DebugSourceLocation) {
		if loc.Address <= offsetInFunction {
			best = loc
			found = true
		}
	})
	return best, found
}

// GetAddressForLocation finds the bytecode address at which a source
// position is recorded. targetColumn of zero matches the first location on
// targetLine (columns are 1-based). The first match in encoding order wins.
func (d *DebugInfo) GetAddressForLocation(filenameID, targetLine, targetColumn uint32) (DebugSearchResult, bool) {
	section := d.sourceLocationsData()
	offset := 0
	for offset < len(section) {
		var result DebugSearchResult
		found := false
		fnIndex, next := decodeLocationRecord(section, offset, func(loc DebugSourceLocation) {
			if found {
				return
			}
			if loc.FilenameID != filenameID || loc.Line != targetLine {
				return
			}
			if targetColumn != 0 && loc.Column != targetColumn {
				return
			}
			result = DebugSearchResult{
				BytecodeOffset: loc.Address,
				Line:           loc.Line,
				Column:         loc.Column,
			}
			found = true
		})
		if found {
			result.FunctionIndex = fnIndex
			return result, true
		}
		offset = next
	}
	return DebugSearchResult{}, false
}

// GetVariableNames returns the variable names recorded at offset in the
// lexical data section.
func (d *DebugInfo) GetVariableNames(offset uint32) []string {
	section := d.lexicalData()
	if int(offset) >= len(section) {
		panic("debuginfo: DebugInfo.GetVariableNames: offset out of bounds")
	}
	_, off := ReadSleb128(section, int(offset))
	count, off := ReadUleb128(section, off)
	names := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		var strOffset uint64
		strOffset, off = ReadUleb128(section, off)
		names = append(names, d.getString(uint32(strOffset)))
	}
	return names
}

// GetParentFunctionID returns the parent function recorded at offset in the
// lexical data section, or false when the function has no lexical parent.
func (d *DebugInfo) GetParentFunctionID(offset uint32) (uint32, bool) {
	section := d.lexicalData()
	if int(offset) >= len(section) {
		panic("debuginfo: DebugInfo.GetParentFunctionID: offset out of bounds")
	}
	parent, _ := ReadSleb128(section, int(offset))
	if parent < 0 {
		return 0, false
	}
	return uint32(parent), true
}

// GetTextifiedCalleeUTF8 returns the textified callee name for the call at
// or before offsetInFunction, using the same last-address-at-or-before scan
// as GetLocationForAddress. debugOffset is the function's
// DebugOffsets.TextifiedCallees.
func (d *DebugInfo) GetTextifiedCalleeUTF8(debugOffset, offsetInFunction uint32) (string, bool) {
	section := d.textifiedCalleeData()
	if int(debugOffset) >= len(section) {
		panic("debuginfo: DebugInfo.GetTextifiedCalleeUTF8: offset out of bounds")
	}
	count, off := ReadUleb128(section, int(debugOffset))

	var bestOffset uint64
	found := false
	var address uint32
	for i := uint64(0); i < count; i++ {
		var addrDelta, strOffset uint64
		addrDelta, off = ReadUleb128(section, off)
		strOffset, off = ReadUleb128(section, off)
		address += uint32(addrDelta)
		if address <= offsetInFunction {
			bestOffset = strOffset
			found = true
		}
	}
	if !found {
		return "", false
	}
	return d.getString(uint32(bestOffset)), true
}

// ---------------------------------------------------------------------------
// Source map population
// ---------------------------------------------------------------------------

// SourceMapSink receives generated-to-original position mappings. The
// external source-map format is not owned here; the sink only sees
// (generated position, original position) pairs.
type SourceMapSink interface {
	// AddEntry records that the instruction at absolute bytecode offset
	// generatedAddress in the given segment originates from the 1-based
	// line/column in sourceFile.
	AddEntry(segmentID uint32, generatedAddress uint32, sourceFile string, line, column uint32)
}

// PopulateSourceMap replays every function's decoded location list into
// sink, one entry per recorded location. functionOffsets maps function index
// to the function's start offset in the bytecode file, used to compute
// absolute generated addresses.
func (d *DebugInfo) PopulateSourceMap(sink SourceMapSink, functionOffsets []uint32, segmentID uint32) {
	section := d.sourceLocationsData()
	offset := 0
	for offset < len(section) {
		entries := make([]DebugSourceLocation, 0, 8)
		fnIndex, next := decodeLocationRecord(section, offset, func(loc DebugSourceLocation) {
			entries = append(entries, loc)
		})
		if int(fnIndex) >= len(functionOffsets) {
			panic("debuginfo: DebugInfo.PopulateSourceMap: function index out of bounds")
		}
		for _, loc := range entries {
			sink.AddEntry(
				segmentID,
				functionOffsets[fnIndex]+loc.Address,
				d.FilenameByID(loc.FilenameID),
				loc.Line,
				loc.Column,
			)
		}
		offset = next
	}
}

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// Disassemble writes a human-readable dump of every debug section to w.
func (d *DebugInfo) Disassemble(w io.Writer) {
	d.disassembleFilenames(w)
	d.disassembleFilesAndOffsets(w)
	d.disassembleLexicalData(w)
	d.disassembleTextifiedCallees(w)
	d.disassembleStringTable(w)
}

func (d *DebugInfo) disassembleFilenames(w io.Writer) {
	fmt.Fprintf(w, "Debug filename table:\n")
	for id := 0; id < d.filenames.Len(); id++ {
		fmt.Fprintf(w, "  %d: %s\n", id, d.filenames.Name(uint32(id)))
	}
	fmt.Fprintf(w, "\n")
}

func (d *DebugInfo) disassembleFilesAndOffsets(w io.Writer) {
	fmt.Fprintf(w, "Debug file table:\n")
	for _, region := range d.files {
		fmt.Fprintf(w, "  from function %d: filename id %d\n",
			region.FromFunctionID, region.FilenameID)
	}
	fmt.Fprintf(w, "\nDebug source table:\n")
	section := d.sourceLocationsData()
	offset := 0
	for offset < len(section) {
		recordStart := offset
		var entries []DebugSourceLocation
		fnIndex, next := decodeLocationRecord(section, offset, func(loc DebugSourceLocation) {
			entries = append(entries, loc)
		})
		fmt.Fprintf(w, "  0x%04x  function %d\n", recordStart, fnIndex)
		for _, loc := range entries {
			fmt.Fprintf(w, "    bc %d: line %d col %d statement %d\n",
				loc.Address, loc.Line, loc.Column, loc.Statement)
		}
		offset = next
	}
	fmt.Fprintf(w, "  0x%04x  end of debug source table\n\n", len(section))
}

func (d *DebugInfo) disassembleLexicalData(w io.Writer) {
	fmt.Fprintf(w, "Debug lexical table:\n")
	section := d.lexicalData()
	offset := 0
	for offset < len(section) {
		entryStart := offset
		parent, off := ReadSleb128(section, offset)
		count, off := ReadUleb128(section, off)
		fmt.Fprintf(w, "  0x%04x  lexical parent: ", entryStart)
		if parent < 0 {
			fmt.Fprintf(w, "none")
		} else {
			fmt.Fprintf(w, "%d", parent)
		}
		fmt.Fprintf(w, ", variable count: %d\n", count)
		for i := uint64(0); i < count; i++ {
			var strOffset uint64
			strOffset, off = ReadUleb128(section, off)
			fmt.Fprintf(w, "    \"%s\"\n", d.getString(uint32(strOffset)))
		}
		offset = off
	}
	fmt.Fprintf(w, "  0x%04x  end of debug lexical table\n\n", len(section))
}

func (d *DebugInfo) disassembleTextifiedCallees(w io.Writer) {
	fmt.Fprintf(w, "Textified callees table:\n")
	section := d.textifiedCalleeData()
	offset := 0
	for offset < len(section) {
		entryStart := offset
		count, off := ReadUleb128(section, offset)
		fmt.Fprintf(w, "  0x%04x  entries: %d\n", entryStart, count)
		var address uint32
		for i := uint64(0); i < count; i++ {
			var addrDelta, strOffset uint64
			addrDelta, off = ReadUleb128(section, off)
			strOffset, off = ReadUleb128(section, off)
			address += uint32(addrDelta)
			fmt.Fprintf(w, "    bc %d: \"%s\"\n", address, d.getString(uint32(strOffset)))
		}
		offset = off
	}
	fmt.Fprintf(w, "  0x%04x  end of textified callees table\n\n", len(section))
}

func (d *DebugInfo) disassembleStringTable(w io.Writer) {
	fmt.Fprintf(w, "Debug string table:\n")
	table := d.stringTableData()
	offset := 0
	for offset < len(table) {
		entryStart := offset
		length, off := ReadUleb128(table, offset)
		end := off + int(length)
		fmt.Fprintf(w, "  0x%04x  \"%s\"\n", entryStart, string(table[off:end]))
		offset = end
	}
	fmt.Fprintf(w, "  0x%04x  end of debug string table\n", len(table))
}
