package sourcemap

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ---------------------------------------------------------------------------
// Generator: Source map v3 producer fed by debug info
// ---------------------------------------------------------------------------

// Generator accumulates generated-to-original position mappings and emits a
// source map v3 JSON document. It implements debuginfo.SourceMapSink: each
// bytecode segment becomes one generated line (segment 0 is line 1), and the
// generated column is the absolute bytecode offset within the segment.
type Generator struct {
	sources     []string
	sourceIndex map[string]int
	entries     []mappingEntry
}

type mappingEntry struct {
	generatedLine   uint32 // 1-based
	generatedColumn uint32 // 0-based (absolute bytecode offset)
	sourceIndex     int
	originalLine    uint32 // 1-based
	originalColumn  uint32 // 1-based
}

// NewGenerator creates an empty source map generator.
func NewGenerator() *Generator {
	return &Generator{sourceIndex: make(map[string]int)}
}

// AddEntry records that the instruction at absolute bytecode offset
// generatedAddress in the given segment originates from the 1-based
// line/column in sourceFile. Implements debuginfo.SourceMapSink.
func (g *Generator) AddEntry(segmentID uint32, generatedAddress uint32, sourceFile string, line, column uint32) {
	idx, ok := g.sourceIndex[sourceFile]
	if !ok {
		idx = len(g.sources)
		g.sourceIndex[sourceFile] = idx
		g.sources = append(g.sources, sourceFile)
	}
	g.entries = append(g.entries, mappingEntry{
		generatedLine:   segmentID + 1,
		generatedColumn: generatedAddress,
		sourceIndex:     idx,
		originalLine:    line,
		originalColumn:  column,
	})
}

// sourceMapJSON is the source map v3 document shape.
type sourceMapJSON struct {
	Version  int      `json:"version"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// OutputAsJSON writes the accumulated mappings as a source map v3 document.
func (g *Generator) OutputAsJSON(w io.Writer) error {
	doc := sourceMapJSON{
		Version:  3,
		Sources:  g.sources,
		Names:    []string{},
		Mappings: g.buildMappings(),
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("sourcemap: encode: %w", err)
	}
	return nil
}

// buildMappings renders the VLQ mappings string. Within a generated line,
// entries are comma-separated and column deltas restart at zero; source
// index and original position deltas carry across lines, per the format.
func (g *Generator) buildMappings() string {
	entries := make([]mappingEntry, len(g.entries))
	copy(entries, g.entries)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].generatedLine != entries[j].generatedLine {
			return entries[i].generatedLine < entries[j].generatedLine
		}
		return entries[i].generatedColumn < entries[j].generatedColumn
	})

	var maxLine uint32
	if len(entries) > 0 {
		maxLine = entries[len(entries)-1].generatedLine
	}

	var buf []byte
	var prevSource, prevLine, prevColumn int32
	i := 0
	for line := uint32(1); line <= maxLine; line++ {
		if line > 1 {
			buf = append(buf, ';')
		}
		var prevGenerated int32
		first := true
		for i < len(entries) && entries[i].generatedLine == line {
			e := entries[i]
			i++
			if !first {
				buf = append(buf, ',')
			}
			first = false
			buf = appendVLQ(buf, int32(e.generatedColumn)-prevGenerated)
			prevGenerated = int32(e.generatedColumn)
			buf = appendVLQ(buf, int32(e.sourceIndex)-prevSource)
			prevSource = int32(e.sourceIndex)
			// Original line and column are 0-based on the wire.
			buf = appendVLQ(buf, int32(e.originalLine-1)-prevLine)
			prevLine = int32(e.originalLine - 1)
			buf = appendVLQ(buf, int32(e.originalColumn-1)-prevColumn)
			prevColumn = int32(e.originalColumn - 1)
		}
	}
	return string(buf)
}
