package sourcemap

import (
	"fmt"

	gosourcemap "github.com/go-sourcemap/sourcemap"
)

// ---------------------------------------------------------------------------
// Remapper: Translates VM positions back to original source
// ---------------------------------------------------------------------------

// RemappedLocation is a position in the original source.
type RemappedLocation struct {
	File   string
	Name   string // original symbol name, when the map records one
	Line   uint32 // 1-based
	Column uint32 // 1-based
}

// Remapper holds parsed source maps keyed by the script name the VM reports,
// and translates stack-tree node positions back to original-source
// positions.
type Remapper struct {
	consumers map[string]*gosourcemap.Consumer
}

// NewRemapper creates an empty remapper.
func NewRemapper() *Remapper {
	return &Remapper{consumers: make(map[string]*gosourcemap.Consumer)}
}

// AddSourceMap parses a source map document and registers it for a script.
func (r *Remapper) AddSourceMap(scriptName string, data []byte) error {
	consumer, err := gosourcemap.Parse("", data)
	if err != nil {
		return fmt.Errorf("sourcemap: parse map for %q: %w", scriptName, err)
	}
	r.consumers[scriptName] = consumer
	return nil
}

// Has reports whether a source map is registered for the script.
func (r *Remapper) Has(scriptName string) bool {
	_, ok := r.consumers[scriptName]
	return ok
}

// Remap translates a 1-based position in a script to its original source
// position. Returns false when no map is registered for the script, the
// position has no mapping, or the position is the empty root location.
func (r *Remapper) Remap(scriptName string, line, column uint32) (RemappedLocation, bool) {
	consumer, ok := r.consumers[scriptName]
	if !ok || line == 0 || column == 0 {
		return RemappedLocation{}, false
	}
	// The consumer takes 1-based lines and 0-based columns.
	file, name, origLine, origColumn, ok := consumer.Source(int(line), int(column)-1)
	if !ok || file == "" || origLine == 0 {
		return RemappedLocation{}, false
	}
	return RemappedLocation{
		File:   file,
		Name:   name,
		Line:   uint32(origLine),
		Column: uint32(origColumn) + 1,
	}, true
}
