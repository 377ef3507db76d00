// Package sourcemap bridges the VM's internal delta-encoded debug format and
// the public source-map interchange format: a Generator that renders
// debuginfo location lists as source map v3 JSON, and a Remapper that
// translates VM positions back to original source through parsed maps.
package sourcemap
