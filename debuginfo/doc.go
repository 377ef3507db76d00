// Package debuginfo implements the compact binary format that maps bytecode
// addresses to source-level positions, lexical scope metadata, and textified
// callee names.
//
// This package contains:
//   - Delta-compressed LEB128 encoding of per-function location lists
//   - Lexical data (variable names, parent scope links) and textified callees
//   - The immutable DebugInfo container and its builder, DebugInfoGenerator
//   - The serialized on-disk envelope and a disassembler
package debuginfo
