package debuginfo

// ---------------------------------------------------------------------------
// LEB128: Variable-length integer encoding shared by all debug data sections
// ---------------------------------------------------------------------------

// Each byte carries 7 payload bits; the high bit flags continuation. Signed
// values use sign extension in the final byte rather than zigzag, so small
// negative deltas stay small.

// AppendUleb128 appends an unsigned LEB128 encoding of v to buf.
// Returns the extended slice.
func AppendUleb128(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// AppendSleb128 appends a signed LEB128 encoding of v to buf.
// Returns the extended slice.
func AppendSleb128(buf []byte, v int64) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		// Done once the remaining bits are pure sign extension and the sign
		// bit of the emitted byte agrees.
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

// ReadUleb128 decodes an unsigned LEB128 value starting at offset.
// Returns the value and the offset of the first byte past it.
// Panics on a truncated encoding: debug data is generated internally,
// so running off the end signals an internal bug.
func ReadUleb128(data []byte, offset int) (uint64, int) {
	var v uint64
	var shift uint
	for {
		if offset >= len(data) {
			panic("debuginfo: ReadUleb128: truncated encoding")
		}
		b := data[offset]
		offset++
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, offset
		}
		shift += 7
	}
}

// ReadSleb128 decodes a signed LEB128 value starting at offset.
// Returns the value and the offset of the first byte past it.
func ReadSleb128(data []byte, offset int) (int64, int) {
	var v int64
	var shift uint
	for {
		if offset >= len(data) {
			panic("debuginfo: ReadSleb128: truncated encoding")
		}
		b := data[offset]
		offset++
		v |= int64(b&0x7F) << shift
		shift += 7
		if b < 0x80 {
			if shift < 64 && b&0x40 != 0 {
				v |= -1 << shift
			}
			return v, offset
		}
	}
}
