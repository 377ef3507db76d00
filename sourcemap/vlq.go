package sourcemap

// ---------------------------------------------------------------------------
// Base64 VLQ encoding for source map v3 mappings
// ---------------------------------------------------------------------------

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// appendVLQ appends the base64 VLQ encoding of v to buf. The sign lives in
// the lowest bit of the first group; each character carries 5 payload bits
// plus a continuation flag.
func appendVLQ(buf []byte, v int32) []byte {
	var u uint32
	if v < 0 {
		u = uint32(-v)<<1 | 1
	} else {
		u = uint32(v) << 1
	}
	for {
		group := u & 0x1F
		u >>= 5
		if u != 0 {
			group |= 0x20
		}
		buf = append(buf, base64Chars[group])
		if u == 0 {
			return buf
		}
	}
}
