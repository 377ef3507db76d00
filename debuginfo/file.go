package debuginfo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ---------------------------------------------------------------------------
// Debug Info File Format
// ---------------------------------------------------------------------------

// The serialized DebugInfo is a versioned binary sub-format nested inside the
// compiled module's on-disk format. Layout, all integers little-endian:
//
//	magic(4) version(4)
//	filenameCount(4) filenameStorageSize(4) fileRegionCount(4)
//	lexicalDataOffset(4) textifiedCalleeOffset(4) stringTableOffset(4)
//	dataSize(4)
//	filename entries: filenameCount x (offset(4) length(4))
//	filename storage bytes
//	file regions: fileRegionCount x (fromFunctionID(4) filenameID(4) sourceMappingURLID(4))
//	data bytes

// DebugInfoMagic identifies a serialized DebugInfo region.
var DebugInfoMagic = [4]byte{'L', 'D', 'B', 'G'}

// DebugInfoVersion is the current format version.
const DebugInfoVersion uint32 = 1

// debugInfoHeaderSize is the fixed-size header length in bytes.
const debugInfoHeaderSize = 36

var (
	ErrInvalidMagic    = errors.New("invalid magic number: expected LDBG")
	ErrVersionMismatch = errors.New("debug info version mismatch")
	ErrCorruptHeader   = errors.New("corrupt debug info header")
	ErrCorruptData     = errors.New("corrupt debug info data")
)

// WriteTo serializes the DebugInfo to w. The recorded section offsets are
// part of the format's contract: readers locate sections by these exact
// values.
func (d *DebugInfo) WriteTo(w io.Writer) (int64, error) {
	buf := bytes.NewBuffer(nil)

	buf.Write(DebugInfoMagic[:])
	writeUint32(buf, DebugInfoVersion)
	writeUint32(buf, uint32(d.filenames.Len()))
	writeUint32(buf, uint32(len(d.filenames.storage)))
	writeUint32(buf, uint32(len(d.files)))
	writeUint32(buf, d.lexicalDataOffset)
	writeUint32(buf, d.textifiedCalleeOffset)
	writeUint32(buf, d.stringTableOffset)
	writeUint32(buf, uint32(len(d.data)))

	for _, e := range d.filenames.entries {
		writeUint32(buf, e.offset)
		writeUint32(buf, e.length)
	}
	buf.Write(d.filenames.storage)

	for _, region := range d.files {
		writeUint32(buf, region.FromFunctionID)
		writeUint32(buf, region.FilenameID)
		writeUint32(buf, region.SourceMappingURLID)
	}
	buf.Write(d.data)

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return int64(n), fmt.Errorf("debuginfo: write: %w", err)
	}
	return int64(n), nil
}

// ReadDebugInfo deserializes a DebugInfo from r. Unlike in-memory lookups,
// file input is untrusted: corruption is reported as an error, never a
// panic.
func ReadDebugInfo(r io.Reader) (*DebugInfo, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("debuginfo: read: %w", err)
	}
	return ReadDebugInfoFromBytes(raw)
}

// ReadDebugInfoFromBytes deserializes a DebugInfo from a byte slice.
func ReadDebugInfoFromBytes(raw []byte) (*DebugInfo, error) {
	if len(raw) < debugInfoHeaderSize {
		return nil, ErrCorruptHeader
	}
	if !bytes.Equal(raw[0:4], DebugInfoMagic[:]) {
		return nil, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(raw[4:])
	if version != DebugInfoVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, version, DebugInfoVersion)
	}

	filenameCount := binary.LittleEndian.Uint32(raw[8:])
	storageSize := binary.LittleEndian.Uint32(raw[12:])
	regionCount := binary.LittleEndian.Uint32(raw[16:])
	lexicalDataOffset := binary.LittleEndian.Uint32(raw[20:])
	textifiedCalleeOffset := binary.LittleEndian.Uint32(raw[24:])
	stringTableOffset := binary.LittleEndian.Uint32(raw[28:])
	dataSize := binary.LittleEndian.Uint32(raw[32:])

	// Section offsets must partition the data buffer in order.
	if lexicalDataOffset > textifiedCalleeOffset ||
		textifiedCalleeOffset > stringTableOffset ||
		stringTableOffset > dataSize {
		return nil, ErrCorruptHeader
	}

	total := uint64(debugInfoHeaderSize) +
		uint64(filenameCount)*8 +
		uint64(storageSize) +
		uint64(regionCount)*12 +
		uint64(dataSize)
	if uint64(len(raw)) < total {
		return nil, ErrCorruptData
	}

	offset := debugInfoHeaderSize
	filenames := NewFilenameTable()
	filenames.entries = make([]filenameEntry, filenameCount)
	for i := range filenames.entries {
		filenames.entries[i].offset = binary.LittleEndian.Uint32(raw[offset:])
		filenames.entries[i].length = binary.LittleEndian.Uint32(raw[offset+4:])
		offset += 8
	}
	filenames.storage = append([]byte(nil), raw[offset:offset+int(storageSize)]...)
	offset += int(storageSize)
	for i, e := range filenames.entries {
		if uint64(e.offset)+uint64(e.length) > uint64(storageSize) {
			return nil, ErrCorruptData
		}
		filenames.byName[filenames.Name(uint32(i))] = uint32(i)
	}

	files := make([]DebugFileRegion, regionCount)
	for i := range files {
		files[i].FromFunctionID = binary.LittleEndian.Uint32(raw[offset:])
		files[i].FilenameID = binary.LittleEndian.Uint32(raw[offset+4:])
		files[i].SourceMappingURLID = binary.LittleEndian.Uint32(raw[offset+8:])
		offset += 12
	}

	data := append([]byte(nil), raw[offset:offset+int(dataSize)]...)

	return &DebugInfo{
		filenames:             filenames,
		files:                 files,
		lexicalDataOffset:     lexicalDataOffset,
		textifiedCalleeOffset: textifiedCalleeOffset,
		stringTableOffset:     stringTableOffset,
		data:                  data,
	}, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
