package debuginfo

import "testing"

func TestStringTableDedup(t *testing.T) {
	filenames := NewFilenameTable()
	gen := NewDebugInfoGenerator(filenames)

	// Same variable name in two functions, and reused as a callee name.
	gen.AppendLexicalData(0, false, []string{"accumulator", "i"})
	gen.AppendLexicalData(0, true, []string{"accumulator"})
	gen.AppendTextifiedCalleeData([]DebugTextifiedCallee{
		{Address: 0, Name: "accumulator"},
	})
	info := gen.SerializeWithMove()

	// One length prefix byte per string plus the payloads, stored once each.
	want := uint32(1 + len("accumulator") + 1 + len("i"))
	if got := info.StringTableSizeBytes(); got != want {
		t.Errorf("string table size %d, want %d", got, want)
	}
}

func TestGeneratorReuseAfterSerializePanics(t *testing.T) {
	filenames := NewFilenameTable()
	gen := NewDebugInfoGenerator(filenames)
	gen.SerializeWithMove()

	calls := []struct {
		name string
		fn   func()
	}{
		{"AppendSourceLocations", func() {
			gen.AppendSourceLocations(DebugSourceLocation{}, 0, nil)
		}},
		{"AppendLexicalData", func() { gen.AppendLexicalData(0, true, nil) }},
		{"AppendTextifiedCalleeData", func() {
			gen.AppendTextifiedCalleeData([]DebugTextifiedCallee{{Address: 0, Name: "f"}})
		}},
		{"SerializeWithMove", func() { gen.SerializeWithMove() }},
	}
	for _, call := range calls {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s after serialize should panic", call.name)
				}
			}()
			call.fn()
		}()
	}
}

func TestDecreasingAddressPanics(t *testing.T) {
	filenames := NewFilenameTable()
	id := filenames.Intern("bad.ms")
	gen := NewDebugInfoGenerator(filenames)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for decreasing addresses")
		}
	}()
	gen.AppendSourceLocations(DebugSourceLocation{
		Address: 10, FilenameID: id, SourceMappingURLID: NoSourceMappingURL, Line: 1, Column: 1, Statement: 1,
	}, 0, []DebugSourceLocation{
		{Address: 9, FilenameID: id, SourceMappingURLID: NoSourceMappingURL, Line: 2, Column: 1, Statement: 2},
	})
}

func TestDecreasingCalleeAddressPanics(t *testing.T) {
	filenames := NewFilenameTable()
	gen := NewDebugInfoGenerator(filenames)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for decreasing callee addresses")
		}
	}()
	gen.AppendTextifiedCalleeData([]DebugTextifiedCallee{
		{Address: 5, Name: "a"},
		{Address: 4, Name: "b"},
	})
}

func TestDeltaOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for delta past int32 range")
		}
	}()
	delta(0, ^uint32(0))
}

func TestDeltaBounds(t *testing.T) {
	tests := []struct {
		to, from uint32
		want     int32
	}{
		{0, 0, 0},
		{10, 3, 7},
		{3, 10, -7},
		{1<<31 - 1, 0, 1<<31 - 1},
		{0, 1 << 31, -(1 << 31)},
	}
	for _, tt := range tests {
		if got := delta(tt.to, tt.from); got != tt.want {
			t.Errorf("delta(%d, %d) = %d, want %d", tt.to, tt.from, got, tt.want)
		}
	}
}

func TestSourceMappingURLSurvivesFirstEntry(t *testing.T) {
	filenames := NewFilenameTable()
	id := filenames.Intern("mapped.ms")
	gen := NewDebugInfoGenerator(filenames)
	offset := gen.AppendSourceLocations(DebugSourceLocation{
		Address: 0, FilenameID: id, SourceMappingURLID: 3, Line: 1, Column: 1, Statement: 1,
	}, 0, nil)
	info := gen.SerializeWithMove()

	loc, ok := info.GetLocationForAddress(offset, 0)
	if !ok || loc.SourceMappingURLID != 3 {
		t.Errorf("got %+v, %v; want source mapping url id 3", loc, ok)
	}

	files := info.Files()
	if len(files) != 1 || files[0].SourceMappingURLID != 3 {
		t.Errorf("file regions %+v; want one region carrying url id 3", files)
	}
}

func TestFilenameTableOwnershipMoves(t *testing.T) {
	filenames := NewFilenameTable()
	filenames.Intern("only.ms")
	gen := NewDebugInfoGenerator(filenames)
	info := gen.SerializeWithMove()

	if info.Filenames() != filenames {
		t.Error("serialized info should own the original filename table")
	}
	if info.Filenames().Len() != 1 {
		t.Errorf("filename table length %d, want 1", info.Filenames().Len())
	}
}
