package stacktrace

import (
	"strings"
	"testing"
)

// pushGlobalFrames enters a script's global code the way the interpreter
// does: one frame for the script itself and one for the global function
// body.
func pushGlobalFrames(tr *Tree, script string) {
	tr.PushCallStack("global", script, 1, 1)
	tr.PushCallStack("global", script, 1, 1)
}

func popGlobalFrames(tr *Tree) {
	tr.PopCallStack()
	tr.PopCallStack()
}

func TestRepeatedCallsCollapse(t *testing.T) {
	tr := NewTree(NewStringTable())

	for i := 0; i < 1000; i++ {
		tr.PushCallStack("alloc", "test.js", 1, 20)
		tr.PopCallStack()
	}

	root := tr.Root()
	if len(root.Children()) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children()))
	}
	// Root plus the single deduplicated frame.
	if tr.Size() != 2 {
		t.Errorf("tree size %d, want 2", tr.Size())
	}
}

func TestDistinctCallSitesGetDistinctNodes(t *testing.T) {
	tr := NewTree(NewStringTable())

	// Same function name from two call sites, and a second function from one.
	sites := []struct {
		name string
		line uint32
		col  uint32
	}{
		{"alloc", 2, 5},
		{"alloc", 3, 5},
		{"other", 2, 5},
	}
	for _, s := range sites {
		tr.PushCallStack(s.name, "test.js", s.line, s.col)
		tr.PopCallStack()
	}

	if got := len(tr.Root().Children()); got != 3 {
		t.Errorf("root has %d children, want 3", got)
	}
}

func TestHeadTracksPushPop(t *testing.T) {
	tr := NewTree(NewStringTable())

	if !tr.IsHeadAtRoot() {
		t.Fatal("fresh tree head not at root")
	}

	tr.PushCallStack("outer", "test.js", 1, 1)
	tr.PushCallStack("inner", "test.js", 2, 3)
	if tr.IsHeadAtRoot() {
		t.Error("head at root with two active frames")
	}
	if name := tr.Strings().Name(tr.Head().Name); name != "inner" {
		t.Errorf("head name %q, want inner", name)
	}

	tr.PopCallStack()
	if name := tr.Strings().Name(tr.Head().Name); name != "outer" {
		t.Errorf("head name %q after pop, want outer", name)
	}
	tr.PopCallStack()
	if !tr.IsHeadAtRoot() {
		t.Error("head not back at root after balanced pops")
	}
}

func TestPopPastRootPanics(t *testing.T) {
	tr := NewTree(NewStringTable())
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic popping past root")
		}
	}()
	tr.PopCallStack()
}

func TestUnwindPopsLikeReturns(t *testing.T) {
	tr := NewTree(NewStringTable())

	// Three nested frames; an exception unwinds the inner two at once. The
	// interpreter reports one exit per unwound frame, nothing more.
	tr.PushCallStack("a", "test.js", 1, 1)
	tr.PushCallStack("b", "test.js", 2, 1)
	tr.PushCallStack("c", "test.js", 3, 1)

	tr.PopCallStack()
	tr.PopCallStack()
	if name := tr.Strings().Name(tr.Head().Name); name != "a" {
		t.Errorf("head %q after unwind, want a", name)
	}
	tr.PopCallStack()
	if !tr.IsHeadAtRoot() {
		t.Error("head not at root after full unwind")
	}
}

func TestFormatStack(t *testing.T) {
	tr := NewTree(NewStringTable())

	pushGlobalFrames(tr, "test.js")
	tr.PushCallStack("foo", "test.js", 1, 66)
	tr.PushCallStack("bar", "test.js", 1, 34)
	allocNode := tr.Head()
	tr.PopCallStack()
	tr.PopCallStack()
	popGlobalFrames(tr)

	got := tr.FormatStack(allocNode)
	want := strings.Join([]string{
		"bar test.js:1:34",
		"foo test.js:1:66",
		"global test.js:1:1",
		"global test.js:1:1",
		"(root) :0:0",
	}, "\n")
	if got != want {
		t.Errorf("stack:\n%s\nwant:\n%s", got, want)
	}
}

func TestSharedHelperAcrossCallers(t *testing.T) {
	tr := NewTree(NewStringTable())

	// The same helper called from two different functions keeps separate
	// nodes, one per caller chain.
	var nodes []*Node
	for _, caller := range []struct {
		name string
		line uint32
	}{{"first", 10}, {"second", 20}} {
		tr.PushCallStack(caller.name, "test.js", caller.line, 1)
		tr.PushCallStack("helper", "test.js", 5, 3)
		nodes = append(nodes, tr.Head())
		tr.PopCallStack()
		tr.PopCallStack()
	}

	if nodes[0] == nodes[1] {
		t.Error("helper nodes under different callers should be distinct")
	}
	if nodes[0].Name != nodes[1].Name {
		t.Error("helper nodes should share the interned name")
	}
	if nodes[0].Parent() == nodes[1].Parent() {
		t.Error("helper nodes should have distinct parents")
	}
}

func TestNativeTrampolineSharedAcrossInvocations(t *testing.T) {
	tr := NewTree(NewStringTable())

	// A native function repeatedly invoking the same callback: every
	// invocation walks the same two nodes.
	tr.PushCallStack("forEach", "", 0, 0)
	var cbNode *Node
	for i := 0; i < 5; i++ {
		tr.PushCallStack("cb", "test.js", 4, 9)
		if cbNode == nil {
			cbNode = tr.Head()
		} else if tr.Head() != cbNode {
			t.Fatalf("invocation %d created a new node", i)
		}
		tr.PopCallStack()
	}
	tr.PopCallStack()

	if !tr.IsHeadAtRoot() {
		t.Error("head not at root after native call completed")
	}
	if got := tr.Size(); got != 3 {
		t.Errorf("tree size %d, want 3", got)
	}
}

func TestSyncWithRuntimeStack(t *testing.T) {
	tr := NewTree(NewStringTable())

	tr.SyncWithRuntimeStack([]Frame{
		{Name: "global", ScriptName: "test.js", Line: 1, Column: 1},
		{Name: "", ScriptName: "test.js", Line: 3, Column: 7},
		{Name: "leaf", ScriptName: "test.js", Line: 8, Column: 2},
	})

	got := tr.FormatStack(tr.Head())
	want := strings.Join([]string{
		"leaf test.js:8:2",
		"(unknown) test.js:3:7",
		"global test.js:1:1",
		"(root) :0:0",
	}, "\n")
	if got != want {
		t.Errorf("stack:\n%s\nwant:\n%s", got, want)
	}
}

func TestSyncInsideNativeCallbackExtraPop(t *testing.T) {
	tr := NewTree(NewStringTable())

	// Tracking enabled inside a native callback: the callback frame is
	// synthesized here but the interpreter never reports its exit, so the
	// embedder rebalances with one extra pop right after syncing.
	tr.SyncWithRuntimeStack([]Frame{
		{Name: "global", ScriptName: "test.js", Line: 1, Column: 1},
		{Name: "callback", ScriptName: "test.js", Line: 2, Column: 12},
	})
	tr.PopCallStack()

	// The interpreter then reports exits only for frames it entered.
	tr.PopCallStack()
	if !tr.IsHeadAtRoot() {
		t.Error("head not at root after rebalancing pops")
	}
}

func TestDisposeThenUsePanics(t *testing.T) {
	tr := NewTree(NewStringTable())
	tr.PushCallStack("f", "test.js", 1, 1)
	tr.PopCallStack()
	tr.Dispose()

	calls := []struct {
		name string
		fn   func()
	}{
		{"Root", func() { tr.Root() }},
		{"Head", func() { tr.Head() }},
		{"PushCallStack", func() { tr.PushCallStack("g", "test.js", 1, 1) }},
		{"PopCallStack", func() { tr.PopCallStack() }},
		{"Dispose", func() { tr.Dispose() }},
	}
	for _, call := range calls {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("%s after dispose should panic", call.name)
				}
			}()
			call.fn()
		}()
	}
}
