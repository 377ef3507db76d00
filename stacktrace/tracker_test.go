package stacktrace

import "testing"

func TestTrackerLifecycle(t *testing.T) {
	tracker := NewAllocationLocationTracker(NewStringTable())

	if tracker.Enabled() {
		t.Fatal("fresh tracker reports enabled")
	}
	if tracker.Tree() != nil {
		t.Fatal("fresh tracker has a tree")
	}

	tracker.Enable(nil)
	if !tracker.Enabled() || tracker.Tree() == nil {
		t.Fatal("tracker not enabled after Enable")
	}
	if !tracker.Tree().IsHeadAtRoot() {
		t.Error("enabling at idle should leave head at root")
	}

	tracker.Disable()
	if tracker.Enabled() || tracker.Tree() != nil {
		t.Error("tracker still enabled after Disable")
	}
}

func TestTrackerAttributesAllocations(t *testing.T) {
	tracker := NewAllocationLocationTracker(NewStringTable())
	tracker.Enable(nil)
	tree := tracker.Tree()

	tracker.OnCallEnter("makeThing", "app.js", 12, 4)
	tracker.RecordAllocation(100)
	tracker.RecordAllocation(101)
	tracker.OnCallExit()

	tracker.OnCallEnter("makeOther", "app.js", 30, 4)
	tracker.RecordAllocation(102)
	tracker.OnCallExit()

	a, ok := tracker.NodeForAlloc(100)
	if !ok {
		t.Fatal("object 100 untracked")
	}
	b, _ := tracker.NodeForAlloc(101)
	if a != b {
		t.Error("allocations in the same frame should share a node")
	}
	if name := tree.Strings().Name(a.Name); name != "makeThing" {
		t.Errorf("node name %q, want makeThing", name)
	}

	c, ok := tracker.NodeForAlloc(102)
	if !ok || c == a {
		t.Error("allocation in a different frame should get a different node")
	}
	if _, ok := tracker.NodeForAlloc(999); ok {
		t.Error("never-recorded object should miss")
	}
}

func TestTrackerNoOpsWhileDisabled(t *testing.T) {
	tracker := NewAllocationLocationTracker(NewStringTable())

	// None of these should panic or record anything.
	tracker.OnCallEnter("f", "app.js", 1, 1)
	tracker.OnCallExit()
	tracker.RecordAllocation(7)
	tracker.Disable()

	if _, ok := tracker.NodeForAlloc(7); ok {
		t.Error("allocation recorded while disabled")
	}
}

func TestTrackerEnableWhileEnabledKeepsTree(t *testing.T) {
	tracker := NewAllocationLocationTracker(NewStringTable())
	tracker.Enable(nil)
	tree := tracker.Tree()

	tracker.OnCallEnter("f", "app.js", 1, 1)
	tracker.Enable([]Frame{{Name: "other", ScriptName: "app.js", Line: 2, Column: 2}})
	if tracker.Tree() != tree {
		t.Error("re-enabling replaced the live tree")
	}
	// The in-flight frame is untouched.
	if tree.IsHeadAtRoot() {
		t.Error("re-enabling reset the head")
	}
	tracker.OnCallExit()
	tracker.Disable()
}

func TestTrackerEnableMidStack(t *testing.T) {
	tracker := NewAllocationLocationTracker(NewStringTable())
	tracker.Enable([]Frame{
		{Name: "global", ScriptName: "app.js", Line: 1, Column: 1},
		{Name: "work", ScriptName: "app.js", Line: 9, Column: 5},
	})

	tracker.RecordAllocation(1)
	node, _ := tracker.NodeForAlloc(1)
	if name := tracker.Tree().Strings().Name(node.Name); name != "work" {
		t.Errorf("allocation attributed to %q, want work", name)
	}

	tracker.OnCallExit()
	tracker.OnCallExit()
	tracker.Disable()
}

func TestTrackerDisableMidStackPanics(t *testing.T) {
	tracker := NewAllocationLocationTracker(NewStringTable())
	tracker.Enable(nil)
	tracker.OnCallEnter("f", "app.js", 1, 1)

	defer func() {
		if recover() == nil {
			t.Fatal("disabling mid-stack should panic")
		}
	}()
	tracker.Disable()
}

func TestTrackerReEnableStartsFresh(t *testing.T) {
	tracker := NewAllocationLocationTracker(NewStringTable())
	tracker.Enable(nil)
	tracker.OnCallEnter("f", "app.js", 1, 1)
	tracker.RecordAllocation(1)
	tracker.OnCallExit()
	first := tracker.Tree()
	tracker.Disable()

	tracker.Enable(nil)
	if tracker.Tree() == first {
		t.Error("re-enabling should build a new tree")
	}
	if _, ok := tracker.NodeForAlloc(1); ok {
		t.Error("old allocation survived a disable/enable cycle")
	}
	if got := tracker.Tree().Size(); got != 1 {
		t.Errorf("fresh tree size %d, want 1", got)
	}
	tracker.Disable()
}
