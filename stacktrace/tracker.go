package stacktrace

// ---------------------------------------------------------------------------
// AllocationLocationTracker: Attributes heap allocations to call stacks
// ---------------------------------------------------------------------------

// AllocationLocationTracker associates every tracked heap allocation with
// the tree node for the call stack active at allocation time. It is the only
// consumer of the tree's head pointer on the allocation side: the
// interpreter feeds it call events, the heap feeds it allocation events, and
// the profiler reads back nodes per object.
type AllocationLocationTracker struct {
	strings *StringTable

	// Tree of call-frame identities; nil while tracking is disabled.
	tree *Tree

	// Object ID -> tree node active at allocation time.
	allocs map[uint64]*Node
}

// NewAllocationLocationTracker creates a tracker in the disabled state.
func NewAllocationLocationTracker(strings *StringTable) *AllocationLocationTracker {
	return &AllocationLocationTracker{strings: strings}
}

// Enabled reports whether allocation tracking is on.
func (a *AllocationLocationTracker) Enabled() bool {
	return a.tree != nil
}

// Tree returns the current stack traces tree, or nil while disabled.
func (a *AllocationLocationTracker) Tree() *Tree {
	return a.tree
}

// Enable turns tracking on. activeFrames describes the interpreter's
// currently active call stack, outermost first; pass nil when enabling at
// idle. Enabling while already enabled is a no-op.
func (a *AllocationLocationTracker) Enable(activeFrames []Frame) {
	if a.tree != nil {
		return
	}
	a.tree = NewTree(a.strings)
	a.allocs = make(map[uint64]*Node)
	if len(activeFrames) > 0 {
		a.tree.SyncWithRuntimeStack(activeFrames)
	}
}

// Disable destroys the tree and every recorded association. Tracking must be
// disabled cleanly, with the head back at the root, never mid-stack.
func (a *AllocationLocationTracker) Disable() {
	if a.tree == nil {
		return
	}
	if !a.tree.IsHeadAtRoot() {
		panic("stacktrace: AllocationLocationTracker.Disable: head not at root")
	}
	a.tree.Dispose()
	a.tree = nil
	a.allocs = nil
}

// OnCallEnter records function entry. No-op while disabled.
func (a *AllocationLocationTracker) OnCallEnter(name, scriptName string, line, column uint32) {
	if a.tree == nil {
		return
	}
	a.tree.PushCallStack(name, scriptName, line, column)
}

// OnCallExit records function exit by return, unwind, or native completion.
// No-op while disabled.
func (a *AllocationLocationTracker) OnCallExit() {
	if a.tree == nil {
		return
	}
	a.tree.PopCallStack()
}

// RecordAllocation snapshots the current head node for a newly allocated
// object. No-op while disabled.
func (a *AllocationLocationTracker) RecordAllocation(objectID uint64) {
	if a.tree == nil {
		return
	}
	a.allocs[objectID] = a.tree.Head()
}

// NodeForAlloc returns the tree node recorded for an object, or false if the
// object was never tracked.
func (a *AllocationLocationTracker) NodeForAlloc(objectID uint64) (*Node, bool) {
	node, ok := a.allocs[objectID]
	return node, ok
}
