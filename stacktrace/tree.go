package stacktrace

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Tree: Deduplicated call-stack tree for allocation attribution
// ---------------------------------------------------------------------------

// RootName is the name of the synthetic root node.
const RootName = "(root)"

// UnknownName is the placeholder for frames whose identity was not known
// when tracking was enabled mid-execution.
const UnknownName = "(unknown)"

// SourceLoc is the call-site position of a frame.
type SourceLoc struct {
	ScriptName StringID
	Line       uint32
	Column     uint32
}

// Frame identifies one active call frame, as reported by the interpreter.
type Frame struct {
	Name       string
	ScriptName string
	Line       uint32
	Column     uint32
}

// Node is one unique (name, source location) call-frame identity. Children
// are the ownership edges; the parent link is a non-owning back-reference
// used to report ancestry. No two children of the same parent share a key:
// repeated calls through the same call site collapse onto one node.
type Node struct {
	Name StringID
	Loc  SourceLoc

	parent   *Node
	children []*Node
}

// Parent returns the unique parent node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children in creation order.
func (n *Node) Children() []*Node {
	return n.children
}

// findChild returns the child with the given key, or nil. Fan-out at any
// node is the number of distinct call sites below one frame, which stays
// small in practice, so a linear scan beats maintaining an index.
func (n *Node) findChild(name StringID, loc SourceLoc) *Node {
	for _, child := range n.children {
		if child.Name == name && child.Loc == loc {
			return child
		}
	}
	return nil
}

// Tree is a rooted tree of unique call-frame identities. The tree owns every
// node through an arena; head always points at the node for the currently
// active call frame. Whenever the interpreter's call stack is empty, head is
// back at the root.
type Tree struct {
	strings  *StringTable
	root     *Node
	head     *Node
	nodes    []*Node
	disposed bool
}

// NewTree creates a tree whose head starts at the synthetic root.
func NewTree(strings *StringTable) *Tree {
	t := &Tree{strings: strings}
	t.root = t.newNode(nil, strings.Intern(RootName), SourceLoc{
		ScriptName: strings.Intern(""),
	})
	t.head = t.root
	return t
}

func (t *Tree) newNode(parent *Node, name StringID, loc SourceLoc) *Node {
	n := &Node{Name: name, Loc: loc, parent: parent}
	t.nodes = append(t.nodes, n)
	return n
}

func (t *Tree) checkLive(method string) {
	if t.disposed {
		panic("stacktrace: Tree." + method + ": tree already disposed")
	}
}

// Strings returns the tree's string table.
func (t *Tree) Strings() *StringTable {
	return t.strings
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	t.checkLive("Root")
	return t.root
}

// Head returns the node for the currently active call frame.
func (t *Tree) Head() *Node {
	t.checkLive("Head")
	return t.head
}

// IsHeadAtRoot reports whether every pushed call has been popped.
func (t *Tree) IsHeadAtRoot() bool {
	t.checkLive("IsHeadAtRoot")
	return t.head == t.root
}

// Size returns the number of nodes in the tree, including the root.
func (t *Tree) Size() int {
	t.checkLive("Size")
	return len(t.nodes)
}

// PushCallStack records entry into a call. An existing child of head with
// the same (name, call site) identity is reused; otherwise a new child is
// created. Head advances to the child either way.
func (t *Tree) PushCallStack(name, scriptName string, line, column uint32) {
	t.checkLive("PushCallStack")
	nameID := t.strings.Intern(name)
	loc := SourceLoc{
		ScriptName: t.strings.Intern(scriptName),
		Line:       line,
		Column:     column,
	}
	if child := t.head.findChild(nameID, loc); child != nil {
		t.head = child
		return
	}
	child := t.newNode(t.head, nameID, loc)
	t.head.children = append(t.head.children, child)
	t.head = child
}

// PopCallStack records exit from a call, by any means: normal return, thrown
// exception, or native-call completion. Exactly one pop per exited call;
// there is no special-cased exception transition. Popping past the root is a
// call/return pairing bug in the interpreter integration.
func (t *Tree) PopCallStack() {
	t.checkLive("PopCallStack")
	if t.head == t.root {
		panic("stacktrace: Tree.PopCallStack: already at root")
	}
	t.head = t.head.parent
}

// SyncWithRuntimeStack synthesizes the ancestor chain for calls that were
// already active when tracking was enabled, outermost frame first. Frames
// with an empty name use the UnknownName placeholder.
//
// When enabling happens inside a native callback, the callback's own frame
// is pushed here but the interpreter never pops it; the embedder issues one
// extra PopCallStack after enabling to rebalance. That asymmetry is part of
// the observed pop/push contract and is deliberately preserved.
func (t *Tree) SyncWithRuntimeStack(frames []Frame) {
	t.checkLive("SyncWithRuntimeStack")
	t.head = t.root
	for _, f := range frames {
		name := f.Name
		if name == "" {
			name = UnknownName
		}
		t.PushCallStack(name, f.ScriptName, f.Line, f.Column)
	}
}

// FormatStack renders the stack for a node as one line per frame, innermost
// first, ending at the synthetic root:
//
//	bar test.js:1:34
//	foo test.js:1:66
//	(root) :0:0
func (t *Tree) FormatStack(node *Node) string {
	t.checkLive("FormatStack")
	var b strings.Builder
	for n := node; n != nil; n = n.parent {
		fmt.Fprintf(&b, "%s %s:%d:%d\n",
			t.strings.Name(n.Name),
			t.strings.Name(n.Loc.ScriptName),
			n.Loc.Line,
			n.Loc.Column)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Dispose frees the entire node arena. The tree must not be used afterwards.
func (t *Tree) Dispose() {
	t.checkLive("Dispose")
	t.disposed = true
	t.nodes = nil
	t.root = nil
	t.head = nil
}
