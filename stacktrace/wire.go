package stacktrace

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Snapshot wire format for heap profiler export
// ---------------------------------------------------------------------------

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	// Unix-seconds time encoding would truncate capture timestamps.
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("stacktrace: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is a self-contained copy of a stack traces tree with all string
// IDs resolved, suitable for handing to profiler frontends after the tree
// itself has been disposed.
type Snapshot struct {
	ID         string        `cbor:"id"`
	CapturedAt time.Time     `cbor:"captured_at"`
	Root       *SnapshotNode `cbor:"root"`
}

// SnapshotNode mirrors one tree node with resolved strings.
type SnapshotNode struct {
	Name       string          `cbor:"name"`
	ScriptName string          `cbor:"script_name"`
	Line       uint32          `cbor:"line"`
	Column     uint32          `cbor:"column"`
	Children   []*SnapshotNode `cbor:"children,omitempty"`
}

// Snapshot captures the current tree contents.
func (t *Tree) Snapshot() *Snapshot {
	t.checkLive("Snapshot")
	return &Snapshot{
		ID:         uuid.NewString(),
		CapturedAt: time.Now().UTC(),
		Root:       t.snapshotNode(t.root),
	}
}

func (t *Tree) snapshotNode(n *Node) *SnapshotNode {
	sn := &SnapshotNode{
		Name:       t.strings.Name(n.Name),
		ScriptName: t.strings.Name(n.Loc.ScriptName),
		Line:       n.Loc.Line,
		Column:     n.Loc.Column,
	}
	for _, child := range n.children {
		sn.Children = append(sn.Children, t.snapshotNode(child))
	}
	return sn
}

// MarshalSnapshot serializes a Snapshot to CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("stacktrace: unmarshal snapshot: %w", err)
	}
	return &s, nil
}
