package gc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testLeaf has no Managed fields.
type testLeaf struct{ Leaf }

// testNode holds a single Managed pointer to another testNode, optionally
// unset (the zero value), used for both the one-edge and the two-node
// cycle scenarios below.
type testNode struct {
	peer Managed[*testNode]
}

func (n *testNode) Scan(ctx *Context) { n.peer.Scan(ctx) }
func (n *testNode) Root()             { n.peer.Root() }
func (n *testNode) Unroot()           { n.peer.Unroot() }

// testHolder holds a Managed[*testLeaf], used for the Foo/Bar scenario.
type testHolder struct {
	leaf Managed[*testLeaf]
}

func (h *testHolder) Scan(ctx *Context) { h.leaf.Scan(ctx) }
func (h *testHolder) Root()             { h.leaf.Root() }
func (h *testHolder) Unroot()           { h.leaf.Unroot() }

func TestAllocRootsWithCountOne(t *testing.T) {
	c := New()
	leaf := Alloc(c, &testLeaf{})
	require.True(t, leaf.IsRoot())
	require.Equal(t, 1, c.Len())
}

// Foo holds a Managed<Bar>; dropping Foo's external handle and
// collecting reclaims both.
func TestCollectReclaimsUnreachableChain(t *testing.T) {
	c := New()
	leaf := Alloc(c, &testLeaf{})
	holder := Alloc(c, &testHolder{leaf: leaf})
	require.Equal(t, 2, c.Len())

	holder.Release()
	leaf.Release() // Alloc already unrooted holder's internal copy; this
	// release corresponds to dropping the caller's own `leaf` handle.

	c.Collect()
	require.Equal(t, 0, c.Len())
}

// If Bar is also externally rooted, only Foo is reclaimed.
func TestCollectKeepsExternallyRootedChild(t *testing.T) {
	c := New()
	leaf := Alloc(c, &testLeaf{})
	holder := Alloc(c, &testHolder{leaf: leaf.Clone()})

	holder.Release()
	c.Collect()

	require.Equal(t, 1, c.Len())
	require.True(t, leaf.IsRoot())
}

// A two-object cycle, both externally unrooted, is fully reclaimed by
// one Collect call.
func TestCollectReclaimsCycle(t *testing.T) {
	c := New()
	a := Alloc(c, &testNode{})
	b := Alloc(c, &testNode{})
	a.Deref().peer = b.Clone()
	b.Deref().peer = a.Clone()
	// The stored peer handles now live inside the graph.
	a.Deref().peer.Unroot()
	b.Deref().peer.Unroot()

	a.Release()
	b.Release()
	require.Equal(t, 2, c.Len())

	c.Collect()
	require.Equal(t, 0, c.Len())
}

// Two sequential Collect calls with no intervening allocation
// produce identical Len results, and the second cycle is a no-op re-color.
func TestTwoSequentialCollectsAreIdempotent(t *testing.T) {
	c := New()
	root := Alloc(c, &testLeaf{})
	_ = root

	c.Collect()
	first := c.Len()
	c.Collect()
	second := c.Len()

	require.Equal(t, first, second)
	require.Equal(t, 1, second) // root is still externally held
}

// scan_ptr (Context.enqueue) is idempotent: enqueuing the same box
// twice leaves it Gray exactly once in the queue.
func TestContextEnqueueIsIdempotent(t *testing.T) {
	c := New()
	n := Alloc(c, &testNode{})
	b := n.b

	ctx := &Context{}
	ctx.enqueue(b)
	require.Equal(t, gray, b.getColor())
	require.Len(t, ctx.discovered, 1)

	ctx.enqueue(b) // second call: already Gray, no-op
	require.Equal(t, gray, b.getColor())
	require.Len(t, ctx.discovered, 1)
}

// Allocating during Sweep must not reclaim the new object in that
// cycle, and must not leave a dangling sweepPrev link.
func TestAllocDuringSweepSurvivesCycle(t *testing.T) {
	c := New()
	stale := Alloc(c, &testLeaf{})
	stale.Release() // now unreachable, will be condemned next cycle

	c.enterWake()
	for c.ph == phaseWake {
		c.step()
	}
	for c.ph == phaseMark {
		c.step()
	}
	require.Equal(t, phaseSweep, c.ph)

	// Drive one sweep step (examines `stale`, which is White, and unlinks
	// it) before allocating.
	c.step()

	fresh := Alloc(c, &testLeaf{})

	for c.ph != phaseSleep {
		c.step()
	}

	require.Equal(t, 1, c.Len())
	require.True(t, fresh.IsRoot())
}

func TestGraySeenDuringSweepPanics(t *testing.T) {
	c := New()
	n := Alloc(c, &testNode{})

	c.enterWake()
	for c.ph == phaseWake {
		c.step()
	}
	// Skip mark entirely and force Sweep while the node is still Gray.
	c.ph = phaseSweep
	c.sweepCursor = c.head
	c.sweepPrev = nil

	require.Equal(t, gray, n.b.getColor())
	require.Panics(t, func() { c.step() })
}

func TestCloseReportsLeakedRoots(t *testing.T) {
	c := New()
	leaked := Alloc(c, &testLeaf{})
	_ = leaked

	err := c.Close()
	require.Error(t, err)
	require.Equal(t, 1, c.Len())
}

func TestStepDrivesIncrementallyAndReportsSleep(t *testing.T) {
	c := New()
	leaf := Alloc(c, &testLeaf{})
	leaf.Release()

	steps := 0
	for !c.Step(1) {
		steps++
		if steps > 100 {
			t.Fatalf("Step never reached Sleep")
		}
	}
	require.Equal(t, 0, c.Len())

	// Step restarts a fresh cycle from Sleep.
	root := Alloc(c, &testLeaf{})
	_ = root
	require.True(t, c.Step(1000))
	require.Equal(t, 1, c.Len())
}

func TestCloseCleanWhenEmpty(t *testing.T) {
	c := New()
	leaf := Alloc(c, &testLeaf{})
	leaf.Release()

	require.NoError(t, c.Close())
	require.Equal(t, 0, c.Len())
}
