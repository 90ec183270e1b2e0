package gc

import (
	"errors"

	"github.com/google/uuid"
)

// phase is the collector's current state-machine position.
type phase uint8

const (
	phaseSleep phase = iota
	phaseWake
	phaseMark
	phaseSweep
)

func (p phase) String() string {
	switch p {
	case phaseSleep:
		return "sleep"
	case phaseWake:
		return "wake"
	case phaseMark:
		return "mark"
	case phaseSweep:
		return "sweep"
	default:
		return "?"
	}
}

// errGrayDuringSweep is the invariant-violation panic value for
// encountering Gray during Sweep.
var errGrayDuringSweep = errors.New("gc: gray box encountered during sweep")

// errLeakedRoots is the diagnostic surfaced when Close finds a non-empty
// graph after running a final collection.
var errLeakedRoots = errors.New("gc: collector closed with reachable objects still alive (rooted-but-unreachable handles outlived the collector)")

// Collector owns every Managed heap object: it allocates them, threads
// them onto an intrusive list, and runs the Wake->Mark->Sweep->Sleep state
// machine.
type Collector struct {
	// ID correlates this collector's diagnostic log lines when a host
	// runs more than one instance. Purely an ambient diagnostics key; it
	// has no bearing on collection semantics.
	ID uuid.UUID

	head box
	ph   phase

	grayQueue []box

	sweepCursor box
	sweepPrev   box

	wakeCursor box

	// lastSwept and lastFreed record the outcome of the most recent
	// Collect call, surfaced to diagnostics (internal/diag) without
	// affecting collection semantics.
	lastSwept int
	lastFreed int
}

// New returns an empty, sleeping Collector.
func New() *Collector {
	return &Collector{ID: uuid.New(), ph: phaseSleep}
}

// Phase reports the collector's current state-machine position.
func (c *Collector) Phase() string { return c.ph.String() }

// Alloc boxes value with a fresh GcBox header, prepends it to the
// intrusive object list with root=1 and color=White, and returns a Managed
// handle.
//
// Alloc is a package-level generic function rather than a method because
// Go methods cannot introduce additional type parameters beyond the
// receiver's own — the same reason rlox-gc's Collector::alloc<T> is a
// generic method on a non-generic Collector in Rust, but must be a
// generic function taking *Collector in Go.
func Alloc[T Scan](c *Collector, value T) Managed[T] {
	// Before boxing, transfer any Managed fields inside value out of the
	// external root set: they are now reachable from this new graph node,
	// not from an external owner.
	value.Unroot()

	b := &GcBox[T]{root: 1, col: white, next: c.head, Value: value}
	c.head = b

	// Allocation during Sweep: the new
	// node is prepended ahead of sweepCursor, so it is never swept this
	// cycle. If sweepPrev is nil, sweep is currently anchored on the old
	// head — which is now this new node's successor — so sweepPrev must
	// be advanced to the new head to keep the unlink invariant sound.
	if c.ph == phaseSweep && c.sweepPrev == nil {
		c.sweepPrev = c.head
	}

	return Managed[T]{b: b}
}

// Len counts live headers by walking the intrusive list. O(n), diagnostic
// grade only.
func (c *Collector) Len() int {
	n := 0
	for cur := c.head; cur != nil; cur = cur.getNext() {
		n++
	}
	return n
}

// Collect runs one complete Wake->Mark->Sweep->Sleep cycle and returns
// once the state is Sleep again.
func (c *Collector) Collect() {
	c.enterWake()
	for c.ph != phaseSleep {
		c.step()
	}
}

// Step drives the collector through at most n further state-machine steps
// (one Wake-cursor advance, one Mark-queue pop, or one Sweep-cursor advance
// per step), starting a fresh cycle first if the collector is currently
// Sleep. It returns once n steps have run or the collector reaches Sleep,
// whichever comes first, and reports whether Sleep was reached. A host
// that wants the collector to never stall a latency-sensitive caller for a
// full cycle calls Step(batch) repeatedly instead of Collect.
func (c *Collector) Step(n int) (sleeping bool) {
	if c.ph == phaseSleep {
		c.enterWake()
	}
	for i := 0; i < n && c.ph != phaseSleep; i++ {
		c.step()
	}
	return c.ph == phaseSleep
}

// enterWake resets the state machine to the start of a fresh cycle.
func (c *Collector) enterWake() {
	c.ph = phaseWake
	c.wakeCursor = c.head
}

// step advances the state machine by one unit of work in whichever phase
// is current. Collect drives this to completion; Step calls it directly to
// pump the machine incrementally.
func (c *Collector) step() {
	switch c.ph {
	case phaseWake:
		c.stepWake()
	case phaseMark:
		c.stepMark()
	case phaseSweep:
		c.stepSweep()
	case phaseSleep:
		// nothing to do
	}
}

func (c *Collector) stepWake() {
	cur := c.wakeCursor
	if cur == nil {
		c.ph = phaseMark
		return
	}
	c.wakeCursor = cur.getNext()
	if cur.getRoot() > 0 {
		cur.setColor(gray)
		c.grayQueue = append(c.grayQueue, cur)
	}
}

func (c *Collector) stepMark() {
	n := len(c.grayQueue)
	if n == 0 {
		c.ph = phaseSweep
		c.sweepCursor = c.head
		c.sweepPrev = nil
		c.lastFreed = 0
		return
	}
	b := c.grayQueue[n-1]
	c.grayQueue = c.grayQueue[:n-1]

	ctx := &Context{}
	b.scanValue(ctx)
	b.setColor(black)
	c.grayQueue = append(c.grayQueue, ctx.discovered...)
}

func (c *Collector) stepSweep() {
	cur := c.sweepCursor
	if cur == nil {
		c.lastSwept = c.Len()
		c.sweepPrev = nil
		c.ph = phaseSleep
		return
	}
	next := cur.getNext()
	c.sweepCursor = next

	switch cur.getColor() {
	case white:
		if c.sweepPrev == nil {
			c.head = next
		} else {
			c.sweepPrev.setNext(next)
		}
		c.lastFreed++
	case black:
		cur.setColor(white)
		c.sweepPrev = cur
	case gray:
		panic(errGrayDuringSweep)
	}
}

// Close runs a final collection so the graph is empty, then reports
// errLeakedRoots if objects are still reachable. A non-empty residue
// indicates rooted-but-unreachable handles outliving the collector —
// the caller's responsibility to surface as a diagnostic rather than
// treat as a crash.
func (c *Collector) Close() error {
	c.Collect()
	if c.Len() != 0 {
		return errLeakedRoots
	}
	return nil
}

// LastCycleStats returns the live-header count and freed-header count from
// the most recently completed Collect cycle, for diagnostics only.
func (c *Collector) LastCycleStats() (swept, freed int) {
	return c.lastSwept, c.lastFreed
}
