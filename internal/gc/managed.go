package gc

// Managed is a smart reference into the GC heap ("Managed pointer"). It
// counts itself as a root while held outside the graph. The zero Managed is
// not a valid handle — only Alloc and Clone produce them.
type Managed[T Scan] struct {
	b *GcBox[T]
}

// Clone returns a new handle to the same box, incrementing its root count.
// This is the Go analog of rlox-gc's Gc<T>::clone, which increments the
// reference count before sharing the pointer.
func (m Managed[T]) Clone() Managed[T] {
	if m.b == nil {
		return m
	}
	m.b.incRoot()
	return Managed[T]{b: m.b}
}

// Release decrements the box's root count, saturating at 0. Go has no
// destructors, so callers must call Release explicitly wherever rlox-gc
// relies on Gc<T>::drop — typically in a defer right after a temporary
// handle's last use, or when an owning struct's own teardown runs.
func (m Managed[T]) Release() {
	if m.b == nil {
		return
	}
	m.b.decRoot()
}

// IsRoot reports whether this box currently has at least one outstanding
// external root handle. An unset (zero-value) Managed reports false.
func (m Managed[T]) IsRoot() bool {
	return m.b != nil && m.b.getRoot() > 0
}

// Valid reports whether m points at an actual box, as opposed to being an
// unset field on a not-yet-fully-initialized heap value (a two-node cycle
// is typically constructed by allocating both nodes before wiring their
// mutual peer field).
func (m Managed[T]) Valid() bool {
	return m.b != nil
}

// Deref returns a pointer to the payload for read or mutation. The
// returned pointer must not outlive a sweep that reclaims the box; callers
// follow the same discipline as holding a borrow across rlox-gc's
// Gc::deref. Panics if m is unset — check Valid first.
func (m Managed[T]) Deref() *T {
	return &m.b.Value
}

// Scan satisfies the Scan capability by forwarding to the collector's
// scan_ptr primitive: idempotent White->Gray promotion. An unset Managed
// contributes no edge.
func (m Managed[T]) Scan(ctx *Context) {
	if m.b == nil {
		return
	}
	ctx.enqueue(m.b)
}

// Unroot decrements the pointed box's root count: the handle now lives
// inside the graph rather than as an external root. Alloc calls this on a
// value's own Managed fields before boxing it, transferring their root
// ownership from "external" to "reachable via this new node's Scan". An
// unset Managed has nothing to unroot.
func (m Managed[T]) Unroot() {
	if m.b == nil {
		return
	}
	m.b.decRoot()
}

// Root is the re-rooting half of Scan, for a handle moving back out of the
// graph to an external owner. On a set handle it panics without changing
// the root count; on an unset handle it does nothing.
//
// This case is intentionally left open: the source this was ported from
// declares it `todo!()` because no interior-mutable cell exists yet that
// could hand a Managed pointer out of the graph, and an incorrect guess
// here would silently corrupt root accounting. We keep that decision
// faithfully: Root panics so any future cell implementation is forced to
// confirm the semantics (see DESIGN.md, Open Questions) rather than
// silently inheriting an unverified increment. Composite Scan containers
// (slices, maps, optionals) still implement Root by recursing into their
// fields — only the bare Managed leaf is left unresolved.
func (m Managed[T]) Root() {
	if m.b == nil {
		return
	}
	panic("gc: Managed.Root is not implemented — requires an interior-mutable cell design, see DESIGN.md")
}
