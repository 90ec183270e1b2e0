// Package gc implements a tri-color incremental mark-and-sweep collector
// with reference-counted roots and the Managed smart pointer that roots a
// heap object while held outside the graph.
package gc

// Scan is the capability every heap-reachable value implements: enumerate
// the Managed pointers it contains into a mark Context, and propagate
// rooting when those pointers move into or out of the graph.
//
// Implementations must satisfy one invariant: Scan must enumerate exactly
// the contained Managed pointers. Missing an edge causes premature
// collection; visiting an edge twice is harmless — promotion in
// Context.enqueue is idempotent.
type Scan interface {
	// Scan enumerates contained Managed pointers into ctx.
	Scan(ctx *Context)
	// Root marks contained Managed pointers as rooted again — called when
	// a handle moves from inside the graph back out to an external owner.
	// Only meaningful once an interior-mutable cell exists; until then
	// Managed.Root itself panics, but composite containers must still
	// implement it by recursing into their fields.
	Root()
	// Unroot marks contained Managed pointers as no longer externally
	// rooted — called when a handle is absorbed into the graph, e.g. by
	// Alloc boxing a value that holds Managed fields.
	Unroot()
}
