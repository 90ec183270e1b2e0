package gc

// Context is the mark-phase collaborator passed to Scan: it collects the
// newly-discovered gray boxes produced while scanning one object.
type Context struct {
	discovered []box
}

// enqueue performs the idempotent White->Gray promotion ("scan_ptr"): a
// White box is promoted to Gray and queued for marking; a Gray or Black box
// is left untouched. Calling it twice on the same box is a no-op the second
// time, which is what makes mark termination and cycle-handling correct.
func (ctx *Context) enqueue(b box) {
	if b.getColor() == white {
		b.setColor(gray)
		ctx.discovered = append(ctx.discovered, b)
	}
}
