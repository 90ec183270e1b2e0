package gc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// variantList is a hand-written tagged-union ("sum type") heap value: a
// list cell is either Nil or Cons(head *testLeaf, tail variantList),
// demonstrating "for sum types, match the active variant and recurse into
// its payload" using ScanFields.
type variantKind uint8

const (
	kindNil variantKind = iota
	kindCons
)

type variantList struct {
	kind variantKind
	head Managed[*testLeaf]
	tail Managed[*variantCell]
}

// variantCell boxes a variantList so it can live behind a Managed pointer
// (lists are recursive, so the tail must be heap-indirect).
type variantCell struct {
	list variantList
}

func (v *variantCell) Scan(ctx *Context) {
	switch v.list.kind {
	case kindNil:
		// no payload
	case kindCons:
		ScanFields(ctx, v.list.head, v.list.tail)
	}
}

func (v *variantCell) Root() {
	switch v.list.kind {
	case kindCons:
		RootFields(v.list.head, v.list.tail)
	}
}

func (v *variantCell) Unroot() {
	switch v.list.kind {
	case kindCons:
		UnrootFields(v.list.head, v.list.tail)
	}
}

func TestSumTypeScanRecursesActiveVariantOnly(t *testing.T) {
	c := New()
	leaf := Alloc(c, &testLeaf{})
	nilCell := Alloc(c, &variantCell{list: variantList{kind: kindNil}})
	cons := Alloc(c, &variantCell{list: variantList{
		kind: kindCons,
		head: leaf.Clone(),
		tail: nilCell.Clone(),
	}})

	// Drop every external handle except the head of the list.
	leaf.Release()
	nilCell.Release()
	cons2 := cons // keep one external root
	_ = cons2

	c.Collect()
	require.Equal(t, 3, c.Len(), "cons, its head leaf, and its tail cell are all still reachable")
}

func TestSeqRecursesEachElement(t *testing.T) {
	c := New()
	a := Alloc(c, &testLeaf{})
	b := Alloc(c, &testLeaf{})

	h := &seqHolder{items: Seq[Managed[*testLeaf]]{a.Clone(), b.Clone()}}
	wrapped := Alloc(c, h)

	a.Release()
	b.Release()
	require.Equal(t, 3, c.Len())

	c.Collect()
	require.Equal(t, 3, c.Len(), "both leaves remain reachable through the sequence")

	wrapped.Release()
	c.Collect()
	require.Equal(t, 0, c.Len())
}

type seqHolder struct {
	items Seq[Managed[*testLeaf]]
}

func (h *seqHolder) Scan(ctx *Context) { h.items.Scan(ctx) }
func (h *seqHolder) Root()             { h.items.Root() }
func (h *seqHolder) Unroot()           { h.items.Unroot() }

func TestOptSkipsUnsetValue(t *testing.T) {
	c := New()
	leaf := Alloc(c, &testLeaf{})

	wrapped := Alloc(c, &optHolder{maybe: None[Managed[*testLeaf]]()})
	leaf.Release()

	c.Collect()
	require.Equal(t, 1, c.Len(), "leaf is unreferenced by the unset Opt and is reclaimed")

	wrapped.Release()
	c.Collect()
	require.Equal(t, 0, c.Len())
}

type optHolder struct {
	maybe Opt[Managed[*testLeaf]]
}

func (h *optHolder) Scan(ctx *Context) { h.maybe.Scan(ctx) }
func (h *optHolder) Root()             { h.maybe.Root() }
func (h *optHolder) Unroot()           { h.maybe.Unroot() }

func TestAssocRecursesKeysAndValues(t *testing.T) {
	c := New()
	k := Alloc(c, &testLeaf{})
	v := Alloc(c, &testLeaf{})

	wrapped := Alloc(c, &assocHolder{m: Assoc[Managed[*testLeaf], Managed[*testLeaf]]{
		k.Clone(): v.Clone(),
	}})
	k.Release()
	v.Release()

	c.Collect()
	require.Equal(t, 3, c.Len())

	wrapped.Release()
	c.Collect()
	require.Equal(t, 0, c.Len())
}

type assocHolder struct {
	m Assoc[Managed[*testLeaf], Managed[*testLeaf]]
}

func (h *assocHolder) Scan(ctx *Context) { h.m.Scan(ctx) }
func (h *assocHolder) Root()             { h.m.Root() }
func (h *assocHolder) Unroot()           { h.m.Unroot() }
