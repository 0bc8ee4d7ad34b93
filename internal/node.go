package internal

import (
	"reflect"
	"slices"
	"sort"
)

// Kind tags the variant a Node holds.
type Kind uint8

const (
	KindLeaf          Kind = iota // a single number or string
	KindSequence                  // ordered payload of nodes and plain values
	KindMapping                   // keyed payload of nodes and plain values
	KindInterpolation             // derived from one or more source nodes
)

type NodeFlags int

const (
	FlagNone   NodeFlags = 0
	FlagDirty  NodeFlags = 1 << 0
	FlagInHeap NodeFlags = 1 << 1
)

// Node is a unit of the animated dependency graph.
//
// Payload edges point from a node to the nodes it reads (its sources), child
// edges point the other way, from a source to the nodes derived from it. A node
// only registers itself as a child of its payload once it has children or
// listeners of its own ("attached"); detached derived nodes are recomputed on
// every read.
type Node struct {
	kind Kind

	// leaf value, or the cached value of an attached derived node
	value any

	items  []any
	keys   []string
	fields map[string]any

	sources []*Node
	compute func(args []any) any

	// set by the owning spring once the leaf reached its target
	done bool

	// the current height of the node in the dependency graph
	height int

	flags NodeFlags

	children  []*Node
	listeners []*listener

	// last propagated value, used to skip notifying unchanged nodes
	last any
}

type listener struct {
	fn func(any)
}

func NewLeaf(value any) *Node {
	return &Node{kind: KindLeaf, value: value, done: true}
}

// NewSequence creates a composite node over an ordered payload.
// Entries that are not *Node are kept as plain values.
func NewSequence(items ...any) *Node {
	n := &Node{kind: KindSequence, items: items}
	n.height = n.payloadHeight()
	return n
}

// NewMapping creates a composite node over a keyed payload. Keys are visited
// in sorted order.
func NewMapping(fields map[string]any) *Node {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	n := &Node{kind: KindMapping, keys: keys, fields: fields}
	n.height = n.payloadHeight()
	return n
}

func (n *Node) Kind() Kind { return n.kind }

func (n *Node) Height() int { return n.height }

func (n *Node) HasFlag(flag NodeFlags) bool { return n.flags&flag != 0 }

func (n *Node) AddFlag(flag NodeFlags) { n.flags |= flag }

func (n *Node) RemoveFlag(flag NodeFlags) { n.flags &^= flag }

// Value returns the raw value. Composite nodes rebuild their payload with every
// nested node resolved.
func (n *Node) Value() any {
	switch n.kind {
	case KindLeaf:
		return n.value

	case KindSequence:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			if child, ok := item.(*Node); ok {
				out[i] = child.Value()
			} else {
				out[i] = item
			}
		}
		return out

	case KindMapping:
		out := make(map[string]any, len(n.keys))
		for _, key := range n.keys {
			if child, ok := n.fields[key].(*Node); ok {
				out[key] = child.Value()
			} else {
				out[key] = n.fields[key]
			}
		}
		return out

	case KindInterpolation:
		return n.derive()
	}

	return nil
}

// AnimatedValue is like Value, but composite nodes only keep the payload
// entries that are nodes themselves.
func (n *Node) AnimatedValue() any {
	switch n.kind {
	case KindSequence:
		out := make([]any, 0, len(n.items))
		for _, item := range n.items {
			if child, ok := item.(*Node); ok {
				out = append(out, child.AnimatedValue())
			}
		}
		return out

	case KindMapping:
		out := make(map[string]any, len(n.keys))
		for _, key := range n.keys {
			if child, ok := n.fields[key].(*Node); ok {
				out[key] = child.AnimatedValue()
			}
		}
		return out
	}

	return n.Value()
}

// Payload returns the nodes this node reads from.
func (n *Node) Payload() []*Node {
	var out []*Node

	switch n.kind {
	case KindSequence:
		for _, item := range n.items {
			if child, ok := item.(*Node); ok {
				out = append(out, child)
			}
		}
	case KindMapping:
		for _, key := range n.keys {
			if child, ok := n.fields[key].(*Node); ok {
				out = append(out, child)
			}
		}
	case KindInterpolation:
		out = append(out, n.sources...)
	}

	return out
}

// Children returns the nodes currently derived from this node.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

func (n *Node) attached() bool {
	return len(n.children) > 0 || len(n.listeners) > 0
}

func (n *Node) AddChild(child *Node) {
	if slices.Contains(n.children, child) {
		return
	}

	if !n.attached() {
		n.attach()
	}
	n.children = append(n.children, child)
}

// RemoveChild drops the edge to child. Unknown children are ignored.
func (n *Node) RemoveChild(child *Node) {
	i := slices.Index(n.children, child)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)

	if !n.attached() {
		n.detach()
	}
}

func (n *Node) attach() {
	for _, p := range n.Payload() {
		p.AddChild(n)
	}

	if n.kind == KindInterpolation {
		n.AddFlag(FlagDirty)
	}
	if n.kind != KindLeaf {
		n.last = n.Value()
	}
}

func (n *Node) detach() {
	for _, p := range n.Payload() {
		p.RemoveChild(n)
	}
}

// DetachAll removes the node from every source and drops its own children and
// listeners. Used when the owning spring is disposed.
func (n *Node) DetachAll() {
	for _, child := range slices.Clone(n.children) {
		n.RemoveChild(child)
		if child.kind == KindInterpolation {
			child.AddFlag(FlagDirty)
		}
		child.invalidate()
	}
	n.listeners = nil
	n.detach()
}

// OnChange registers fn to be called with the new value whenever the graph
// propagates a change through this node. The returned function unsubscribes.
func (n *Node) OnChange(fn func(any)) func() {
	l := &listener{fn: fn}

	if !n.attached() {
		n.attach()
	}
	n.listeners = append(n.listeners, l)
	n.last = n.Value()

	return func() {
		i := slices.Index(n.listeners, l)
		if i < 0 {
			return
		}
		n.listeners = slices.Delete(n.listeners, i, i+1)

		if !n.attached() {
			n.detach()
		}
	}
}

// Done reports whether the node has settled: a leaf once its owner finished
// animating it, anything else once all of its sources did.
func (n *Node) Done() bool {
	if n.kind == KindLeaf {
		return n.done
	}

	for _, p := range n.Payload() {
		if !p.Done() {
			return false
		}
	}
	return true
}

func (n *Node) SetDone(done bool) {
	n.done = done
}

// invalidate marks every node derived from n as needing a recompute. Only
// interpolations cache a value, composites are walked through.
func (n *Node) invalidate() {
	for _, child := range n.children {
		if child.kind == KindInterpolation {
			if child.HasFlag(FlagDirty) {
				continue
			}
			child.AddFlag(FlagDirty)
		}
		child.invalidate()
	}
}

func (n *Node) payloadHeight() int {
	height := 0
	for _, p := range n.Payload() {
		if p.height >= height {
			height = p.height + 1
		}
	}
	return height
}

func isEqual(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case nil:
		return b == nil
	}

	return reflect.DeepEqual(a, b)
}
