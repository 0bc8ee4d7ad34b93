package internal

import (
	"iter"
)

// Owner ties the lifetime of spring values to their controller: disposing an
// owner disposes its children first, then runs its own cleanups. Disposing
// twice is a no-op.
type Owner struct {
	// cleanup functions to be called when the owner is disposed
	cleanups []func()

	disposed bool

	parent       *Owner
	prevSibling  *Owner
	nextSibling  *Owner
	childrenHead *Owner
}

func NewOwner() *Owner {
	return &Owner{
		cleanups: make([]func(), 0),
	}
}

func (parent *Owner) AddChild(child *Owner) {
	child.parent = parent
	child.prevSibling = nil
	child.nextSibling = parent.childrenHead

	if parent.childrenHead != nil {
		parent.childrenHead.prevSibling = child
	}

	parent.childrenHead = child
}

// RemoveChild unlinks child without disposing it.
func (parent *Owner) RemoveChild(child *Owner) {
	if child.parent != parent {
		return
	}

	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		parent.childrenHead = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	}

	child.parent = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

func (n *Owner) Children() iter.Seq[*Owner] {
	return func(yield func(*Owner) bool) {
		child := n.childrenHead

		for child != nil {
			next := child.nextSibling
			if !yield(child) {
				return
			}

			child = next
		}
	}
}

func (n *Owner) Dispose() {
	if n.disposed {
		return
	}
	n.disposed = true

	n.DisposeChildren()

	for i := 0; i < len(n.cleanups); i++ {
		n.cleanups[i]()
	}
	n.cleanups = nil
}

func (n *Owner) DisposeChildren() {
	for child := range n.Children() {
		child.Dispose()
	}
	n.childrenHead = nil
}

func (n *Owner) Disposed() bool {
	return n.disposed
}

func (n *Owner) OnCleanup(fn func()) {
	n.cleanups = append(n.cleanups, fn)
}
