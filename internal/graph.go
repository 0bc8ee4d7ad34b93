package internal

import "slices"

// Graph propagates leaf writes to derived nodes in height order and notifies
// change listeners once the whole graph is consistent.
type Graph struct {
	heap      *PriorityHeap
	batcher   *Batcher
	listeners *ListenerQueue

	flushing bool
}

func NewGraph() *Graph {
	return &Graph{
		heap:      NewHeap(),
		batcher:   NewBatcher(),
		listeners: NewListenerQueue(),
	}
}

// Set writes a leaf value and propagates it to every node derived from it.
// Inside a batch the propagation is deferred until the batch completes.
func (g *Graph) Set(n *Node, value any) {
	if isEqual(n.value, value) {
		return
	}

	n.value = value
	n.last = value
	g.listeners.Notify(n, value)

	n.invalidate()
	g.heap.InsertAll(slices.Values(n.children))

	if !g.batcher.IsBatching() {
		g.Flush()
	}
}

// Batch runs fn and propagates every write it made once, at the end of the
// outermost batch.
func (g *Graph) Batch(fn func()) {
	g.batcher.Batch(fn, g.Flush)
}

func (g *Graph) Flush() {
	if g.flushing {
		return
	}
	g.flushing = true
	defer func() { g.flushing = false }()

	// listeners may write to the graph again
	for g.heap.Len() > 0 || g.listeners.Len() > 0 {
		g.heap.Drain(g.recompute)
		g.listeners.Run()
	}
}

func (g *Graph) recompute(n *Node) {
	prev := n.last
	value := n.Value()
	n.last = value

	if isEqual(prev, value) {
		return
	}

	g.listeners.Notify(n, value)
	g.heap.InsertAll(slices.Values(n.children))
}
