package internal

// ListenerQueue collects node change notifications while the graph is being
// drained, so listeners only ever observe a fully propagated graph.
type ListenerQueue struct {
	pending []func()
}

func NewListenerQueue() *ListenerQueue {
	return &ListenerQueue{
		pending: make([]func(), 0),
	}
}

func (q *ListenerQueue) Enqueue(fn func()) {
	q.pending = append(q.pending, fn)
}

func (q *ListenerQueue) Notify(n *Node, value any) {
	for _, l := range n.listeners {
		q.Enqueue(func() { l.fn(value) })
	}
}

func (q *ListenerQueue) Len() int {
	return len(q.pending)
}

func (q *ListenerQueue) Run() {
	pending := q.pending
	q.pending = make([]func(), 0)

	for _, fn := range pending {
		fn()
	}
}
