package datastructure

// min priority queue for container/heap. ties on rank are resolved by tieBreak (if set).
type priorityQueueNode[T any] struct {
	rank  float64
	index int
	item  T
}

func newPriorityQueueNode[T any](rank float64, item T) *priorityQueueNode[T] {
	return &priorityQueueNode[T]{rank: rank, item: item}
}

type priorityQueue[T any] struct {
	nodes    []*priorityQueueNode[T]
	tieBreak func(a, b T) bool
}

func newPriorityQueue[T any](tieBreak func(a, b T) bool) *priorityQueue[T] {
	return &priorityQueue[T]{tieBreak: tieBreak}
}

func (pq *priorityQueue[T]) Len() int {
	return len(pq.nodes)
}

func (pq *priorityQueue[T]) Less(i, j int) bool {
	if pq.nodes[i].rank != pq.nodes[j].rank {
		return pq.nodes[i].rank < pq.nodes[j].rank
	}
	if pq.tieBreak == nil {
		return false
	}
	return pq.tieBreak(pq.nodes[i].item, pq.nodes[j].item)
}

func (pq *priorityQueue[T]) Swap(i, j int) {
	pq.nodes[i], pq.nodes[j] = pq.nodes[j], pq.nodes[i]
	pq.nodes[i].index = i
	pq.nodes[j].index = j
}

func (pq *priorityQueue[T]) Push(x interface{}) {
	n := len(pq.nodes)
	no := x.(*priorityQueueNode[T])
	no.index = n
	pq.nodes = append(pq.nodes, no)
}

func (pq *priorityQueue[T]) Pop() interface{} {
	old := pq.nodes
	n := len(old)
	no := old[n-1]
	old[n-1] = nil
	no.index = -1
	pq.nodes = old[0 : n-1]
	return no
}
