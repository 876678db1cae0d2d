package frontier

// fifoQueue preserves submission order: mandatory documents first, then
// discovered documents, then the combinatorial grid in ascending
// chapter-then-heading order.
type fifoQueue struct {
	items []AdmissionCandidate
}

func newFifoQueue() fifoQueue {
	return fifoQueue{}
}

func (q *fifoQueue) enqueue(candidate AdmissionCandidate) {
	q.items = append(q.items, candidate)
}

func (q *fifoQueue) dequeue() (AdmissionCandidate, bool) {
	if len(q.items) == 0 {
		return AdmissionCandidate{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

func (q *fifoQueue) len() int {
	return len(q.items)
}
