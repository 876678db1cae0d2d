package frontier

/*
Frontier Responsibilities
- Maintain submission ordering
- Deduplicate document identifiers by canonical filename
- Knows nothing about:
	- fetching
	- change detection
	- pacing
	- storage

It is a data structure + policy module, not a pipeline executor.
The scheduler is the only component allowed to submit candidates.
*/

type Frontier struct {
	queue fifoQueue
	seen  seenSet
}

func NewFrontier() Frontier {
	return Frontier{
		queue: newFifoQueue(),
		seen:  newSeenSet(),
	}
}

// Submit admits a candidate unless its filename was already admitted.
// Returns whether the candidate entered the queue.
func (f *Frontier) Submit(candidate AdmissionCandidate) bool {
	if !f.seen.markSeen(candidate.Filename()) {
		return false
	}
	f.queue.enqueue(candidate)
	return true
}

// Dequeue yields the next admitted candidate in submission order.
func (f *Frontier) Dequeue() (AdmissionCandidate, bool) {
	return f.queue.dequeue()
}

// AdmittedCount is the total number of distinct documents ever admitted.
func (f *Frontier) AdmittedCount() int {
	return f.seen.size()
}

// PendingCount is the number of candidates not yet dequeued.
func (f *Frontier) PendingCount() int {
	return f.queue.len()
}
