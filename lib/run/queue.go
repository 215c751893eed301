package run

import "sync"

// eventQueue decouples the acquisition worker from however fast the
// control surface drains the log stream: pushes never block, order is
// preserved.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	wake   chan struct{}
	out    chan Event
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		wake: make(chan struct{}, 1),
		out:  make(chan Event),
	}
	go q.pump()
	return q
}

func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// close ends the stream. Nothing may be pushed afterwards; pump exits
// once everything already pushed has been delivered.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pump() {
	for {
		q.mu.Lock()
		batch := q.events
		q.events = nil
		closed := q.closed
		q.mu.Unlock()

		for _, e := range batch {
			q.out <- e
		}
		if closed {
			q.mu.Lock()
			drained := len(q.events) == 0
			q.mu.Unlock()
			if drained {
				close(q.out)
				return
			}
			continue
		}
		<-q.wake
	}
}
