package rules

// eventQueue is the pending-event sequence: FIFO, with explicit front and
// positional insertion for events that must resolve ahead of queued ones.
type eventQueue struct {
	items []*Event
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		items: make([]*Event, 0, 16),
	}
}

// pushBack appends to the tail.
func (q *eventQueue) pushBack(evt *Event) {
	q.items = append(q.items, evt)
}

// pushFront prepends to the head.
func (q *eventQueue) pushFront(evt *Event) {
	q.insertAt(evt, 0)
}

// insertAt inserts before the event currently at pos. pos is clamped to
// the queue bounds.
func (q *eventQueue) insertAt(evt *Event, pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(q.items) {
		pos = len(q.items)
	}
	q.items = append(q.items, nil)
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = evt
}

// popFront removes the head.
func (q *eventQueue) popFront() (*Event, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	evt := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return evt, true
}

func (q *eventQueue) len() int {
	return len(q.items)
}

// list returns a copy of the pending events, head first.
func (q *eventQueue) list() []*Event {
	cpy := make([]*Event, len(q.items))
	copy(cpy, q.items)
	return cpy
}

// clear empties the queue and returns what was pending.
func (q *eventQueue) clear() []*Event {
	dropped := q.items
	q.items = make([]*Event, 0, 16)
	return dropped
}
