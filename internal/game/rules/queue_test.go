package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueOrdering(t *testing.T) {
	q := newEventQueue()
	a, b, c := NewGameBegin(), NewTurnBegin(0), NewTurnEnd(0)

	q.pushBack(a)
	q.pushBack(b)
	q.pushFront(c)
	require.Equal(t, 3, q.len())

	evt, ok := q.popFront()
	require.True(t, ok)
	assert.Same(t, c, evt)
	evt, _ = q.popFront()
	assert.Same(t, a, evt)
	evt, _ = q.popFront()
	assert.Same(t, b, evt)

	_, ok = q.popFront()
	assert.False(t, ok)
}

func TestEventQueueInsertAtClamps(t *testing.T) {
	q := newEventQueue()
	a, b, c, d := NewGameBegin(), NewTurnBegin(0), NewTurnEnd(0), NewGameEnd(0)

	q.insertAt(a, -3)
	q.insertAt(b, 10)
	q.insertAt(c, 1)
	q.insertAt(d, 0)

	assert.Equal(t, []*Event{d, a, c, b}, q.list())
}

func TestEventQueueClear(t *testing.T) {
	q := newEventQueue()
	q.pushBack(NewGameBegin())
	q.pushBack(NewGameEnd(1))

	dropped := q.clear()
	assert.Len(t, dropped, 2)
	assert.Equal(t, 0, q.len())
	assert.Empty(t, q.list())
}
