package rules

import "errors"

var (
	// ErrInvariant marks a broken structural invariant. The current batch is
	// aborted when an effect or handler returns it.
	ErrInvariant = errors.New("rules invariant violated")

	// ErrNotPending is returned when dispatching an event that already left
	// the pending state.
	ErrNotPending = errors.New("event is not pending")

	// ErrTerminated is returned when running a terminated engine.
	ErrTerminated = errors.New("engine terminated")

	// ErrRunaway is returned when a batch exceeds the dispatch limit.
	ErrRunaway = errors.New("dispatch limit exceeded")
)

// Limits are the table capacities effects must respect.
type Limits struct {
	MaxDesk    int
	MaxHand    int
	MaxCrystal int
}

// Session is the running game as seen by effects and handlers. It is passed
// explicitly into every effect and handler call; entities never hold a
// reference back to it.
type Session interface {
	Engine() *Engine
	Player(id int) *Player
	Players() []*Player
	CurrentPlayerID() int
	// AdvanceTurn hands the turn to the next player and returns its id.
	AdvanceTurn() int
	// NextSummonStamp returns the next monotonically increasing summon timestamp.
	NextSummonStamp() int
	// CreateCard materializes a card through the card registry.
	CreateCard(identifier string, playerID int) (Card, error)
	Limits() Limits
}

// Message is an informational line emitted by an event or handler at the
// point of effect.
type Message struct {
	EventID string
	Kind    Kind
	Text    string
}

// MessageHook receives messages. It never affects resolution.
type MessageHook func(msg Message)

// Entry is the history record of one dispatched event.
type Entry struct {
	Seq      int
	EventID  string
	Kind     Kind
	State    State
	PlayerID int
	Value    int
	SourceID string
	TargetID string
	CardID   string
}

// Recorder is the history-recording hook. The engine reports every event it
// dispatched, resolved or disabled.
type Recorder interface {
	Record(entry Entry)
}
