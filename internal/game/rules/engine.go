package rules

import (
	"fmt"

	"go.uber.org/zap"
)

// Status is the state of the engine's resolve loop.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusRunning:
		return "RUNNING"
	case StatusTerminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("STATUS_%d", int(s))
	}
}

// Outcome is the result of a dispatch. Terminated is set once a terminal
// event resolved; the remaining queue has then been discarded.
type Outcome struct {
	Terminated bool
	Kind       Kind
	PlayerID   int
	EventID    string
	// Discarded counts the events dropped un-dispatched by the termination.
	Discarded int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMessageHook installs the message-emission hook.
func WithMessageHook(hook MessageHook) Option {
	return func(e *Engine) { e.messages = hook }
}

// WithRecorder installs the history-recording hook.
func WithRecorder(rec Recorder) Option {
	return func(e *Engine) { e.recorder = rec }
}

// WithMaxDispatch bounds the number of events a single Run may dispatch.
// Zero disables the bound.
func WithMaxDispatch(n int) Option {
	return func(e *Engine) { e.maxDispatch = n }
}

// WithTerminalKinds adds kinds whose resolution terminates the engine.
func WithTerminalKinds(kinds ...Kind) Option {
	return func(e *Engine) {
		for _, k := range kinds {
			e.terminal[k] = true
		}
	}
}

// Engine owns the pending-event queue and the handler registry and drives
// resolution. It is single-threaded: effects and handlers re-enter it
// synchronously, so it must not be shared between goroutines.
type Engine struct {
	logger   *zap.Logger
	queue    *eventQueue
	handlers *handlerRegistry
	terminal map[Kind]bool

	status      Status
	outcome     Outcome
	depth       int
	dispatched  int
	maxDispatch int
	seq         int

	messages MessageHook
	recorder Recorder
}

// NewEngine creates an idle engine. GameEnd is terminal by default.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:   logger,
		queue:    newEventQueue(),
		handlers: newHandlerRegistry(),
		terminal: map[Kind]bool{KindGameEnd: true},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetMessageHook replaces the message-emission hook.
func (e *Engine) SetMessageHook(hook MessageHook) { e.messages = hook }

// SetRecorder replaces the history-recording hook.
func (e *Engine) SetRecorder(rec Recorder) { e.recorder = rec }

// AddTerminalKind marks kind as terminal.
func (e *Engine) AddTerminalKind(kind Kind) { e.terminal[kind] = true }

// IsTerminal reports whether kind terminates the engine.
func (e *Engine) IsTerminal(kind Kind) bool { return e.terminal[kind] }

// Status returns the loop state.
func (e *Engine) Status() Status { return e.status }

// Outcome returns the termination outcome, zero while not terminated.
func (e *Engine) Outcome() Outcome { return e.outcome }

// RegisterHandler adds h to the registry and returns its ID. It takes effect
// from the next dispatched event onward.
func (e *Engine) RegisterHandler(h *Handler) string {
	if h == nil {
		return ""
	}
	id := e.handlers.register(h)
	e.logger.Debug("handler registered",
		zap.String("handler", h.String()),
		zap.String("phase", h.Phase.String()),
	)
	return id
}

// UnregisterHandler removes a handler by ID.
func (e *Engine) UnregisterHandler(id string) bool {
	return e.handlers.unregister(id)
}

// UnregisterOwner removes every handler owned by owner and returns how many
// were removed.
func (e *Engine) UnregisterOwner(owner Entity) int {
	n := e.handlers.unregisterOwner(owner)
	if n > 0 {
		e.logger.Debug("owner handlers unregistered",
			zap.String("owner", entityString(owner)),
			zap.Int("count", n),
		)
	}
	return n
}

// Handlers returns the handlers subscribed to kind in registration order.
func (e *Engine) Handlers(kind Kind) []*Handler {
	return e.handlers.list(kind)
}

// HandlerCount returns the number of registered handlers.
func (e *Engine) HandlerCount() int {
	return e.handlers.len()
}

// Enqueue appends evt to the tail of the queue.
func (e *Engine) Enqueue(evt *Event) {
	if e.accept(evt) {
		e.queue.pushBack(evt)
	}
}

// EnqueueFront puts evt at the head of the queue.
func (e *Engine) EnqueueFront(evt *Event) {
	if e.accept(evt) {
		e.queue.pushFront(evt)
	}
}

// EnqueueAt inserts evt before the event at pos.
func (e *Engine) EnqueueAt(evt *Event, pos int) {
	if e.accept(evt) {
		e.queue.insertAt(evt, pos)
	}
}

func (e *Engine) accept(evt *Event) bool {
	if evt == nil {
		return false
	}
	if e.status == StatusTerminated {
		e.outcome.Discarded++
		e.logger.Debug("event dropped after termination", zap.Stringer("kind", evt.Kind))
		return false
	}
	return true
}

// Pending returns a copy of the queue, head first.
func (e *Engine) Pending() []*Event { return e.queue.list() }

// Len returns the number of queued events.
func (e *Engine) Len() int { return e.queue.len() }

// Dispatch runs the full cycle for a single event right now: before-phase
// handlers, the effect unless the event was disabled, after-phase handlers
// unless the effect disabled it, then the terminal check. Effects may call it
// re-entrantly to resolve an event ahead of the queue.
func (e *Engine) Dispatch(s Session, evt *Event) (Outcome, error) {
	if e.status == StatusTerminated {
		return e.outcome, ErrTerminated
	}
	if evt == nil {
		return Outcome{}, fmt.Errorf("%w: nil event", ErrInvariant)
	}
	if evt.state != StatePending {
		return Outcome{}, fmt.Errorf("%w: %s is %s", ErrNotPending, evt, evt.state)
	}
	e.dispatched++
	if e.maxDispatch > 0 && e.dispatched > e.maxDispatch {
		return Outcome{}, fmt.Errorf("%w: more than %d events", ErrRunaway, e.maxDispatch)
	}

	e.depth++
	e.status = StatusRunning
	defer func() {
		e.depth--
		if e.depth == 0 && e.status == StatusRunning {
			e.status = StatusIdle
		}
	}()

	before, after := e.handlers.snapshot(evt.Kind)

	if err := e.runHandlers(s, evt, before); err != nil {
		return Outcome{}, err
	}
	if e.status == StatusTerminated {
		e.record(evt)
		return e.outcome, nil
	}

	if evt.state == StatePending {
		if err := evt.happen(s); err != nil {
			return Outcome{}, fmt.Errorf("%s: %w", evt, err)
		}
	}
	if e.status == StatusTerminated {
		if evt.state == StatePending {
			evt.state = StateResolved
		}
		e.record(evt)
		return e.outcome, nil
	}

	if evt.state == StatePending {
		if err := e.runHandlers(s, evt, after); err != nil {
			return Outcome{}, err
		}
		if evt.state == StatePending {
			evt.state = StateResolved
		}
	}
	e.record(evt)

	if e.status != StatusTerminated && evt.state == StateResolved && e.terminal[evt.Kind] {
		e.terminate(evt)
	}
	return e.outcome, nil
}

func (e *Engine) runHandlers(s Session, evt *Event, handlers []*Handler) error {
	kind := evt.Kind
	for _, h := range handlers {
		if !h.active || h.Process == nil || !h.Matches(evt) {
			continue
		}
		if err := h.Process(s, evt); err != nil {
			return fmt.Errorf("handler %s on %s: %w", h, evt, err)
		}
		if evt.Kind != kind {
			return fmt.Errorf("%w: handler %s changed %s into %s", ErrInvariant, h, kind, evt.Kind)
		}
		if h.Once {
			e.handlers.unregister(h.ID)
		}
		if e.status == StatusTerminated {
			return nil
		}
	}
	return nil
}

// Run drains whatever is already queued, then dispatches each event in
// order, draining the queue after each one. It stops as soon as a terminal
// event resolves. An error aborts the batch and clears the queue.
func (e *Engine) Run(s Session, events ...*Event) (Outcome, error) {
	if e.status == StatusTerminated {
		return e.outcome, ErrTerminated
	}
	if e.depth == 0 {
		e.dispatched = 0
	}

	out, err := e.drain(s)
	if err != nil {
		return Outcome{}, e.fail(err)
	}
	if out.Terminated {
		e.outcome.Discarded += countEvents(events)
		return e.outcome, nil
	}

	for i, evt := range events {
		if evt == nil {
			continue
		}
		e.queue.pushBack(evt)
		out, err = e.drain(s)
		if err != nil {
			return Outcome{}, e.fail(err)
		}
		if out.Terminated {
			e.outcome.Discarded += countEvents(events[i+1:])
			return e.outcome, nil
		}
	}
	return Outcome{}, nil
}

func countEvents(events []*Event) int {
	n := 0
	for _, evt := range events {
		if evt != nil {
			n++
		}
	}
	return n
}

func (e *Engine) drain(s Session) (Outcome, error) {
	for {
		evt, ok := e.queue.popFront()
		if !ok {
			return Outcome{}, nil
		}
		if evt.state != StatePending {
			// Disabled while queued: it still leaves the queue.
			e.record(evt)
			continue
		}
		out, err := e.Dispatch(s, evt)
		if err != nil {
			return Outcome{}, err
		}
		if out.Terminated {
			return out, nil
		}
	}
}

func (e *Engine) terminate(evt *Event) {
	dropped := e.queue.clear()
	e.status = StatusTerminated
	e.outcome = Outcome{
		Terminated: true,
		Kind:       evt.Kind,
		PlayerID:   evt.PlayerID,
		EventID:    evt.ID,
		Discarded:  len(dropped),
	}
	e.logger.Info("terminal event resolved",
		zap.String("event_id", evt.ID),
		zap.Stringer("kind", evt.Kind),
		zap.Int("player_id", evt.PlayerID),
		zap.Int("discarded", len(dropped)),
	)
}

func (e *Engine) fail(err error) error {
	dropped := e.queue.clear()
	if e.status != StatusTerminated {
		e.status = StatusIdle
	}
	e.logger.Error("resolution batch aborted",
		zap.Error(err),
		zap.Int("dropped", len(dropped)),
	)
	return err
}

// Reset returns the engine to idle with an empty queue, optionally clearing
// every registered handler.
func (e *Engine) Reset(clearHandlers bool) {
	e.queue.clear()
	e.status = StatusIdle
	e.outcome = Outcome{}
	e.depth = 0
	e.dispatched = 0
	e.seq = 0
	if clearHandlers {
		e.handlers.clear()
	}
}

// Emit sends an informational message about evt to the log and the message
// hook.
func (e *Engine) Emit(evt *Event, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	msg := Message{Text: text}
	if evt != nil {
		msg.EventID = evt.ID
		msg.Kind = evt.Kind
	}
	e.logger.Debug(text, zap.Stringer("kind", msg.Kind), zap.String("event_id", msg.EventID))
	if e.messages != nil {
		e.messages(msg)
	}
}

func (e *Engine) record(evt *Event) {
	e.seq++
	if e.recorder == nil {
		return
	}
	entry := Entry{
		Seq:      e.seq,
		EventID:  evt.ID,
		Kind:     evt.Kind,
		State:    evt.state,
		PlayerID: evt.PlayerID,
		Value:    evt.Value,
		SourceID: entityID(evt.Source),
		TargetID: entityID(evt.Target),
	}
	if evt.Card != nil {
		entry.CardID = evt.Card.ID()
	} else if evt.Minion != nil {
		entry.CardID = evt.Minion.ID()
	}
	e.recorder.Record(entry)
}

func entityID(ent Entity) string {
	if entityString(ent) == "<nil>" {
		return ""
	}
	return ent.ID()
}
