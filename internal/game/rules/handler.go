package rules

import (
	"github.com/google/uuid"
)

// Phase selects whether a handler runs before or after the event's effect.
type Phase int

const (
	PhaseBefore Phase = iota
	PhaseAfter
)

func (p Phase) String() string {
	if p == PhaseBefore {
		return "BEFORE"
	}
	return "AFTER"
}

// Handler reacts to events of the kinds it subscribes to. Process may mutate
// the event's payload or enqueue further events; it must not disable the
// event or change its kind.
type Handler struct {
	ID    string
	Name  string
	Kinds []Kind
	// Owner scopes the handler to an entity; nil for global handlers.
	Owner     Entity
	Phase     Phase
	Condition func(*Event) bool
	Process   func(Session, *Event) error
	// Once removes the handler after its first successful Process.
	Once bool

	seq    int
	active bool
}

// Matches reports whether h subscribes to the event's kind and its condition
// accepts the event.
func (h *Handler) Matches(evt *Event) bool {
	subscribed := false
	for _, k := range h.Kinds {
		if k == evt.Kind {
			subscribed = true
			break
		}
	}
	if !subscribed {
		return false
	}
	return h.Condition == nil || h.Condition(evt)
}

// Active reports whether the handler is still registered.
func (h *Handler) Active() bool { return h.active }

// OwnedBy reports whether ent owns the handler.
func (h *Handler) OwnedBy(ent Entity) bool {
	return h.Owner != nil && ent != nil && h.Owner.ID() == ent.ID()
}

func (h *Handler) String() string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

// handlerRegistry indexes handlers by kind, in registration order.
type handlerRegistry struct {
	byKind  map[Kind][]*Handler
	byID    map[string]*Handler
	nextSeq int
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{
		byKind: make(map[Kind][]*Handler),
		byID:   make(map[string]*Handler),
	}
}

func (r *handlerRegistry) register(h *Handler) string {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if existing, ok := r.byID[h.ID]; ok {
		r.unregister(existing.ID)
	}
	h.seq = r.nextSeq
	r.nextSeq++
	h.active = true
	r.byID[h.ID] = h

	seen := make(map[Kind]bool, len(h.Kinds))
	for _, k := range h.Kinds {
		if seen[k] {
			continue
		}
		seen[k] = true
		r.byKind[k] = append(r.byKind[k], h)
	}
	return h.ID
}

func (r *handlerRegistry) unregister(id string) bool {
	h, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	h.active = false
	for _, k := range h.Kinds {
		list := r.byKind[k]
		for i := range list {
			if list[i] == h {
				r.byKind[k] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(r.byKind[k]) == 0 {
			delete(r.byKind, k)
		}
	}
	return true
}

func (r *handlerRegistry) unregisterOwner(owner Entity) int {
	var ids []string
	for id, h := range r.byID {
		if h.OwnedBy(owner) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		r.unregister(id)
	}
	return len(ids)
}

// snapshot splits the handlers subscribed to kind by phase, preserving
// registration order.
func (r *handlerRegistry) snapshot(kind Kind) (before, after []*Handler) {
	for _, h := range r.byKind[kind] {
		if h.Phase == PhaseBefore {
			before = append(before, h)
		} else {
			after = append(after, h)
		}
	}
	return before, after
}

func (r *handlerRegistry) list(kind Kind) []*Handler {
	cpy := make([]*Handler, len(r.byKind[kind]))
	copy(cpy, r.byKind[kind])
	return cpy
}

func (r *handlerRegistry) len() int {
	return len(r.byID)
}

func (r *handlerRegistry) clear() {
	for _, h := range r.byID {
		h.active = false
	}
	r.byKind = make(map[Kind][]*Handler)
	r.byID = make(map[string]*Handler)
}
