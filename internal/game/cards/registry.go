// Package cards provides the card registry the engine materializes cards
// through, and a small basic set.
package cards

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/magefree/hearthstone-go/internal/game/rules"
)

var (
	// ErrUnknownCard is returned when an identifier has no constructor.
	ErrUnknownCard = errors.New("unknown card")

	// ErrDuplicateCard is returned when registering an identifier twice.
	ErrDuplicateCard = errors.New("card already registered")
)

// Constructor builds a fresh instance of a card owned by playerID.
type Constructor func(playerID int) rules.Card

// Registry maps card identifiers to constructors. It is safe for concurrent
// use so one registry can back many games.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// Register adds a constructor under id.
func (r *Registry) Register(id string, ctor Constructor) error {
	if id == "" || ctor == nil {
		return fmt.Errorf("register %q: empty identifier or constructor", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.constructors[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCard, id)
	}
	r.constructors[id] = ctor
	return nil
}

// MustRegister is Register that panics on error, for static card tables.
func (r *Registry) MustRegister(id string, ctor Constructor) {
	if err := r.Register(id, ctor); err != nil {
		panic(err)
	}
}

// Lookup returns the constructor registered under id.
func (r *Registry) Lookup(id string) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctor, ok := r.constructors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	return ctor, nil
}

// Create instantiates the card registered under id for playerID.
func (r *Registry) Create(id string, playerID int) (rules.Card, error) {
	ctor, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	card := ctor(playerID)
	if card == nil {
		return nil, fmt.Errorf("%w: constructor for %s returned nil", ErrUnknownCard, id)
	}
	return card, nil
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.constructors))
	for id := range r.constructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
