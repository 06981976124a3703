// Package watchers tracks match statistics by observing resolved events.
package watchers

import (
	"sync"

	"github.com/magefree/hearthstone-go/internal/game/rules"
)

// Watcher observes resolved events through after-phase handlers.
type Watcher interface {
	Key() string
	Handler() *rules.Handler
	Reset()
}

// SpellsCastWatcher counts the spells each player cast.
type SpellsCastWatcher struct {
	mu     sync.RWMutex
	spells map[int][]string
}

// NewSpellsCastWatcher creates an empty spells cast watcher.
func NewSpellsCastWatcher() *SpellsCastWatcher {
	return &SpellsCastWatcher{spells: make(map[int][]string)}
}

func (w *SpellsCastWatcher) Key() string { return "spells_cast" }

// Handler implements Watcher.
func (w *SpellsCastWatcher) Handler() *rules.Handler {
	return &rules.Handler{
		Name:  w.Key(),
		Kinds: []rules.Kind{rules.KindRunSpell},
		Phase: rules.PhaseAfter,
		Process: func(_ rules.Session, evt *rules.Event) error {
			if evt.Card == nil {
				return nil
			}
			w.mu.Lock()
			defer w.mu.Unlock()
			w.spells[evt.PlayerID] = append(w.spells[evt.PlayerID], evt.Card.Name())
			return nil
		},
	}
}

func (w *SpellsCastWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spells = make(map[int][]string)
}

// Spells returns the names of the spells playerID cast, in order.
func (w *SpellsCastWatcher) Spells(playerID int) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.spells[playerID]...)
}

// Count returns the number of spells playerID cast.
func (w *SpellsCastWatcher) Count(playerID int) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.spells[playerID])
}

// MinionsDiedWatcher counts minions that left the desk by dying, per
// controlling player.
type MinionsDiedWatcher struct {
	mu   sync.RWMutex
	died map[int]int
}

// NewMinionsDiedWatcher creates an empty minions died watcher.
func NewMinionsDiedWatcher() *MinionsDiedWatcher {
	return &MinionsDiedWatcher{died: make(map[int]int)}
}

func (w *MinionsDiedWatcher) Key() string { return "minions_died" }

// Handler implements Watcher. Disabled deaths never reach the after phase.
func (w *MinionsDiedWatcher) Handler() *rules.Handler {
	return &rules.Handler{
		Name:  w.Key(),
		Kinds: []rules.Kind{rules.KindMinionDeath},
		Phase: rules.PhaseAfter,
		Process: func(_ rules.Session, evt *rules.Event) error {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.died[evt.PlayerID]++
			return nil
		},
	}
}

func (w *MinionsDiedWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.died = make(map[int]int)
}

// Count returns how many of playerID's minions died.
func (w *MinionsDiedWatcher) Count(playerID int) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.died[playerID]
}

// DamageWatcher sums the damage dealt by each player's characters and
// spells. Sourceless damage such as fatigue is attributed to nobody.
type DamageWatcher struct {
	mu    sync.RWMutex
	dealt map[int]int
	taken map[int]int
}

// NewDamageWatcher creates an empty damage watcher.
func NewDamageWatcher() *DamageWatcher {
	return &DamageWatcher{dealt: make(map[int]int), taken: make(map[int]int)}
}

func (w *DamageWatcher) Key() string { return "damage" }

// Handler implements Watcher.
func (w *DamageWatcher) Handler() *rules.Handler {
	return &rules.Handler{
		Name:  w.Key(),
		Kinds: []rules.Kind{rules.KindDamage, rules.KindSpellDamage},
		Phase: rules.PhaseAfter,
		Condition: func(evt *rules.Event) bool {
			return evt.Value > 0 && evt.Target != nil
		},
		Process: func(_ rules.Session, evt *rules.Event) error {
			w.mu.Lock()
			defer w.mu.Unlock()
			if evt.Source != nil {
				w.dealt[evt.Source.PlayerID()] += evt.Value
			}
			w.taken[evt.Target.PlayerID()] += evt.Value
			return nil
		},
	}
}

func (w *DamageWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dealt = make(map[int]int)
	w.taken = make(map[int]int)
}

// Dealt returns the damage dealt by playerID.
func (w *DamageWatcher) Dealt(playerID int) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dealt[playerID]
}

// Taken returns the damage taken by playerID's characters.
func (w *DamageWatcher) Taken(playerID int) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.taken[playerID]
}

// Stats bundles the standard watchers.
type Stats struct {
	Spells *SpellsCastWatcher
	Deaths *MinionsDiedWatcher
	Damage *DamageWatcher
}

// NewStats creates the standard watchers.
func NewStats() *Stats {
	return &Stats{
		Spells: NewSpellsCastWatcher(),
		Deaths: NewMinionsDiedWatcher(),
		Damage: NewDamageWatcher(),
	}
}

// Watchers returns the bundled watchers in registration order.
func (s *Stats) Watchers() []Watcher {
	return []Watcher{s.Spells, s.Deaths, s.Damage}
}

// Handlers returns one fresh handler per watcher.
func (s *Stats) Handlers() []*rules.Handler {
	ws := s.Watchers()
	hs := make([]*rules.Handler, len(ws))
	for i, w := range ws {
		hs[i] = w.Handler()
	}
	return hs
}

// Reset clears every watcher.
func (s *Stats) Reset() {
	for _, w := range s.Watchers() {
		w.Reset()
	}
}

// Summary is a flat view of one player's statistics.
type Summary struct {
	SpellsCast  int
	MinionsDied int
	DamageDealt int
	DamageTaken int
}

// Summary returns the statistics of playerID.
func (s *Stats) Summary(playerID int) Summary {
	return Summary{
		SpellsCast:  s.Spells.Count(playerID),
		MinionsDied: s.Deaths.Count(playerID),
		DamageDealt: s.Damage.Dealt(playerID),
		DamageTaken: s.Damage.Taken(playerID),
	}
}
