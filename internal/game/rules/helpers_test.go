package rules

import (
	"fmt"
	"testing"

	"go.uber.org/zap/zaptest"
)

// tableSession is a minimal two-player Session for exercising the engine
// without the orchestrator.
type tableSession struct {
	engine   *Engine
	players  []*Player
	current  int
	turn     int
	stamp    int
	limits   Limits
	registry map[string]func(playerID int) Card
}

func newTableSession(t *testing.T, opts ...Option) *tableSession {
	t.Helper()
	return &tableSession{
		engine:   NewEngine(zaptest.NewLogger(t), opts...),
		players:  []*Player{NewPlayer(0, 30), NewPlayer(1, 30)},
		limits:   Limits{MaxDesk: 7, MaxHand: 10, MaxCrystal: 10},
		registry: map[string]func(playerID int) Card{},
	}
}

func (s *tableSession) Engine() *Engine { return s.engine }

func (s *tableSession) Player(id int) *Player {
	if id < 0 || id >= len(s.players) {
		return nil
	}
	return s.players[id]
}

func (s *tableSession) Players() []*Player   { return s.players }
func (s *tableSession) CurrentPlayerID() int { return s.current }
func (s *tableSession) Limits() Limits       { return s.limits }

func (s *tableSession) AdvanceTurn() int {
	s.current = 1 - s.current
	s.turn++
	return s.current
}

func (s *tableSession) NextSummonStamp() int {
	stamp := s.stamp
	s.stamp++
	return stamp
}

func (s *tableSession) CreateCard(identifier string, playerID int) (Card, error) {
	build, ok := s.registry[identifier]
	if !ok {
		return nil, fmt.Errorf("unknown card %q", identifier)
	}
	return build(playerID), nil
}

// place puts a fresh minion directly on a desk, bypassing events.
func (s *tableSession) place(playerID int, spec MinionSpec) *Minion {
	m := NewMinion(spec, playerID)
	m.SetLocation(LocationDesk)
	m.Timestamp = s.NextSummonStamp()
	p := s.players[playerID]
	p.InsertDesk(len(p.Desk), m)
	return m
}

// give puts card in the player's hand, bypassing events.
func (s *tableSession) give(playerID int, card Card) {
	card.SetLocation(LocationHand)
	s.players[playerID].Hand = append(s.players[playerID].Hand, card)
}

// journal collects recorded history entries.
type journal struct {
	entries []Entry
}

func (j *journal) Record(entry Entry) { j.entries = append(j.entries, entry) }

func (j *journal) kinds() []Kind {
	kinds := make([]Kind, 0, len(j.entries))
	for _, e := range j.entries {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func vanilla(name string, attack, health int) MinionSpec {
	return MinionSpec{Name: name, Cost: 1, Attack: attack, Health: health}
}
