package game

import (
	"fmt"
	"sort"
	"sync"

	"github.com/magefree/hearthstone-go/internal/game/cards"
	"github.com/magefree/hearthstone-go/internal/game/rules"
	"github.com/magefree/hearthstone-go/internal/game/watchers"
	"go.uber.org/zap"
)

// Manager hosts many games keyed by id. Games themselves are not safe for
// concurrent use, so every call into one is serialized by its own lock.
type Manager struct {
	logger   *zap.Logger
	registry *cards.Registry
	cfg      Config

	mu    sync.RWMutex
	games map[string]*hostedGame
}

type hostedGame struct {
	mu   sync.Mutex
	game *Game
}

// View is a snapshot of a hosted game.
type View struct {
	GameID        string
	CurrentPlayer int
	Turn          int
	Ended         bool
	Outcome       rules.Outcome
	Checksum      string
	Players       []PlayerView
}

// PlayerView summarizes one player.
type PlayerView struct {
	ID            int
	HeroHealth    int
	RemainCrystal int
	MaxCrystal    int
	Hand          int
	Deck          int
	Desk          []string
	Stats         watchers.Summary
}

// NewManager creates a manager whose games share registry and cfg.
func NewManager(logger *zap.Logger, registry *cards.Registry, cfg Config) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = cards.NewBasicRegistry()
	}
	return &Manager{
		logger:   logger,
		registry: registry,
		cfg:      cfg,
		games:    make(map[string]*hostedGame),
	}
}

// Create builds and registers a new game.
func (m *Manager) Create(gameID string, opts ...Option) error {
	if gameID == "" {
		return fmt.Errorf("gameID is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[gameID]; ok {
		return fmt.Errorf("game %s already exists", gameID)
	}
	g, err := New(m.logger.With(zap.String("game_id", gameID)), m.registry, m.cfg, opts...)
	if err != nil {
		return fmt.Errorf("game %s: %w", gameID, err)
	}
	m.games[gameID] = &hostedGame{game: g}

	m.logger.Info("game created", zap.String("game_id", gameID))
	return nil
}

func (m *Manager) hosted(gameID string) (*hostedGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s not found", gameID)
	}
	return h, nil
}

// Do runs fn with exclusive access to the game.
func (m *Manager) Do(gameID string, fn func(g *Game) error) error {
	h, err := m.hosted(gameID)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.game)
}

// Apply performs one action on the game.
func (m *Manager) Apply(gameID string, a Action) (rules.Outcome, error) {
	var out rules.Outcome
	err := m.Do(gameID, func(g *Game) error {
		var err error
		out, err = g.Apply(a)
		return err
	})
	if err != nil {
		m.logger.Debug("action rejected",
			zap.String("game_id", gameID),
			zap.String("action_type", a.Type),
			zap.Error(err),
		)
	}
	return out, err
}

// View returns a snapshot of the game.
func (m *Manager) View(gameID string) (View, error) {
	var v View
	err := m.Do(gameID, func(g *Game) error {
		v = View{
			GameID:        gameID,
			CurrentPlayer: g.CurrentPlayerID(),
			Turn:          g.TurnNumber(),
			Ended:         g.Ended(),
			Outcome:       g.Engine().Outcome(),
			Checksum:      g.Checksum(),
		}
		for _, p := range g.Players() {
			pv := PlayerView{
				ID:            p.ID,
				HeroHealth:    p.Hero.Health(),
				RemainCrystal: p.RemainCrystal,
				MaxCrystal:    p.MaxCrystal,
				Hand:          len(p.Hand),
				Deck:          len(p.Deck),
				Stats:         g.Stats().Summary(p.ID),
			}
			for _, mn := range p.Desk {
				pv.Desk = append(pv.Desk, mn.String())
			}
			v.Players = append(v.Players, pv)
		}
		return nil
	})
	return v, err
}

// End removes the game.
func (m *Manager) End(gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[gameID]; !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	delete(m.games, gameID)

	m.logger.Info("game removed", zap.String("game_id", gameID))
	return nil
}

// IDs returns the hosted game ids in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
