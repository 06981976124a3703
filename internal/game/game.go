package game

import (
	"errors"
	"fmt"

	"github.com/magefree/hearthstone-go/internal/game/cards"
	"github.com/magefree/hearthstone-go/internal/game/handlers"
	"github.com/magefree/hearthstone-go/internal/game/rules"
	"github.com/magefree/hearthstone-go/internal/game/watchers"
	"go.uber.org/zap"
)

// ErrIllegalAction is returned by the validated entry points when the
// requested action is not allowed in the current state.
var ErrIllegalAction = errors.New("illegal action")

const maxMessages = 200

// Config holds the table capacities and engine limits of a game.
type Config struct {
	MaxDesk     int
	MaxHand     int
	MaxCrystal  int
	HeroHealth  int
	MaxDispatch int
	// Coin is the identifier of the card the second player receives.
	Coin string
}

// DefaultConfig returns the standard capacities.
func DefaultConfig() Config {
	return Config{
		MaxDesk:     7,
		MaxHand:     10,
		MaxCrystal:  10,
		HeroHealth:  30,
		MaxDispatch: 10000,
		Coin:        cards.Coin,
	}
}

// History is the history-recording collaborator. Reset is called on restart.
type History interface {
	rules.Recorder
	Reset()
}

// Option configures a Game.
type Option func(*Game)

// WithHistory attaches a history recorder.
func WithHistory(h History) Option {
	return func(g *Game) { g.history = h }
}

// WithRecords sets the initial player state used by New and Restart.
func WithRecords(records []PlayerRecord) Option {
	return func(g *Game) { g.records = records }
}

// WithMessageHook forwards every emitted message to hook.
func WithMessageHook(hook rules.MessageHook) Option {
	return func(g *Game) { g.hook = hook }
}

// Game is the orchestrator of one match: it owns the players and the turn
// counters and implements rules.Session for effects and handlers.
type Game struct {
	logger   *zap.Logger
	cfg      Config
	registry *cards.Registry
	engine   *rules.Engine
	history  History
	stats    *watchers.Stats
	hook     rules.MessageHook
	records  []PlayerRecord

	players  []*rules.Player
	started  bool
	current  int
	turn     int
	summons  int
	messages []rules.Message
}

// New builds a game from cfg, materializing the initial records through
// registry, and registers the global handlers. It does not start the match.
func New(logger *zap.Logger, registry *cards.Registry, cfg Config, opts ...Option) (*Game, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = cards.NewBasicRegistry()
	}
	g := &Game{
		logger:   logger,
		cfg:      cfg,
		registry: registry,
		stats:    watchers.NewStats(),
	}
	for _, opt := range opts {
		opt(g)
	}

	engineOpts := []rules.Option{
		rules.WithMaxDispatch(cfg.MaxDispatch),
		rules.WithMessageHook(g.onMessage),
	}
	if g.history != nil {
		engineOpts = append(engineOpts, rules.WithRecorder(g.history))
	}
	g.engine = rules.NewEngine(logger.Named("engine"), engineOpts...)

	t, err := g.buildTable(g.records)
	if err != nil {
		return nil, err
	}
	g.seat(t)
	return g, nil
}

// seat installs a freshly built table: players and summon counter first,
// then desk handlers, the globals and the watchers, in that order.
func (g *Game) seat(t *table) {
	g.players = t.players
	g.summons = t.summons
	for _, h := range t.handlers {
		g.engine.RegisterHandler(h)
	}
	for _, h := range handlers.Globals(g.cfg.Coin) {
		g.engine.RegisterHandler(h)
	}
	for _, h := range g.stats.Handlers() {
		g.engine.RegisterHandler(h)
	}
}

func (g *Game) onMessage(msg rules.Message) {
	g.messages = append(g.messages, msg)
	if len(g.messages) > maxMessages {
		g.messages = g.messages[len(g.messages)-maxMessages:]
	}
	if g.hook != nil {
		g.hook(msg)
	}
}

// Engine implements rules.Session.
func (g *Game) Engine() *rules.Engine { return g.engine }

// Player implements rules.Session.
func (g *Game) Player(id int) *rules.Player {
	if id < 0 || id >= len(g.players) {
		return nil
	}
	return g.players[id]
}

// Players implements rules.Session.
func (g *Game) Players() []*rules.Player { return g.players }

// CurrentPlayerID implements rules.Session.
func (g *Game) CurrentPlayerID() int { return g.current }

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *rules.Player { return g.players[g.current] }

// Opponent returns the player waiting for its turn.
func (g *Game) Opponent() *rules.Player { return g.players[1-g.current] }

// TurnNumber returns the number of turns already ended.
func (g *Game) TurnNumber() int { return g.turn }

// AdvanceTurn implements rules.Session.
func (g *Game) AdvanceTurn() int {
	g.current = 1 - g.current
	g.turn++
	return g.current
}

// NextSummonStamp implements rules.Session.
func (g *Game) NextSummonStamp() int {
	stamp := g.summons
	g.summons++
	return stamp
}

// CreateCard implements rules.Session.
func (g *Game) CreateCard(identifier string, playerID int) (rules.Card, error) {
	return g.registry.Create(identifier, playerID)
}

// Limits implements rules.Session.
func (g *Game) Limits() rules.Limits {
	return rules.Limits{MaxDesk: g.cfg.MaxDesk, MaxHand: g.cfg.MaxHand, MaxCrystal: g.cfg.MaxCrystal}
}

// Stats returns the match statistics watchers.
func (g *Game) Stats() *watchers.Stats { return g.stats }

// Messages returns the most recent emitted messages, oldest first.
func (g *Game) Messages() []rules.Message {
	out := make([]rules.Message, len(g.messages))
	copy(out, g.messages)
	return out
}

// Ended reports whether a terminal event resolved.
func (g *Game) Ended() bool {
	return g.engine.Status() == rules.StatusTerminated
}

// Run drains events through the engine and logs the match end.
func (g *Game) Run(events ...*rules.Event) (rules.Outcome, error) {
	out, err := g.engine.Run(g, events...)
	if err != nil {
		return out, err
	}
	if out.Terminated {
		g.logger.Info("game ended",
			zap.Int("player_id", out.PlayerID),
			zap.Int("turn", g.turn),
			zap.Int("discarded", out.Discarded),
		)
	}
	return out, nil
}

// Start begins the match with the current player's first turn. It may run
// once per match.
func (g *Game) Start() (rules.Outcome, error) {
	if g.started {
		return rules.Outcome{}, fmt.Errorf("%w: game already started", ErrIllegalAction)
	}
	g.started = true
	g.logger.Info("game starting", zap.Int("first_player", g.current))
	return g.Run(rules.NewGameBegin(), rules.NewTurnBegin(g.current))
}

// EndTurn ends the current player's turn.
func (g *Game) EndTurn() (rules.Outcome, error) {
	if err := g.checkRunning(); err != nil {
		return rules.Outcome{}, err
	}
	return g.Run(rules.NewTurnEnd(g.current))
}

// Summon plays the minion at handIndex onto the current player's desk.
func (g *Game) Summon(handIndex, deskIndex int, target rules.Character) (rules.Outcome, error) {
	p := g.CurrentPlayer()
	card, err := g.playable(p, handIndex)
	if err != nil {
		return rules.Outcome{}, err
	}
	m, ok := card.(*rules.Minion)
	if !ok {
		return rules.Outcome{}, fmt.Errorf("%w: %s is not a minion", ErrIllegalAction, card.Name())
	}
	if len(p.Desk) >= g.cfg.MaxDesk {
		return rules.Outcome{}, fmt.Errorf("%w: desk is full", ErrIllegalAction)
	}
	if deskIndex < 0 || deskIndex > len(p.Desk) {
		return rules.Outcome{}, fmt.Errorf("%w: desk index %d out of range", ErrIllegalAction, deskIndex)
	}
	if err := g.checkTarget(target); err != nil {
		return rules.Outcome{}, err
	}
	return g.Run(rules.NewSummonMinion(m, deskIndex, p.ID, target))
}

// PlaySpell casts the spell at handIndex against target, which may be nil
// for untargeted spells.
func (g *Game) PlaySpell(handIndex int, target rules.Character) (rules.Outcome, error) {
	p := g.CurrentPlayer()
	card, err := g.playable(p, handIndex)
	if err != nil {
		return rules.Outcome{}, err
	}
	sp, ok := card.(*rules.Spell)
	if !ok {
		return rules.Outcome{}, fmt.Errorf("%w: %s is not a spell", ErrIllegalAction, card.Name())
	}
	if err := g.checkTarget(target); err != nil {
		return rules.Outcome{}, err
	}
	return g.Run(rules.NewPlaySpell(sp, p.ID, target))
}

// PlayWeapon equips the weapon at handIndex.
func (g *Game) PlayWeapon(handIndex int) (rules.Outcome, error) {
	p := g.CurrentPlayer()
	card, err := g.playable(p, handIndex)
	if err != nil {
		return rules.Outcome{}, err
	}
	w, ok := card.(*rules.Weapon)
	if !ok {
		return rules.Outcome{}, fmt.Errorf("%w: %s is not a weapon", ErrIllegalAction, card.Name())
	}
	return g.Run(rules.NewPlayWeapon(w, p.ID))
}

// Attack makes one of the current player's characters attack an enemy one.
func (g *Game) Attack(source, target rules.Character) (rules.Outcome, error) {
	if err := g.checkRunning(); err != nil {
		return rules.Outcome{}, err
	}
	if source == nil || target == nil {
		return rules.Outcome{}, fmt.Errorf("%w: attack needs a source and a target", ErrIllegalAction)
	}
	if source.PlayerID() != g.current {
		return rules.Outcome{}, fmt.Errorf("%w: %s is not controlled by P%d", ErrIllegalAction, source, g.current)
	}
	if target.PlayerID() == g.current {
		return rules.Outcome{}, fmt.Errorf("%w: %s is friendly", ErrIllegalAction, target)
	}
	if !g.onTable(source) || !g.onTable(target) {
		return rules.Outcome{}, fmt.Errorf("%w: %s or %s is not in play", ErrIllegalAction, source, target)
	}
	switch {
	case source.Frozen():
		return rules.Outcome{}, fmt.Errorf("%w: %s is frozen", ErrIllegalAction, source)
	case source.RemainingAttacks() <= 0:
		return rules.Outcome{}, fmt.Errorf("%w: %s cannot attack again this turn", ErrIllegalAction, source)
	case source.Attack() <= 0:
		return rules.Outcome{}, fmt.Errorf("%w: %s has no attack", ErrIllegalAction, source)
	}
	if m, ok := target.(*rules.Minion); ok && m.Stealth() {
		return rules.Outcome{}, fmt.Errorf("%w: %s is stealthed", ErrIllegalAction, target)
	}
	return g.Run(rules.NewAttack(source, target))
}

func (g *Game) checkRunning() error {
	if g.Ended() {
		return fmt.Errorf("%w: game has ended", ErrIllegalAction)
	}
	return nil
}

// playable validates that the current player can afford the card at
// handIndex.
func (g *Game) playable(p *rules.Player, handIndex int) (rules.Card, error) {
	if err := g.checkRunning(); err != nil {
		return nil, err
	}
	if handIndex < 0 || handIndex >= len(p.Hand) {
		return nil, fmt.Errorf("%w: no card at hand index %d", ErrIllegalAction, handIndex)
	}
	card := p.Hand[handIndex]
	if card.Cost() > p.RemainCrystal {
		return nil, fmt.Errorf("%w: %s costs %d, P%d has %d", ErrIllegalAction, card.Name(), card.Cost(), p.ID, p.RemainCrystal)
	}
	return card, nil
}

func (g *Game) checkTarget(target rules.Character) error {
	if target == nil {
		return nil
	}
	if !g.onTable(target) {
		return fmt.Errorf("%w: target %s is not in play", ErrIllegalAction, target)
	}
	return nil
}

// onTable reports whether c is a living hero or a minion on a desk.
func (g *Game) onTable(c rules.Character) bool {
	if !c.Alive() {
		return false
	}
	p := g.Player(c.PlayerID())
	if p == nil {
		return false
	}
	switch v := c.(type) {
	case *rules.Hero:
		return p.Hero == v
	case *rules.Minion:
		return p.DeskIndex(v) >= 0
	default:
		return false
	}
}

// Restart reloads the initial records, then clears the engine, the
// counters, the statistics and the history and seats the reloaded table.
// When the records fail to load the running game is left untouched.
func (g *Game) Restart() error {
	t, err := g.buildTable(g.records)
	if err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	if g.history != nil {
		g.history.Reset()
	}
	g.stats.Reset()
	g.engine.Reset(true)
	g.started = false
	g.current = 0
	g.turn = 0
	g.messages = nil
	g.seat(t)
	g.logger.Info("game restarted")
	return nil
}

// RangeOptions filters the characters returned by Range.
type RangeOptions struct {
	ExcludeMinion *rules.Minion
	ExcludeDead   bool
	ExcludeHero   bool
}

// Range returns the candidate characters of playerID, or of both players
// when playerID is negative: desk minions in order, then heroes.
func (g *Game) Range(playerID int, opts RangeOptions) []rules.Character {
	var players []*rules.Player
	if playerID < 0 {
		players = g.players
	} else if p := g.Player(playerID); p != nil {
		players = []*rules.Player{p}
	}

	var out []rules.Character
	for _, p := range players {
		for _, m := range p.Desk {
			if m == opts.ExcludeMinion {
				continue
			}
			if opts.ExcludeDead && !m.Alive() {
				continue
			}
			out = append(out, m)
		}
	}
	if opts.ExcludeHero {
		return out
	}
	for _, p := range players {
		if opts.ExcludeDead && !p.Hero.Alive() {
			continue
		}
		out = append(out, p.Hero)
	}
	return out
}
